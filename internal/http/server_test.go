package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"contas/internal/core"
	"contas/internal/metrics"
	"contas/internal/session"
	"contas/internal/state"
	"contas/internal/store/memory"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, pin string) (*Server, *state.Container) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return testNow }

	var srv *Server
	container := state.NewContainer(memory.New(), logger,
		state.WithSaveDelay(time.Hour),
		state.WithClock(clock),
		state.WithChangeNotifier(func() {
			if srv != nil {
				srv.InvalidateReportCache()
			}
		}))
	if err := container.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	sessions := session.New("0123456789abcdef0123456789abcdef", pin, time.Hour)
	srv = NewServer(container, sessions, logger, WithClock(clock))
	return srv, container
}

func doRequest(t *testing.T, srv *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestTransactionCRUD(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := doRequest(t, srv, http.MethodPost, "/api/transactions",
		`{"direction":"outflow","amount":"42.50","category":"groceries","description":"market","date":"2026-03-10T00:00:00Z"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Transaction](t, rec)
	if created.ID == "" {
		t.Fatal("created transaction has no id")
	}
	if !created.Amount.Equal(decimal.RequireFromString("42.50")) {
		t.Errorf("amount = %s, want 42.50", created.Amount)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/transactions", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if txs := decodeBody[[]core.Transaction](t, rec); len(txs) != 1 {
		t.Fatalf("list returned %d transactions, want 1", len(txs))
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/transactions/"+created.ID,
		`{"direction":"outflow","amount":"42.50","category":"restaurants","description":"dinner","date":"2026-03-10T00:00:00Z"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[core.Transaction](t, rec)
	if updated.Category != core.CategoryRestaurants {
		t.Errorf("category = %s, want restaurants", updated.Category)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/transactions/missing",
		`{"direction":"outflow","amount":"1","category":"other","description":"x","date":"2026-03-10T00:00:00Z"}`, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, "", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/transactions", "", "")
	if txs := decodeBody[[]core.Transaction](t, rec); len(txs) != 0 {
		t.Errorf("list after delete returned %d transactions, want 0", len(txs))
	}
}

func TestCreateRejectsInvalidPayloads(t *testing.T) {
	srv, _ := newTestServer(t, "")

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"bad category", `{"direction":"outflow","amount":"5","category":"pets","description":"x","date":"2026-03-10T00:00:00Z"}`},
		{"zero amount", `{"direction":"outflow","amount":"0","category":"other","description":"x","date":"2026-03-10T00:00:00Z"}`},
		{"empty description", `{"direction":"outflow","amount":"5","category":"other","description":"  ","date":"2026-03-10T00:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/transactions", tt.body, "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSessionGate(t *testing.T) {
	srv, _ := newTestServer(t, "4321")

	if rec := doRequest(t, srv, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}

	if rec := doRequest(t, srv, http.MethodGet, "/api/transactions", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}

	if rec := doRequest(t, srv, http.MethodPost, "/api/auth/login", `{"pin":"9999"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong pin status = %d, want 401", rec.Code)
	}

	rec := doRequest(t, srv, http.MethodPost, "/api/auth/login", `{"pin":"4321"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	token := decodeBody[loginResponse](t, rec).Token
	if token == "" {
		t.Fatal("login returned empty token")
	}

	if rec := doRequest(t, srv, http.MethodGet, "/api/transactions", "", token); rec.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", rec.Code)
	}
	if rec := doRequest(t, srv, http.MethodGet, "/api/transactions", "", "not-a-token"); rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", rec.Code)
	}
	if rec := doRequest(t, srv, http.MethodPost, "/api/auth/logout", "", token); rec.Code != http.StatusNoContent {
		t.Errorf("logout status = %d, want 204", rec.Code)
	}
}

func TestLoginWhenAuthDisabled(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := doRequest(t, srv, http.MethodPost, "/api/auth/login", `{"pin":"1234"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGoalTransfers(t *testing.T) {
	srv, container := newTestServer(t, "")

	rec := doRequest(t, srv, http.MethodPost, "/api/goals",
		`{"name":"Emergency fund","target_amount":"1000","current_amount":"100","category":"other"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal status = %d, body %s", rec.Code, rec.Body.String())
	}
	goal := decodeBody[core.FutureGoal](t, rec)

	rec = doRequest(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/reinforce", `{"amount":"150"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reinforce status = %d, body %s", rec.Code, rec.Body.String())
	}
	after := decodeBody[core.FutureGoal](t, rec)
	if !after.CurrentAmount.Equal(decimal.RequireFromString("250")) {
		t.Errorf("current amount = %s, want 250", after.CurrentAmount)
	}

	snap := container.Snapshot()
	if len(snap.Transactions) != 1 {
		t.Fatalf("got %d transactions, want the reinforcement record", len(snap.Transactions))
	}
	if snap.Transactions[0].Description != "Reinforce: Emergency fund" {
		t.Errorf("description = %q", snap.Transactions[0].Description)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/withdraw", `{"amount":"50"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("withdraw status = %d, body %s", rec.Code, rec.Body.String())
	}
	after = decodeBody[core.FutureGoal](t, rec)
	if !after.CurrentAmount.Equal(decimal.RequireFromString("200")) {
		t.Errorf("current amount after withdraw = %s, want 200", after.CurrentAmount)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/reinforce", `{"amount":"abc"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad amount status = %d, want 400", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodPost, "/api/goals/missing/reinforce", `{"amount":"10"}`, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing goal status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/reinforce", `{"amount":"800"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reinforce to target status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/reinforce", `{"amount":"10"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reinforce achieved goal status = %d, want 400", rec.Code)
	}
}

func TestReports(t *testing.T) {
	srv, _ := newTestServer(t, "")

	doRequest(t, srv, http.MethodPost, "/api/transactions",
		`{"direction":"outflow","amount":"60","category":"groceries","description":"market","date":"2026-03-05T00:00:00Z"}`, "")
	doRequest(t, srv, http.MethodPost, "/api/transactions",
		`{"direction":"inflow","amount":"2000","source":"salary","description":"pay","date":"2026-03-01T00:00:00Z"}`, "")

	rec := doRequest(t, srv, http.MethodGet, "/api/reports/dashboard", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, body %s", rec.Code, rec.Body.String())
	}
	dash := decodeBody[dashboardResponse](t, rec)
	if !dash.Summary.TotalOutflow.Equal(decimal.RequireFromString("60")) {
		t.Errorf("total outflow = %s, want 60", dash.Summary.TotalOutflow)
	}
	if !dash.Summary.TotalInflow.Equal(decimal.RequireFromString("2000")) {
		t.Errorf("total inflow = %s, want 2000", dash.Summary.TotalInflow)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/reports/breakdown?period=annual", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("breakdown status = %d", rec.Code)
	}
	breakdown := decodeBody[[]metrics.CategoryAmount](t, rec)
	if len(breakdown) != 1 || breakdown[0].Category != core.CategoryGroceries {
		t.Errorf("breakdown = %+v, want a single groceries row", breakdown)
	}

	if rec := doRequest(t, srv, http.MethodGet, "/api/reports/dashboard?period=fortnight", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid period status = %d, want 400", rec.Code)
	}
	if rec := doRequest(t, srv, http.MethodGet, "/api/reports/drilldown?category=pets", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid category status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/reports/drilldown?category=groceries", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("drilldown status = %d", rec.Code)
	}
	if entries := decodeBody[[]metrics.DrilldownEntry](t, rec); len(entries) != 1 {
		t.Errorf("drilldown returned %d entries, want 1", len(entries))
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/reports/tax", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("tax status = %d", rec.Code)
	}
	if report := decodeBody[metrics.TaxReport](t, rec); report.Year != testNow.Year() {
		t.Errorf("tax year = %d, want %d", report.Year, testNow.Year())
	}

	if rec := doRequest(t, srv, http.MethodGet, "/api/reports/effort", "", ""); rec.Code != http.StatusOK {
		t.Errorf("effort status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/reports/trend?months=3", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("trend status = %d", rec.Code)
	}
	if trend := decodeBody[[]metrics.MonthFlow](t, rec); len(trend) != 3 {
		t.Errorf("trend returned %d months, want 3", len(trend))
	}
	if rec := doRequest(t, srv, http.MethodGet, "/api/reports/trend?months=99", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("oversize trend window status = %d, want 400", rec.Code)
	}
	if rec := doRequest(t, srv, http.MethodGet, "/api/reports/members", "", ""); rec.Code != http.StatusOK {
		t.Errorf("members status = %d", rec.Code)
	}
}

func TestReportCacheInvalidatedOnMutation(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := doRequest(t, srv, http.MethodGet, "/api/reports/breakdown", "", "")
	if got := decodeBody[[]metrics.CategoryAmount](t, rec); len(got) != 0 {
		t.Fatalf("initial breakdown has %d rows, want 0", len(got))
	}

	doRequest(t, srv, http.MethodPost, "/api/transactions",
		`{"direction":"outflow","amount":"30","category":"leisure","description":"cinema","date":"2026-03-14T00:00:00Z"}`, "")

	rec = doRequest(t, srv, http.MethodGet, "/api/reports/breakdown", "", "")
	if got := decodeBody[[]metrics.CategoryAmount](t, rec); len(got) != 1 {
		t.Errorf("breakdown after mutation has %d rows, want 1", len(got))
	}
}

func TestAlertDismissAndRestore(t *testing.T) {
	srv, _ := newTestServer(t, "")

	// A due recurring expense inside the default five-day window.
	rec := doRequest(t, srv, http.MethodPost, "/api/recurring-expenses",
		`{"name":"Rent","amount":"700","category":"housing","frequency":"monthly","day_of_month":17}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create recurring expense status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/alerts", "", "")
	alerts := decodeBody[[]metrics.Alert](t, rec)
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1: %+v", len(alerts), alerts)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/alerts/"+alerts[0].ID+"/dismiss", "", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("dismiss status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/alerts", "", "")
	if alerts := decodeBody[[]metrics.Alert](t, rec); len(alerts) != 0 {
		t.Errorf("alerts after dismiss = %d, want 0", len(alerts))
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/alerts/dismissed", "", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear dismissed status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/alerts", "", "")
	if alerts := decodeBody[[]metrics.Alert](t, rec); len(alerts) != 1 {
		t.Errorf("alerts after restore = %d, want 1", len(alerts))
	}
}

func TestMaterializeEndpoint(t *testing.T) {
	srv, container := newTestServer(t, "")

	doRequest(t, srv, http.MethodPost, "/api/recurring-expenses",
		`{"name":"Internet","amount":"35","category":"utilities","frequency":"monthly","day_of_month":3}`, "")

	rec := doRequest(t, srv, http.MethodPost, "/api/materialize", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("materialize status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[[]core.Transaction](t, rec)
	if len(created) != 1 {
		t.Fatalf("materialize created %d transactions, want 1", len(created))
	}
	if len(container.Snapshot().Transactions) != 1 {
		t.Error("materialized transaction not visible in state")
	}

	// Idempotent: a second run must not duplicate.
	rec = doRequest(t, srv, http.MethodPost, "/api/materialize", "", "")
	if created := decodeBody[[]core.Transaction](t, rec); len(created) != 0 {
		t.Errorf("second materialize created %d transactions, want 0", len(created))
	}
}

type stubAdvisor struct {
	text string
	err  error
}

func (a stubAdvisor) Advise(ctx context.Context, st *core.FinanceState, now time.Time) (string, error) {
	return a.text, a.err
}

func TestAdviceEndpoint(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		srv, _ := newTestServer(t, "")
		if rec := doRequest(t, srv, http.MethodGet, "/api/advice", "", ""); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("ok", func(t *testing.T) {
		srv, _ := newTestServer(t, "")
		WithAdvisor(stubAdvisor{text: "spend less on restaurants"})(srv)
		rec := doRequest(t, srv, http.MethodGet, "/api/advice", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := decodeBody[adviceResponse](t, rec); got.Advice != "spend less on restaurants" {
			t.Errorf("advice = %q", got.Advice)
		}
	})

	t.Run("backend error", func(t *testing.T) {
		srv, _ := newTestServer(t, "")
		WithAdvisor(stubAdvisor{err: errors.New("connection refused")})(srv)
		if rec := doRequest(t, srv, http.MethodGet, "/api/advice", "", ""); rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
	})
}

func TestSettingsRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := doRequest(t, srv, http.MethodGet, "/api/settings", "", "")
	settings := decodeBody[settingsResponse](t, rec)
	if settings.App.Currency != "EUR" || settings.Alerts.CommitmentDays != 5 {
		t.Fatalf("defaults = %+v", settings)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/settings",
		`{"currency":"USD","language":"en","theme":"dark"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("update app settings status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodPut, "/api/settings/alerts",
		`{"commitment_days":10,"goal_threshold_percent":85,"budget_threshold_percent":75}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("update alert settings status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/settings", "", "")
	settings = decodeBody[settingsResponse](t, rec)
	if settings.App.Theme != "dark" || settings.Alerts.CommitmentDays != 10 {
		t.Errorf("settings after update = %+v", settings)
	}
}
