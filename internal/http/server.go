// Package http exposes the tracker over a JSON API: entity CRUD, derived
// reports, goal transfers, alerts and the advice endpoint.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gocache "github.com/patrickmn/go-cache"

	"contas/internal/core"
	"contas/internal/middleware/ratelimit"
	"contas/internal/middleware/security"
	"contas/internal/middleware/trace"
	"contas/internal/session"
	"contas/internal/state"
)

// Advisor produces a natural-language reading of the household's finances.
type Advisor interface {
	Advise(ctx context.Context, st *core.FinanceState, now time.Time) (string, error)
}

const (
	reportCacheTTL     = 30 * time.Second
	reportCacheCleanup = 5 * time.Minute
)

// Server wires the state container, session manager and report computation
// behind a chi router.
type Server struct {
	router    chi.Router
	container *state.Container
	sessions  *session.Manager
	advisor   Advisor
	reports   *gocache.Cache
	limiter   *ratelimit.Limiter
	logger    *slog.Logger
	now       func() time.Time
}

// Option customises a Server at construction time.
type Option func(*Server)

// WithAdvisor enables the /api/advice endpoint.
func WithAdvisor(a Advisor) Option {
	return func(s *Server) { s.advisor = a }
}

// WithRateLimit overrides the default per-IP request limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) { s.limiter = ratelimit.New(rps, burst) }
}

// WithClock fixes the server's notion of now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithReportCacheTTL overrides how long computed reports are served from
// cache before being recomputed.
func WithReportCacheTTL(ttl time.Duration) Option {
	return func(s *Server) { s.reports = gocache.New(ttl, reportCacheCleanup) }
}

func NewServer(container *state.Container, sessions *session.Manager, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		container: container,
		sessions:  sessions,
		reports:   gocache.New(reportCacheTTL, reportCacheCleanup),
		limiter:   ratelimit.New(20, 40),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// InvalidateReportCache drops every cached report. The state container calls
// it through its change notifier so reports never serve stale aggregates.
func (s *Server) InvalidateReportCache() {
	s.reports.Flush()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(trace.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.limiter.Middleware)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Post("/auth/logout", s.handleLogout)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", s.handleListTransactions)
				r.Post("/", s.handleAddTransaction)
				r.Put("/{id}", s.handleUpdateTransaction)
				r.Delete("/{id}", s.handleRemoveTransaction)
			})
			r.Route("/recurring-expenses", func(r chi.Router) {
				r.Get("/", s.handleListRecurringExpenses)
				r.Post("/", s.handleAddRecurringExpense)
				r.Put("/{id}", s.handleUpdateRecurringExpense)
				r.Delete("/{id}", s.handleRemoveRecurringExpense)
			})
			r.Route("/recurring-incomes", func(r chi.Router) {
				r.Get("/", s.handleListRecurringIncomes)
				r.Post("/", s.handleAddRecurringIncome)
				r.Put("/{id}", s.handleUpdateRecurringIncome)
				r.Delete("/{id}", s.handleRemoveRecurringIncome)
			})
			r.Route("/debts", func(r chi.Router) {
				r.Get("/", s.handleListDebts)
				r.Post("/", s.handleAddDebt)
				r.Put("/{id}", s.handleUpdateDebt)
				r.Delete("/{id}", s.handleRemoveDebt)
			})
			r.Route("/goals", func(r chi.Router) {
				r.Get("/", s.handleListGoals)
				r.Post("/", s.handleAddGoal)
				r.Put("/{id}", s.handleUpdateGoal)
				r.Delete("/{id}", s.handleRemoveGoal)
				r.Post("/{id}/reinforce", s.handleReinforceGoal)
				r.Post("/{id}/withdraw", s.handleWithdrawGoal)
			})
			r.Route("/investments", func(r chi.Router) {
				r.Get("/", s.handleListInvestments)
				r.Post("/", s.handleAddInvestment)
				r.Put("/{id}", s.handleUpdateInvestment)
				r.Delete("/{id}", s.handleRemoveInvestment)
			})
			r.Route("/members", func(r chi.Router) {
				r.Get("/", s.handleListMembers)
				r.Post("/", s.handleAddMember)
				r.Put("/{id}", s.handleUpdateMember)
				r.Delete("/{id}", s.handleRemoveMember)
			})

			r.Get("/settings", s.handleGetSettings)
			r.Put("/settings", s.handleUpdateAppSettings)
			r.Put("/settings/alerts", s.handleUpdateAlertSettings)

			r.Post("/materialize", s.handleMaterialize)

			r.Get("/alerts", s.handleListAlerts)
			r.Post("/alerts/{id}/dismiss", s.handleDismissAlert)
			r.Delete("/alerts/dismissed", s.handleClearDismissedAlerts)

			r.Route("/reports", func(r chi.Router) {
				r.Get("/dashboard", s.handleDashboard)
				r.Get("/breakdown", s.handleBreakdown)
				r.Get("/drilldown", s.handleDrilldown)
				r.Get("/tax", s.handleTaxReport)
				r.Get("/effort", s.handleEffortRate)
				r.Get("/trend", s.handleTrend)
				r.Get("/members", s.handleMemberProfiles)
			})

			r.Get("/advice", s.handleAdvice)
		})
	})

	return r
}

// requireSession rejects requests without a valid bearer token. When no PIN
// is configured the whole API is open.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.sessions.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		if err := s.sessions.Authenticate(token); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
