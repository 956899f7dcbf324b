// Package sheets mirrors household snapshots to a Google spreadsheet. The
// mirror is the family-facing view: transactions and goals as tabs people can
// read, not the primary store of record.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"contas/internal/core"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	transactionsSheet = "Movimentos"
	goalsSheet        = "Objetivos"

	dateLayout = "2006-01-02"
)

var transactionsHeader = []any{
	"ID", "Direção", "Montante", "Categoria", "Fonte", "Descrição",
	"Estabelecimento", "Data", "Fatura", "Sem NIF",
}

var goalsHeader = []any{"ID", "Nome", "Objetivo", "Atual", "Categoria", "Concluído"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// NewFromEnv builds a client authenticated with service-account credentials
// from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, spreadsheetID string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		spreadsheetID = strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	}
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	credentialsJSON, err := readCredentials()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func readCredentials() ([]byte, error) {
	if raw := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); raw != "" {
		return []byte(raw), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return raw, nil
}

func (c *Client) Close() error { return nil }

// Save replaces the mirror tabs with the snapshot's transactions and goals.
func (c *Client) Save(ctx context.Context, state *core.FinanceState) error {
	txRows := make([][]any, 0, len(state.Transactions)+1)
	txRows = append(txRows, transactionsHeader)
	for _, t := range state.Transactions {
		txRows = append(txRows, transactionRow(t))
	}
	if err := c.replaceSheet(ctx, transactionsSheet, txRows); err != nil {
		return fmt.Errorf("mirror transactions: %w", err)
	}

	goalRows := make([][]any, 0, len(state.Goals)+1)
	goalRows = append(goalRows, goalsHeader)
	for _, g := range state.Goals {
		goalRows = append(goalRows, goalRow(g))
	}
	if err := c.replaceSheet(ctx, goalsSheet, goalRows); err != nil {
		return fmt.Errorf("mirror goals: %w", err)
	}
	return nil
}

// Load reads the mirror tabs back into a snapshot. Only transactions and
// goals travel through the spreadsheet; the rest of the state starts fresh.
func (c *Client) Load(ctx context.Context) (*core.FinanceState, error) {
	state := core.NewFinanceState()

	txValues, err := c.readSheet(ctx, transactionsSheet)
	if err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	for i, row := range txValues {
		if i == 0 {
			continue // header
		}
		t, err := parseTransactionRow(row)
		if err != nil {
			return nil, fmt.Errorf("transactions row %d: %w", i+1, err)
		}
		state.Transactions = append(state.Transactions, t)
	}

	goalValues, err := c.readSheet(ctx, goalsSheet)
	if err != nil {
		return nil, fmt.Errorf("read goals: %w", err)
	}
	for i, row := range goalValues {
		if i == 0 {
			continue
		}
		g, err := parseGoalRow(row)
		if err != nil {
			return nil, fmt.Errorf("goals row %d: %w", i+1, err)
		}
		state.Goals = append(state.Goals, g)
	}

	state.Normalize()
	return state, nil
}

// EnsureTabs creates the mirror tabs when the spreadsheet does not have them
// yet and writes the header row into empty tabs. Ran once by sheets-init.
func (c *Client) EnsureTabs(ctx context.Context) error {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	existing := make(map[string]bool, len(meta.Sheets))
	for _, s := range meta.Sheets {
		existing[s.Properties.Title] = true
	}

	var requests []*gsheet.Request
	for _, title := range []string{transactionsSheet, goalsSheet} {
		if !existing[title] {
			requests = append(requests, &gsheet.Request{
				AddSheet: &gsheet.AddSheetRequest{
					Properties: &gsheet.SheetProperties{Title: title},
				},
			})
		}
	}
	if len(requests) > 0 {
		_, err = c.svc.Spreadsheets.
			BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: requests}).
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("create mirror tabs: %w", err)
		}
	}

	headers := map[string][]any{
		transactionsSheet: transactionsHeader,
		goalsSheet:        goalsHeader,
	}
	for sheet, header := range headers {
		rows, err := c.readSheet(ctx, sheet)
		if err != nil {
			return fmt.Errorf("read %s: %w", sheet, err)
		}
		if len(rows) > 0 {
			continue
		}
		_, err = c.svc.Spreadsheets.Values.
			Update(c.spreadsheetID, sheet+"!A1", &gsheet.ValueRange{Values: [][]any{header}}).
			ValueInputOption("RAW").
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}
	return nil
}

func (c *Client) replaceSheet(ctx context.Context, sheet string, rows [][]any) error {
	_, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, sheet, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}

	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, sheet+"!A1", &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", sheet, err)
	}
	return nil
}

func (c *Client) readSheet(ctx context.Context, sheet string) ([][]any, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, sheet).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func transactionRow(t core.Transaction) []any {
	noNIF := ""
	if t.NoNIF {
		noNIF = "sim"
	}
	return []any{
		t.ID, string(t.Direction), t.Amount.String(), string(t.Category),
		string(t.Source), t.Description, t.Establishment,
		t.Date.Format(dateLayout), t.InvoiceNumber, noNIF,
	}
}

func goalRow(g core.FutureGoal) []any {
	achieved := ""
	if g.Achieved() {
		achieved = "sim"
	}
	return []any{
		g.ID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(),
		string(g.Category), achieved,
	}
}

func parseTransactionRow(row []any) (core.Transaction, error) {
	if len(row) < 8 {
		return core.Transaction{}, fmt.Errorf("expected at least 8 cells, got %d", len(row))
	}

	amount, err := decimal.NewFromString(cell(row, 2))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	date, err := time.Parse(dateLayout, cell(row, 7))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date: %w", err)
	}

	return core.Transaction{
		ID:            cell(row, 0),
		Direction:     core.Direction(cell(row, 1)),
		Amount:        amount,
		Category:      core.Category(cell(row, 3)),
		Source:        core.IncomeSource(cell(row, 4)),
		Description:   cell(row, 5),
		Establishment: cell(row, 6),
		Date:          date,
		InvoiceNumber: cell(row, 8),
		NoNIF:         cell(row, 9) == "sim",
	}, nil
}

func parseGoalRow(row []any) (core.FutureGoal, error) {
	if len(row) < 5 {
		return core.FutureGoal{}, fmt.Errorf("expected at least 5 cells, got %d", len(row))
	}

	target, err := decimal.NewFromString(cell(row, 2))
	if err != nil {
		return core.FutureGoal{}, fmt.Errorf("parse target amount: %w", err)
	}
	current, err := decimal.NewFromString(cell(row, 3))
	if err != nil {
		return core.FutureGoal{}, fmt.Errorf("parse current amount: %w", err)
	}

	return core.FutureGoal{
		ID:            cell(row, 0),
		Name:          cell(row, 1),
		TargetAmount:  target,
		CurrentAmount: current,
		Category:      core.Category(cell(row, 4)),
		IsAchieved:    cell(row, 5) == "sim",
	}, nil
}

// cell reads a string cell tolerating short rows; Sheets drops trailing empty
// cells from the API response.
func cell(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return strings.TrimSpace(s)
}
