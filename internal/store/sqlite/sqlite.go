// Package sqlite is the normalized persistence backend. Every entity lives in
// its own table; monetary values are stored as decimal strings so nothing is
// lost to float rounding on the way through the database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"contas/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open creates the database file if needed, runs migrations and returns the
// store.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// Load assembles a full snapshot from the normalized tables. It never returns
// (nil, nil): an empty database yields a fresh default state, since migrations
// have already run and the schema exists.
func (s *Store) Load(ctx context.Context) (*core.FinanceState, error) {
	state := core.NewFinanceState()

	if err := s.loadTransactions(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadRecurringExpenses(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadRecurringIncomes(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadDebts(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadGoals(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadInvestments(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadMembers(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadSettings(ctx, state); err != nil {
		return nil, err
	}
	if err := s.loadDismissedAlerts(ctx, state); err != nil {
		return nil, err
	}

	state.Normalize()
	return state, nil
}

// Save replaces the normalized tables with the snapshot's contents in one
// transaction.
func (s *Store) Save(ctx context.Context, state *core.FinanceState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	tables := []string{
		"transactions", "recurring_expenses", "recurring_incomes",
		"debts", "goals", "investments", "members", "dismissed_alerts",
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, t := range state.Transactions {
		if _, err := tx.ExecContext(ctx, upsertTransactionSQL, transactionArgs(t)...); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	for _, re := range state.RecurringExpenses {
		if _, err := tx.ExecContext(ctx, upsertRecurringExpenseSQL, recurringExpenseArgs(re)...); err != nil {
			return fmt.Errorf("insert recurring expense %s: %w", re.ID, err)
		}
	}
	for _, ri := range state.RecurringIncomes {
		if _, err := tx.ExecContext(ctx, upsertRecurringIncomeSQL, recurringIncomeArgs(ri)...); err != nil {
			return fmt.Errorf("insert recurring income %s: %w", ri.ID, err)
		}
	}
	for _, d := range state.Debts {
		if _, err := tx.ExecContext(ctx, upsertDebtSQL, debtArgs(d)...); err != nil {
			return fmt.Errorf("insert debt %s: %w", d.ID, err)
		}
	}
	for _, g := range state.Goals {
		if _, err := tx.ExecContext(ctx, upsertGoalSQL, goalArgs(g)...); err != nil {
			return fmt.Errorf("insert goal %s: %w", g.ID, err)
		}
	}
	for _, inv := range state.Investments {
		if _, err := tx.ExecContext(ctx, upsertInvestmentSQL, investmentArgs(inv)...); err != nil {
			return fmt.Errorf("insert investment %s: %w", inv.ID, err)
		}
	}
	for _, m := range state.Members {
		if _, err := tx.ExecContext(ctx, upsertMemberSQL, memberArgs(m)...); err != nil {
			return fmt.Errorf("insert member %s: %w", m.ID, err)
		}
	}
	for alertID := range state.DismissedAlerts {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO dismissed_alerts (alert_id) VALUES (?)", alertID); err != nil {
			return fmt.Errorf("insert dismissed alert %s: %w", alertID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, upsertSettingsSQL, settingsArgs(state.AppSettings, state.AlertSettings)...); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

const upsertTransactionSQL = `
INSERT INTO transactions (id, direction, amount, category, source, description, establishment, date, invoice_number, no_nif)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	direction = excluded.direction,
	amount = excluded.amount,
	category = excluded.category,
	source = excluded.source,
	description = excluded.description,
	establishment = excluded.establishment,
	date = excluded.date,
	invoice_number = excluded.invoice_number,
	no_nif = excluded.no_nif`

func transactionArgs(t core.Transaction) []any {
	return []any{
		t.ID, string(t.Direction), t.Amount.String(), string(t.Category),
		string(t.Source), t.Description, t.Establishment, formatDate(t.Date),
		t.InvoiceNumber, t.NoNIF,
	}
}

func (s *Store) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	_, err := s.db.ExecContext(ctx, upsertTransactionSQL, transactionArgs(t)...)
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "transactions", id)
}

func (s *Store) loadTransactions(ctx context.Context, state *core.FinanceState) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, direction, amount, category, source, description, establishment, date, invoice_number, no_nif
		 FROM transactions ORDER BY date, id`)
	if err != nil {
		return fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t core.Transaction
		var direction, category, source, amount, date string
		if err := rows.Scan(&t.ID, &direction, &amount, &category, &source,
			&t.Description, &t.Establishment, &date, &t.InvoiceNumber, &t.NoNIF); err != nil {
			return fmt.Errorf("scan transaction: %w", err)
		}
		t.Direction = core.Direction(direction)
		t.Category = core.Category(category)
		t.Source = core.IncomeSource(source)
		if t.Amount, err = parseDecimal(amount); err != nil {
			return fmt.Errorf("transaction %s amount: %w", t.ID, err)
		}
		if t.Date, err = parseDate(date); err != nil {
			return fmt.Errorf("transaction %s date: %w", t.ID, err)
		}
		state.Transactions = append(state.Transactions, t)
	}
	return rows.Err()
}

const upsertRecurringExpenseSQL = `
INSERT INTO recurring_expenses (id, name, amount, category, frequency, day_of_month, reference_month, reference_year)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	amount = excluded.amount,
	category = excluded.category,
	frequency = excluded.frequency,
	day_of_month = excluded.day_of_month,
	reference_month = excluded.reference_month,
	reference_year = excluded.reference_year`

func recurringExpenseArgs(re core.RecurringExpense) []any {
	return []any{
		re.ID, re.Name, re.Amount.String(), string(re.Category),
		string(re.Frequency), re.DayOfMonth, int(re.ReferenceMonth), re.ReferenceYear,
	}
}

func (s *Store) UpsertRecurringExpense(ctx context.Context, re core.RecurringExpense) error {
	_, err := s.db.ExecContext(ctx, upsertRecurringExpenseSQL, recurringExpenseArgs(re)...)
	if err != nil {
		return fmt.Errorf("upsert recurring expense: %w", err)
	}
	return nil
}

func (s *Store) DeleteRecurringExpense(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "recurring_expenses", id)
}

func (s *Store) loadRecurringExpenses(ctx context.Context, state *core.FinanceState) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, amount, category, frequency, day_of_month, reference_month, reference_year
		 FROM recurring_expenses ORDER BY name, id`)
	if err != nil {
		return fmt.Errorf("query recurring expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var re core.RecurringExpense
		var amount, category, frequency string
		var refMonth int
		if err := rows.Scan(&re.ID, &re.Name, &amount, &category, &frequency,
			&re.DayOfMonth, &refMonth, &re.ReferenceYear); err != nil {
			return fmt.Errorf("scan recurring expense: %w", err)
		}
		re.Category = core.Category(category)
		re.Frequency = core.Frequency(frequency)
		re.ReferenceMonth = time.Month(refMonth)
		if re.Amount, err = parseDecimal(amount); err != nil {
			return fmt.Errorf("recurring expense %s amount: %w", re.ID, err)
		}
		state.RecurringExpenses = append(state.RecurringExpenses, re)
	}
	return rows.Err()
}

const upsertRecurringIncomeSQL = `
INSERT INTO recurring_incomes (id, name, amount, source, member_id, day_of_month)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	amount = excluded.amount,
	source = excluded.source,
	member_id = excluded.member_id,
	day_of_month = excluded.day_of_month`

func recurringIncomeArgs(ri core.RecurringIncome) []any {
	return []any{ri.ID, ri.Name, ri.Amount.String(), string(ri.Source), ri.MemberID, ri.DayOfMonth}
}

func (s *Store) UpsertRecurringIncome(ctx context.Context, ri core.RecurringIncome) error {
	_, err := s.db.ExecContext(ctx, upsertRecurringIncomeSQL, recurringIncomeArgs(ri)...)
	if err != nil {
		return fmt.Errorf("upsert recurring income: %w", err)
	}
	return nil
}

func (s *Store) DeleteRecurringIncome(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "recurring_incomes", id)
}

func (s *Store) loadRecurringIncomes(ctx context.Context, state *core.FinanceState) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, amount, source, member_id, day_of_month
		 FROM recurring_incomes ORDER BY name, id`)
	if err != nil {
		return fmt.Errorf("query recurring incomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ri core.RecurringIncome
		var amount, source string
		if err := rows.Scan(&ri.ID, &ri.Name, &amount, &source, &ri.MemberID, &ri.DayOfMonth); err != nil {
			return fmt.Errorf("scan recurring income: %w", err)
		}
		ri.Source = core.IncomeSource(source)
		if ri.Amount, err = parseDecimal(amount); err != nil {
			return fmt.Errorf("recurring income %s amount: %w", ri.ID, err)
		}
		state.RecurringIncomes = append(state.RecurringIncomes, ri)
	}
	return rows.Err()
}

const upsertDebtSQL = `
INSERT INTO debts (id, name, type, contracted_value, monthly_payment, calculation_type,
	remaining_installments, end_date, total_value, remaining_value, day_of_month)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	type = excluded.type,
	contracted_value = excluded.contracted_value,
	monthly_payment = excluded.monthly_payment,
	calculation_type = excluded.calculation_type,
	remaining_installments = excluded.remaining_installments,
	end_date = excluded.end_date,
	total_value = excluded.total_value,
	remaining_value = excluded.remaining_value,
	day_of_month = excluded.day_of_month`

func debtArgs(d core.LongTermDebt) []any {
	return []any{
		d.ID, d.Name, string(d.Type), d.ContractedValue.String(),
		d.MonthlyPayment.String(), string(d.CalculationType),
		d.RemainingInstallments, formatDate(d.EndDate),
		d.TotalValue.String(), d.RemainingValue.String(), d.DayOfMonth,
	}
}

func (s *Store) UpsertDebt(ctx context.Context, d core.LongTermDebt) error {
	_, err := s.db.ExecContext(ctx, upsertDebtSQL, debtArgs(d)...)
	if err != nil {
		return fmt.Errorf("upsert debt: %w", err)
	}
	return nil
}

func (s *Store) DeleteDebt(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "debts", id)
}

func (s *Store) loadDebts(ctx context.Context, state *core.FinanceState) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, contracted_value, monthly_payment, calculation_type,
			remaining_installments, end_date, total_value, remaining_value, day_of_month
		 FROM debts ORDER BY name, id`)
	if err != nil {
		return fmt.Errorf("query debts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d core.LongTermDebt
		var debtType, calcType, contracted, payment, total, remaining, endDate string
		if err := rows.Scan(&d.ID, &d.Name, &debtType, &contracted, &payment, &calcType,
			&d.RemainingInstallments, &endDate, &total, &remaining, &d.DayOfMonth); err != nil {
			return fmt.Errorf("scan debt: %w", err)
		}
		d.Type = core.DebtType(debtType)
		d.CalculationType = core.CalculationType(calcType)
		if d.ContractedValue, err = parseDecimal(contracted); err != nil {
			return fmt.Errorf("debt %s contracted value: %w", d.ID, err)
		}
		if d.MonthlyPayment, err = parseDecimal(payment); err != nil {
			return fmt.Errorf("debt %s monthly payment: %w", d.ID, err)
		}
		if d.TotalValue, err = parseDecimal(total); err != nil {
			return fmt.Errorf("debt %s total value: %w", d.ID, err)
		}
		if d.RemainingValue, err = parseDecimal(remaining); err != nil {
			return fmt.Errorf("debt %s remaining value: %w", d.ID, err)
		}
		if d.EndDate, err = parseDate(endDate); err != nil {
			return fmt.Errorf("debt %s end date: %w", d.ID, err)
		}
		state.Debts = append(state.Debts, d)
	}
	return rows.Err()
}

const upsertGoalSQL = `
INSERT INTO goals (id, name, target_amount, current_amount, category, is_achieved)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	target_amount = excluded.target_amount,
	current_amount = excluded.current_amount,
	category = excluded.category,
	is_achieved = excluded.is_achieved`

func goalArgs(g core.FutureGoal) []any {
	return []any{g.ID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), string(g.Category), g.IsAchieved}
}

func (s *Store) UpsertGoal(ctx context.Context, g core.FutureGoal) error {
	_, err := s.db.ExecContext(ctx, upsertGoalSQL, goalArgs(g)...)
	if err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}
	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "goals", id)
}

func (s *Store) loadGoals(ctx context.Context, state *core.FinanceState) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, target_amount, current_amount, category, is_achieved
		 FROM goals ORDER BY name, id`)
	if err != nil {
		return fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g core.FutureGoal
		var target, current, category string
		if err := rows.Scan(&g.ID, &g.Name, &target, &current, &category, &g.IsAchieved); err != nil {
			return fmt.Errorf("scan goal: %w", err)
		}
		g.Category = core.Category(category)
		if g.TargetAmount, err = parseDecimal(target); err != nil {
			return fmt.Errorf("goal %s target amount: %w", g.ID, err)
		}
		if g.CurrentAmount, err = parseDecimal(current); err != nil {
			return fmt.Errorf("goal %s current amount: %w", g.ID, err)
		}
		state.Goals = append(state.Goals, g)
	}
	return rows.Err()
}

const upsertInvestmentSQL = `
INSERT INTO investments (id, name, amount, type, day_of_month, monthly_reinforcement)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	amount = excluded.amount,
	type = excluded.type,
	day_of_month = excluded.day_of_month,
	monthly_reinforcement = excluded.monthly_reinforcement`

func investmentArgs(inv core.Investment) []any {
	return []any{inv.ID, inv.Name, inv.Amount.String(), string(inv.Type), inv.DayOfMonth, inv.MonthlyReinforcement.String()}
}

func (s *Store) UpsertInvestment(ctx context.Context, inv core.Investment) error {
	_, err := s.db.ExecContext(ctx, upsertInvestmentSQL, investmentArgs(inv)...)
	if err != nil {
		return fmt.Errorf("upsert investment: %w", err)
	}
	return nil
}

func (s *Store) DeleteInvestment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "investments", id)
}

func (s *Store) loadInvestments(ctx context.Context, state *core.FinanceState) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, amount, type, day_of_month, monthly_reinforcement
		 FROM investments ORDER BY name, id`)
	if err != nil {
		return fmt.Errorf("query investments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var inv core.Investment
		var amount, invType, reinforcement string
		if err := rows.Scan(&inv.ID, &inv.Name, &amount, &invType, &inv.DayOfMonth, &reinforcement); err != nil {
			return fmt.Errorf("scan investment: %w", err)
		}
		inv.Type = core.InvestmentType(invType)
		if inv.Amount, err = parseDecimal(amount); err != nil {
			return fmt.Errorf("investment %s amount: %w", inv.ID, err)
		}
		if inv.MonthlyReinforcement, err = parseDecimal(reinforcement); err != nil {
			return fmt.Errorf("investment %s reinforcement: %w", inv.ID, err)
		}
		state.Investments = append(state.Investments, inv)
	}
	return rows.Err()
}

const upsertMemberSQL = `
INSERT INTO members (id, name, birth_date)
VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	birth_date = excluded.birth_date`

func memberArgs(m core.FamilyMember) []any {
	return []any{m.ID, m.Name, formatDate(m.BirthDate)}
}

func (s *Store) UpsertMember(ctx context.Context, m core.FamilyMember) error {
	_, err := s.db.ExecContext(ctx, upsertMemberSQL, memberArgs(m)...)
	if err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "members", id)
}

func (s *Store) loadMembers(ctx context.Context, state *core.FinanceState) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, birth_date FROM members ORDER BY name, id`)
	if err != nil {
		return fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m core.FamilyMember
		var birth string
		if err := rows.Scan(&m.ID, &m.Name, &birth); err != nil {
			return fmt.Errorf("scan member: %w", err)
		}
		var err error
		if m.BirthDate, err = parseDate(birth); err != nil {
			return fmt.Errorf("member %s birth date: %w", m.ID, err)
		}
		state.Members = append(state.Members, m)
	}
	return rows.Err()
}

const upsertSettingsSQL = `
INSERT INTO settings (id, currency, language, theme, commitment_days, goal_threshold_percent, budget_threshold_percent)
VALUES (1, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	currency = excluded.currency,
	language = excluded.language,
	theme = excluded.theme,
	commitment_days = excluded.commitment_days,
	goal_threshold_percent = excluded.goal_threshold_percent,
	budget_threshold_percent = excluded.budget_threshold_percent`

func settingsArgs(app core.AppSettings, alerts core.AlertSettings) []any {
	return []any{
		app.Currency, app.Language, app.Theme,
		alerts.CommitmentDays, alerts.GoalThresholdPercent, alerts.BudgetThresholdPercent,
	}
}

func (s *Store) SaveSettings(ctx context.Context, app core.AppSettings, alerts core.AlertSettings) error {
	_, err := s.db.ExecContext(ctx, upsertSettingsSQL, settingsArgs(app, alerts)...)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Store) loadSettings(ctx context.Context, state *core.FinanceState) error {
	row := s.db.QueryRowContext(ctx,
		`SELECT currency, language, theme, commitment_days, goal_threshold_percent, budget_threshold_percent
		 FROM settings WHERE id = 1`)

	var app core.AppSettings
	var alerts core.AlertSettings
	err := row.Scan(&app.Currency, &app.Language, &app.Theme,
		&alerts.CommitmentDays, &alerts.GoalThresholdPercent, &alerts.BudgetThresholdPercent)
	if err == sql.ErrNoRows {
		return nil // defaults from NewFinanceState stand
	}
	if err != nil {
		return fmt.Errorf("query settings: %w", err)
	}
	state.AppSettings = app
	state.AlertSettings = alerts
	return nil
}

func (s *Store) SetAlertDismissed(ctx context.Context, alertID string, dismissed bool) error {
	var err error
	if dismissed {
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO dismissed_alerts (alert_id) VALUES (?) ON CONFLICT(alert_id) DO NOTHING", alertID)
	} else {
		_, err = s.db.ExecContext(ctx,
			"DELETE FROM dismissed_alerts WHERE alert_id = ?", alertID)
	}
	if err != nil {
		return fmt.Errorf("set alert dismissed: %w", err)
	}
	return nil
}

func (s *Store) loadDismissedAlerts(ctx context.Context, state *core.FinanceState) error {
	rows, err := s.db.QueryContext(ctx, "SELECT alert_id FROM dismissed_alerts")
	if err != nil {
		return fmt.Errorf("query dismissed alerts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan dismissed alert: %w", err)
		}
		state.DismissedAlerts[id] = true
	}
	return rows.Err()
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}
