package core

// AppSettings are presentation-level preferences carried with the state.
type AppSettings struct {
	Currency string `json:"currency"`
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// AlertSettings hold the three configurable alert thresholds.
type AlertSettings struct {
	CommitmentDays         int `json:"commitment_days"`
	GoalThresholdPercent   int `json:"goal_threshold_percent"`
	BudgetThresholdPercent int `json:"budget_threshold_percent"`
}

// DefaultAppSettings are used when a fresh state is created.
func DefaultAppSettings() AppSettings {
	return AppSettings{Currency: "EUR", Language: "pt", Theme: "light"}
}

// DefaultAlertSettings are used when a fresh state is created.
func DefaultAlertSettings() AlertSettings {
	return AlertSettings{
		CommitmentDays:         5,
		GoalThresholdPercent:   90,
		BudgetThresholdPercent: 80,
	}
}

// FinanceState is the aggregate root: every collection the tracker knows
// about, plus settings and the set of dismissed alert ids. It is hydrated
// once from the store at session start, mutated in place through the state
// container for the rest of the session, and persisted back after mutations.
type FinanceState struct {
	Transactions      []Transaction      `json:"transactions"`
	RecurringExpenses []RecurringExpense `json:"recurring_expenses"`
	RecurringIncomes  []RecurringIncome  `json:"recurring_incomes"`
	Debts             []LongTermDebt     `json:"debts"`
	Goals             []FutureGoal       `json:"goals"`
	Investments       []Investment       `json:"investments"`
	Members           []FamilyMember     `json:"members"`
	AppSettings       AppSettings        `json:"app_settings"`
	AlertSettings     AlertSettings      `json:"alert_settings"`
	DismissedAlerts   map[string]bool    `json:"dismissed_alerts,omitempty"`
}

// NewFinanceState returns an empty state with default settings.
func NewFinanceState() *FinanceState {
	return &FinanceState{
		AppSettings:     DefaultAppSettings(),
		AlertSettings:   DefaultAlertSettings(),
		DismissedAlerts: make(map[string]bool),
	}
}

// Clone returns a deep copy. Readers take clones so metrics can run over a
// consistent snapshot while the container keeps mutating the original.
func (s *FinanceState) Clone() *FinanceState {
	c := &FinanceState{
		Transactions:      append([]Transaction(nil), s.Transactions...),
		RecurringExpenses: append([]RecurringExpense(nil), s.RecurringExpenses...),
		RecurringIncomes:  append([]RecurringIncome(nil), s.RecurringIncomes...),
		Debts:             append([]LongTermDebt(nil), s.Debts...),
		Goals:             append([]FutureGoal(nil), s.Goals...),
		Investments:       append([]Investment(nil), s.Investments...),
		Members:           append([]FamilyMember(nil), s.Members...),
		AppSettings:       s.AppSettings,
		AlertSettings:     s.AlertSettings,
		DismissedAlerts:   make(map[string]bool, len(s.DismissedAlerts)),
	}
	for id := range s.DismissedAlerts {
		c.DismissedAlerts[id] = true
	}
	return c
}

// GoalByID returns the index of the goal with the given id, or -1.
func (s *FinanceState) GoalByID(id string) int {
	for i := range s.Goals {
		if s.Goals[i].ID == id {
			return i
		}
	}
	return -1
}

// TransactionByID returns the index of the transaction with the given id, or -1.
func (s *FinanceState) TransactionByID(id string) int {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}

// HasTransactionID reports whether any transaction carries the given id.
// Used by the materializer's deterministic-id duplicate defense.
func (s *FinanceState) HasTransactionID(id string) bool {
	return s.TransactionByID(id) >= 0
}

// ReconcileAchieved recomputes every goal's stored achievement flag from the
// live balances. Run on load so a stale denormalized flag never survives
// hydration.
func (s *FinanceState) ReconcileAchieved() {
	for i := range s.Goals {
		s.Goals[i].IsAchieved = s.Goals[i].Achieved()
	}
}

// Normalize fills zero-value settings and nil maps after decoding a snapshot
// that predates them.
func (s *FinanceState) Normalize() {
	if s.AppSettings == (AppSettings{}) {
		s.AppSettings = DefaultAppSettings()
	}
	if s.AlertSettings == (AlertSettings{}) {
		s.AlertSettings = DefaultAlertSettings()
	}
	if s.DismissedAlerts == nil {
		s.DismissedAlerts = make(map[string]bool)
	}
}
