// Package state owns the in-memory household snapshot. All mutations go
// through the Container, which serializes them, keeps derived flags
// consistent and pushes changes to the persistence backend.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"contas/internal/core"
	"contas/internal/recurrence"
	"contas/internal/store"
)

// ErrNotFound is returned by updates and transfers that name a missing id.
var ErrNotFound = errors.New("entity not found")

// DefaultSaveDelay batches snapshot saves: a burst of edits becomes one write.
const DefaultSaveDelay = 500 * time.Millisecond

type Container struct {
	mu     sync.Mutex
	state  *core.FinanceState
	store  store.Store
	entity store.EntityStore // non-nil when the backend writes per entity
	logger *slog.Logger

	now       func() time.Time
	saveDelay time.Duration
	saveTimer *time.Timer
	closed    bool

	// onChange is invoked after every persisted mutation, outside the lock.
	onChange func()
}

type Option func(*Container)

// WithSaveDelay overrides the snapshot save debounce.
func WithSaveDelay(d time.Duration) Option {
	return func(c *Container) { c.saveDelay = d }
}

// WithChangeNotifier registers a callback fired after each mutation. Used for
// cache invalidation and the sync pipeline.
func WithChangeNotifier(fn func()) Option {
	return func(c *Container) { c.onChange = fn }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Container) { c.now = now }
}

func NewContainer(s store.Store, logger *slog.Logger, opts ...Option) *Container {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		store:     s,
		logger:    logger,
		now:       time.Now,
		saveDelay: DefaultSaveDelay,
	}
	if es, ok := s.(store.EntityStore); ok {
		c.entity = es
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hydrate loads the snapshot, reconciles derived flags and materializes any
// recurring movements that became due while the app was down.
func (c *Container) Hydrate(ctx context.Context) error {
	loaded, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if loaded == nil {
		loaded = core.NewFinanceState()
	}
	loaded.Normalize()
	loaded.ReconcileAchieved()

	c.mu.Lock()
	c.state = loaded
	c.mu.Unlock()

	added, err := c.Materialize(ctx)
	if err != nil {
		return err
	}
	if len(added) > 0 {
		c.logger.Info("materialized recurring movements on startup", "count", len(added))
	}
	return nil
}

// Snapshot returns an independent copy for readers. It never blocks on the
// persistence backend.
func (c *Container) Snapshot() *core.FinanceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return core.NewFinanceState()
	}
	return c.state.Clone()
}

// Materialize appends the recurring movements due as of now and persists them.
func (c *Container) Materialize(ctx context.Context) ([]core.Transaction, error) {
	c.mu.Lock()
	added, changed := recurrence.Materialize(c.state, c.now())
	if changed {
		c.state.Transactions = append(c.state.Transactions, added...)
	}
	c.mu.Unlock()

	if !changed {
		return nil, nil
	}
	for _, t := range added {
		if err := c.persistEntity(ctx, func(es store.EntityStore) error {
			return es.UpsertTransaction(ctx, t)
		}); err != nil {
			return added, err
		}
	}
	c.notifyChanged()
	return added, nil
}

// persistEntity writes one row on normalized backends or schedules a debounce
// save on snapshot backends.
func (c *Container) persistEntity(ctx context.Context, write func(store.EntityStore) error) error {
	if c.entity != nil {
		return write(c.entity)
	}
	c.scheduleSave()
	return nil
}

func (c *Container) scheduleSave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.saveTimer != nil {
		c.saveTimer.Reset(c.saveDelay)
		return
	}
	c.saveTimer = time.AfterFunc(c.saveDelay, c.flush)
}

func (c *Container) flush() {
	c.mu.Lock()
	snapshot := c.state.Clone()
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.store.Save(ctx, snapshot); err != nil {
		c.logger.Error("snapshot save failed", "error", err)
	}
}

func (c *Container) notifyChanged() {
	if c.onChange != nil {
		c.onChange()
	}
}

// Close flushes any pending debounced save.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	pending := c.saveTimer != nil && c.saveTimer.Stop()
	var snapshot *core.FinanceState
	if pending && c.state != nil {
		snapshot = c.state.Clone()
	}
	c.mu.Unlock()

	if snapshot != nil {
		if err := c.store.Save(ctx, snapshot); err != nil {
			return fmt.Errorf("final save: %w", err)
		}
	}
	return nil
}

// --- transactions ---

func (c *Container) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = core.NewID()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	c.mu.Lock()
	c.state.Transactions = append(c.state.Transactions, t)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertTransaction(ctx, t)
	}); err != nil {
		return t, err
	}
	c.notifyChanged()
	return t, nil
}

func (c *Container) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	i := c.state.TransactionByID(t.ID)
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	c.state.Transactions[i] = t
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertTransaction(ctx, t)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

// RemoveTransaction is a no-op when the id does not exist.
func (c *Container) RemoveTransaction(ctx context.Context, id string) error {
	c.mu.Lock()
	i := c.state.TransactionByID(id)
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	c.state.Transactions = append(c.state.Transactions[:i], c.state.Transactions[i+1:]...)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.DeleteTransaction(ctx, id)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

// --- recurring expenses ---

func (c *Container) AddRecurringExpense(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	if re.ID == "" {
		re.ID = core.NewID()
	}
	if err := re.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}

	c.mu.Lock()
	c.state.RecurringExpenses = append(c.state.RecurringExpenses, re)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertRecurringExpense(ctx, re)
	}); err != nil {
		return re, err
	}
	c.notifyChanged()
	return re, nil
}

func (c *Container) UpdateRecurringExpense(ctx context.Context, re core.RecurringExpense) error {
	if err := re.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	i := indexByID(c.state.RecurringExpenses, re.ID, func(v core.RecurringExpense) string { return v.ID })
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	c.state.RecurringExpenses[i] = re
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertRecurringExpense(ctx, re)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

func (c *Container) RemoveRecurringExpense(ctx context.Context, id string) error {
	c.mu.Lock()
	i := indexByID(c.state.RecurringExpenses, id, func(v core.RecurringExpense) string { return v.ID })
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	c.state.RecurringExpenses = append(c.state.RecurringExpenses[:i], c.state.RecurringExpenses[i+1:]...)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.DeleteRecurringExpense(ctx, id)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

// --- recurring incomes ---

func (c *Container) AddRecurringIncome(ctx context.Context, ri core.RecurringIncome) (core.RecurringIncome, error) {
	if ri.ID == "" {
		ri.ID = core.NewID()
	}
	if err := ri.Validate(); err != nil {
		return core.RecurringIncome{}, err
	}

	c.mu.Lock()
	c.state.RecurringIncomes = append(c.state.RecurringIncomes, ri)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertRecurringIncome(ctx, ri)
	}); err != nil {
		return ri, err
	}
	c.notifyChanged()
	return ri, nil
}

func (c *Container) UpdateRecurringIncome(ctx context.Context, ri core.RecurringIncome) error {
	if err := ri.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	i := indexByID(c.state.RecurringIncomes, ri.ID, func(v core.RecurringIncome) string { return v.ID })
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	c.state.RecurringIncomes[i] = ri
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertRecurringIncome(ctx, ri)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

func (c *Container) RemoveRecurringIncome(ctx context.Context, id string) error {
	c.mu.Lock()
	i := indexByID(c.state.RecurringIncomes, id, func(v core.RecurringIncome) string { return v.ID })
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	c.state.RecurringIncomes = append(c.state.RecurringIncomes[:i], c.state.RecurringIncomes[i+1:]...)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.DeleteRecurringIncome(ctx, id)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

// --- debts ---

func (c *Container) AddDebt(ctx context.Context, d core.LongTermDebt) (core.LongTermDebt, error) {
	if d.ID == "" {
		d.ID = core.NewID()
	}
	if err := d.Validate(); err != nil {
		return core.LongTermDebt{}, err
	}
	if d.RemainingValue.IsZero() {
		d.RemainingValue = d.ComputeRemainingValue(c.now())
	}

	c.mu.Lock()
	c.state.Debts = append(c.state.Debts, d)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertDebt(ctx, d)
	}); err != nil {
		return d, err
	}
	c.notifyChanged()
	return d, nil
}

func (c *Container) UpdateDebt(ctx context.Context, d core.LongTermDebt) error {
	if err := d.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	i := indexByID(c.state.Debts, d.ID, func(v core.LongTermDebt) string { return v.ID })
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	c.state.Debts[i] = d
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertDebt(ctx, d)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

func (c *Container) RemoveDebt(ctx context.Context, id string) error {
	c.mu.Lock()
	i := indexByID(c.state.Debts, id, func(v core.LongTermDebt) string { return v.ID })
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	c.state.Debts = append(c.state.Debts[:i], c.state.Debts[i+1:]...)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.DeleteDebt(ctx, id)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

// --- goals ---

func (c *Container) AddGoal(ctx context.Context, g core.FutureGoal) (core.FutureGoal, error) {
	if g.ID == "" {
		g.ID = core.NewID()
	}
	if err := g.Validate(); err != nil {
		return core.FutureGoal{}, err
	}
	g.IsAchieved = g.Achieved()

	c.mu.Lock()
	c.state.Goals = append(c.state.Goals, g)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertGoal(ctx, g)
	}); err != nil {
		return g, err
	}
	c.notifyChanged()
	return g, nil
}

func (c *Container) UpdateGoal(ctx context.Context, g core.FutureGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	g.IsAchieved = g.Achieved()

	c.mu.Lock()
	i := c.state.GoalByID(g.ID)
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	c.state.Goals[i] = g
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertGoal(ctx, g)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

func (c *Container) RemoveGoal(ctx context.Context, id string) error {
	c.mu.Lock()
	i := c.state.GoalByID(id)
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	c.state.Goals = append(c.state.Goals[:i], c.state.Goals[i+1:]...)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.DeleteGoal(ctx, id)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

// --- investments ---

func (c *Container) AddInvestment(ctx context.Context, inv core.Investment) (core.Investment, error) {
	if inv.ID == "" {
		inv.ID = core.NewID()
	}
	if err := inv.Validate(); err != nil {
		return core.Investment{}, err
	}

	c.mu.Lock()
	c.state.Investments = append(c.state.Investments, inv)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertInvestment(ctx, inv)
	}); err != nil {
		return inv, err
	}
	c.notifyChanged()
	return inv, nil
}

func (c *Container) UpdateInvestment(ctx context.Context, inv core.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	i := indexByID(c.state.Investments, inv.ID, func(v core.Investment) string { return v.ID })
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	c.state.Investments[i] = inv
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertInvestment(ctx, inv)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

func (c *Container) RemoveInvestment(ctx context.Context, id string) error {
	c.mu.Lock()
	i := indexByID(c.state.Investments, id, func(v core.Investment) string { return v.ID })
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	c.state.Investments = append(c.state.Investments[:i], c.state.Investments[i+1:]...)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.DeleteInvestment(ctx, id)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

// --- members ---

func (c *Container) AddMember(ctx context.Context, m core.FamilyMember) (core.FamilyMember, error) {
	if m.ID == "" {
		m.ID = core.NewID()
	}
	if err := m.Validate(); err != nil {
		return core.FamilyMember{}, err
	}

	c.mu.Lock()
	c.state.Members = append(c.state.Members, m)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertMember(ctx, m)
	}); err != nil {
		return m, err
	}
	c.notifyChanged()
	return m, nil
}

func (c *Container) UpdateMember(ctx context.Context, m core.FamilyMember) error {
	if err := m.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	i := indexByID(c.state.Members, m.ID, func(v core.FamilyMember) string { return v.ID })
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	c.state.Members[i] = m
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertMember(ctx, m)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

func (c *Container) RemoveMember(ctx context.Context, id string) error {
	c.mu.Lock()
	i := indexByID(c.state.Members, id, func(v core.FamilyMember) string { return v.ID })
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	c.state.Members = append(c.state.Members[:i], c.state.Members[i+1:]...)
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.DeleteMember(ctx, id)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

// --- settings and alerts ---

func (c *Container) UpdateAppSettings(ctx context.Context, app core.AppSettings) error {
	c.mu.Lock()
	c.state.AppSettings = app
	alerts := c.state.AlertSettings
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.SaveSettings(ctx, app, alerts)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

func (c *Container) UpdateAlertSettings(ctx context.Context, alerts core.AlertSettings) error {
	c.mu.Lock()
	c.state.AlertSettings = alerts
	app := c.state.AppSettings
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.SaveSettings(ctx, app, alerts)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

// DismissAlert hides an alert id from future computations until cleared.
func (c *Container) DismissAlert(ctx context.Context, alertID string) error {
	c.mu.Lock()
	c.state.DismissedAlerts[alertID] = true
	c.mu.Unlock()

	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.SetAlertDismissed(ctx, alertID, true)
	}); err != nil {
		return err
	}
	c.notifyChanged()
	return nil
}

// ClearDismissedAlerts re-enables every previously dismissed alert.
func (c *Container) ClearDismissedAlerts(ctx context.Context) error {
	c.mu.Lock()
	ids := make([]string, 0, len(c.state.DismissedAlerts))
	for id := range c.state.DismissedAlerts {
		ids = append(ids, id)
	}
	c.state.DismissedAlerts = make(map[string]bool)
	c.mu.Unlock()

	for _, id := range ids {
		if err := c.persistEntity(ctx, func(es store.EntityStore) error {
			return es.SetAlertDismissed(ctx, id, false)
		}); err != nil {
			return err
		}
	}
	c.notifyChanged()
	return nil
}

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	for i, v := range items {
		if idOf(v) == id {
			return i
		}
	}
	return -1
}
