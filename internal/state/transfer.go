package state

import (
	"context"
	"errors"

	"contas/internal/core"
	"contas/internal/store"

	"github.com/shopspring/decimal"
)

// ErrGoalAchieved is returned when money is added to a goal that already hit
// its target.
var ErrGoalAchieved = errors.New("goal already achieved")

// ReinforceGoal moves money into a goal and records the matching outflow. The
// goal update and the transaction land in the same locked section so readers
// never see one without the other.
func (c *Container) ReinforceGoal(ctx context.Context, goalID string, amount decimal.Decimal) (core.FutureGoal, error) {
	if !amount.IsPositive() {
		return core.FutureGoal{}, core.ErrInvalidAmount
	}

	c.mu.Lock()
	i := c.state.GoalByID(goalID)
	if i < 0 {
		c.mu.Unlock()
		return core.FutureGoal{}, ErrNotFound
	}
	if c.state.Goals[i].Achieved() {
		c.mu.Unlock()
		return core.FutureGoal{}, ErrGoalAchieved
	}

	c.state.Goals[i].CurrentAmount = c.state.Goals[i].CurrentAmount.Add(amount)
	c.state.Goals[i].IsAchieved = c.state.Goals[i].Achieved()
	goal := c.state.Goals[i]

	tx := core.Transaction{
		ID:          core.NewID(),
		Direction:   core.Outflow,
		Amount:      amount,
		Category:    goal.Category,
		Description: "Reinforce: " + goal.Name,
		Date:        c.now(),
	}
	c.state.Transactions = append(c.state.Transactions, tx)
	c.mu.Unlock()

	if err := c.persistTransfer(ctx, goal, tx); err != nil {
		return goal, err
	}
	c.notifyChanged()
	return goal, nil
}

// WithdrawGoal takes money back out of a goal, flooring the balance at zero,
// and records the matching inflow for the amount actually withdrawn.
func (c *Container) WithdrawGoal(ctx context.Context, goalID string, amount decimal.Decimal) (core.FutureGoal, error) {
	if !amount.IsPositive() {
		return core.FutureGoal{}, core.ErrInvalidAmount
	}

	c.mu.Lock()
	i := c.state.GoalByID(goalID)
	if i < 0 {
		c.mu.Unlock()
		return core.FutureGoal{}, ErrNotFound
	}

	withdrawn := amount
	if withdrawn.GreaterThan(c.state.Goals[i].CurrentAmount) {
		withdrawn = c.state.Goals[i].CurrentAmount
	}
	c.state.Goals[i].CurrentAmount = c.state.Goals[i].CurrentAmount.Sub(withdrawn)
	c.state.Goals[i].IsAchieved = c.state.Goals[i].Achieved()
	goal := c.state.Goals[i]

	if withdrawn.IsZero() {
		c.mu.Unlock()
		return goal, nil
	}

	tx := core.Transaction{
		ID:          core.NewID(),
		Direction:   core.Inflow,
		Amount:      withdrawn,
		Source:      core.SourceOther,
		Description: "Withdraw: " + goal.Name,
		Date:        c.now(),
	}
	c.state.Transactions = append(c.state.Transactions, tx)
	c.mu.Unlock()

	if err := c.persistTransfer(ctx, goal, tx); err != nil {
		return goal, err
	}
	c.notifyChanged()
	return goal, nil
}

func (c *Container) persistTransfer(ctx context.Context, goal core.FutureGoal, tx core.Transaction) error {
	if err := c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertGoal(ctx, goal)
	}); err != nil {
		return err
	}
	return c.persistEntity(ctx, func(es store.EntityStore) error {
		return es.UpsertTransaction(ctx, tx)
	})
}
