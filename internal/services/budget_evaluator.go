package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

// approachingThreshold is the fraction of the budget at which spending
// starts to signal "approaching".
const approachingThreshold = 0.8

// BudgetEvaluator compares a category's current-month spend against
// its active budget. Evaluation is advisory: it never errors and never
// blocks a mutation. With no budget configured it produces no signal.
type BudgetEvaluator struct {
	queries *storage.Queries
}

func NewBudgetEvaluator(queries *storage.Queries) *BudgetEvaluator {
	return &BudgetEvaluator{queries: queries}
}

// Evaluate sums the category's non-deleted spend within the calendar
// month of date and grades it against the most recently created budget
// row. The boolean reports whether a signal was produced.
func (b *BudgetEvaluator) Evaluate(ctx context.Context, category core.Category, date time.Time) (core.BudgetSignal, bool) {
	budget, err := b.queries.LatestBudget(ctx, category.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetSignal{}, false
	}
	if err != nil {
		slog.WarnContext(ctx, "Budget lookup failed, skipping evaluation",
			"category", category.Name, "error", err)
		return core.BudgetSignal{}, false
	}

	first, last := core.MonthBounds(date)
	total, err := b.queries.SumCategoryRange(ctx, category.ID, first, last)
	if err != nil {
		slog.WarnContext(ctx, "Month total failed, skipping evaluation",
			"category", category.Name, "error", err)
		return core.BudgetSignal{}, false
	}

	status := core.BudgetOK
	switch {
	case total >= budget.Amount:
		status = core.BudgetExceeded
	case total >= approachingThreshold*budget.Amount:
		status = core.BudgetApproaching
	}

	return core.BudgetSignal{
		Category: category.Name,
		Status:   status,
		Spent:    total,
		Limit:    budget.Amount,
		Currency: budget.Currency,
	}, true
}
