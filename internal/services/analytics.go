package services

import (
	"context"
	"fmt"
	"time"

	"kharcha/internal/core"
)

// Trend returns daily non-deleted totals for the periodDays calendar
// days ending today, inclusive. Days without expenses appear with a
// zero total, so the series is never sparse and its length always
// equals periodDays.
func (s *ExpenseService) Trend(ctx context.Context, periodDays int) ([]core.TrendPoint, error) {
	if periodDays <= 0 {
		return nil, nil
	}

	today := s.now()
	start := today.AddDate(0, 0, -(periodDays - 1))

	totals, err := s.store.Queries().DailyTotals(ctx, start, today)
	if err != nil {
		return nil, fmt.Errorf("spending trend: %w", err)
	}

	series := make([]core.TrendPoint, 0, periodDays)
	for i := 0; i < periodDays; i++ {
		d := start.AddDate(0, 0, i).Format(core.DateLayout)
		series = append(series, core.TrendPoint{Date: d, Total: totals[d]})
	}
	return series, nil
}

// MonthlyCategoryTotals sums non-deleted expenses per category within
// the given month, ordered by category name.
func (s *ExpenseService) MonthlyCategoryTotals(ctx context.Context, year int, month time.Month) ([]core.CategoryTotal, error) {
	first, last := core.MonthBounds(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))

	totals, err := s.store.Queries().CategoryTotalsRange(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("monthly category totals: %w", err)
	}
	return totals, nil
}

// MonthTotal sums non-deleted expenses from the first of the current
// month through today.
func (s *ExpenseService) MonthTotal(ctx context.Context) (float64, error) {
	today := s.now()
	first, _ := core.MonthBounds(today)

	total, err := s.store.Queries().SumRange(ctx, first, today)
	if err != nil {
		return 0, fmt.Errorf("month total: %w", err)
	}
	return total, nil
}
