package services

import (
	"context"
	"testing"
	"time"

	"kharcha/internal/core"
)

func TestTrendIsDenseAndContiguous(t *testing.T) {
	svc := newTestService(t)
	fixNow(svc, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	mustCreate(t, svc, CreateParams{Amount: 10, Date: "2024-06-15"})
	mustCreate(t, svc, CreateParams{Amount: 20, Date: "2024-06-13"})
	mustCreate(t, svc, CreateParams{Amount: 5, Date: "2024-06-13"})
	// Outside the window.
	mustCreate(t, svc, CreateParams{Amount: 999, Date: "2024-06-01"})

	points, err := svc.Trend(ctx, 7)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if len(points) != 7 {
		t.Fatalf("points = %d, want 7", len(points))
	}

	// One entry per day, oldest first, ending today, zero-filled gaps.
	start := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	for i, p := range points {
		wantDate := start.AddDate(0, 0, i).Format(core.DateLayout)
		if p.Date != wantDate {
			t.Errorf("points[%d].Date = %s, want %s", i, p.Date, wantDate)
		}
	}
	byDate := map[string]float64{}
	for _, p := range points {
		byDate[p.Date] = p.Total
	}
	if byDate["2024-06-13"] != 25 {
		t.Errorf("2024-06-13 = %v, want 25", byDate["2024-06-13"])
	}
	if byDate["2024-06-15"] != 10 {
		t.Errorf("2024-06-15 = %v, want 10", byDate["2024-06-15"])
	}
	if byDate["2024-06-14"] != 0 {
		t.Errorf("2024-06-14 = %v, want 0", byDate["2024-06-14"])
	}

	points, err = svc.Trend(ctx, 0)
	if err != nil {
		t.Fatalf("Trend(0): %v", err)
	}
	if points != nil {
		t.Errorf("Trend(0) = %v, want nil", points)
	}
}

func TestMonthlyCategoryTotalsOrderedByName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, CreateParams{Amount: 500, Date: "2024-06-10", Category: "Travel"})
	mustCreate(t, svc, CreateParams{Amount: 100, Date: "2024-06-11", Category: "Food"})
	mustCreate(t, svc, CreateParams{Amount: 50, Date: "2024-06-12", Category: "Food"})
	// Other months do not count.
	mustCreate(t, svc, CreateParams{Amount: 77, Date: "2024-05-31", Category: "Food"})
	mustCreate(t, svc, CreateParams{Amount: 77, Date: "2024-07-01", Category: "Food"})

	totals, err := svc.MonthlyCategoryTotals(ctx, 2024, time.June)
	if err != nil {
		t.Fatalf("MonthlyCategoryTotals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("totals = %+v, want 2 rows", totals)
	}
	if totals[0].Category != "Food" || totals[0].Total != 150 {
		t.Errorf("totals[0] = %+v, want {Food 150}", totals[0])
	}
	if totals[1].Category != "Travel" || totals[1].Total != 500 {
		t.Errorf("totals[1] = %+v, want {Travel 500}", totals[1])
	}
}

func TestMonthTotal(t *testing.T) {
	svc := newTestService(t)
	fixNow(svc, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	mustCreate(t, svc, CreateParams{Amount: 100, Date: "2024-06-01"})
	mustCreate(t, svc, CreateParams{Amount: 40.5, Date: "2024-06-15"})
	mustCreate(t, svc, CreateParams{Amount: 999, Date: "2024-05-20"})

	total, err := svc.MonthTotal(ctx)
	if err != nil {
		t.Fatalf("MonthTotal: %v", err)
	}
	if total != 140.5 {
		t.Errorf("total = %v, want 140.5", total)
	}
}
