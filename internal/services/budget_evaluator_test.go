package services

import (
	"context"
	"testing"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

func TestBudgetSignalThresholds(t *testing.T) {
	tests := []struct {
		name   string
		budget float64
		amount float64
		want   core.BudgetStatus
	}{
		{"well under", 100, 50, core.BudgetOK},
		{"just under threshold", 100, 79, core.BudgetOK},
		{"at threshold", 100, 80, core.BudgetApproaching},
		{"between", 100, 99, core.BudgetApproaching},
		{"at limit", 100, 100, core.BudgetExceeded},
		{"over limit", 100, 120, core.BudgetExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			ctx := context.Background()

			if _, err := svc.SetBudget(ctx, "Food", tt.budget, "INR"); err != nil {
				t.Fatalf("SetBudget: %v", err)
			}
			res := mustCreate(t, svc, CreateParams{Amount: tt.amount, Date: "2024-06-10", Category: "Food"})
			if res.Budget == nil {
				t.Fatal("expected a budget signal")
			}
			if res.Budget.Status != tt.want {
				t.Errorf("status = %s, want %s", res.Budget.Status, tt.want)
			}
			if res.Budget.Spent != tt.amount || res.Budget.Limit != tt.budget {
				t.Errorf("signal = %+v", res.Budget)
			}
		})
	}
}

func TestBudgetSignalAccumulatesOverMonth(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SetBudget(ctx, "Food", 500, "INR"); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}

	res := mustCreate(t, svc, CreateParams{Amount: 100, Date: "2024-06-05", Category: "Food"})
	if res.Budget.Status != core.BudgetOK {
		t.Errorf("after 100: %s, want ok", res.Budget.Status)
	}
	res = mustCreate(t, svc, CreateParams{Amount: 150, Date: "2024-06-12", Category: "Food"})
	if res.Budget.Status != core.BudgetOK {
		t.Errorf("after 250: %s, want ok", res.Budget.Status)
	}
	res = mustCreate(t, svc, CreateParams{Amount: 200, Date: "2024-06-20", Category: "Food"})
	if res.Budget.Status != core.BudgetApproaching {
		t.Errorf("after 450: %s, want approaching", res.Budget.Status)
	}
	res = mustCreate(t, svc, CreateParams{Amount: 100, Date: "2024-06-25", Category: "Food"})
	if res.Budget.Status != core.BudgetExceeded {
		t.Errorf("after 550: %s, want exceeded", res.Budget.Status)
	}

	// A new month starts a fresh window.
	res = mustCreate(t, svc, CreateParams{Amount: 60, Date: "2024-07-01", Category: "Food"})
	if res.Budget.Status != core.BudgetOK {
		t.Errorf("july: %s, want ok", res.Budget.Status)
	}
	if res.Budget.Spent != 60 {
		t.Errorf("july spent = %v, want 60", res.Budget.Spent)
	}
}

func TestBudgetSignalAbsentWithoutBudgetOrCategory(t *testing.T) {
	svc := newTestService(t)

	res := mustCreate(t, svc, CreateParams{Amount: 100, Date: "2024-06-10", Category: "Food"})
	if res.Budget != nil {
		t.Errorf("no budget configured, signal = %+v", res.Budget)
	}

	res = mustCreate(t, svc, CreateParams{Amount: 100, Date: "2024-06-10"})
	if res.Budget != nil {
		t.Errorf("uncategorized expense, signal = %+v", res.Budget)
	}
}

func TestBudgetEvaluatorPrefersNewestRow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	budget, err := svc.SetBudget(ctx, "Food", 100, "INR")
	if err != nil {
		t.Fatalf("SetBudget: %v", err)
	}

	// A second row for the same category with a later created_at wins.
	_, err = svc.store.Queries().CreateBudget(ctx, storage.CreateBudgetParams{
		CategoryID: budget.CategoryID,
		Amount:     1000,
		Currency:   "INR",
		CreatedAt:  time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	res := mustCreate(t, svc, CreateParams{Amount: 150, Date: "2024-06-10", Category: "Food"})
	if res.Budget == nil {
		t.Fatal("expected a budget signal")
	}
	if res.Budget.Limit != 1000 || res.Budget.Status != core.BudgetOK {
		t.Errorf("signal = %+v, want limit 1000 and status ok", res.Budget)
	}
}
