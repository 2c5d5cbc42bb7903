// Package services implements the ledger engine: the expense
// repository and the registry, audit, budget, search and aggregation
// components it composes.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/notes"
	"kharcha/internal/storage"
)

// ExpenseService owns every mutation of the ledger. Each operation
// runs in a single transaction against the store; the audit append and
// the budget evaluation happen after commit, outside it.
type ExpenseService struct {
	store    *storage.Store
	registry *CategoryRegistry
	audit    *AuditLog
	budgets  *BudgetEvaluator
	cipher   notes.Cipher
	alerts   *amqp.Client
	currency string

	now func() time.Time
}

// NewExpenseService wires the engine together. cipher may be nil for
// plaintext notes; alerts may be nil to disable publishing.
func NewExpenseService(store *storage.Store, cipher notes.Cipher, alerts *amqp.Client, defaultCurrency string) *ExpenseService {
	if cipher == nil {
		cipher = notes.Identity{}
	}
	if defaultCurrency == "" {
		defaultCurrency = core.DefaultCurrency
	}

	queries := store.Queries()
	return &ExpenseService{
		store:    store,
		registry: NewCategoryRegistry(queries),
		audit:    NewAuditLog(queries),
		budgets:  NewBudgetEvaluator(queries),
		cipher:   cipher,
		alerts:   alerts,
		currency: defaultCurrency,
		now:      time.Now,
	}
}

// Close releases the store handle and the alert connection.
func (s *ExpenseService) Close() error {
	if s.alerts != nil {
		if err := s.alerts.Close(); err != nil {
			slog.Error("Failed to close alert publisher", "error", err)
		}
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

type CreateParams struct {
	Amount   float64
	Note     string
	Date     string // calendar date; empty or unparsable defaults to today
	Category string // resolved via the registry when non-empty
	Currency string // default currency when empty
}

type CreateResult struct {
	Expense core.Expense

	// DateDefaulted is set when the supplied date did not parse and
	// today's date was substituted. Warning only, never an error.
	DateDefaulted bool

	// Budget carries the advisory threshold signal for the expense's
	// category, nil when the category has no budget.
	Budget *core.BudgetSignal
}

// Create validates and persists a new expense, appends the audit
// record and evaluates the category budget.
func (s *ExpenseService) Create(ctx context.Context, p CreateParams) (CreateResult, error) {
	if err := core.ValidateAmount(p.Amount); err != nil {
		return CreateResult{}, err
	}

	var res CreateResult
	date := s.now()
	if strings.TrimSpace(p.Date) != "" {
		parsed, err := core.ParseDate(p.Date)
		if err != nil {
			res.DateDefaulted = true
			slog.WarnContext(ctx, "Invalid expense date, using today", "date", p.Date)
		} else {
			date = parsed
		}
	}

	stored, err := s.cipher.Encode(p.Note)
	if err != nil {
		return CreateResult{}, fmt.Errorf("encode note: %w", err)
	}

	currency := p.Currency
	if currency == "" {
		currency = s.currency
	}

	var (
		expense  core.Expense
		category core.Category
	)
	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		if strings.TrimSpace(p.Category) != "" {
			category, err = s.registry.GetOrCreate(ctx, q, p.Category)
			if err != nil {
				return err
			}
		}

		expense, err = q.CreateExpense(ctx, storage.CreateExpenseParams{
			Amount:     core.RoundAmount(p.Amount),
			Currency:   currency,
			Note:       stored,
			Date:       date,
			CategoryID: category.ID,
			CreatedAt:  s.now(),
		})
		return err
	})
	if err != nil {
		return CreateResult{}, fmt.Errorf("create expense: %w", err)
	}

	s.audit.Append(ctx, expense, core.ActionCreate)

	if category.ID != 0 {
		if sig, ok := s.budgets.Evaluate(ctx, category, expense.Date); ok {
			res.Budget = &sig
			if sig.Status != core.BudgetOK {
				s.publishAlert(ctx, sig)
			}
		}
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", expense.ID,
		"amount", expense.Amount,
		"category", category.Name,
		"date", expense.Date.Format(core.DateLayout))

	res.Expense = expense
	return res, nil
}

// UpdateParams holds the optional fields of an update. Nil / empty
// fields are left unchanged; an unparsable Date is skipped without
// failing the operation.
type UpdateParams struct {
	Amount   *float64
	Note     *string
	Date     string
	Category string
	Currency string
}

// Update applies the supplied fields to an expense. It reports whether
// anything changed; an unchanged expense is a no-op, not an error.
func (s *ExpenseService) Update(ctx context.Context, id int64, p UpdateParams) (bool, error) {
	var (
		updated core.Expense
		changed bool
	)
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		e, err := q.GetExpense(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load expense: %w", err)
		}

		if p.Amount != nil {
			if err := core.ValidateAmount(*p.Amount); err != nil {
				return err
			}
			e.Amount = core.RoundAmount(*p.Amount)
			changed = true
		}
		if p.Note != nil {
			stored, err := s.cipher.Encode(*p.Note)
			if err != nil {
				return fmt.Errorf("encode note: %w", err)
			}
			e.Note = stored
			changed = true
		}
		if strings.TrimSpace(p.Date) != "" {
			if d, err := core.ParseDate(p.Date); err == nil {
				e.Date = d
				changed = true
			} else {
				slog.WarnContext(ctx, "Invalid date ignored on update", "id", id, "date", p.Date)
			}
		}
		if strings.TrimSpace(p.Category) != "" {
			cat, err := s.registry.GetOrCreate(ctx, q, p.Category)
			if err != nil {
				return err
			}
			e.CategoryID = cat.ID
			changed = true
		}
		if p.Currency != "" {
			e.Currency = p.Currency
			changed = true
		}

		if !changed {
			return nil
		}

		updated = e
		return q.UpdateExpense(ctx, storage.UpdateExpenseParams{
			ID:         e.ID,
			Amount:     e.Amount,
			Currency:   e.Currency,
			Note:       e.Note,
			Date:       e.Date,
			CategoryID: e.CategoryID,
		})
	})
	if err != nil {
		return false, err
	}

	if changed {
		s.audit.Append(ctx, updated, core.ActionUpdate)
		slog.InfoContext(ctx, "Expense updated", "id", id)
	}
	return changed, nil
}

// SoftDelete marks an expense deleted, keeping the row and its audit
// linkage.
func (s *ExpenseService) SoftDelete(ctx context.Context, id int64) error {
	var deleted core.Expense
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		e, err := q.GetExpense(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load expense: %w", err)
		}

		if err := q.SetExpenseDeleted(ctx, id, true); err != nil {
			return err
		}
		e.Deleted = true
		deleted = e
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Append(ctx, deleted, core.ActionDelete)
	slog.InfoContext(ctx, "Expense soft-deleted", "id", id)
	return nil
}

// HardDelete physically removes a row. No audit record is written:
// earlier history for the id is left orphaned on purpose.
func (s *ExpenseService) HardDelete(ctx context.Context, id int64) error {
	affected, err := s.store.Queries().DeleteExpense(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense hard-deleted", "id", id)
	return nil
}

// SetBudget writes the monthly ceiling for a category, creating the
// category when needed. An existing budget row is rewritten in place.
func (s *ExpenseService) SetBudget(ctx context.Context, categoryName string, amount float64, currency string) (core.Budget, error) {
	if err := core.ValidateAmount(amount); err != nil {
		return core.Budget{}, err
	}
	if currency == "" {
		currency = s.currency
	}

	var budget core.Budget
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		cat, err := s.registry.GetOrCreate(ctx, q, categoryName)
		if err != nil {
			return err
		}

		existing, err := q.GetBudgetByCategory(ctx, cat.ID)
		if errors.Is(err, sql.ErrNoRows) {
			budget, err = q.CreateBudget(ctx, storage.CreateBudgetParams{
				CategoryID: cat.ID,
				Amount:     amount,
				Currency:   currency,
				CreatedAt:  s.now(),
			})
			return err
		}
		if err != nil {
			return fmt.Errorf("load budget: %w", err)
		}

		if err := q.UpdateBudget(ctx, existing.ID, amount, currency); err != nil {
			return err
		}
		budget = existing
		budget.Amount = amount
		budget.Currency = currency
		return nil
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget set",
		"category", categoryName, "amount", amount, "currency", currency)
	return budget, nil
}

func (s *ExpenseService) publishAlert(ctx context.Context, sig core.BudgetSignal) {
	if s.alerts == nil {
		return
	}
	// Best effort: the expense is already committed.
	if err := s.alerts.PublishBudgetAlert(ctx, sig); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget alert",
			"category", sig.Category, "status", sig.Status, "error", err)
	}
}
