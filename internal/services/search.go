package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

// SearchFilter narrows the ledger conjunctively. Zero values mean
// "not filtered". Amount bounds are inclusive; date bounds are parsed
// independently and an unparsable bound is ignored rather than
// rejecting the query.
type SearchFilter struct {
	Keyword   string
	AmountMin *float64
	AmountMax *float64
	DateFrom  string
	DateTo    string
	Category  string
	Page      int
	PerPage   int
}

// Search returns one page of non-deleted expenses matching the filter,
// ordered by id. Keyword matching is disabled (with an advisory flag)
// while notes are stored encoded, since substring matching against
// ciphertext is meaningless. An unknown category yields an empty page,
// not an unfiltered one.
func (s *ExpenseService) Search(ctx context.Context, f SearchFilter) (core.PagedResult, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	res := core.PagedResult{Page: page, PerPage: f.PerPage, Items: []core.Row{}}

	filter := storage.ExpenseFilter{
		AmountMin: f.AmountMin,
		AmountMax: f.AmountMax,
	}

	if f.Keyword != "" {
		if s.cipher.Enabled() {
			res.NoteSearchDisabled = true
			slog.WarnContext(ctx, "Note search disabled while notes are stored encrypted")
		} else {
			filter.Keyword = f.Keyword
		}
	}

	if strings.TrimSpace(f.DateFrom) != "" {
		if d, err := core.ParseDate(f.DateFrom); err == nil {
			filter.DateFrom = &d
		}
	}
	if strings.TrimSpace(f.DateTo) != "" {
		if d, err := core.ParseDate(f.DateTo); err == nil {
			filter.DateTo = &d
		}
	}

	if strings.TrimSpace(f.Category) != "" {
		cat, found, err := s.registry.Find(ctx, f.Category)
		if err != nil {
			return core.PagedResult{}, err
		}
		if !found {
			return res, nil
		}
		filter.CategoryID = &cat.ID
	}

	return s.paginate(ctx, filter, page, f.PerPage, "id", false, res)
}

// ViewParams selects one page of the unfiltered ledger.
type ViewParams struct {
	Page           int
	PerPage        int
	SortBy         string // "date", "amount" or "id"
	Descending     bool
	IncludeDeleted bool
}

// View returns one page of the ledger with an explicit sort key and
// direction. Deleted rows are excluded unless opted in.
func (s *ExpenseService) View(ctx context.Context, p ViewParams) (core.PagedResult, error) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	sortBy := p.SortBy
	switch sortBy {
	case "date", "amount", "id":
	default:
		sortBy = "date"
	}

	res := core.PagedResult{Page: page, PerPage: p.PerPage, Items: []core.Row{}}
	filter := storage.ExpenseFilter{IncludeDeleted: p.IncludeDeleted}
	return s.paginate(ctx, filter, page, p.PerPage, sortBy, p.Descending, res)
}

func (s *ExpenseService) paginate(ctx context.Context, filter storage.ExpenseFilter, page, perPage int, sortBy string, descending bool, res core.PagedResult) (core.PagedResult, error) {
	queries := s.store.Queries()

	total, err := queries.CountExpenses(ctx, filter)
	if err != nil {
		return core.PagedResult{}, fmt.Errorf("count expenses: %w", err)
	}
	res.Total = total
	res.Pages = core.PageCount(total, perPage)

	if perPage <= 0 {
		return res, nil
	}

	rows, err := queries.ListExpenses(ctx, storage.ListExpensesParams{
		Filter:     filter,
		SortBy:     sortBy,
		Descending: descending,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	})
	if err != nil {
		return core.PagedResult{}, fmt.Errorf("list expenses: %w", err)
	}

	for _, r := range rows {
		res.Items = append(res.Items, s.toRow(r))
	}
	return res, nil
}

// toRow denormalizes an expense for views and exporters: resolved
// category name, ISO date, decoded note.
func (s *ExpenseService) toRow(r storage.ExpenseRow) core.Row {
	return core.Row{
		ID:       r.ID,
		Amount:   r.Amount,
		Currency: r.Currency,
		Category: r.CategoryName,
		Date:     r.Date.Format(core.DateLayout),
		Note:     s.cipher.Decode(r.Note),
		Deleted:  r.Deleted,
	}
}
