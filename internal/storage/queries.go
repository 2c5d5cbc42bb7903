package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"kharcha/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every query can
// run auto-committed or inside a caller-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns the query surface bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const timestampLayout = time.RFC3339

func formatDate(d time.Time) string      { return d.Format(core.DateLayout) }
func formatTimestamp(t time.Time) string { return t.UTC().Format(timestampLayout) }

func parseDate(s string) time.Time {
	d, _ := time.Parse(core.DateLayout, s)
	return d
}

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(timestampLayout, s)
	return t
}

// ---- categories ----

func (q *Queries) CreateCategory(ctx context.Context, name string, now time.Time) (core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, created_at) VALUES (?, ?) RETURNING id`,
		name, formatTimestamp(now))

	cat := core.Category{Name: name, CreatedAt: now}
	if err := row.Scan(&cat.ID); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

// GetCategoryByName looks a category up case-insensitively. Returns
// sql.ErrNoRows when no category matches.
func (q *Queries) GetCategoryByName(ctx context.Context, name string) (core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE name = ? COLLATE NOCASE`, name)
	return scanCategory(row)
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

func scanCategory(row *sql.Row) (core.Category, error) {
	var (
		cat       core.Category
		createdAt string
	)
	if err := row.Scan(&cat.ID, &cat.Name, &createdAt); err != nil {
		return core.Category{}, err
	}
	cat.CreatedAt = parseTimestamp(createdAt)
	return cat, nil
}

// ---- budgets ----

type CreateBudgetParams struct {
	CategoryID int64
	Amount     float64
	Currency   string
	CreatedAt  time.Time
}

func (q *Queries) CreateBudget(ctx context.Context, p CreateBudgetParams) (core.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO budgets (category_id, amount, currency, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		p.CategoryID, p.Amount, p.Currency, formatTimestamp(p.CreatedAt))

	b := core.Budget{CategoryID: p.CategoryID, Amount: p.Amount, Currency: p.Currency, CreatedAt: p.CreatedAt}
	if err := row.Scan(&b.ID); err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}

func (q *Queries) UpdateBudget(ctx context.Context, id int64, amount float64, currency string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE budgets SET amount = ?, currency = ? WHERE id = ?`, amount, currency, id)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return nil
}

// GetBudgetByCategory returns the oldest budget row for a category,
// the one the upsert path rewrites. Returns sql.ErrNoRows when the
// category has no budget.
func (q *Queries) GetBudgetByCategory(ctx context.Context, categoryID int64) (core.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, category_id, amount, currency, created_at FROM budgets
		 WHERE category_id = ? ORDER BY id LIMIT 1`, categoryID)
	return scanBudget(row)
}

// LatestBudget returns the most recently created budget row for a
// category; older rows are retained but inert. Returns sql.ErrNoRows
// when the category has no budget.
func (q *Queries) LatestBudget(ctx context.Context, categoryID int64) (core.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, category_id, amount, currency, created_at FROM budgets
		 WHERE category_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, categoryID)
	return scanBudget(row)
}

func scanBudget(row *sql.Row) (core.Budget, error) {
	var (
		b         core.Budget
		createdAt string
	)
	if err := row.Scan(&b.ID, &b.CategoryID, &b.Amount, &b.Currency, &createdAt); err != nil {
		return core.Budget{}, err
	}
	b.CreatedAt = parseTimestamp(createdAt)
	return b, nil
}

// ---- expenses ----

type CreateExpenseParams struct {
	Amount     float64
	Currency   string
	Note       string
	Date       time.Time
	CategoryID int64 // 0 for uncategorized
	CreatedAt  time.Time
}

func (q *Queries) CreateExpense(ctx context.Context, p CreateExpenseParams) (core.Expense, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO expenses (amount, currency, note, date, category_id, created_at, deleted)
		 VALUES (?, ?, ?, ?, ?, ?, 0) RETURNING id`,
		p.Amount, p.Currency, p.Note, formatDate(p.Date), nullableID(p.CategoryID), formatTimestamp(p.CreatedAt))

	e := core.Expense{
		Amount:     p.Amount,
		Currency:   p.Currency,
		Note:       p.Note,
		Date:       p.Date,
		CategoryID: p.CategoryID,
		CreatedAt:  p.CreatedAt,
	}
	if err := row.Scan(&e.ID); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

// GetExpense returns sql.ErrNoRows when the id is unknown.
func (q *Queries) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, amount, currency, note, date, category_id, created_at, deleted
		 FROM expenses WHERE id = ?`, id)

	var (
		e          core.Expense
		date       string
		categoryID sql.NullInt64
		createdAt  string
	)
	if err := row.Scan(&e.ID, &e.Amount, &e.Currency, &e.Note, &date, &categoryID, &createdAt, &e.Deleted); err != nil {
		return core.Expense{}, err
	}
	e.Date = parseDate(date)
	e.CategoryID = categoryID.Int64
	e.CreatedAt = parseTimestamp(createdAt)
	return e, nil
}

type UpdateExpenseParams struct {
	ID         int64
	Amount     float64
	Currency   string
	Note       string
	Date       time.Time
	CategoryID int64
}

func (q *Queries) UpdateExpense(ctx context.Context, p UpdateExpenseParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, currency = ?, note = ?, date = ?, category_id = ? WHERE id = ?`,
		p.Amount, p.Currency, p.Note, formatDate(p.Date), nullableID(p.CategoryID), p.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

func (q *Queries) SetExpenseDeleted(ctx context.Context, id int64, deleted bool) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE expenses SET deleted = ? WHERE id = ?`, deleted, id)
	if err != nil {
		return fmt.Errorf("set expense deleted: %w", err)
	}
	return nil
}

// DeleteExpense physically removes a row and reports how many rows
// were affected.
func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

// ---- audit trail ----

func (q *Queries) InsertAuditRecord(ctx context.Context, expenseID int64, action, snapshot string, ts time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO expense_history (expense_id, action, snapshot, timestamp) VALUES (?, ?, ?, ?)`,
		expenseID, action, snapshot, formatTimestamp(ts))
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (q *Queries) ListAuditRecords(ctx context.Context, expenseID int64) ([]core.AuditRecord, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, expense_id, action, snapshot, timestamp FROM expense_history
		 WHERE expense_id = ? ORDER BY id`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var records []core.AuditRecord
	for rows.Next() {
		var (
			r  core.AuditRecord
			ts string
		)
		if err := rows.Scan(&r.ID, &r.ExpenseID, &r.Action, &r.Snapshot, &ts); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		r.Timestamp = parseTimestamp(ts)
		records = append(records, r)
	}
	return records, rows.Err()
}

// ---- filtered listing ----

// ExpenseFilter narrows listings conjunctively. Keyword matches the
// stored note column, so callers must leave it empty when notes are
// stored encoded.
type ExpenseFilter struct {
	Keyword        string
	AmountMin      *float64
	AmountMax      *float64
	DateFrom       *time.Time
	DateTo         *time.Time
	CategoryID     *int64
	IncludeDeleted bool
}

func (f ExpenseFilter) where() (string, []any) {
	conds := []string{"1=1"}
	var args []any

	if !f.IncludeDeleted {
		conds = append(conds, "e.deleted = 0")
	}
	if f.Keyword != "" {
		conds = append(conds, "e.note LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(f.Keyword)+"%")
	}
	if f.AmountMin != nil {
		conds = append(conds, "e.amount >= ?")
		args = append(args, *f.AmountMin)
	}
	if f.AmountMax != nil {
		conds = append(conds, "e.amount <= ?")
		args = append(args, *f.AmountMax)
	}
	if f.DateFrom != nil {
		conds = append(conds, "e.date >= ?")
		args = append(args, formatDate(*f.DateFrom))
	}
	if f.DateTo != nil {
		conds = append(conds, "e.date <= ?")
		args = append(args, formatDate(*f.DateTo))
	}
	if f.CategoryID != nil {
		conds = append(conds, "e.category_id = ?")
		args = append(args, *f.CategoryID)
	}

	return strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (q *Queries) CountExpenses(ctx context.Context, f ExpenseFilter) (int, error) {
	where, args := f.where()
	var total int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses e WHERE `+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return total, nil
}

// ExpenseRow is an expense joined with its resolved category name,
// empty when uncategorized.
type ExpenseRow struct {
	core.Expense
	CategoryName string
}

type ListExpensesParams struct {
	Filter     ExpenseFilter
	SortBy     string // "date", "amount" or "id"
	Descending bool
	Limit      int
	Offset     int
}

func (q *Queries) ListExpenses(ctx context.Context, p ListExpensesParams) ([]ExpenseRow, error) {
	where, args := p.Filter.where()

	var sortCol string
	switch p.SortBy {
	case "amount":
		sortCol = "e.amount"
	case "id":
		sortCol = "e.id"
	default:
		sortCol = "e.date"
	}
	dir := "ASC"
	if p.Descending {
		dir = "DESC"
	}

	// Secondary id sort keeps pagination stable across equal keys.
	query := fmt.Sprintf(
		`SELECT e.id, e.amount, e.currency, e.note, e.date, e.category_id, e.created_at, e.deleted,
		        COALESCE(c.name, '') AS category_name
		 FROM expenses e LEFT JOIN categories c ON c.id = e.category_id
		 WHERE %s ORDER BY %s %s, e.id %s LIMIT ? OFFSET ?`,
		where, sortCol, dir, dir)
	args = append(args, p.Limit, p.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []ExpenseRow
	for rows.Next() {
		var (
			r          ExpenseRow
			date       string
			categoryID sql.NullInt64
			createdAt  string
		)
		if err := rows.Scan(&r.ID, &r.Amount, &r.Currency, &r.Note, &date, &categoryID, &createdAt, &r.Deleted, &r.CategoryName); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		r.Date = parseDate(date)
		r.CategoryID = categoryID.Int64
		r.CreatedAt = parseTimestamp(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ---- aggregates ----

// SumCategoryRange totals non-deleted expense amounts for a category
// between two inclusive dates.
func (q *Queries) SumCategoryRange(ctx context.Context, categoryID int64, from, to time.Time) (float64, error) {
	var total float64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses
		 WHERE category_id = ? AND deleted = 0 AND date >= ? AND date <= ?`,
		categoryID, formatDate(from), formatDate(to)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum category range: %w", err)
	}
	return total, nil
}

// SumRange totals non-deleted expense amounts between two inclusive
// dates across all categories.
func (q *Queries) SumRange(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses
		 WHERE deleted = 0 AND date >= ? AND date <= ?`,
		formatDate(from), formatDate(to)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum range: %w", err)
	}
	return total, nil
}

// DailyTotals returns per-day non-deleted totals between two inclusive
// dates. Days without expenses are absent; callers fill the gaps.
func (q *Queries) DailyTotals(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT date, SUM(amount) FROM expenses
		 WHERE deleted = 0 AND date >= ? AND date <= ?
		 GROUP BY date`, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var (
			date  string
			total float64
		)
		if err := rows.Scan(&date, &total); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		totals[date] = total
	}
	return totals, rows.Err()
}

// CategoryTotalsRange returns per-category non-deleted totals between
// two inclusive dates, ordered by category name.
func (q *Queries) CategoryTotalsRange(ctx context.Context, from, to time.Time) ([]core.CategoryTotal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT c.name, SUM(e.amount) FROM expenses e
		 JOIN categories c ON c.id = e.category_id
		 WHERE e.deleted = 0 AND e.date >= ? AND e.date <= ?
		 GROUP BY c.id ORDER BY c.name`, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var totals []core.CategoryTotal
	for rows.Next() {
		var t core.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
