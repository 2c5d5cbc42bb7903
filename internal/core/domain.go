package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DateLayout is the calendar date format used everywhere: storage,
	// the operation surface and exported rows.
	DateLayout = "2006-01-02"

	DefaultCurrency = "INR"
)

// Audit actions recorded in expense_history.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type (
	// Category is a normalized expense category. Names are unique
	// case-insensitively and stored title-cased.
	Category struct {
		ID        int64
		Name      string
		CreatedAt time.Time
	}

	// Budget is a monthly spending ceiling for a category. Multiple
	// rows per category may exist; only the most recently created one
	// is consulted.
	Budget struct {
		ID         int64
		CategoryID int64
		Amount     float64
		Currency   string
		CreatedAt  time.Time
	}

	// Expense is a single ledger transaction. Note holds the stored
	// form, which may be encoded. CategoryID is 0 when the expense is
	// uncategorized. Deleted rows stay in the ledger but are excluded
	// from aggregates and default views.
	Expense struct {
		ID         int64
		Amount     float64
		Currency   string
		Note       string
		Date       time.Time
		CategoryID int64
		CreatedAt  time.Time
		Deleted    bool
	}

	// AuditRecord is one append-only entry of the mutation trail.
	AuditRecord struct {
		ID        int64
		ExpenseID int64
		Action    string
		Snapshot  string
		Timestamp time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("amount must be greater than 0")
	ErrNotFound      = errors.New("expense not found")
)

var titleCaser = cases.Title(language.Und)

// NormalizeCategory trims surrounding whitespace and title-cases a
// category name, so " food " and "FOOD" both resolve to "Food".
func NormalizeCategory(name string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(name)))
}

// RoundAmount rounds a monetary amount to 2 decimal places, the
// precision expenses are stored with.
func RoundAmount(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ValidateAmount rejects non-positive and non-finite amounts.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// MonthBounds returns the first and last calendar day of the month
// containing d.
func MonthBounds(d time.Time) (first, last time.Time) {
	first = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	last = first.AddDate(0, 1, -1)
	return first, last
}
