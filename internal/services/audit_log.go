package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

// AuditLog appends one record per expense mutation to the append-only
// trail. Appends run on their own connection, outside the primary
// operation's transaction: losing an audit record is acceptable,
// losing a valid mutation because the audit write failed is not.
type AuditLog struct {
	queries *storage.Queries
}

func NewAuditLog(queries *storage.Queries) *AuditLog {
	return &AuditLog{queries: queries}
}

// expenseSnapshot is the serialized field-by-field copy stored with
// each audit record. Note holds the stored (possibly encoded) form.
type expenseSnapshot struct {
	ID         int64   `json:"id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Note       string  `json:"note"`
	Date       string  `json:"date"`
	CategoryID *int64  `json:"category_id"`
	Deleted    bool    `json:"deleted"`
	CreatedAt  string  `json:"created_at"`
}

// Append records the expense's current state under the given action.
// Failures are logged and swallowed; they never propagate to the
// primary operation.
func (a *AuditLog) Append(ctx context.Context, e core.Expense, action string) {
	snap := expenseSnapshot{
		ID:        e.ID,
		Amount:    e.Amount,
		Currency:  e.Currency,
		Note:      e.Note,
		Date:      e.Date.Format(core.DateLayout),
		Deleted:   e.Deleted,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.CategoryID != 0 {
		snap.CategoryID = &e.CategoryID
	}

	body, err := json.Marshal(snap)
	if err != nil {
		slog.WarnContext(ctx, "Audit snapshot serialization failed",
			"expense_id", e.ID, "action", action, "error", err)
		return
	}

	if err := a.queries.InsertAuditRecord(ctx, e.ID, action, string(body), time.Now()); err != nil {
		slog.WarnContext(ctx, "Audit append failed, primary operation unaffected",
			"expense_id", e.ID, "action", action, "error", err)
	}
}
