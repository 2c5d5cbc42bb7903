package core

// Row is the denormalized shape every view, search and exporter
// consumes: resolved category name (empty when uncategorized),
// ISO-8601 date string, decoded note.
type Row struct {
	ID       int64   `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Note     string  `json:"note"`
	Deleted  bool    `json:"deleted,omitempty"`
}

// PagedResult is one page of a filtered or unfiltered listing.
type PagedResult struct {
	Total   int   `json:"total"`
	Pages   int   `json:"pages"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Items   []Row `json:"items"`

	// NoteSearchDisabled is set when a keyword filter was requested
	// while notes are stored encoded, so substring matching was
	// skipped. Advisory only.
	NoteSearchDisabled bool `json:"note_search_disabled,omitempty"`
}

// PageCount returns ceil(total/perPage), or 1 when perPage is not a
// positive number.
func PageCount(total, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

type (
	// TrendPoint is one day of the spending trend series.
	TrendPoint struct {
		Date  string
		Total float64
	}

	// CategoryTotal is one category's aggregated spend.
	CategoryTotal struct {
		Category string
		Total    float64
	}
)

// BudgetStatus is the advisory outcome of a budget evaluation.
type BudgetStatus string

const (
	BudgetOK          BudgetStatus = "ok"
	BudgetApproaching BudgetStatus = "approaching"
	BudgetExceeded    BudgetStatus = "exceeded"
)

// BudgetSignal reports the current-month spend of a category against
// its active budget. It informs the caller without ever blocking a
// mutation.
type BudgetSignal struct {
	Category string
	Status   BudgetStatus
	Spent    float64
	Limit    float64
	Currency string
}
