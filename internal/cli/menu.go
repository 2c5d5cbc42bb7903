package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"kharcha/internal/config"
	"kharcha/internal/core"
	"kharcha/internal/export"
	"kharcha/internal/log"
	"kharcha/internal/services"
)

// Menu is the interactive shell around the expense service.
type Menu struct {
	svc    *services.ExpenseService
	cfg    *config.Config
	logger *log.Logger
	in     *bufio.Scanner
	out    io.Writer
}

// NewMenu builds a menu reading from stdin and writing to stdout.
func NewMenu(svc *services.ExpenseService, cfg *config.Config, logger *log.Logger) *Menu {
	return &Menu{
		svc:    svc,
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentCLI),
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
	}
}

// Run loops over the main menu until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) {
	for {
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, "=== Kharcha ===")
		fmt.Fprintln(m.out, " 1. Add expense")
		fmt.Fprintln(m.out, " 2. View expenses")
		fmt.Fprintln(m.out, " 3. Delete expense")
		fmt.Fprintln(m.out, " 4. Update expense")
		fmt.Fprintln(m.out, " 5. Monthly total")
		fmt.Fprintln(m.out, " 6. Monthly category breakdown")
		fmt.Fprintln(m.out, " 7. Filter by category")
		fmt.Fprintln(m.out, " 8. Filter by date")
		fmt.Fprintln(m.out, " 9. Search")
		fmt.Fprintln(m.out, "10. Set category budget")
		fmt.Fprintln(m.out, "11. Spending trend")
		fmt.Fprintln(m.out, "12. Export trend chart")
		fmt.Fprintln(m.out, "13. Exit")

		choice, ok := m.prompt("Choose")
		if !ok {
			return
		}
		switch strings.TrimSpace(choice) {
		case "1":
			m.addExpense(ctx)
		case "2":
			m.viewExpenses(ctx)
		case "3":
			m.deleteExpense(ctx)
		case "4":
			m.updateExpense(ctx)
		case "5":
			m.monthTotal(ctx)
		case "6":
			m.monthlyBreakdown(ctx)
		case "7":
			m.filterByCategory(ctx)
		case "8":
			m.filterByDate(ctx)
		case "9":
			m.search(ctx)
		case "10":
			m.setBudget(ctx)
		case "11":
			m.trend(ctx)
		case "12":
			m.exportTrendChart(ctx)
		case "13":
			return
		default:
			fmt.Fprintln(m.out, "Unknown choice")
		}
	}
}

func (m *Menu) addExpense(ctx context.Context) {
	amount, ok := m.promptFloat("Amount")
	if !ok {
		fmt.Fprintln(m.out, "Invalid amount value")
		return
	}
	currency, _ := m.prompt("Currency (blank for " + m.cfg.DefaultCurrency + ")")
	category, _ := m.prompt("Category (blank for none)")
	date, _ := m.prompt("Date YYYY-MM-DD (blank for today)")
	note, _ := m.prompt("Note")

	res, err := m.svc.Create(ctx, services.CreateParams{
		Amount:   amount,
		Currency: strings.TrimSpace(currency),
		Category: category,
		Date:     strings.TrimSpace(date),
		Note:     note,
	})
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			fmt.Fprintln(m.out, "Amount must be greater than 0")
			return
		}
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	if res.DateDefaulted {
		fmt.Fprintln(m.out, "Invalid date format, using today")
	}
	fmt.Fprintf(m.out, "Expense saved (id: %d)\n", res.Expense.ID)

	if sig := res.Budget; sig != nil {
		switch sig.Status {
		case core.BudgetExceeded:
			fmt.Fprintf(m.out, "Budget exceeded for %s (budget %.2f %s)\n", sig.Category, sig.Limit, sig.Currency)
		case core.BudgetApproaching:
			fmt.Fprintf(m.out, "Approaching budget for %s: %.2f / %.2f\n", sig.Category, sig.Spent, sig.Limit)
		}
	}
}

func (m *Menu) viewExpenses(ctx context.Context) {
	page := m.promptIntDefault("Page", 1)
	sortBy, _ := m.prompt("Sort by (date/amount/id, blank for date)")
	descAnswer, _ := m.prompt("Newest first? (y/n, blank for y)")
	includeDeleted, _ := m.prompt("Include deleted? (y/n, blank for n)")

	res, err := m.svc.View(ctx, services.ViewParams{
		Page:           page,
		PerPage:        m.cfg.PageSize,
		SortBy:         strings.TrimSpace(sortBy),
		Descending:     !strings.EqualFold(strings.TrimSpace(descAnswer), "n"),
		IncludeDeleted: strings.EqualFold(strings.TrimSpace(includeDeleted), "y"),
	})
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	m.printPage(res)
}

func (m *Menu) deleteExpense(ctx context.Context) {
	id, ok := m.promptInt("Expense ID")
	if !ok {
		fmt.Fprintln(m.out, "Invalid ID")
		return
	}
	hard, _ := m.prompt("Hard delete? (y/n, blank for n)")

	var err error
	if strings.EqualFold(strings.TrimSpace(hard), "y") {
		err = m.svc.HardDelete(ctx, id)
	} else {
		err = m.svc.SoftDelete(ctx, id)
	}
	switch {
	case errors.Is(err, core.ErrNotFound):
		fmt.Fprintln(m.out, "ID not found")
	case err != nil:
		fmt.Fprintf(m.out, "Error: %v\n", err)
	default:
		fmt.Fprintf(m.out, "Deleted ID %d\n", id)
	}
}

func (m *Menu) updateExpense(ctx context.Context) {
	id, ok := m.promptInt("Expense ID")
	if !ok {
		fmt.Fprintln(m.out, "Invalid ID")
		return
	}

	var p services.UpdateParams
	if raw, _ := m.prompt("New amount (blank to keep)"); strings.TrimSpace(raw) != "" {
		amount, err := core.ParseAmount(raw)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid amount value")
			return
		}
		p.Amount = &amount
	}
	if raw, _ := m.prompt("New note (blank to keep)"); raw != "" {
		p.Note = &raw
	}
	date, _ := m.prompt("New date YYYY-MM-DD (blank to keep)")
	p.Date = strings.TrimSpace(date)
	category, _ := m.prompt("New category (blank to keep)")
	p.Category = category
	currency, _ := m.prompt("New currency (blank to keep)")
	p.Currency = strings.TrimSpace(currency)

	changed, err := m.svc.Update(ctx, id, p)
	switch {
	case errors.Is(err, core.ErrNotFound):
		fmt.Fprintln(m.out, "ID not found")
	case errors.Is(err, core.ErrInvalidAmount):
		fmt.Fprintln(m.out, "Amount must be greater than 0")
	case err != nil:
		fmt.Fprintf(m.out, "Error: %v\n", err)
	case changed:
		fmt.Fprintln(m.out, "Updated")
	default:
		fmt.Fprintln(m.out, "No changes made")
	}
}

func (m *Menu) monthTotal(ctx context.Context) {
	total, err := m.svc.MonthTotal(ctx)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Total this month: %.2f %s\n", total, m.cfg.DefaultCurrency)
}

func (m *Menu) monthlyBreakdown(ctx context.Context) {
	now := time.Now()
	totals, err := m.svc.MonthlyCategoryTotals(ctx, now.Year(), now.Month())
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	if len(totals) == 0 {
		fmt.Fprintln(m.out, "No items")
		return
	}

	w := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTOTAL")
	var sum float64
	for _, t := range totals {
		fmt.Fprintf(w, "%s\t%.2f\n", t.Category, t.Total)
		sum += t.Total
	}
	w.Flush()
	fmt.Fprintf(m.out, "Total all categories: %.2f %s\n", sum, m.cfg.DefaultCurrency)
}

func (m *Menu) filterByCategory(ctx context.Context) {
	category, ok := m.prompt("Category")
	if !ok || strings.TrimSpace(category) == "" {
		return
	}
	res, err := m.svc.Search(ctx, services.SearchFilter{
		Category: category,
		Page:     1,
		PerPage:  m.cfg.PageSize,
	})
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	m.printPage(res)
}

func (m *Menu) filterByDate(ctx context.Context) {
	date, ok := m.prompt("Date YYYY-MM-DD")
	if !ok {
		return
	}
	date = strings.TrimSpace(date)
	if _, err := core.ParseDate(date); err != nil {
		fmt.Fprintln(m.out, "Invalid date")
		return
	}
	res, err := m.svc.Search(ctx, services.SearchFilter{
		DateFrom: date,
		DateTo:   date,
		Page:     1,
		PerPage:  m.cfg.PageSize,
	})
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	if res.Total == 0 {
		fmt.Fprintln(m.out, "No items on that date")
		return
	}
	m.printPage(res)
}

func (m *Menu) search(ctx context.Context) {
	f := services.SearchFilter{Page: 1, PerPage: m.cfg.PageSize}
	keyword, _ := m.prompt("Keyword in note (blank to skip)")
	f.Keyword = strings.TrimSpace(keyword)
	if raw, _ := m.prompt("Min amount (blank to skip)"); strings.TrimSpace(raw) != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			f.AmountMin = &v
		}
	}
	if raw, _ := m.prompt("Max amount (blank to skip)"); strings.TrimSpace(raw) != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			f.AmountMax = &v
		}
	}
	from, _ := m.prompt("From date YYYY-MM-DD (blank to skip)")
	f.DateFrom = strings.TrimSpace(from)
	to, _ := m.prompt("To date YYYY-MM-DD (blank to skip)")
	f.DateTo = strings.TrimSpace(to)
	category, _ := m.prompt("Category (blank to skip)")
	f.Category = category
	f.Page = m.promptIntDefault("Page", 1)

	res, err := m.svc.Search(ctx, f)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	if res.NoteSearchDisabled {
		fmt.Fprintln(m.out, "Note searching disabled when notes are encrypted.")
	}
	if res.Total == 0 {
		fmt.Fprintln(m.out, "No results")
		return
	}
	m.printPage(res)
}

func (m *Menu) setBudget(ctx context.Context) {
	category, ok := m.prompt("Category")
	if !ok || strings.TrimSpace(category) == "" {
		return
	}
	amount, ok := m.promptFloat("Monthly budget amount")
	if !ok {
		fmt.Fprintln(m.out, "Invalid amount")
		return
	}
	currency, _ := m.prompt("Currency (blank for " + m.cfg.DefaultCurrency + ")")

	budget, err := m.svc.SetBudget(ctx, category, amount, strings.TrimSpace(currency))
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			fmt.Fprintln(m.out, "Invalid amount")
			return
		}
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Budget set: %.2f %s\n", budget.Amount, budget.Currency)
}

func (m *Menu) trend(ctx context.Context) {
	days := m.promptIntDefault("Days", 30)
	points, err := m.svc.Trend(ctx, days)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}

	w := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTOTAL")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%.2f\n", p.Date, p.Total)
	}
	w.Flush()
}

func (m *Menu) exportTrendChart(ctx context.Context) {
	days := m.promptIntDefault("Days", 30)
	points, err := m.svc.Trend(ctx, days)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}

	data, err := export.TrendChart(points, m.cfg.DefaultCurrency)
	if err != nil {
		fmt.Fprintf(m.out, "Failed to render chart: %v\n", err)
		return
	}
	if data == nil {
		fmt.Fprintln(m.out, "Not enough data to chart")
		return
	}

	name := filepath.Join(os.TempDir(), fmt.Sprintf("kharcha-trend-%s.png", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(name, data, 0o644); err != nil {
		fmt.Fprintf(m.out, "Failed to save chart: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Chart saved to %s\n", name)
}

func (m *Menu) printPage(res core.PagedResult) {
	if len(res.Items) == 0 {
		fmt.Fprintln(m.out, "No items")
		return
	}

	w := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAMOUNT\tCURRENCY\tCATEGORY\tDATE\tNOTE")
	for _, row := range res.Items {
		note := row.Note
		if row.Deleted {
			note += " (deleted)"
		}
		fmt.Fprintf(w, "%d\t%.2f\t%s\t%s\t%s\t%s\n",
			row.ID, row.Amount, row.Currency, row.Category, row.Date, note)
	}
	w.Flush()
	fmt.Fprintf(m.out, "Page %d/%d, total %d\n", res.Page, res.Pages, res.Total)
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprintf(m.out, "%s: ", label)
	if !m.in.Scan() {
		return "", false
	}
	return m.in.Text(), true
}

func (m *Menu) promptFloat(label string) (float64, bool) {
	raw, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	v, err := core.ParseAmount(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (m *Menu) promptInt(label string) (int64, bool) {
	raw, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (m *Menu) promptIntDefault(label string, def int) int {
	raw, ok := m.prompt(fmt.Sprintf("%s (blank for %d)", label, def))
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		return def
	}
	return v
}
