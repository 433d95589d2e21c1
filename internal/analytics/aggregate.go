// Package analytics derives dashboard views from a ledger snapshot. Every
// view is a pure function over the snapshot plus an optional date cutoff;
// nothing here is cached or persisted, each query recomputes from scratch.
package analytics

import (
	"sort"
	"time"

	"spendtrack/internal/core"
)

// Snapshot is the ledger state a query computes over. Readers load it once
// per query so all four views observe the same data.
type Snapshot struct {
	Expenses []core.Expense
	Projects []core.Project
	Users    []core.User
}

type (
	// BudgetVsSpentRow compares a project budget against its approved spend.
	BudgetVsSpentRow struct {
		Project string `json:"project"`
		Budget  int64  `json:"budget"`
		Spent   int64  `json:"spent"`
	}

	// CategoryAmount is approved spend aggregated by expense category.
	CategoryAmount struct {
		CategoryName string `json:"categoryName"`
		Amount       int64  `json:"amount"`
	}

	// EmployeeAmount is approved spend aggregated by submitting employee.
	EmployeeAmount struct {
		Employee string `json:"employee"`
		Amount   int64  `json:"amount"`
	}

	// MonthlyTrendRow is one calendar month of approved spend, bucketed by
	// the fixed set of trend lines the dashboard charts.
	MonthlyTrendRow struct {
		Month     string `json:"month"`
		Equipment int64  `json:"equipment"`
		Labor     int64  `json:"labor"`
		Transport int64  `json:"transport"`
	}
)

// approvedSince yields approved expenses at or after the cutoff. A zero
// cutoff means unrestricted history. Pending and rejected expenses never
// count toward any aggregate.
func approvedSince(expenses []core.Expense, cutoff time.Time) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Status() != core.StatusApproved {
			continue
		}
		if !cutoff.IsZero() && e.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// BudgetVsSpent reports, per project, the budget and the sum of approved
// expenses. Rows keep the snapshot's project order. Expenses referencing a
// project missing from the snapshot are silently excluded rather than
// failing the whole view.
func BudgetVsSpent(snap Snapshot, cutoff time.Time) []BudgetVsSpentRow {
	spent := make(map[int64]int64, len(snap.Projects))
	known := make(map[int64]bool, len(snap.Projects))
	for _, p := range snap.Projects {
		known[p.ID] = true
	}
	for _, e := range approvedSince(snap.Expenses, cutoff) {
		if !known[e.ProjectID] {
			continue
		}
		spent[e.ProjectID] += e.Amount.Cents
	}

	rows := make([]BudgetVsSpentRow, 0, len(snap.Projects))
	for _, p := range snap.Projects {
		rows = append(rows, BudgetVsSpentRow{
			Project: p.Name,
			Budget:  p.Budget.Cents,
			Spent:   spent[p.ID],
		})
	}
	return rows
}

// Utilization is the percentage of budget consumed, rounded half away from
// zero. A zero budget reports 0% instead of dividing by zero; over-budget
// projects report more than 100%.
func (r BudgetVsSpentRow) Utilization() int64 {
	if r.Budget == 0 {
		return 0
	}
	return (r.Spent*100 + r.Budget/2) / r.Budget
}

// SpendingByCategory sums approved expenses per category. Rows are sorted by
// amount descending so dashboards can render them as-is.
func SpendingByCategory(snap Snapshot, cutoff time.Time) []CategoryAmount {
	sums := make(map[core.Category]int64)
	for _, e := range approvedSince(snap.Expenses, cutoff) {
		sums[e.Category] += e.Amount.Cents
	}

	rows := make([]CategoryAmount, 0, len(sums))
	for c, amt := range sums {
		rows = append(rows, CategoryAmount{CategoryName: string(c), Amount: amt})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Amount != rows[j].Amount {
			return rows[i].Amount > rows[j].Amount
		}
		return rows[i].CategoryName < rows[j].CategoryName
	})
	return rows
}

// SpendingByEmployee sums approved expenses per submitter, resolving display
// names from the snapshot's users. A submitter missing from the snapshot is
// labeled rather than dropped, so totals stay consistent across views.
func SpendingByEmployee(snap Snapshot, cutoff time.Time) []EmployeeAmount {
	names := make(map[int64]string, len(snap.Users))
	for _, u := range snap.Users {
		names[u.ID] = u.Name
	}

	sums := make(map[int64]int64)
	var order []int64
	for _, e := range approvedSince(snap.Expenses, cutoff) {
		if _, seen := sums[e.SubmittedByID]; !seen {
			order = append(order, e.SubmittedByID)
		}
		sums[e.SubmittedByID] += e.Amount.Cents
	}

	rows := make([]EmployeeAmount, 0, len(sums))
	for _, id := range order {
		name := names[id]
		if name == "" {
			name = "Unknown"
		}
		rows = append(rows, EmployeeAmount{Employee: name, Amount: sums[id]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Amount != rows[j].Amount {
			return rows[i].Amount > rows[j].Amount
		}
		return rows[i].Employee < rows[j].Employee
	})
	return rows
}

// trendCategory maps a ledger category onto the dashboard's fixed trend
// lines. The "transport" line charts the travel category; categories outside
// the reporting subset do not draw a line.
func trendCategory(c core.Category) (string, bool) {
	switch c {
	case core.CategoryEquipment:
		return "equipment", true
	case core.CategoryLabor:
		return "labor", true
	case core.CategoryTravel:
		return "transport", true
	default:
		return "", false
	}
}

// MonthlySpendingTrend buckets approved expenses by calendar month (YYYY-MM
// of CreatedAt, UTC) and sums each trend line within the month. Rows are
// ordered by month ascending. Months with no spend on any trend line are
// omitted.
func MonthlySpendingTrend(snap Snapshot, cutoff time.Time) []MonthlyTrendRow {
	byMonth := make(map[string]*MonthlyTrendRow)
	for _, e := range approvedSince(snap.Expenses, cutoff) {
		line, ok := trendCategory(e.Category)
		if !ok {
			continue
		}
		month := e.CreatedAt.UTC().Format("2006-01")
		row, ok := byMonth[month]
		if !ok {
			row = &MonthlyTrendRow{Month: month}
			byMonth[month] = row
		}
		switch line {
		case "equipment":
			row.Equipment += e.Amount.Cents
		case "labor":
			row.Labor += e.Amount.Cents
		case "transport":
			row.Transport += e.Amount.Cents
		}
	}

	rows := make([]MonthlyTrendRow, 0, len(byMonth))
	for _, row := range byMonth {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
	return rows
}
