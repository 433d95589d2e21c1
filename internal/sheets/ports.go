// Package sheets defines the outbound port for exporting reviewed expenses
// to the finance team's spreadsheet copy of the ledger.
package sheets

import (
	"context"
	"time"
)

// ExportRow is one reviewed expense, denormalized for a spreadsheet line.
type ExportRow struct {
	ExpenseID   int64
	Project     string
	Description string
	Category    string
	AmountCents int64
	Status      string
	SubmittedBy string
	ReviewedBy  string
	Feedback    string
	CreatedAt   time.Time
}

// LedgerExporter appends reviewed expenses to an external ledger copy.
type LedgerExporter interface {
	AppendReviewed(ctx context.Context, row ExportRow) error
}
