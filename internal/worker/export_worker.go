// Package worker bridges the review event queue to the spreadsheet export.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
	"spendtrack/internal/services"
	"spendtrack/internal/sheets"
)

// ExportWorker consumes expense-reviewed messages and appends the reviewed
// expense to the external ledger copy. It always re-reads the expense from
// the store so the export reflects durable state, not the message payload.
type ExportWorker struct {
	store    services.Ledger
	exporter sheets.LedgerExporter
}

func NewExportWorker(store services.Ledger, exporter sheets.LedgerExporter) *ExportWorker {
	return &ExportWorker{
		store:    store,
		exporter: exporter,
	}
}

// HandleReviewedMessage processes a single review event. Returning an error
// requeues the message.
func (w *ExportWorker) HandleReviewedMessage(ctx context.Context, msg *amqp.ExpenseReviewedMessage) error {
	expense, err := w.store.GetExpense(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		// Nothing to export and retrying will not help.
		slog.WarnContext(ctx, "Reviewed expense no longer in ledger, dropping message",
			log.FieldOperation, log.OpExport,
			log.FieldExpenseID, msg.ID,
			log.FieldComponent, log.ComponentWorker)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense %d: %w", msg.ID, err)
	}
	if expense.Review == nil {
		slog.WarnContext(ctx, "Expense still pending, dropping stale review message",
			log.FieldOperation, log.OpExport,
			log.FieldExpenseID, msg.ID,
			log.FieldComponent, log.ComponentWorker)
		return nil
	}

	row := sheets.ExportRow{
		ExpenseID:   expense.ID,
		Project:     w.lookupProject(ctx, expense.ProjectID),
		Description: expense.Description,
		Category:    string(expense.Category),
		AmountCents: expense.Amount.Cents,
		Status:      string(expense.Status()),
		SubmittedBy: w.lookupUser(ctx, expense.SubmittedByID),
		ReviewedBy:  w.lookupUser(ctx, expense.Review.ReviewerID),
		Feedback:    expense.Review.Feedback,
		CreatedAt:   expense.CreatedAt,
	}

	if err := w.exporter.AppendReviewed(ctx, row); err != nil {
		return fmt.Errorf("export expense %d: %w", expense.ID, err)
	}

	return nil
}

// lookupProject resolves a project name, tolerating dangling references the
// same way the analytics views do.
func (w *ExportWorker) lookupProject(ctx context.Context, id int64) string {
	p, err := w.store.GetProject(ctx, id)
	if err != nil {
		return "Unknown"
	}
	return p.Name
}

func (w *ExportWorker) lookupUser(ctx context.Context, id int64) string {
	u, err := w.store.GetUser(ctx, id)
	if err != nil {
		return "Unknown"
	}
	return u.Name
}
