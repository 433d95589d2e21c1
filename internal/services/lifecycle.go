// Package services orchestrates the expense lifecycle and analytics queries
// over the ledger store. All authorization decisions happen here against an
// explicit caller identity; nothing reads ambient session state.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/log"
)

// Ledger is the durable store the lifecycle manager writes to and the
// analytics service reads from.
type Ledger interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context, status core.ExpenseStatus) ([]core.Expense, error)
	ReviewExpense(ctx context.Context, id int64, review core.Review) (core.Expense, error)
	GetProject(ctx context.Context, id int64) (core.Project, error)
	ListProjects(ctx context.Context, status core.ProjectStatus) ([]core.Project, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
}

// ReviewPublisher announces completed reviews to downstream consumers
// (ledger export worker). Publishing is best-effort: the review itself is
// durable once the store write succeeds.
type ReviewPublisher interface {
	PublishExpenseReviewed(ctx context.Context, id int64, status core.ExpenseStatus) error
}

// LifecycleManager enforces the expense approval state machine on top of
// the ledger store.
type LifecycleManager struct {
	store     Ledger
	publisher ReviewPublisher
	now       func() time.Time
}

func NewLifecycleManager(store Ledger, publisher ReviewPublisher) *LifecycleManager {
	return &LifecycleManager{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock overrides the time source, used by tests.
func (m *LifecycleManager) WithClock(now func() time.Time) *LifecycleManager {
	m.now = now
	return m
}

// Submit validates a draft and writes it as a pending expense. The submitter
// is always the requester; a submittedById smuggled in through the draft
// never survives.
func (m *LifecycleManager) Submit(ctx context.Context, draft core.ExpenseDraft, requester core.Identity) (core.Expense, error) {
	if requester.UserID <= 0 {
		return core.Expense{}, core.ErrUnauthorized
	}
	if err := draft.Validate(); err != nil {
		return core.Expense{}, err
	}
	if _, err := m.store.GetProject(ctx, draft.ProjectID); err != nil {
		return core.Expense{}, fmt.Errorf("resolve project %d: %w", draft.ProjectID, err)
	}

	expense := core.Expense{
		ProjectID:     draft.ProjectID,
		Amount:        draft.Amount,
		Description:   strings.TrimSpace(draft.Description),
		Category:      draft.Category,
		ReceiptURL:    strings.TrimSpace(draft.ReceiptURL),
		SubmittedByID: requester.UserID,
		CreatedAt:     m.now(),
	}

	created, err := m.store.CreateExpense(ctx, expense)
	if err != nil {
		return core.Expense{}, fmt.Errorf("submit expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense submitted",
		log.FieldOperation, log.OpSubmit,
		log.FieldExpenseID, created.ID,
		log.FieldProjectID, created.ProjectID,
		log.FieldAmountCents, created.Amount.Cents,
		"submitted_by", created.SubmittedByID)

	return created, nil
}

// Review applies a terminal approve/reject decision to a pending expense.
// The store performs the transition as a compare-and-set, so a second
// review of the same expense fails with ErrInvalidTransition regardless of
// interleaving.
func (m *LifecycleManager) Review(ctx context.Context, expenseID int64, decision core.Decision, feedback string, reviewer core.Identity) (core.Expense, error) {
	if reviewer.UserID <= 0 || !reviewer.Role.CanReview() {
		return core.Expense{}, core.ErrUnauthorized
	}

	feedback = strings.TrimSpace(feedback)
	if decision == core.DecisionReject && feedback == "" {
		// Policy choice: feedback on rejection is recommended, not required.
		slog.WarnContext(ctx, "Rejection without feedback",
			log.FieldOperation, log.OpReview,
			log.FieldExpenseID, expenseID,
			"reviewed_by", reviewer.UserID)
	}

	reviewed, err := m.store.ReviewExpense(ctx, expenseID, core.Review{
		Decision:   decision,
		ReviewerID: reviewer.UserID,
		Feedback:   feedback,
	})
	if err != nil {
		return core.Expense{}, err
	}

	if m.publisher != nil {
		if err := m.publisher.PublishExpenseReviewed(ctx, reviewed.ID, reviewed.Status()); err != nil {
			// The transition is already durable; export catches up later.
			slog.ErrorContext(ctx, "Failed to publish review event",
				log.FieldExpenseID, reviewed.ID, log.FieldError, err)
		}
	}

	return reviewed, nil
}

// ListExpenses returns ledger expenses, optionally filtered by status.
func (m *LifecycleManager) ListExpenses(ctx context.Context, status core.ExpenseStatus) ([]core.Expense, error) {
	return m.store.ListExpenses(ctx, status)
}

// ListProjects returns projects, optionally filtered by status.
func (m *LifecycleManager) ListProjects(ctx context.Context, status core.ProjectStatus) ([]core.Project, error) {
	return m.store.ListProjects(ctx, status)
}
