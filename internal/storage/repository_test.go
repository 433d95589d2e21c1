package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"spendtrack/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testExpense(projectID int64) core.Expense {
	return core.Expense{
		ProjectID:     projectID,
		Amount:        core.Money{Cents: 2500},
		Description:   "site visit fuel",
		Category:      core.CategoryTravel,
		SubmittedByID: 4,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestMigrationsSeedReferenceData(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 5 {
		t.Fatalf("expected 5 seeded users, got %d", len(users))
	}

	projects, err := repo.ListProjects(ctx, "")
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("expected 3 seeded projects, got %d", len(projects))
	}
	if projects[0].Budget.Cents != 1000000 {
		t.Fatalf("unexpected first project budget: %d", projects[0].Budget.Cents)
	}

	inProgress, err := repo.ListProjects(ctx, core.ProjectInProgress)
	if err != nil {
		t.Fatalf("list in_progress projects: %v", err)
	}
	if len(inProgress) != 2 {
		t.Fatalf("expected 2 in_progress projects, got %d", len(inProgress))
	}
}

func TestCreateAndGetExpense(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, testExpense(1))
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if created.Status() != core.StatusPending {
		t.Fatalf("new expense should be pending, got %s", created.Status())
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if got.Amount.Cents != 2500 || got.Category != core.CategoryTravel || got.SubmittedByID != 4 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Review != nil {
		t.Fatalf("pending expense must have no review, got %+v", got.Review)
	}

	if _, err := repo.GetExpense(ctx, 9999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListExpensesStatusFilter(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.CreateExpense(ctx, testExpense(1))
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if _, err := repo.CreateExpense(ctx, testExpense(2)); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if _, err := repo.ReviewExpense(ctx, first.ID, core.Review{Decision: core.DecisionApprove, ReviewerID: 1}); err != nil {
		t.Fatalf("review expense: %v", err)
	}

	pending, err := repo.ListExpenses(ctx, core.StatusPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending expense, got %d", len(pending))
	}

	approved, err := repo.ListExpenses(ctx, core.StatusApproved)
	if err != nil {
		t.Fatalf("list approved: %v", err)
	}
	if len(approved) != 1 || approved[0].ID != first.ID {
		t.Fatalf("expected the reviewed expense, got %+v", approved)
	}

	all, err := repo.ListExpenses(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(all))
	}
}

func TestReviewExpenseTransition(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, testExpense(1))
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	reviewed, err := repo.ReviewExpense(ctx, created.ID, core.Review{
		Decision:   core.DecisionReject,
		ReviewerID: 2,
		Feedback:   "missing receipt",
	})
	if err != nil {
		t.Fatalf("review expense: %v", err)
	}
	if reviewed.Status() != core.StatusRejected {
		t.Fatalf("expected rejected, got %s", reviewed.Status())
	}
	if reviewed.Review == nil || reviewed.Review.ReviewerID != 2 || reviewed.Review.Feedback != "missing receipt" {
		t.Fatalf("review record mismatch: %+v", reviewed.Review)
	}

	// The transition is terminal.
	_, err = repo.ReviewExpense(ctx, created.ID, core.Review{Decision: core.DecisionApprove, ReviewerID: 1})
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// A missing expense is not a conflict.
	_, err = repo.ReviewExpense(ctx, 9999, core.Review{Decision: core.DecisionApprove, ReviewerID: 1})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewExpenseConcurrentSingleWinner(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, testExpense(1))
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(reviewer int64) {
			defer wg.Done()
			_, err := repo.ReviewExpense(ctx, created.ID, core.Review{Decision: core.DecisionApprove, ReviewerID: reviewer})
			errs <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, core.ErrInvalidTransition):
			conflicts++
		default:
			t.Fatalf("loser must observe ErrInvalidTransition, got: %v", err)
		}
	}
	if wins != 1 || conflicts != attempts-1 {
		t.Fatalf("expected 1 win and %d conflicts, got %d wins and %d conflicts", attempts-1, wins, conflicts)
	}
}
