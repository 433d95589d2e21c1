package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.ExpenseStatus
}

func (p *recordingPublisher) PublishExpenseReviewed(ctx context.Context, id int64, status core.ExpenseStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, status)
	return nil
}

type failingPublisher struct{}

func (failingPublisher) PublishExpenseReviewed(ctx context.Context, id int64, status core.ExpenseStatus) error {
	return errors.New("broker down")
}

func newTestStore() *storage.MemoryRepository {
	store := storage.NewMemoryRepository()
	store.SeedUsers(
		core.User{ID: 1, Username: "ada", Name: "Ada Admin", Role: core.RoleAdmin},
		core.User{ID: 2, Username: "mia", Name: "Mia Manager", Role: core.RoleManager},
		core.User{ID: 4, Username: "eve", Name: "Eve Engineer", Role: core.RoleEmployee},
	)
	store.SeedProjects(
		core.Project{ID: 1, Name: "Bridge", Status: core.ProjectInProgress, Budget: core.Money{Cents: 10000}},
	)
	return store
}

func validDraft() core.ExpenseDraft {
	return core.ExpenseDraft{
		ProjectID:   1,
		Amount:      core.Money{Cents: 2500},
		Description: "site visit fuel",
		Category:    core.CategoryTravel,
	}
}

func TestSubmitForcesSubmitterIdentity(t *testing.T) {
	store := newTestStore()
	mgr := NewLifecycleManager(store, nil)

	created, err := mgr.Submit(context.Background(), validDraft(), core.Identity{UserID: 4, Role: core.RoleEmployee})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if created.SubmittedByID != 4 {
		t.Fatalf("expected submitter 4, got %d", created.SubmittedByID)
	}
	if created.Status() != core.StatusPending {
		t.Fatalf("new expense should be pending, got %s", created.Status())
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
}

func TestSubmitValidationLeavesNoRow(t *testing.T) {
	store := newTestStore()
	mgr := NewLifecycleManager(store, nil)

	draft := validDraft()
	draft.Amount.Cents = 0
	if _, err := mgr.Submit(context.Background(), draft, core.Identity{UserID: 4, Role: core.RoleEmployee}); err == nil {
		t.Fatal("expected validation error")
	}

	expenses, err := store.ListExpenses(context.Background(), "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(expenses) != 0 {
		t.Fatalf("rejected draft must not persist, found %d rows", len(expenses))
	}
}

func TestSubmitUnknownProject(t *testing.T) {
	store := newTestStore()
	mgr := NewLifecycleManager(store, nil)

	draft := validDraft()
	draft.ProjectID = 42
	_, err := mgr.Submit(context.Background(), draft, core.Identity{UserID: 4, Role: core.RoleEmployee})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitRequiresIdentity(t *testing.T) {
	mgr := NewLifecycleManager(newTestStore(), nil)
	_, err := mgr.Submit(context.Background(), validDraft(), core.Identity{})
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestReviewAuthorization(t *testing.T) {
	cases := []struct {
		name    string
		ident   core.Identity
		allowed bool
	}{
		{"admin", core.Identity{UserID: 1, Role: core.RoleAdmin}, true},
		{"manager", core.Identity{UserID: 2, Role: core.RoleManager}, true},
		{"salesperson", core.Identity{UserID: 3, Role: core.RoleSalesperson}, false},
		{"employee", core.Identity{UserID: 4, Role: core.RoleEmployee}, false},
		{"anonymous", core.Identity{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore()
			mgr := NewLifecycleManager(store, nil)
			created, err := mgr.Submit(context.Background(), validDraft(), core.Identity{UserID: 4, Role: core.RoleEmployee})
			if err != nil {
				t.Fatalf("submit failed: %v", err)
			}

			reviewed, err := mgr.Review(context.Background(), created.ID, core.DecisionApprove, "", tc.ident)
			if tc.allowed {
				if err != nil {
					t.Fatalf("review should succeed: %v", err)
				}
				if reviewed.Status() != core.StatusApproved {
					t.Fatalf("expected approved, got %s", reviewed.Status())
				}
				if reviewed.Review == nil || reviewed.Review.ReviewerID != tc.ident.UserID {
					t.Fatalf("reviewer not recorded: %+v", reviewed.Review)
				}
			} else if !errors.Is(err, core.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestReviewIsTerminal(t *testing.T) {
	store := newTestStore()
	mgr := NewLifecycleManager(store, nil)
	admin := core.Identity{UserID: 1, Role: core.RoleAdmin}

	created, err := mgr.Submit(context.Background(), validDraft(), core.Identity{UserID: 4, Role: core.RoleEmployee})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := mgr.Review(context.Background(), created.ID, core.DecisionReject, "missing receipt", admin); err != nil {
		t.Fatalf("first review failed: %v", err)
	}

	_, err = mgr.Review(context.Background(), created.ID, core.DecisionApprove, "", admin)
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("second review expected ErrInvalidTransition, got %v", err)
	}

	got, err := store.GetExpense(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status() != core.StatusRejected || got.Review.Feedback != "missing receipt" {
		t.Fatalf("first decision should stand: %+v", got.Review)
	}
}

func TestConcurrentReviewsSingleWinner(t *testing.T) {
	store := newTestStore()
	mgr := NewLifecycleManager(store, nil)
	admin := core.Identity{UserID: 1, Role: core.RoleAdmin}
	manager := core.Identity{UserID: 2, Role: core.RoleManager}

	created, err := mgr.Submit(context.Background(), validDraft(), core.Identity{UserID: 4, Role: core.RoleEmployee})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		ident := admin
		decision := core.DecisionApprove
		if i%2 == 1 {
			ident = manager
			decision = core.DecisionReject
		}
		go func() {
			defer wg.Done()
			_, err := mgr.Review(context.Background(), created.ID, decision, "contested", ident)
			errs <- err
		}()
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
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != attempts-1 {
		t.Fatalf("expected exactly one winner, got %d wins and %d conflicts", wins, conflicts)
	}
}

func TestReviewPublishesEvent(t *testing.T) {
	store := newTestStore()
	pub := &recordingPublisher{}
	mgr := NewLifecycleManager(store, pub)
	admin := core.Identity{UserID: 1, Role: core.RoleAdmin}

	created, err := mgr.Submit(context.Background(), validDraft(), core.Identity{UserID: 4, Role: core.RoleEmployee})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := mgr.Review(context.Background(), created.ID, core.DecisionApprove, "", admin); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	if len(pub.events) != 1 || pub.events[0] != core.StatusApproved {
		t.Fatalf("expected one approved event, got %v", pub.events)
	}
}

func TestReviewSurvivesPublishFailure(t *testing.T) {
	store := newTestStore()
	mgr := NewLifecycleManager(store, failingPublisher{})
	admin := core.Identity{UserID: 1, Role: core.RoleAdmin}

	created, err := mgr.Submit(context.Background(), validDraft(), core.Identity{UserID: 4, Role: core.RoleEmployee})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	reviewed, err := mgr.Review(context.Background(), created.ID, core.DecisionApprove, "", admin)
	if err != nil {
		t.Fatalf("review should succeed despite publish failure: %v", err)
	}
	if reviewed.Status() != core.StatusApproved {
		t.Fatalf("expected approved, got %s", reviewed.Status())
	}
}

func TestSubmitUsesInjectedClock(t *testing.T) {
	store := newTestStore()
	fixed := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)
	mgr := NewLifecycleManager(store, nil).WithClock(func() time.Time { return fixed })

	created, err := mgr.Submit(context.Background(), validDraft(), core.Identity{UserID: 4, Role: core.RoleEmployee})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !created.CreatedAt.Equal(fixed) {
		t.Fatalf("expected createdAt %v, got %v", fixed, created.CreatedAt)
	}
}
