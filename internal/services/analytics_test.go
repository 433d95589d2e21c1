package services

import (
	"context"
	"testing"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/storage"
)

func TestAnalyticsRecomputesPerQuery(t *testing.T) {
	store := newTestStore()
	mgr := NewLifecycleManager(store, nil)
	svc := NewAnalyticsService(store)
	admin := core.Identity{UserID: 1, Role: core.RoleAdmin}
	employee := core.Identity{UserID: 4, Role: core.RoleEmployee}

	created, err := mgr.Submit(context.Background(), validDraft(), employee)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	rows, err := svc.BudgetVsSpent(context.Background())
	if err != nil {
		t.Fatalf("budget query failed: %v", err)
	}
	if rows[0].Spent != 0 {
		t.Fatalf("pending expense must not count, got spent=%d", rows[0].Spent)
	}

	if _, err := mgr.Review(context.Background(), created.ID, core.DecisionApprove, "", admin); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	rows, err = svc.BudgetVsSpent(context.Background())
	if err != nil {
		t.Fatalf("budget query failed: %v", err)
	}
	if rows[0].Spent != 2500 {
		t.Fatalf("approval should appear on the next query, got spent=%d", rows[0].Spent)
	}
}

func TestAnalyticsRangeFiltering(t *testing.T) {
	store := storage.NewMemoryRepository()
	store.SeedUsers(core.User{ID: 4, Name: "Eve Engineer", Role: core.RoleEmployee})
	store.SeedProjects(core.Project{ID: 1, Name: "Bridge", Status: core.ProjectInProgress, Budget: core.Money{Cents: 100000}})

	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	svc := NewAnalyticsService(store).WithClock(func() time.Time { return now })

	recent := core.Expense{
		ProjectID:     1,
		Amount:        core.Money{Cents: 1000},
		Description:   "recent",
		Category:      core.CategoryTravel,
		SubmittedByID: 4,
		Review:        &core.Review{Decision: core.DecisionApprove, ReviewerID: 1},
		CreatedAt:     now.AddDate(0, 0, -5),
	}
	old := recent
	old.Description = "old"
	old.Amount.Cents = 5000
	old.CreatedAt = now.AddDate(0, 0, -120)

	for _, e := range []core.Expense{recent, old} {
		if _, err := store.CreateExpense(context.Background(), e); err != nil {
			t.Fatalf("seed expense failed: %v", err)
		}
	}

	rows, err := svc.SpendingByCategory(context.Background(), "30")
	if err != nil {
		t.Fatalf("category query failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Amount != 1000 {
		t.Fatalf("30-day range should only see the recent expense, got %+v", rows)
	}

	rows, err = svc.SpendingByCategory(context.Background(), "all")
	if err != nil {
		t.Fatalf("category query failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Amount != 6000 {
		t.Fatalf("unrestricted range should see everything, got %+v", rows)
	}
}
