package services

import (
	"context"
	"fmt"
	"time"

	"spendtrack/internal/analytics"
)

// AnalyticsService resolves a date-range code, loads a fresh ledger
// snapshot and dispatches to the matching aggregation function. It keeps no
// state between queries; every call recomputes from the ledger.
type AnalyticsService struct {
	store Ledger
	now   func() time.Time
}

func NewAnalyticsService(store Ledger) *AnalyticsService {
	return &AnalyticsService{store: store, now: time.Now}
}

// WithClock overrides the time source, used by tests.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// snapshot loads the current ledger state once so every view computed from
// it observes the same data.
func (s *AnalyticsService) snapshot(ctx context.Context) (analytics.Snapshot, error) {
	expenses, err := s.store.ListExpenses(ctx, "")
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load expenses: %w", err)
	}
	projects, err := s.store.ListProjects(ctx, "")
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load projects: %w", err)
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load users: %w", err)
	}
	return analytics.Snapshot{Expenses: expenses, Projects: projects, Users: users}, nil
}

func (s *AnalyticsService) BudgetVsSpent(ctx context.Context) ([]analytics.BudgetVsSpentRow, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.BudgetVsSpent(snap, time.Time{}), nil
}

func (s *AnalyticsService) SpendingByCategory(ctx context.Context, rangeCode string) ([]analytics.CategoryAmount, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.SpendingByCategory(snap, analytics.ResolveRange(rangeCode, s.now())), nil
}

func (s *AnalyticsService) SpendingByEmployee(ctx context.Context, rangeCode string) ([]analytics.EmployeeAmount, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.SpendingByEmployee(snap, analytics.ResolveRange(rangeCode, s.now())), nil
}

func (s *AnalyticsService) MonthlySpendingTrends(ctx context.Context, rangeCode string) ([]analytics.MonthlyTrendRow, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.MonthlySpendingTrend(snap, analytics.ResolveRange(rangeCode, s.now())), nil
}
