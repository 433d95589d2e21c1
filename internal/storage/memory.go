package storage

import (
	"context"
	"sort"
	"sync"

	"spendtrack/internal/core"
)

// MemoryRepository is an in-memory ledger with the same semantics as the
// SQLite store, including the atomic review guard. It backs tests and the
// "memory" data backend for local development.
type MemoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	expenses []core.Expense
	projects []core.Project
	users    []core.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

// SeedProjects replaces the project set. Projects are reference data here;
// the expense core never creates them.
func (m *MemoryRepository) SeedProjects(projects ...core.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = append([]core.Project(nil), projects...)
}

// SeedUsers replaces the user set.
func (m *MemoryRepository) SeedUsers(users ...core.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append([]core.User(nil), users...)
}

func (m *MemoryRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.nextID
	m.nextID++
	m.expenses = append(m.expenses, e)
	return e, nil
}

func (m *MemoryRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, core.ErrNotFound
}

func (m *MemoryRepository) ListExpenses(ctx context.Context, status core.ExpenseStatus) ([]core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Expense, 0, len(m.expenses))
	for _, e := range m.expenses {
		if status != "" && e.Status() != status {
			continue
		}
		out = append(out, e)
	}
	// Newest first, same ordering the SQLite backend produces.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ReviewExpense mirrors the SQLite compare-and-set: the transition only
// applies while the expense is still pending, under the store lock.
func (m *MemoryRepository) ReviewExpense(ctx context.Context, id int64, review core.Review) (core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.expenses {
		if e.ID != id {
			continue
		}
		if e.Review != nil {
			return core.Expense{}, core.ErrInvalidTransition
		}
		r := review
		m.expenses[i].Review = &r
		return m.expenses[i], nil
	}
	return core.Expense{}, core.ErrNotFound
}

func (m *MemoryRepository) GetProject(ctx context.Context, id int64) (core.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return core.Project{}, core.ErrNotFound
}

func (m *MemoryRepository) ListProjects(ctx context.Context, status core.ProjectStatus) ([]core.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Project, 0, len(m.projects))
	for _, p := range m.projects {
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (m *MemoryRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.User(nil), m.users...), nil
}

func (m *MemoryRepository) Close() error { return nil }
