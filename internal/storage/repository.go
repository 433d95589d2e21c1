package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendtrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable ledger store. It owns no behavior beyond
// CRUD and the atomic review transition; lifecycle rules live in the
// services layer.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// The driver fails concurrent writers with SQLITE_BUSY. A single
	// connection plus the busy timeout serializes them, so a losing review
	// reaches the pending guard and gets ErrInvalidTransition instead of a
	// driver error.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense writes a new pending expense and returns it with its
// assigned id.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		ProjectID:   e.ProjectID,
		AmountCents: e.Amount.Cents,
		Description: e.Description,
		Category:    string(e.Category),
		ReceiptURL:  e.ReceiptURL,
		SubmittedBy: e.SubmittedByID,
		CreatedAt:   e.CreatedAt,
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", row.ID,
		"project_id", row.ProjectID,
		"amount_cents", row.AmountCents,
		"category", row.Category,
		"submitted_by", row.SubmittedBy)

	return toDomainExpense(row), nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return toDomainExpense(row), nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, status core.ExpenseStatus) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	expenses := make([]core.Expense, len(rows))
	for i, row := range rows {
		expenses[i] = toDomainExpense(row)
	}
	return expenses, nil
}

// ReviewExpense applies the pending -> approved/rejected transition as a
// single compare-and-set. Of two concurrent reviews of the same expense
// exactly one succeeds; the other gets ErrInvalidTransition.
func (r *SQLiteRepository) ReviewExpense(ctx context.Context, id int64, review core.Review) (core.Expense, error) {
	status := core.StatusApproved
	if review.Decision == core.DecisionReject {
		status = core.StatusRejected
	}

	affected, err := r.queries.ReviewExpense(ctx, ReviewExpenseParams{
		Status:     string(status),
		ReviewedBy: review.ReviewerID,
		Feedback:   review.Feedback,
		ID:         id,
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("review expense: %w", err)
	}
	if affected == 0 {
		// Either the expense does not exist or it already left pending.
		if _, err := r.queries.GetExpense(ctx, id); errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, core.ErrNotFound
		} else if err != nil {
			return core.Expense{}, fmt.Errorf("review expense: %w", err)
		}
		return core.Expense{}, core.ErrInvalidTransition
	}

	slog.InfoContext(ctx, "Expense reviewed",
		"id", id,
		"status", status,
		"reviewed_by", review.ReviewerID)

	return r.GetExpense(ctx, id)
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id int64) (core.Project, error) {
	row, err := r.queries.GetProject(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Project{}, core.ErrNotFound
	}
	if err != nil {
		return core.Project{}, fmt.Errorf("get project: %w", err)
	}
	return toDomainProject(row), nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context, status core.ProjectStatus) ([]core.Project, error) {
	rows, err := r.queries.ListProjects(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	projects := make([]core.Project, len(rows))
	for i, row := range rows {
		projects[i] = toDomainProject(row)
	}
	return projects, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return core.User{ID: row.ID, Username: row.Username, Name: row.Name, Role: core.Role(row.Role)}, nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]core.User, len(rows))
	for i, row := range rows {
		users[i] = core.User{ID: row.ID, Username: row.Username, Name: row.Name, Role: core.Role(row.Role)}
	}
	return users, nil
}

func toDomainExpense(row Expense) core.Expense {
	e := core.Expense{
		ID:            row.ID,
		ProjectID:     row.ProjectID,
		Amount:        core.Money{Cents: row.AmountCents},
		Description:   row.Description,
		Category:      core.Category(row.Category),
		ReceiptURL:    row.ReceiptURL,
		SubmittedByID: row.SubmittedBy,
		CreatedAt:     row.CreatedAt,
	}
	switch core.ExpenseStatus(row.Status) {
	case core.StatusApproved:
		e.Review = &core.Review{Decision: core.DecisionApprove, ReviewerID: row.ReviewedBy.Int64, Feedback: row.Feedback}
	case core.StatusRejected:
		e.Review = &core.Review{Decision: core.DecisionReject, ReviewerID: row.ReviewedBy.Int64, Feedback: row.Feedback}
	}
	return e
}

func toDomainProject(row Project) core.Project {
	return core.Project{
		ID:          row.ID,
		Name:        row.Name,
		ClientID:    row.ClientID,
		Status:      core.ProjectStatus(row.Status),
		StartDate:   row.StartDate,
		Budget:      core.Money{Cents: row.BudgetCents},
		CreatedByID: row.CreatedBy,
	}
}
