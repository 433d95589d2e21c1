package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of *sql.DB / *sql.Tx the queries need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries holds the raw SQL against the ledger schema. Row structs mirror
// the table columns; mapping to domain types happens in the repository.
type Queries struct {
	db DBTX
}

type User struct {
	ID       int64
	Username string
	Name     string
	Role     string
}

type Client struct {
	ID            int64
	Name          string
	ContactPerson string
}

type Project struct {
	ID          int64
	Name        string
	ClientID    int64
	Status      string
	StartDate   time.Time
	BudgetCents int64
	CreatedBy   int64
}

type Expense struct {
	ID          int64
	ProjectID   int64
	AmountCents int64
	Description string
	Category    string
	ReceiptURL  string
	SubmittedBy int64
	ReviewedBy  sql.NullInt64
	Status      string
	Feedback    string
	CreatedAt   time.Time
}

const createExpense = `
INSERT INTO expenses (project_id, amount_cents, description, category, receipt_url, submitted_by, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)
RETURNING id, project_id, amount_cents, description, category, receipt_url, submitted_by, reviewed_by, status, feedback, created_at
`

type CreateExpenseParams struct {
	ProjectID   int64
	AmountCents int64
	Description string
	Category    string
	ReceiptURL  string
	SubmittedBy int64
	CreatedAt   time.Time
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.ProjectID, arg.AmountCents, arg.Description, arg.Category,
		arg.ReceiptURL, arg.SubmittedBy, arg.CreatedAt)
	var e Expense
	err := row.Scan(&e.ID, &e.ProjectID, &e.AmountCents, &e.Description, &e.Category,
		&e.ReceiptURL, &e.SubmittedBy, &e.ReviewedBy, &e.Status, &e.Feedback, &e.CreatedAt)
	return e, err
}

const getExpense = `
SELECT id, project_id, amount_cents, description, category, receipt_url, submitted_by, reviewed_by, status, feedback, created_at
FROM expenses WHERE id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var e Expense
	err := row.Scan(&e.ID, &e.ProjectID, &e.AmountCents, &e.Description, &e.Category,
		&e.ReceiptURL, &e.SubmittedBy, &e.ReviewedBy, &e.Status, &e.Feedback, &e.CreatedAt)
	return e, err
}

const listExpenses = `
SELECT id, project_id, amount_cents, description, category, receipt_url, submitted_by, reviewed_by, status, feedback, created_at
FROM expenses
WHERE (?1 = '' OR status = ?1)
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListExpenses(ctx context.Context, status string) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.AmountCents, &e.Description, &e.Category,
			&e.ReceiptURL, &e.SubmittedBy, &e.ReviewedBy, &e.Status, &e.Feedback, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// reviewExpense is the compare-and-set for the single pending -> reviewed
// transition. The WHERE status = 'pending' guard makes exactly one of two
// concurrent reviews win; the loser observes zero affected rows.
const reviewExpense = `
UPDATE expenses
SET status = ?, reviewed_by = ?, feedback = ?
WHERE id = ? AND status = 'pending'
`

type ReviewExpenseParams struct {
	Status     string
	ReviewedBy int64
	Feedback   string
	ID         int64
}

func (q *Queries) ReviewExpense(ctx context.Context, arg ReviewExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, reviewExpense, arg.Status, arg.ReviewedBy, arg.Feedback, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getProject = `
SELECT id, name, client_id, status, start_date, budget_cents, created_by
FROM projects WHERE id = ?
`

func (q *Queries) GetProject(ctx context.Context, id int64) (Project, error) {
	row := q.db.QueryRowContext(ctx, getProject, id)
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.ClientID, &p.Status, &p.StartDate, &p.BudgetCents, &p.CreatedBy)
	return p, err
}

const listProjects = `
SELECT id, name, client_id, status, start_date, budget_cents, created_by
FROM projects
WHERE (?1 = '' OR status = ?1)
ORDER BY id
`

func (q *Queries) ListProjects(ctx context.Context, status string) ([]Project, error) {
	rows, err := q.db.QueryContext(ctx, listProjects, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ClientID, &p.Status, &p.StartDate, &p.BudgetCents, &p.CreatedBy); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const getUser = `
SELECT id, username, name, role FROM users WHERE id = ?
`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Role)
	return u, err
}

const listUsers = `
SELECT id, username, name, role FROM users ORDER BY id
`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Role); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}
