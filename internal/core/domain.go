package core

import (
	"strings"
	"time"
)

const (
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectOnHold     ProjectStatus = "on_hold"
	ProjectCompleted  ProjectStatus = "completed"
)

const (
	StatusPending  ExpenseStatus = "pending"
	StatusApproved ExpenseStatus = "approved"
	StatusRejected ExpenseStatus = "rejected"
)

const (
	CategoryEquipment Category = "equipment"
	CategoryLabor     Category = "labor"
	CategoryMaterials Category = "materials"
	CategoryTravel    Category = "travel"
	CategoryPermits   Category = "permits"
	CategoryOther     Category = "other"
)

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type (
	ProjectStatus string
	ExpenseStatus string
	Category      string
	Decision      string

	User struct {
		ID       int64
		Username string
		Name     string
		Role     Role
	}

	Client struct {
		ID            int64
		Name          string
		ContactPerson string
	}

	Project struct {
		ID          int64
		Name        string
		ClientID    int64
		Status      ProjectStatus
		StartDate   time.Time
		Budget      Money
		CreatedByID int64
	}

	// Review records the single terminal transition of an expense. A nil
	// Review on an Expense means the expense is still pending; reviewer
	// identity and feedback only exist together with the decision.
	Review struct {
		Decision   Decision
		ReviewerID int64
		Feedback   string
	}

	Expense struct {
		ID            int64
		ProjectID     int64
		Amount        Money
		Description   string
		Category      Category
		ReceiptURL    string
		SubmittedByID int64
		Review        *Review
		CreatedAt     time.Time
	}

	// ExpenseDraft carries the caller-supplied fields of a submission.
	// ID, status and reviewer are never accepted from the outside.
	ExpenseDraft struct {
		ProjectID   int64
		Amount      Money
		Description string
		Category    Category
		ReceiptURL  string
	}
)

// Status derives the lifecycle state from the review record, so a reviewed
// expense can never claim to be pending and vice versa.
func (e Expense) Status() ExpenseStatus {
	if e.Review == nil {
		return StatusPending
	}
	if e.Review.Decision == DecisionReject {
		return StatusRejected
	}
	return StatusApproved
}

// ParseCategory validates a category name against the closed set.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryEquipment, CategoryLabor, CategoryMaterials, CategoryTravel, CategoryPermits, CategoryOther:
		return c, nil
	default:
		return "", ValidationError{Field: "category", Reason: "unknown category"}
	}
}

// ParseProjectStatus validates a project status name.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ps := ProjectStatus(strings.ToLower(strings.TrimSpace(s))); ps {
	case ProjectInProgress, ProjectOnHold, ProjectCompleted:
		return ps, nil
	default:
		return "", ValidationError{Field: "status", Reason: "unknown project status"}
	}
}

// ParseExpenseStatus validates an expense status name, used for list filters.
func ParseExpenseStatus(s string) (ExpenseStatus, error) {
	switch es := ExpenseStatus(strings.ToLower(strings.TrimSpace(s))); es {
	case StatusPending, StatusApproved, StatusRejected:
		return es, nil
	default:
		return "", ValidationError{Field: "status", Reason: "unknown expense status"}
	}
}

// ParseDecision validates a review decision.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	default:
		return "", ValidationError{Field: "decision", Reason: "must be approve or reject"}
	}
}

func (d ExpenseDraft) Validate() error {
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ValidationError{Field: "description", Reason: "required"}
	}
	if len(d.Description) > 200 {
		return ValidationError{Field: "description", Reason: "too long (max 200 characters)"}
	}
	if _, err := ParseCategory(string(d.Category)); err != nil {
		return err
	}
	if d.ProjectID <= 0 {
		return ValidationError{Field: "projectId", Reason: "required"}
	}
	return nil
}

func (p Project) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ValidationError{Field: "name", Reason: "required"}
	}
	if p.Budget.Cents < 0 {
		return ValidationError{Field: "budget", Reason: "must not be negative"}
	}
	if _, err := ParseProjectStatus(string(p.Status)); err != nil {
		return err
	}
	return nil
}
