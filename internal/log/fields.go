package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldExpenseID   = "expense_id"
	FieldProjectID   = "project_id"
	FieldAmountCents = "amount_cents"
)

// Components defines standard component names
const (
	ComponentWorker = "worker"
)

// Operations defines standard operation names
const (
	OpSubmit = "submit"
	OpReview = "review"
	OpExport = "export"
)
