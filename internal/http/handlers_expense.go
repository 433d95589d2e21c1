package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"spendtrack/internal/core"
)

type expenseDTO struct {
	ID            int64  `json:"id"`
	ProjectID     int64  `json:"projectId"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	ReceiptURL    string `json:"receiptUrl,omitempty"`
	SubmittedByID int64  `json:"submittedById"`
	ReviewedByID  *int64 `json:"reviewedById,omitempty"`
	Status        string `json:"status"`
	Feedback      string `json:"feedback,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

func toExpenseDTO(e core.Expense) expenseDTO {
	dto := expenseDTO{
		ID:            e.ID,
		ProjectID:     e.ProjectID,
		Amount:        e.Amount.Cents,
		Description:   e.Description,
		Category:      string(e.Category),
		ReceiptURL:    e.ReceiptURL,
		SubmittedByID: e.SubmittedByID,
		Status:        string(e.Status()),
		CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.Review != nil {
		reviewer := e.Review.ReviewerID
		dto.ReviewedByID = &reviewer
		dto.Feedback = e.Review.Feedback
	}
	return dto
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	if _, err := identityFromRequest(r); err != nil {
		writeUnauthorized(w)
		return
	}

	var status core.ExpenseStatus
	if v := r.URL.Query().Get("status"); v != "" {
		parsed, err := core.ParseExpenseStatus(v)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		status = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	expenses, err := s.lifecycle.ListExpenses(ctx, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	dtos := make([]expenseDTO, len(expenses))
	for i, e := range expenses {
		dtos[i] = toExpenseDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// createExpenseRequest accepts the amount as either a JSON number or a
// decimal string; both go through the same cent parsing.
type createExpenseRequest struct {
	ProjectID   int64       `json:"projectId"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	ReceiptURL  string      `json:"receiptUrl"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ident, err := identityFromRequest(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createExpenseRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	draft := core.ExpenseDraft{
		ProjectID:   req.ProjectID,
		Amount:      core.Money{Cents: cents},
		Description: req.Description,
		Category:    core.Category(req.Category),
		ReceiptURL:  req.ReceiptURL,
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	created, err := s.lifecycle.Submit(ctx, draft, ident)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseDTO(created))
}

type reviewExpenseRequest struct {
	Decision string `json:"decision"`
	Feedback string `json:"feedback"`
}

func (s *Server) handleReviewExpense(w http.ResponseWriter, r *http.Request) {
	ident, err := identityFromRequest(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	expenseID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || expenseID <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid expense id")
		return
	}

	var req reviewExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	decision, err := core.ParseDecision(req.Decision)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	reviewed, err := s.lifecycle.Review(ctx, expenseID, decision, req.Feedback, ident)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toExpenseDTO(reviewed))
}
