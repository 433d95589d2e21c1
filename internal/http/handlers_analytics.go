package http

import (
	"context"
	"net/http"
)

// Analytics reads require an authenticated caller but no particular role;
// read access is not role-restricted in this design.

func (s *Server) handleBudgetVsSpent(w http.ResponseWriter, r *http.Request) {
	if _, err := identityFromRequest(r); err != nil {
		writeUnauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	rows, err := s.analytics.BudgetVsSpent(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSpendingByCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := identityFromRequest(r); err != nil {
		writeUnauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	rows, err := s.analytics.SpendingByCategory(ctx, r.URL.Query().Get("range"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSpendingByEmployee(w http.ResponseWriter, r *http.Request) {
	if _, err := identityFromRequest(r); err != nil {
		writeUnauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	rows, err := s.analytics.SpendingByEmployee(ctx, r.URL.Query().Get("range"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleMonthlyTrends(w http.ResponseWriter, r *http.Request) {
	if _, err := identityFromRequest(r); err != nil {
		writeUnauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	rows, err := s.analytics.MonthlySpendingTrends(ctx, r.URL.Query().Get("range"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
