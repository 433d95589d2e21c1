package http

import (
	"context"
	"net/http"
	"time"

	"spendtrack/internal/core"
)

type projectDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ClientID    int64  `json:"clientId"`
	Status      string `json:"status"`
	StartDate   string `json:"startDate"`
	Budget      int64  `json:"budget"`
	CreatedByID int64  `json:"createdById"`
}

func toProjectDTO(p core.Project) projectDTO {
	return projectDTO{
		ID:          p.ID,
		Name:        p.Name,
		ClientID:    p.ClientID,
		Status:      string(p.Status),
		StartDate:   p.StartDate.UTC().Format(time.RFC3339),
		Budget:      p.Budget.Cents,
		CreatedByID: p.CreatedByID,
	}
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	if _, err := identityFromRequest(r); err != nil {
		writeUnauthorized(w)
		return
	}

	var status core.ProjectStatus
	if v := r.URL.Query().Get("status"); v != "" {
		parsed, err := core.ParseProjectStatus(v)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		status = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	projects, err := s.lifecycle.ListProjects(ctx, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	dtos := make([]projectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}
