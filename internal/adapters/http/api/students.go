// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/Gjorgji13/gradetrack/internal/domain/model"
)

// StudentsDependencies defines the interface for student listing operations.
type StudentsDependencies interface {
	ListStudents(ctx context.Context, search string) ([]model.StudentSummary, model.Overview, error)
}

// StudentsHandler handles student listing requests.
type StudentsHandler struct {
	deps StudentsDependencies
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(deps StudentsDependencies) *StudentsHandler {
	return &StudentsHandler{deps: deps}
}

// studentsResponse mirrors the index page aggregates for API consumers.
type studentsResponse struct {
	Students []model.StudentSummary `json:"students"`
	model.Overview
}

// HandleListStudents handles GET /students?search=... requests.
func (h *StudentsHandler) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_students"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	summaries, overview, err := h.deps.ListStudents(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, studentsResponse{Students: summaries, Overview: overview})
}
