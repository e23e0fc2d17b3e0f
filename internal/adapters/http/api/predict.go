// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gjorgji13/gradetrack/internal/domain/model"
)

// PredictDependencies defines the interface for prediction operations.
type PredictDependencies interface {
	Predict(ctx context.Context, studentID string) (model.Prediction, error)
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandleGetPrediction handles GET /predict/{student_id} requests.
//
// The body always carries {prediction, baseline_avg, explanation}; a null
// prediction is the expected "no history" outcome, not an error.
func (h *PredictHandler) HandleGetPrediction(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_prediction"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	studentID := strings.TrimPrefix(r.URL.Path, "/predict/")
	if studentID == "" || strings.Contains(studentID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	p, err := h.deps.Predict(r.Context(), studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
