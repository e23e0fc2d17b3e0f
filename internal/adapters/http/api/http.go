// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	repository "github.com/Gjorgji13/gradetrack/internal/adapters/repository"
	"github.com/Gjorgji13/gradetrack/internal/domain/model"
	"github.com/Gjorgji13/gradetrack/internal/domain/report"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict computes the grade forecast for a student.
	Predict(ctx context.Context, studentID string) (model.Prediction, error)

	// Export renders a student's grade history in the requested format.
	// The student is resolved before the format is validated.
	Export(ctx context.Context, studentID, format string) (report.Report, error)

	// ListStudents returns per-student summaries plus cohort aggregates.
	ListStudents(ctx context.Context, search string) ([]model.StudentSummary, model.Overview, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	predictHandler  *PredictHandler
	exportHandler   *ExportHandler
	studentsHandler *StudentsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		predictHandler:  NewPredictHandler(deps),
		exportHandler:   NewExportHandler(deps),
		studentsHandler: NewStudentsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/students", MetricsMiddleware(s.studentsHandler.HandleListStudents, "students"))
	mux.HandleFunc("/predict/", MetricsMiddleware(s.predictHandler.HandleGetPrediction, "predict"))
	mux.HandleFunc("/export/", MetricsMiddleware(s.exportHandler.HandleGetExport, "export"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates store not-found errors to 404 at the API edge.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrStudentNotFound) ||
		errors.Is(err, repository.ErrSubjectNotFound)
}
