// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Gjorgji13/gradetrack/internal/domain/report"
)

// ExportDependencies defines the interface for export operations.
type ExportDependencies interface {
	Export(ctx context.Context, studentID, format string) (report.Report, error)
}

// ExportHandler handles export download requests.
type ExportHandler struct {
	deps ExportDependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleGetExport handles GET /export/{student_id}/{format} requests and
// serves the generated file as an attachment.
func (h *ExportHandler) HandleGetExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_export"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/export/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	rep, err := h.deps.Export(r.Context(), parts[0], parts[1])
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		if errors.Is(err, report.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, "unsupported_format", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	w.Header().Set("Content-Type", rep.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+rep.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rep.Data)
}
