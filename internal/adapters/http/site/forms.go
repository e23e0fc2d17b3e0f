package site

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	repository "github.com/Gjorgji13/gradetrack/internal/adapters/repository"
	service "github.com/Gjorgji13/gradetrack/internal/app"
	"github.com/Gjorgji13/gradetrack/pkg/logger"
)

// handleAddStudent serves the add-student form and processes its POST.
func (h *Handler) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, r, "add_student.html", nil)
		return
	}
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	_, err := h.deps.CreateStudent(r.Context(),
		r.FormValue("student_name"),
		r.FormValue("student_index"),
		r.FormValue("student_city"),
	)
	if err != nil {
		if errors.Is(err, service.ErrNameRequired) {
			http.Error(w, "Error: Name required!", http.StatusBadRequest)
			return
		}
		h.logger.Error(r.Context(), "create student failed", logger.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleEditStudent processes POST /edit_student/{id}.
func (h *Handler) handleEditStudent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/edit_student/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	err := h.deps.UpdateStudent(r.Context(), id,
		r.FormValue("new_name"),
		r.FormValue("new_index"),
		r.FormValue("new_city"),
	)
	switch {
	case errors.Is(err, service.ErrNameRequired):
		http.Error(w, "Error: Name required!", http.StatusBadRequest)
	case isNotFound(err):
		http.Error(w, "Student not found", http.StatusNotFound)
	case err != nil:
		h.logger.Error(r.Context(), "edit student failed", logger.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// handleDeleteStudent processes GET /delete_student/{id}.
func (h *Handler) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/delete_student/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.DeleteStudent(r.Context(), id); err != nil {
		h.logger.Error(r.Context(), "delete student failed", logger.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAddSubject processes the add-subject form on the student page.
func (h *Handler) handleAddSubject(w http.ResponseWriter, r *http.Request, studentID string) {
	grade, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("grade")), 64)
	if err != nil {
		http.Error(w, "Error: Invalid grade", http.StatusBadRequest)
		return
	}

	_, err = h.deps.AddSubject(r.Context(), studentID, r.FormValue("subject_name"), grade)
	switch {
	case errors.Is(err, service.ErrSubjectNameRequired), errors.Is(err, service.ErrGradeOutOfRange):
		h.gradeRangeError(w)
	case isNotFound(err):
		http.Error(w, "Student not found", http.StatusNotFound)
	case err != nil:
		h.logger.Error(r.Context(), "add subject failed", logger.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
	default:
		http.Redirect(w, r, "/student/"+studentID, http.StatusSeeOther)
	}
}

// handleEditSubject processes POST /edit_subject/{studentID}/{subjectID}.
func (h *Handler) handleEditSubject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	studentID, subjectID, ok := splitPair(r.URL.Path, "/edit_subject/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	grade, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("new_grade")), 64)
	if err != nil {
		http.Error(w, "Error: Invalid grade", http.StatusBadRequest)
		return
	}

	err = h.deps.UpdateSubject(r.Context(), subjectID, r.FormValue("new_name"), grade)
	switch {
	case errors.Is(err, service.ErrSubjectNameRequired), errors.Is(err, service.ErrGradeOutOfRange):
		h.gradeRangeError(w)
	case isNotFound(err):
		http.Error(w, "Subject not found", http.StatusNotFound)
	case err != nil:
		h.logger.Error(r.Context(), "edit subject failed", logger.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
	default:
		http.Redirect(w, r, "/student/"+studentID, http.StatusSeeOther)
	}
}

// handleDeleteSubject processes GET /delete_subject/{studentID}/{subjectID}.
func (h *Handler) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	studentID, subjectID, ok := splitPair(r.URL.Path, "/delete_subject/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.DeleteSubject(r.Context(), subjectID); err != nil {
		h.logger.Error(r.Context(), "delete subject failed", logger.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/student/"+studentID, http.StatusSeeOther)
}

func (h *Handler) gradeRangeError(w http.ResponseWriter) {
	minGrade, maxGrade := h.deps.GradeBounds()
	http.Error(w, fmt.Sprintf("Error: Grade must be %g-%g", minGrade, maxGrade), http.StatusBadRequest)
}

// splitPair extracts the two path segments after prefix.
func splitPair(path, prefix string) (first, second string, ok bool) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrStudentNotFound) ||
		errors.Is(err, repository.ErrSubjectNotFound)
}
