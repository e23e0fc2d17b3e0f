// Package site serves the embedded HTML pages for the grade tracker.
package site

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	service "github.com/Gjorgji13/gradetrack/internal/app"
	"github.com/Gjorgji13/gradetrack/internal/domain/chart"
	"github.com/Gjorgji13/gradetrack/internal/domain/model"
	"github.com/Gjorgji13/gradetrack/pkg/logger"
)

// Dependencies required by the page handlers.
type Dependencies interface {
	ListStudents(ctx context.Context, search string) ([]model.StudentSummary, model.Overview, error)
	CreateStudent(ctx context.Context, name, index, city string) (model.Student, error)
	UpdateStudent(ctx context.Context, id, name, index, city string) error
	DeleteStudent(ctx context.Context, id string) error
	GetStudentPage(ctx context.Context, studentID, search, sort string) (service.StudentPage, error)
	AddSubject(ctx context.Context, studentID, name string, grade float64) (model.Subject, error)
	UpdateSubject(ctx context.Context, subjectID, name string, grade float64) error
	DeleteSubject(ctx context.Context, subjectID string) error
	GradeBounds() (minGrade, maxGrade float64)
}

// Handler renders the HTML pages and processes their form posts.
type Handler struct {
	deps      Dependencies
	templates map[string]*template.Template
	logger    logger.Logger
}

// NewHandler parses the embedded templates and builds the page handler.
func NewHandler(deps Dependencies) (*Handler, error) {
	pages := map[string][]string{
		"index.html":       {"templates/layout.html", "templates/index.html"},
		"student.html":     {"templates/layout.html", "templates/student.html"},
		"add_student.html": {"templates/layout.html", "templates/add_student.html"},
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, files := range pages {
		t, err := template.ParseFS(templateFS, files...)
		if err != nil {
			return nil, Wrap("site.parse_templates", err)
		}
		templates[name] = t
	}

	return &Handler{
		deps:      deps,
		templates: templates,
		logger:    logger.Named("site"),
	}, nil
}

// Register attaches the page routes to mux.
func (h *Handler) Register(ctx context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/add_student", h.handleAddStudent)
	mux.HandleFunc("/edit_student/", h.handleEditStudent)
	mux.HandleFunc("/delete_student/", h.handleDeleteStudent)
	mux.HandleFunc("/student/", h.handleStudentPage)
	mux.HandleFunc("/edit_subject/", h.handleEditSubject)
	mux.HandleFunc("/delete_subject/", h.handleDeleteSubject)
}

// indexView is the data bundle for the index page.
type indexView struct {
	Students []model.StudentSummary
	Overview model.Overview
	Search   string
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	students, overview, err := h.deps.ListStudents(r.Context(), search)
	if err != nil {
		h.logger.Error(r.Context(), "index listing failed", logger.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "index.html", indexView{
		Students: students,
		Overview: overview,
		Search:   search,
	})
}

// studentView is the data bundle for the student page.
type studentView struct {
	Page   service.StudentPage
	Search string
	Sort   string
	// ChartProps is the JSON chart payload, or "null" with no grades so the
	// page script skips chart construction.
	ChartProps template.JS
	MinGrade   float64
	MaxGrade   float64
}

func (h *Handler) handleStudentPage(w http.ResponseWriter, r *http.Request) {
	studentID := strings.TrimPrefix(r.URL.Path, "/student/")
	if studentID == "" || strings.Contains(studentID, "/") {
		http.NotFound(w, r)
		return
	}

	if r.Method == http.MethodPost {
		h.handleAddSubject(w, r, studentID)
		return
	}

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	sort := r.URL.Query().Get("sort")
	page, err := h.deps.GetStudentPage(r.Context(), studentID, search, sort)
	if err != nil {
		if isNotFound(err) {
			http.Error(w, "Student not found", http.StatusNotFound)
			return
		}
		h.logger.Error(r.Context(), "student page failed", logger.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	minGrade, maxGrade := h.deps.GradeBounds()
	h.render(w, r, "student.html", studentView{
		Page:       page,
		Search:     search,
		Sort:       sort,
		ChartProps: chartPropsJS(page.Subjects),
		MinGrade:   minGrade,
		MaxGrade:   maxGrade,
	})
}

// chartPropsJS builds the typed chart payload for the page script.
func chartPropsJS(subjects []model.Subject) template.JS {
	props, ok := chart.Build(subjects)
	if !ok {
		return template.JS("null")
	}
	data, err := json.Marshal(props)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(data) //nolint:gosec // server-built JSON, no user-controlled script
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	t, ok := h.templates[name]
	if !ok {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		h.logger.Error(r.Context(), "template render failed",
			logger.String("template", name),
			logger.Error(err),
		)
	}
}
