// Package service provides the core business service that implements
// the dependencies required by the HTTP surfaces.
package service

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	repository "github.com/Gjorgji13/gradetrack/internal/adapters/repository"
	"github.com/Gjorgji13/gradetrack/internal/domain/model"
	"github.com/Gjorgji13/gradetrack/internal/domain/prediction"
	"github.com/Gjorgji13/gradetrack/internal/domain/report"
	"github.com/Gjorgji13/gradetrack/pkg/logger"
	"github.com/Gjorgji13/gradetrack/pkg/metrics"
)

// Default grade policy constants, overridable via options.
const (
	defaultMinGrade      = 6.0
	defaultMaxGrade      = 10.0
	defaultTargetAverage = 8.0
	weakGradeThreshold   = 7.0
)

// Service implements the operations behind the HTML site and the JSON API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	predictor prediction.Predictor

	// Configuration
	storageDriver string
	storageDSN    string
	minGrade      float64
	maxGrade      float64
	targetAverage float64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStorage selects the store backend opened on Start.
func WithStorage(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storageDriver = driver
		}
		if dsn != "" {
			s.storageDSN = dsn
		}
	}
}

// WithStore injects an already-open store, skipping Open on Start.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithGradeBounds sets the accepted grade range for writes and predictions.
func WithGradeBounds(minGrade, maxGrade float64) Option {
	return func(s *Service) {
		if maxGrade > minGrade {
			s.minGrade = minGrade
			s.maxGrade = maxGrade
		}
	}
}

// WithTargetAverage sets the average students aim for.
func WithTargetAverage(target float64) Option {
	return func(s *Service) {
		if target > 0 {
			s.targetAverage = target
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storageDriver: repository.DriverSQLite,
		storageDSN:    "gradetrack.db",
		minGrade:      defaultMinGrade,
		maxGrade:      defaultMaxGrade,
		targetAverage: defaultTargetAverage,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting gradetrack service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.storageDriver, s.storageDSN)
		if err != nil {
			return err
		}
		s.store = store
		s.logger.Info(ctx, "store opened",
			logger.String("driver", s.storageDriver),
		)
	}

	s.predictor = prediction.New(
		prediction.WithGradeBounds(s.minGrade, s.maxGrade),
	)

	s.started = true
	s.logger.Info(ctx, "gradetrack service started",
		logger.Float64("minGrade", s.minGrade),
		logger.Float64("maxGrade", s.maxGrade),
		logger.Float64("targetAverage", s.targetAverage),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping gradetrack service...")

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(context.Background(), "store close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "gradetrack service stopped")
}

// GradeBounds returns the accepted grade range.
func (s *Service) GradeBounds() (minGrade, maxGrade float64) {
	return s.minGrade, s.maxGrade
}

// Predict computes the grade forecast for a student.
// An unknown or empty history yields a nil prediction with an explanation,
// mirroring what the prediction panel expects.
func (s *Service) Predict(ctx context.Context, studentID string) (model.Prediction, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictionLatency(float64(time.Since(start).Milliseconds()))
	}()

	subjects, err := s.store.ListSubjects(ctx, studentID, repository.SubjectQuery{Order: repository.OrderDateAsc})
	if err != nil {
		return model.Prediction{}, err
	}

	p, err := s.predictor.Predict(ctx, studentID, subjects)
	if err != nil {
		return model.Prediction{}, err
	}

	if prediction.Classify(p, nil) == prediction.OutcomeUnavailable {
		metrics.RecordPredictionUnavailable()
	} else {
		metrics.RecordPredictionComputed()
	}
	return p, nil
}

// Export renders a student's grade history in the requested format.
// The student is resolved before the format is validated, so an unknown
// student wins over a bad format.
func (s *Service) Export(ctx context.Context, studentID, format string) (report.Report, error) {
	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return report.Report{}, err
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return report.Report{}, err
	}
	subjects, err := s.store.ListSubjects(ctx, studentID, repository.SubjectQuery{Order: repository.OrderDateAsc})
	if err != nil {
		return report.Report{}, err
	}

	r, err := report.Generate(student, subjects, f)
	if err != nil {
		return report.Report{}, err
	}
	metrics.RecordExportGenerated(string(f))
	return r, nil
}

// ListStudents returns per-student summaries matching the search, plus
// cohort-wide aggregates.
func (s *Service) ListStudents(ctx context.Context, search string) ([]model.StudentSummary, model.Overview, error) {
	students, err := s.store.ListStudents(ctx, search)
	if err != nil {
		return nil, model.Overview{}, err
	}

	summaries := make([]model.StudentSummary, 0, len(students))
	for _, st := range students {
		subjects, err := s.store.ListSubjects(ctx, st.ID, repository.SubjectQuery{Order: repository.OrderDateAsc})
		if err != nil {
			return nil, model.Overview{}, err
		}
		summary := model.StudentSummary{
			Student:      st,
			SubjectCount: len(subjects),
		}
		if len(subjects) > 0 {
			var sum float64
			for _, sub := range subjects {
				sum += sub.Grade
				if sub.Grade < s.minGrade {
					summary.HasFail = true
				}
			}
			summary.Average = round2(sum / float64(len(subjects)))
		}
		summaries = append(summaries, summary)
	}

	return summaries, overviewFrom(summaries), nil
}

func overviewFrom(summaries []model.StudentSummary) model.Overview {
	if len(summaries) == 0 {
		return model.Overview{}
	}
	var o model.Overview
	var sum float64
	for i := range summaries {
		sum += summaries[i].Average
		if o.Highest == nil || summaries[i].Average > o.Highest.Average {
			o.Highest = &summaries[i]
		}
		if o.Lowest == nil || summaries[i].Average < o.Lowest.Average {
			o.Lowest = &summaries[i]
		}
	}
	o.AverageAll = round2(sum / float64(len(summaries)))
	return o
}

// CreateStudent validates and persists a new student.
func (s *Service) CreateStudent(ctx context.Context, name, index, city string) (model.Student, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Student{}, ErrNameRequired
	}
	return s.store.CreateStudent(ctx, model.Student{
		Name:  name,
		Index: strings.TrimSpace(index),
		City:  strings.TrimSpace(city),
	})
}

// UpdateStudent validates and updates a student's fields.
func (s *Service) UpdateStudent(ctx context.Context, id, name, index, city string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	return s.store.UpdateStudent(ctx, model.Student{
		ID:    id,
		Name:  name,
		Index: strings.TrimSpace(index),
		City:  strings.TrimSpace(city),
	})
}

// DeleteStudent removes a student and their subjects.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	return s.store.DeleteStudent(ctx, id)
}

// GetStudent returns a student by ID.
func (s *Service) GetStudent(ctx context.Context, id string) (model.Student, error) {
	return s.store.GetStudent(ctx, id)
}

// AddSubject validates and persists a new graded subject.
func (s *Service) AddSubject(ctx context.Context, studentID, name string, grade float64) (model.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Subject{}, ErrSubjectNameRequired
	}
	if grade < s.minGrade || grade > s.maxGrade {
		return model.Subject{}, ErrGradeOutOfRange
	}
	if _, err := s.store.GetStudent(ctx, studentID); err != nil {
		return model.Subject{}, err
	}
	return s.store.AddSubject(ctx, model.Subject{
		StudentID: studentID,
		Name:      name,
		Grade:     grade,
	})
}

// UpdateSubject validates and updates a subject's name and grade.
func (s *Service) UpdateSubject(ctx context.Context, subjectID, name string, grade float64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrSubjectNameRequired
	}
	if grade < s.minGrade || grade > s.maxGrade {
		return ErrGradeOutOfRange
	}
	return s.store.UpdateSubject(ctx, model.Subject{
		ID:    subjectID,
		Name:  name,
		Grade: grade,
	})
}

// DeleteSubject removes a subject by ID.
func (s *Service) DeleteSubject(ctx context.Context, subjectID string) error {
	return s.store.DeleteSubject(ctx, subjectID)
}

// StudentPage bundles everything the student page renders.
type StudentPage struct {
	Student       model.Student
	Subjects      []model.Subject
	Average       float64
	TargetAverage float64
	// RequiredGrade is the grade needed on the next subject to reach the
	// target average; nil when the target is out of reach.
	RequiredGrade *float64
	WeakSubjects  []model.Subject
}

// GetStudentPage assembles the student page data. Sort accepts "asc" to
// order grades ascending; anything else orders descending.
func (s *Service) GetStudentPage(ctx context.Context, studentID, search, sort string) (StudentPage, error) {
	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return StudentPage{}, err
	}

	order := repository.OrderGradeDesc
	if sort == "asc" {
		order = repository.OrderGradeAsc
	}
	subjects, err := s.store.ListSubjects(ctx, studentID, repository.SubjectQuery{Search: search, Order: order})
	if err != nil {
		return StudentPage{}, err
	}

	page := StudentPage{
		Student:       student,
		Subjects:      subjects,
		TargetAverage: s.targetAverage,
	}

	if len(subjects) > 0 {
		var sum float64
		for _, sub := range subjects {
			sum += sub.Grade
			if sub.Grade < weakGradeThreshold {
				page.WeakSubjects = append(page.WeakSubjects, sub)
			}
		}
		page.Average = round2(sum / float64(len(subjects)))
		page.RequiredGrade = s.requiredGrade(sum, len(subjects))
	} else {
		target := s.targetAverage
		page.RequiredGrade = &target
	}

	return page, nil
}

// requiredGrade computes what the next grade must be to lift the average to
// the target. Above the scale maximum the target is unreachable (nil);
// below the minimum the floor applies.
func (s *Service) requiredGrade(sum float64, count int) *float64 {
	required := s.targetAverage*float64(count+1) - sum
	switch {
	case required > s.maxGrade:
		return nil
	case required < s.minGrade:
		floor := s.minGrade
		return &floor
	default:
		r := round2(required)
		return &r
	}
}

// GetStats returns a service state snapshot for monitoring, refreshing
// the entity gauges as a side effect.
func (s *Service) GetStats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := model.Stats{
		Started:       s.started,
		StorageDriver: s.storageDriver,
		MinGrade:      s.minGrade,
		MaxGrade:      s.maxGrade,
		TargetAverage: s.targetAverage,
	}

	if s.started {
		if students, err := s.store.CountStudents(ctx); err == nil {
			stats.TotalStudents = students
			metrics.UpdateTotalStudents(students)
		}
		if subjects, err := s.store.CountSubjects(ctx); err == nil {
			stats.TotalSubjects = subjects
			metrics.UpdateTotalSubjects(subjects)
		}
	}

	return stats
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
