// Package prediction computes grade forecasts from a student's history.
package prediction

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Gjorgji13/gradetrack/internal/domain/model"
)

// Default grade scale constants.
const (
	defaultMinGrade = 6.0
	defaultMaxGrade = 10.0
)

// Explanations returned with predictions. The client renders these verbatim.
const (
	explanationNoGrades = "No grades available."
	explanationTrend    = "Prediction based on linear trend of historical grades."
	explanationBaseline = "Not enough history; using baseline average."
)

// Predictor computes a prediction from a student's subject history.
type Predictor interface {
	// Predict computes a forecast, honoring ctx for cancellation.
	Predict(ctx context.Context, studentID string, subjects []model.Subject) (model.Prediction, error)
}

// LinearPredictor implements Predictor with a least-squares trend over
// (timestamp, grade) points, falling back to the running average.
type LinearPredictor struct {
	minGrade float64
	maxGrade float64
}

// Option applies a configuration option to the LinearPredictor.
type Option func(*LinearPredictor)

// WithGradeBounds sets the clipping range for predicted grades.
func WithGradeBounds(minGrade, maxGrade float64) Option {
	return func(p *LinearPredictor) {
		if maxGrade > minGrade {
			p.minGrade = minGrade
			p.maxGrade = maxGrade
		}
	}
}

// New creates a LinearPredictor with configuration options.
func New(opts ...Option) *LinearPredictor {
	p := &LinearPredictor{
		minGrade: defaultMinGrade,
		maxGrade: defaultMaxGrade,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// point is one regression sample: x is the record timestamp, y the grade.
// Outcome classifies a prediction the way the result panel does:
// a value to show, a null with an explanation, or a failure.
type Outcome int

// Prediction outcomes.
const (
	OutcomeAvailable Outcome = iota
	OutcomeUnavailable
	OutcomeFailed
)

// Classify maps a prediction result to its panel outcome.
func Classify(p model.Prediction, err error) Outcome {
	switch {
	case err != nil:
		return OutcomeFailed
	case p.Prediction == nil:
		return OutcomeUnavailable
	default:
		return OutcomeAvailable
	}
}

type point struct {
	x float64
	y float64
}

// Predict computes the forecast for a student.
func (p *LinearPredictor) Predict(ctx context.Context, studentID string, subjects []model.Subject) (model.Prediction, error) {
	select {
	case <-ctx.Done():
		return model.Prediction{}, fmt.Errorf("prediction cancelled: %w", ctx.Err())
	default:
	}

	if len(subjects) == 0 {
		return model.Prediction{
			StudentID:   studentID,
			Explanation: explanationNoGrades,
		}, nil
	}

	points := pointsFrom(subjects)
	baseline := round2(mean(points))

	pred, ok := p.trend(points)
	explanation := explanationTrend
	if !ok {
		pred = baseline
		explanation = explanationBaseline
	}

	return model.Prediction{
		StudentID:   studentID,
		Prediction:  &pred,
		BaselineAvg: &baseline,
		Explanation: explanation,
	}, nil
}

// pointsFrom converts subjects to regression points in date order.
// Records without a usable timestamp fall back to their position index.
func pointsFrom(subjects []model.Subject) []point {
	ordered := make([]model.Subject, len(subjects))
	copy(ordered, subjects)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DateAdded.Before(ordered[j].DateAdded)
	})

	points := make([]point, len(ordered))
	for i, s := range ordered {
		x := float64(i)
		if !s.DateAdded.IsZero() {
			x = float64(s.DateAdded.Unix())
		}
		points[i] = point{x: x, y: s.Grade}
	}
	return points
}

// trend fits a least-squares line and extrapolates one average step past
// the last sample. Returns false when there are no points to fit.
func (p *LinearPredictor) trend(points []point) (float64, bool) {
	n := len(points)
	if n == 0 {
		return 0, false
	}
	if n == 1 {
		return points[0].y, true
	}

	var xMean, yMean float64
	for _, pt := range points {
		xMean += pt.x
		yMean += pt.y
	}
	xMean /= float64(n)
	yMean /= float64(n)

	var num, den float64
	for _, pt := range points {
		num += (pt.x - xMean) * (pt.y - yMean)
		den += (pt.x - xMean) * (pt.x - xMean)
	}
	slope := 0.0
	if den != 0 {
		slope = num / den
	}
	intercept := yMean - slope*xMean

	// Predict at one mean sample spacing past the last x.
	var deltaSum float64
	for i := 1; i < n; i++ {
		deltaSum += points[i].x - points[i-1].x
	}
	nextX := points[n-1].x + deltaSum/float64(n-1)

	pred := slope*nextX + intercept
	pred = math.Max(p.minGrade, math.Min(p.maxGrade, pred))
	return round2(pred), true
}

func mean(points []point) float64 {
	var sum float64
	for _, pt := range points {
		sum += pt.y
	}
	return sum / float64(len(points))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
