package prediction

import (
	"context"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Gjorgji13/gradetrack/internal/domain/model"
)

func subjectsWithGrades(start time.Time, step time.Duration, grades ...float64) []model.Subject {
	out := make([]model.Subject, len(grades))
	for i, g := range grades {
		out[i] = model.Subject{
			ID:        "sub-" + string(rune('a'+i)),
			Name:      "Subject " + string(rune('A'+i)),
			Grade:     g,
			DateAdded: start.Add(time.Duration(i) * step),
		}
	}
	return out
}

func TestPredictNoHistory(t *testing.T) {
	convey.Convey("Given a predictor and a student with no grades", t, func() {
		ctx := context.Background()
		p := New()

		convey.Convey("When predicting", func() {
			got, err := p.Predict(ctx, "student-1", nil)

			convey.Convey("Then the prediction is null with an explanation", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Prediction, convey.ShouldBeNil)
				convey.So(got.BaselineAvg, convey.ShouldBeNil)
				convey.So(got.Explanation, convey.ShouldEqual, "No grades available.")
			})
		})
	})
}

func TestPredictSingleGrade(t *testing.T) {
	convey.Convey("Given a student with a single grade", t, func() {
		ctx := context.Background()
		p := New()
		subjects := subjectsWithGrades(time.Now(), time.Hour, 8.5)

		convey.Convey("When predicting", func() {
			got, err := p.Predict(ctx, "student-1", subjects)

			convey.Convey("Then the prediction repeats that grade", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Prediction, convey.ShouldNotBeNil)
				convey.So(*got.Prediction, convey.ShouldEqual, 8.5)
				convey.So(got.BaselineAvg, convey.ShouldNotBeNil)
				convey.So(*got.BaselineAvg, convey.ShouldEqual, 8.5)
				convey.So(got.Explanation, convey.ShouldEqual, "Prediction based on linear trend of historical grades.")
			})
		})
	})
}

func TestPredictLinearTrend(t *testing.T) {
	convey.Convey("Given a student with an improving history", t, func() {
		ctx := context.Background()
		p := New()
		start := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
		subjects := subjectsWithGrades(start, 7*24*time.Hour, 7.0, 7.5, 8.0, 8.5)

		convey.Convey("When predicting", func() {
			got, err := p.Predict(ctx, "student-1", subjects)

			convey.Convey("Then the trend extrapolates one step further", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Prediction, convey.ShouldNotBeNil)
				convey.So(*got.Prediction, convey.ShouldEqual, 9.0)
				convey.So(got.Explanation, convey.ShouldEqual, "Prediction based on linear trend of historical grades.")
			})

			convey.Convey("And the baseline average covers the history", func() {
				convey.So(got.BaselineAvg, convey.ShouldNotBeNil)
				convey.So(*got.BaselineAvg, convey.ShouldEqual, 7.75)
			})
		})
	})
}

func TestPredictClipsToBounds(t *testing.T) {
	convey.Convey("Given a steep upward trend near the grade ceiling", t, func() {
		ctx := context.Background()
		p := New()
		start := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
		subjects := subjectsWithGrades(start, 24*time.Hour, 8.0, 9.0, 10.0)

		convey.Convey("When predicting", func() {
			got, err := p.Predict(ctx, "student-1", subjects)

			convey.Convey("Then the prediction is clipped to the max grade", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Prediction, convey.ShouldNotBeNil)
				convey.So(*got.Prediction, convey.ShouldEqual, 10.0)
			})
		})
	})

	convey.Convey("Given a steep downward trend near the grade floor", t, func() {
		ctx := context.Background()
		p := New()
		start := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
		subjects := subjectsWithGrades(start, 24*time.Hour, 8.0, 7.0, 6.0)

		convey.Convey("When predicting", func() {
			got, err := p.Predict(ctx, "student-1", subjects)

			convey.Convey("Then the prediction is clipped to the min grade", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Prediction, convey.ShouldNotBeNil)
				convey.So(*got.Prediction, convey.ShouldEqual, 6.0)
			})
		})
	})
}

func TestPredictIdenticalTimestamps(t *testing.T) {
	convey.Convey("Given grades added at the same instant", t, func() {
		ctx := context.Background()
		p := New()
		when := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		subjects := subjectsWithGrades(when, 0, 7.0, 9.0)

		convey.Convey("When predicting", func() {
			got, err := p.Predict(ctx, "student-1", subjects)

			convey.Convey("Then a zero denominator falls back to a flat trend", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Prediction, convey.ShouldNotBeNil)
				convey.So(*got.Prediction, convey.ShouldEqual, 8.0)
			})
		})
	})
}

func TestPredictOrdersByDate(t *testing.T) {
	convey.Convey("Given subjects provided out of chronological order", t, func() {
		ctx := context.Background()
		p := New()
		start := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
		subjects := subjectsWithGrades(start, 7*24*time.Hour, 7.0, 7.5, 8.0, 8.5)
		shuffled := []model.Subject{subjects[2], subjects[0], subjects[3], subjects[1]}

		convey.Convey("When predicting", func() {
			got, err := p.Predict(ctx, "student-1", shuffled)

			convey.Convey("Then the result matches the chronological fit", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Prediction, convey.ShouldNotBeNil)
				convey.So(*got.Prediction, convey.ShouldEqual, 9.0)
			})

			convey.Convey("And the input slice is left untouched", func() {
				convey.So(shuffled[0].ID, convey.ShouldEqual, subjects[2].ID)
			})
		})
	})
}

func TestClassify(t *testing.T) {
	convey.Convey("Given prediction results", t, func() {
		value := 8.5

		convey.Convey("Then a value classifies as available", func() {
			got := Classify(model.Prediction{Prediction: &value}, nil)
			convey.So(got, convey.ShouldEqual, OutcomeAvailable)
		})

		convey.Convey("And a null prediction classifies as unavailable", func() {
			got := Classify(model.Prediction{Explanation: "No grades available."}, nil)
			convey.So(got, convey.ShouldEqual, OutcomeUnavailable)
		})

		convey.Convey("And an error classifies as failed, even with a value", func() {
			got := Classify(model.Prediction{Prediction: &value}, context.DeadlineExceeded)
			convey.So(got, convey.ShouldEqual, OutcomeFailed)
		})
	})
}

func TestPredictCustomBounds(t *testing.T) {
	convey.Convey("Given a predictor with widened bounds", t, func() {
		ctx := context.Background()
		p := New(WithGradeBounds(1, 20))
		start := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
		subjects := subjectsWithGrades(start, 24*time.Hour, 8.0, 9.0, 10.0)

		convey.Convey("When predicting a steep trend", func() {
			got, err := p.Predict(ctx, "student-1", subjects)

			convey.Convey("Then the prediction is not clipped at 10", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Prediction, convey.ShouldNotBeNil)
				convey.So(*got.Prediction, convey.ShouldEqual, 11.0)
			})
		})
	})
}
