package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Gjorgji13/gradetrack/internal/adapters/repository"
	"github.com/Gjorgji13/gradetrack/internal/domain/model"
	"github.com/Gjorgji13/gradetrack/internal/domain/report"
	"github.com/Gjorgji13/gradetrack/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func startedService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "service_test.db")
	opts = append([]Option{WithStorage(repository.DriverSQLite, dsn)}, opts...)
	svc := New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceLifecycle(t *testing.T) {
	convey.Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		convey.Convey("When starting it twice", func() {
			err := svc.Start(ctx)

			convey.Convey("Then the second start is a no-op", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When reading the grade bounds", func() {
			minGrade, maxGrade := svc.GradeBounds()

			convey.Convey("Then the defaults apply", func() {
				convey.So(minGrade, convey.ShouldEqual, 6.0)
				convey.So(maxGrade, convey.ShouldEqual, 10.0)
			})
		})
	})
}

func TestStudentValidation(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		convey.Convey("When creating a student without a name", func() {
			_, err := svc.CreateStudent(ctx, "   ", "2026/01", "Skopje")

			convey.Convey("Then the name is required", func() {
				convey.So(err, convey.ShouldWrap, ErrNameRequired)
			})
		})

		convey.Convey("When creating a student with surrounding spaces", func() {
			created, err := svc.CreateStudent(ctx, "  Ana Petrova  ", " 2026/01 ", " Skopje ")

			convey.Convey("Then the fields are trimmed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(created.Name, convey.ShouldEqual, "Ana Petrova")
				convey.So(created.Index, convey.ShouldEqual, "2026/01")
				convey.So(created.City, convey.ShouldEqual, "Skopje")
			})
		})
	})
}

func TestSubjectValidation(t *testing.T) {
	convey.Convey("Given a service with one student", t, func() {
		ctx := context.Background()
		svc := startedService(t)
		student, err := svc.CreateStudent(ctx, "Ana Petrova", "", "")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When adding a subject without a name", func() {
			_, err := svc.AddSubject(ctx, student.ID, "", 8)

			convey.Convey("Then the name is required", func() {
				convey.So(err, convey.ShouldWrap, ErrSubjectNameRequired)
			})
		})

		convey.Convey("When adding a grade outside the bounds", func() {
			_, errLow := svc.AddSubject(ctx, student.ID, "Mathematics", 5.99)
			_, errHigh := svc.AddSubject(ctx, student.ID, "Mathematics", 10.01)

			convey.Convey("Then both directions are rejected", func() {
				convey.So(errLow, convey.ShouldWrap, ErrGradeOutOfRange)
				convey.So(errHigh, convey.ShouldWrap, ErrGradeOutOfRange)
			})
		})

		convey.Convey("When adding a subject for an unknown student", func() {
			_, err := svc.AddSubject(ctx, "missing", "Mathematics", 8)

			convey.Convey("Then the student lookup fails", func() {
				convey.So(err, convey.ShouldWrap, repository.ErrStudentNotFound)
			})
		})

		convey.Convey("When adding boundary grades", func() {
			_, errMin := svc.AddSubject(ctx, student.ID, "Physics", 6)
			_, errMax := svc.AddSubject(ctx, student.ID, "Chemistry", 10)

			convey.Convey("Then both bounds are accepted", func() {
				convey.So(errMin, convey.ShouldBeNil)
				convey.So(errMax, convey.ShouldBeNil)
			})
		})
	})
}

func TestListStudentsAggregates(t *testing.T) {
	convey.Convey("Given two students with different averages", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		ana, err := svc.CreateStudent(ctx, "Ana Petrova", "", "Skopje")
		convey.So(err, convey.ShouldBeNil)
		marko, err := svc.CreateStudent(ctx, "Marko Stojanov", "", "Bitola")
		convey.So(err, convey.ShouldBeNil)

		for _, g := range []float64{9, 10} {
			_, err := svc.AddSubject(ctx, ana.ID, "Subject", g)
			convey.So(err, convey.ShouldBeNil)
		}
		_, err = svc.AddSubject(ctx, marko.ID, "Subject", 6.5)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When listing the cohort", func() {
			summaries, overview, err := svc.ListStudents(ctx, "")

			convey.Convey("Then averages and counts are per student", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(summaries, convey.ShouldHaveLength, 2)

				byName := map[string]model.StudentSummary{}
				for _, s := range summaries {
					byName[s.Name] = s
				}
				convey.So(byName["Ana Petrova"].Average, convey.ShouldEqual, 9.5)
				convey.So(byName["Ana Petrova"].SubjectCount, convey.ShouldEqual, 2)
				convey.So(byName["Marko Stojanov"].Average, convey.ShouldEqual, 6.5)
			})

			convey.Convey("And the overview names highest and lowest", func() {
				convey.So(overview.Highest, convey.ShouldNotBeNil)
				convey.So(overview.Highest.Name, convey.ShouldEqual, "Ana Petrova")
				convey.So(overview.Lowest.Name, convey.ShouldEqual, "Marko Stojanov")
				convey.So(overview.AverageAll, convey.ShouldEqual, 8.0)
			})
		})

		convey.Convey("When filtering by city", func() {
			summaries, _, err := svc.ListStudents(ctx, "bitola")

			convey.Convey("Then only the match comes back", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(summaries, convey.ShouldHaveLength, 1)
				convey.So(summaries[0].Name, convey.ShouldEqual, "Marko Stojanov")
			})
		})
	})
}

func TestGetStudentPage(t *testing.T) {
	convey.Convey("Given a student with mixed grades", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		student, err := svc.CreateStudent(ctx, "Ana Petrova", "", "")
		convey.So(err, convey.ShouldBeNil)
		for name, g := range map[string]float64{
			"Mathematics": 9.5,
			"Physics":     6.5,
			"Chemistry":   8.0,
		} {
			_, err := svc.AddSubject(ctx, student.ID, name, g)
			convey.So(err, convey.ShouldBeNil)
		}

		convey.Convey("When loading the page with the default sort", func() {
			page, err := svc.GetStudentPage(ctx, student.ID, "", "")

			convey.Convey("Then grades come highest first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(page.Subjects, convey.ShouldHaveLength, 3)
				convey.So(page.Subjects[0].Name, convey.ShouldEqual, "Mathematics")
				convey.So(page.Subjects[2].Name, convey.ShouldEqual, "Physics")
			})

			convey.Convey("And the aggregates are computed", func() {
				convey.So(page.Average, convey.ShouldEqual, 8.0)
				convey.So(page.TargetAverage, convey.ShouldEqual, 8.0)
				convey.So(page.WeakSubjects, convey.ShouldHaveLength, 1)
				convey.So(page.WeakSubjects[0].Name, convey.ShouldEqual, "Physics")
			})

			convey.Convey("And the required next grade lifts the average to the target", func() {
				convey.So(page.RequiredGrade, convey.ShouldNotBeNil)
				convey.So(*page.RequiredGrade, convey.ShouldEqual, 8.0)
			})
		})

		convey.Convey("When loading the page sorted ascending", func() {
			page, err := svc.GetStudentPage(ctx, student.ID, "", "asc")

			convey.Convey("Then grades come lowest first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(page.Subjects[0].Name, convey.ShouldEqual, "Physics")
			})
		})

		convey.Convey("When loading an unknown student", func() {
			_, err := svc.GetStudentPage(ctx, "missing", "", "")

			convey.Convey("Then a not-found error is returned", func() {
				convey.So(err, convey.ShouldWrap, repository.ErrStudentNotFound)
			})
		})
	})

	convey.Convey("Given a student with no grades", t, func() {
		ctx := context.Background()
		svc := startedService(t)
		student, err := svc.CreateStudent(ctx, "Marko Stojanov", "", "")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When loading the page", func() {
			page, err := svc.GetStudentPage(ctx, student.ID, "", "")

			convey.Convey("Then the required grade is the target itself", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(page.Subjects, convey.ShouldBeEmpty)
				convey.So(page.RequiredGrade, convey.ShouldNotBeNil)
				convey.So(*page.RequiredGrade, convey.ShouldEqual, 8.0)
			})
		})
	})

	convey.Convey("Given a student whose target is out of reach", t, func() {
		ctx := context.Background()
		svc := startedService(t)
		student, err := svc.CreateStudent(ctx, "Elena Ristova", "", "")
		convey.So(err, convey.ShouldBeNil)
		for i := 0; i < 3; i++ {
			_, err := svc.AddSubject(ctx, student.ID, "Subject", 6)
			convey.So(err, convey.ShouldBeNil)
		}

		convey.Convey("When loading the page", func() {
			page, err := svc.GetStudentPage(ctx, student.ID, "", "")

			convey.Convey("Then the required grade is nil", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(page.RequiredGrade, convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a student already above the target", t, func() {
		ctx := context.Background()
		svc := startedService(t)
		student, err := svc.CreateStudent(ctx, "Ivana Georgieva", "", "")
		convey.So(err, convey.ShouldBeNil)
		for i := 0; i < 3; i++ {
			_, err := svc.AddSubject(ctx, student.ID, "Subject", 10)
			convey.So(err, convey.ShouldBeNil)
		}

		convey.Convey("When loading the page", func() {
			page, err := svc.GetStudentPage(ctx, student.ID, "", "")

			convey.Convey("Then the required grade is floored at the minimum", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(page.RequiredGrade, convey.ShouldNotBeNil)
				convey.So(*page.RequiredGrade, convey.ShouldEqual, 6.0)
			})
		})
	})
}

func TestPredictThroughService(t *testing.T) {
	convey.Convey("Given a student with an improving history", t, func() {
		ctx := context.Background()
		svc := startedService(t)
		student, err := svc.CreateStudent(ctx, "Ana Petrova", "", "")
		convey.So(err, convey.ShouldBeNil)

		store := svc.store
		base := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
		for i, g := range []float64{7.0, 7.5, 8.0} {
			_, err := store.AddSubject(ctx, model.Subject{
				StudentID: student.ID,
				Name:      "Subject",
				Grade:     g,
				DateAdded: base.AddDate(0, 0, 7*i),
			})
			convey.So(err, convey.ShouldBeNil)
		}

		convey.Convey("When predicting", func() {
			got, err := svc.Predict(ctx, student.ID)

			convey.Convey("Then the trend continues upward", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Prediction, convey.ShouldNotBeNil)
				convey.So(*got.Prediction, convey.ShouldEqual, 8.5)
			})
		})
	})

	convey.Convey("Given a student with no history", t, func() {
		ctx := context.Background()
		svc := startedService(t)
		student, err := svc.CreateStudent(ctx, "Marko Stojanov", "", "")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When predicting", func() {
			got, err := svc.Predict(ctx, student.ID)

			convey.Convey("Then the prediction is nil with an explanation", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Prediction, convey.ShouldBeNil)
				convey.So(got.Explanation, convey.ShouldEqual, "No grades available.")
			})
		})
	})
}

func TestExportThroughService(t *testing.T) {
	convey.Convey("Given a student with grades", t, func() {
		ctx := context.Background()
		svc := startedService(t)
		student, err := svc.CreateStudent(ctx, "Ana Petrova", "", "")
		convey.So(err, convey.ShouldBeNil)
		_, err = svc.AddSubject(ctx, student.ID, "Mathematics", 9.5)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When exporting as CSV", func() {
			rep, err := svc.Export(ctx, student.ID, "csv")

			convey.Convey("Then the attachment carries the subject", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Filename, convey.ShouldEqual, "Ana Petrova_subjects.csv")
				convey.So(string(rep.Data), convey.ShouldContainSubstring, "Mathematics")
			})
		})

		convey.Convey("When exporting an unsupported format", func() {
			_, err := svc.Export(ctx, student.ID, "docx")

			convey.Convey("Then the format is rejected", func() {
				convey.So(err, convey.ShouldWrap, report.ErrUnsupportedFormat)
			})
		})

		convey.Convey("When exporting an unknown student", func() {
			_, err := svc.Export(ctx, "missing", "csv")

			convey.Convey("Then a not-found error is returned", func() {
				convey.So(err, convey.ShouldWrap, repository.ErrStudentNotFound)
			})
		})

		convey.Convey("When both the student and the format are wrong", func() {
			_, err := svc.Export(ctx, "missing", "docx")

			convey.Convey("Then the missing student takes precedence", func() {
				convey.So(err, convey.ShouldWrap, repository.ErrStudentNotFound)
			})
		})
	})
}

func TestGetStats(t *testing.T) {
	convey.Convey("Given a started service with data", t, func() {
		ctx := context.Background()
		svc := startedService(t)
		student, err := svc.CreateStudent(ctx, "Ana Petrova", "", "")
		convey.So(err, convey.ShouldBeNil)
		_, err = svc.AddSubject(ctx, student.ID, "Mathematics", 9)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When reading the stats", func() {
			stats := svc.GetStats()

			convey.Convey("Then the counters and policy are exposed", func() {
				convey.So(stats.Started, convey.ShouldBeTrue)
				convey.So(stats.TotalStudents, convey.ShouldEqual, 1)
				convey.So(stats.TotalSubjects, convey.ShouldEqual, 1)
				convey.So(stats.StorageDriver, convey.ShouldEqual, repository.DriverSQLite)
				convey.So(stats.MinGrade, convey.ShouldEqual, 6.0)
				convey.So(stats.TargetAverage, convey.ShouldEqual, 8.0)
			})
		})
	})
}
