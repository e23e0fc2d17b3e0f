// Command seed fills a grade tracker database with demo students and
// grades so the pages and the prediction endpoint have something to show.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/Gjorgji13/gradetrack/internal/adapters/repository"
	"github.com/Gjorgji13/gradetrack/internal/domain/model"
	"github.com/Gjorgji13/gradetrack/pkg/logger"
)

const (
	defaultDriver   = repository.DriverSQLite
	defaultDSN      = "gradetrack.db"
	defaultStudents = 8
	defaultSubjects = 6
	defaultTimeout  = 30 * time.Second

	minSeedGrade = 6.0
	maxSeedGrade = 10.0
)

var subjectNames = []string{
	"Mathematics", "Physics", "Chemistry", "Biology", "History",
	"Geography", "Literature", "Programming", "Databases", "Networks",
}

var studentSeeds = []struct {
	name string
	city string
}{
	{"Ana Petrova", "Skopje"},
	{"Marko Stojanov", "Bitola"},
	{"Elena Ristova", "Ohrid"},
	{"Stefan Iliev", "Tetovo"},
	{"Ivana Georgieva", "Skopje"},
	{"Nikola Trajkov", "Kumanovo"},
	{"Sara Dimitrova", "Veles"},
	{"Aleksandar Mitrev", "Prilep"},
	{"Teodora Jovanova", "Strumica"},
	{"Filip Nakov", "Stip"},
}

func main() {
	var (
		driver   = flag.String("driver", defaultDriver, "Storage driver (sqlite or postgres)")
		dsn      = flag.String("dsn", defaultDSN, "Storage DSN (file path for sqlite, URL for postgres)")
		students = flag.Int("students", defaultStudents, "Number of students to create")
		subjects = flag.Int("subjects", defaultSubjects, "Subjects per student")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible data")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Named("seed")

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := repository.Open(ctx, *driver, *dsn)
	if err != nil {
		log.Error(ctx, "open store failed", logger.Error(err))
		return
	}
	defer store.Close()

	rng := rand.New(rand.NewSource(*seed))

	if *students > len(studentSeeds) {
		*students = len(studentSeeds)
	}
	if *subjects > len(subjectNames) {
		*subjects = len(subjectNames)
	}

	now := time.Now().UTC()
	for i := 0; i < *students; i++ {
		student, err := store.CreateStudent(ctx, model.Student{
			Name:  studentSeeds[i].name,
			Index: indexFor(i),
			City:  studentSeeds[i].city,
		})
		if err != nil {
			log.Error(ctx, "create student failed", logger.Error(err))
			return
		}

		// Grades drift around a per-student base so the linear trend
		// has something to fit.
		base := minSeedGrade + rng.Float64()*(maxSeedGrade-minSeedGrade)
		for j := 0; j < *subjects; j++ {
			grade := base + rng.Float64()*1.5 - 0.75
			if grade < minSeedGrade {
				grade = minSeedGrade
			}
			if grade > maxSeedGrade {
				grade = maxSeedGrade
			}

			_, err := store.AddSubject(ctx, model.Subject{
				StudentID: student.ID,
				Name:      subjectNames[j],
				Grade:     float64(int(grade*100)) / 100,
				DateAdded: now.AddDate(0, 0, -7*(*subjects-j)),
			})
			if err != nil {
				log.Error(ctx, "add subject failed", logger.Error(err))
				return
			}
		}

		log.Info(ctx, "seeded student",
			logger.String("name", student.Name),
			logger.Int("subjects", *subjects),
		)
	}

	log.Info(ctx, "seeding complete", logger.Int("students", *students))
}

func indexFor(i int) string {
	return time.Now().Format("2006") + "/" + string(rune('0'+i/10)) + string(rune('0'+i%10))
}
