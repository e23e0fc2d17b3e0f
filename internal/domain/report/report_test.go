package report

import (
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Gjorgji13/gradetrack/internal/domain/model"
)

func sampleStudent() model.Student {
	return model.Student{ID: "stu-1", Name: "Ana Petrova", Index: "2026/01", City: "Skopje"}
}

func sampleSubjects() []model.Subject {
	added := time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)
	return []model.Subject{
		{ID: "sub-1", StudentID: "stu-1", Name: "Mathematics", Grade: 9.5, DateAdded: added},
		{ID: "sub-2", StudentID: "stu-1", Name: "Physics", Grade: 7.25, DateAdded: added.Add(24 * time.Hour)},
	}
}

func TestParseFormat(t *testing.T) {
	convey.Convey("Given format strings from the request path", t, func() {
		convey.Convey("Then known formats parse case-insensitively", func() {
			for in, want := range map[string]Format{
				"csv":  FormatCSV,
				"XLSX": FormatXLSX,
				" pdf": FormatPDF,
			} {
				got, err := ParseFormat(in)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("And unknown formats are rejected", func() {
			_, err := ParseFormat("docx")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "docx")
		})
	})
}

func TestGenerateCSV(t *testing.T) {
	convey.Convey("Given a student with subjects", t, func() {
		convey.Convey("When generating a CSV report", func() {
			rep, err := Generate(sampleStudent(), sampleSubjects(), FormatCSV)

			convey.Convey("Then the file carries the header and one row per subject", func() {
				convey.So(err, convey.ShouldBeNil)
				body := string(rep.Data)
				lines := strings.Split(strings.TrimSpace(body), "\n")
				convey.So(lines, convey.ShouldHaveLength, 3)
				convey.So(lines[0], convey.ShouldEqual, "Subject,Grade,Date Added")
				convey.So(lines[1], convey.ShouldContainSubstring, "Mathematics")
				convey.So(lines[1], convey.ShouldContainSubstring, "9.5")
				convey.So(lines[2], convey.ShouldContainSubstring, "2026-02-11 14:30")
			})

			convey.Convey("And the attachment metadata matches", func() {
				convey.So(rep.Filename, convey.ShouldEqual, "Ana Petrova_subjects.csv")
				convey.So(rep.ContentType, convey.ShouldEqual, "text/csv")
			})
		})
	})
}

func TestGenerateXLSX(t *testing.T) {
	convey.Convey("Given a student with subjects", t, func() {
		convey.Convey("When generating an XLSX report", func() {
			rep, err := Generate(sampleStudent(), sampleSubjects(), FormatXLSX)

			convey.Convey("Then a non-empty workbook is produced", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(rep.Data), convey.ShouldBeGreaterThan, 0)
				convey.So(rep.Filename, convey.ShouldEqual, "Ana Petrova_subjects.xlsx")
				convey.So(rep.ContentType, convey.ShouldEqual, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			})
		})
	})
}

func TestGeneratePDF(t *testing.T) {
	convey.Convey("Given a student with subjects", t, func() {
		convey.Convey("When generating a PDF report", func() {
			rep, err := Generate(sampleStudent(), sampleSubjects(), FormatPDF)

			convey.Convey("Then a non-empty document is produced", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(rep.Data), convey.ShouldBeGreaterThan, 0)
				convey.So(string(rep.Data[:4]), convey.ShouldEqual, "%PDF")
				convey.So(rep.Filename, convey.ShouldEqual, "Ana Petrova_subjects.pdf")
				convey.So(rep.ContentType, convey.ShouldEqual, "application/pdf")
			})
		})
	})

	convey.Convey("Given a student with no subjects", t, func() {
		convey.Convey("When generating a PDF report", func() {
			rep, err := Generate(sampleStudent(), nil, FormatPDF)

			convey.Convey("Then the document is still produced", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(rep.Data), convey.ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestGenerateFallbackFilename(t *testing.T) {
	convey.Convey("Given a student without a name", t, func() {
		convey.Convey("When generating a report", func() {
			rep, err := Generate(model.Student{ID: "stu-2"}, nil, FormatCSV)

			convey.Convey("Then a placeholder filename is used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rep.Filename, convey.ShouldEqual, "student_subjects.csv")
			})
		})
	})
}
