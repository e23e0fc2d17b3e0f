// Package report renders a student's grade history into downloadable files.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Gjorgji13/gradetrack/internal/domain/model"
	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// Format identifies a supported export file format.
type Format string

// Supported export formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

const dateLayout = "2006-01-02 15:04"

// ParseFormat validates a format string from the request path.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Report is a generated export ready to be served as an attachment.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Generate renders the student's subjects in the requested format.
func Generate(student model.Student, subjects []model.Subject, format Format) (Report, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = generateCSV(subjects)
	case FormatXLSX:
		data, err = generateXLSX(student, subjects)
	case FormatPDF:
		data, err = generatePDF(student, subjects)
	default:
		return Report{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Report{}, err
	}

	return Report{
		Filename:    exportFilename(student, format),
		ContentType: contentType(format),
		Data:        data,
	}, nil
}

func exportFilename(student model.Student, format Format) string {
	name := strings.TrimSpace(student.Name)
	if name == "" {
		name = "student"
	}
	return fmt.Sprintf("%s_subjects.%s", name, format)
}

func contentType(format Format) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// row flattens a subject for tabular output.
func row(s model.Subject) []string {
	date := "N/A"
	if !s.DateAdded.IsZero() {
		date = s.DateAdded.Format(dateLayout)
	}
	return []string{s.Name, strconv.FormatFloat(s.Grade, 'f', -1, 64), date}
}

func average(subjects []model.Subject) float64 {
	if len(subjects) == 0 {
		return 0
	}
	var sum float64
	for _, s := range subjects {
		sum += s.Grade
	}
	return math.Round(sum/float64(len(subjects))*100) / 100
}

func generateCSV(subjects []model.Subject) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Subject", "Grade", "Date Added"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	for _, s := range subjects {
		if err := w.Write(row(s)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	return buf.Bytes(), nil
}

func generateXLSX(student model.Student, subjects []model.Subject) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const subjectsSheet = "Subjects"
	if err := f.SetSheetName("Sheet1", subjectsSheet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	headers := []string{"Subject", "Grade", "Date Added"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
		}
		if err := f.SetCellValue(subjectsSheet, cell, h); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
		}
	}
	for i, s := range subjects {
		values := row(s)
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
			}
			// Keep grades numeric in the sheet.
			if col == 1 {
				if err := f.SetCellValue(subjectsSheet, cell, s.Grade); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
				}
				continue
			}
			if err := f.SetCellValue(subjectsSheet, cell, v); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
			}
		}
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	summary := [][]interface{}{
		{"Student", "Average", "Subjects count"},
		{student.Name, average(subjects), len(subjects)},
	}
	for r, cells := range summary {
		for c, v := range cells {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
			}
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	return buf.Bytes(), nil
}

func generatePDF(student model.Student, subjects []model.Subject) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Student: "+student.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Index: "+student.Index, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "City: "+student.City, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	if len(subjects) == 0 {
		pdf.CellFormat(0, 6, "No subjects available.", "", 1, "L", false, 0, "")
	} else {
		widths := []float64{90, 30, 60}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(242, 242, 242)
		for i, h := range []string{"Subject", "Grade", "Date Added"} {
			pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 11)
		for _, s := range subjects {
			for i, v := range row(s) {
				pdf.CellFormat(widths[i], 7, v, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	return buf.Bytes(), nil
}
