// Package chart builds the typed props consumed by the grade bar chart.
//
// The page script receives Props as embedded JSON and hands it to the
// charting library unchanged, so every visual decision that matters
// (bar order, colors, axis range) is made and tested here.
package chart

import (
	"github.com/Gjorgji13/gradetrack/internal/domain/model"
)

// Traffic-light thresholds for bar colors.
const (
	greenThreshold = 9.0
	amberThreshold = 7.0
)

// Bar colors, one per threshold band.
const (
	colorGreen = "#28a745"
	colorAmber = "#ffc107"
	colorRed   = "#dc3545"
)

// Axis bounds for the grade scale.
const (
	axisMin = 0.0
	axisMax = 10.0
)

// Props is the typed payload for one bar chart. Labels, Values and Colors
// are parallel, index-aligned sequences in server-provided order.
type Props struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
	YMin   float64   `json:"y_min"`
	YMax   float64   `json:"y_max"`
}

// BarColor returns the deterministic color for a grade:
// green if >= 9, amber if >= 7, red otherwise.
func BarColor(grade float64) string {
	switch {
	case grade >= greenThreshold:
		return colorGreen
	case grade >= amberThreshold:
		return colorAmber
	default:
		return colorRed
	}
}

// Build converts subjects into chart props, preserving order. The second
// return is false for an empty history, in which case no chart is rendered.
func Build(subjects []model.Subject) (Props, bool) {
	if len(subjects) == 0 {
		return Props{}, false
	}

	p := Props{
		Labels: make([]string, len(subjects)),
		Values: make([]float64, len(subjects)),
		Colors: make([]string, len(subjects)),
		YMin:   axisMin,
		YMax:   axisMax,
	}
	for i, s := range subjects {
		p.Labels[i] = s.Name
		p.Values[i] = s.Grade
		p.Colors[i] = BarColor(s.Grade)
	}
	return p, true
}
