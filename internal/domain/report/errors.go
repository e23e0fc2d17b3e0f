package report

import "errors"

// Sentinel kinds for report errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrGenerate          = errors.New("report generation failed")
)
