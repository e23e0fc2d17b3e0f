// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Load layers defaults, optional YAML file and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorageDriver selects the store backend: sqlite or postgres.
	StorageDriver string `koanf:"storage_driver"`

	// StorageDSN is the sqlite file path or postgres connection string.
	StorageDSN string `koanf:"storage_dsn"`

	// MinGrade and MaxGrade bound accepted grade writes and prediction clipping.
	MinGrade float64 `koanf:"min_grade"`
	MaxGrade float64 `koanf:"max_grade"`

	// TargetAverage is the average a student aims for; the student page
	// derives the required next grade from it.
	TargetAverage float64 `koanf:"target_average"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":5001",
		StorageDriver: "sqlite",
		StorageDSN:    "gradetrack.db",
		MinGrade:      6,
		MaxGrade:      10,
		TargetAverage: 8.0,
	}
}
