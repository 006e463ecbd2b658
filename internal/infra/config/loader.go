package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides are read from the process environment and win over setting.json
type envOverrides struct {
	PartialCredit *float64 `env:"PHASETRACK_PARTIAL_CREDIT"`
	ProgressCap   *int     `env:"PHASETRACK_PROGRESS_CAP"`
	DBPath        *string  `env:"PHASETRACK_DB_PATH"`
	StderrLevel   *string  `env:"PHASETRACK_STDERR_LEVEL"`
}

// applyEnvOverrides copies set environment variables onto settings.
// A nil environ reads the real process environment.
func applyEnvOverrides(settings *RawSettings, environ map[string]string) (bool, error) {
	var overrides envOverrides
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&overrides, opts); err != nil {
		return false, fmt.Errorf("parse env: %w", err)
	}

	applied := false
	if overrides.PartialCredit != nil {
		settings.PartialCredit = overrides.PartialCredit
		applied = true
	}
	if overrides.ProgressCap != nil {
		settings.ProgressCap = overrides.ProgressCap
		applied = true
	}
	if overrides.DBPath != nil {
		settings.DBPath = overrides.DBPath
		applied = true
	}
	if overrides.StderrLevel != nil {
		settings.StderrLevel = overrides.StderrLevel
		applied = true
	}
	return applied, nil
}
