package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/phasetrack/internal/app"
	"github.com/YoshitsuguKoike/phasetrack/internal/app/config"
)

// SettingFileName is the settings file looked up inside the base directory
const SettingFileName = "setting.json"

// RawSettings represents the structure of setting.json file.
// JSON tags are used for marshaling/unmarshaling.
type RawSettings struct {
	// Progress tuning
	PartialCredit *float64 `json:"partial_credit"`
	ProgressCap   *int     `json:"progress_cap"`

	// Display placeholders
	NotStartedLabel *string `json:"not_started_label"`
	NoTaskLabel     *string `json:"no_task_label"`

	// Sources
	DBPath *string `json:"db_path"`

	// Logging
	StderrLevel *string `json:"stderr_level"`
}

// LoadSettings loads configuration.
// Priority: ENV > setting.json > defaults
func LoadSettings(fs afero.Fs, baseDir string) (*config.AppConfig, error) {
	return loadSettings(fs, baseDir, nil)
}

func loadSettings(fs afero.Fs, baseDir string, environ map[string]string) (*config.AppConfig, error) {
	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	jsonPath := filepath.Join(baseDir, SettingFileName)
	data, err := afero.ReadFile(fs, jsonPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
		configSource = "json"
		settingPath = jsonPath
	case errors.Is(err, os.ErrNotExist):
		// defaults
	default:
		return nil, fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}

	applied, err := applyEnvOverrides(settings, environ)
	if err != nil {
		return nil, err
	}
	if applied {
		configSource = "env"
	}

	checkRanges(settings)
	applyDefaults(settings)

	return buildAppConfig(settings, configSource, settingPath), nil
}

// checkRanges drops out-of-range values so defaults take over
func checkRanges(settings *RawSettings) {
	logger := app.GetLogger()

	if v := settings.PartialCredit; v != nil && (*v <= 0 || *v >= 1) {
		logger.Warn("partial_credit %v out of range (0,1), using %v", *v, config.DefaultPartialCredit)
		settings.PartialCredit = nil
	}
	if v := settings.ProgressCap; v != nil && (*v < 1 || *v > 99) {
		logger.Warn("progress_cap %d out of range 1..99, using %d", *v, config.DefaultProgressCap)
		settings.ProgressCap = nil
	}
	if v := settings.StderrLevel; v != nil {
		switch strings.ToLower(strings.TrimSpace(*v)) {
		case "debug", "info", "warn", "warning", "error":
		default:
			logger.Warn("stderr_level %q is not recognized, using %q", *v, config.DefaultStderrLevel)
			settings.StderrLevel = nil
		}
	}
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(settings *RawSettings) {
	if settings.PartialCredit == nil {
		v := config.DefaultPartialCredit
		settings.PartialCredit = &v
	}
	if settings.ProgressCap == nil {
		v := config.DefaultProgressCap
		settings.ProgressCap = &v
	}
	if settings.NotStartedLabel == nil || strings.TrimSpace(*settings.NotStartedLabel) == "" {
		v := config.DefaultNotStartedLabel
		settings.NotStartedLabel = &v
	}
	if settings.NoTaskLabel == nil || strings.TrimSpace(*settings.NoTaskLabel) == "" {
		v := config.DefaultNoTaskLabel
		settings.NoTaskLabel = &v
	}
	if settings.DBPath == nil {
		v := ""
		settings.DBPath = &v
	}
	if settings.StderrLevel == nil {
		v := config.DefaultStderrLevel
		settings.StderrLevel = &v
	}
}

// buildAppConfig creates an AppConfig from RawSettings
func buildAppConfig(settings *RawSettings, configSource, settingPath string) *config.AppConfig {
	return config.NewAppConfig(
		*settings.PartialCredit, *settings.ProgressCap,
		*settings.NotStartedLabel, *settings.NoTaskLabel,
		*settings.DBPath,
		*settings.StderrLevel,
		configSource, settingPath,
	)
}
