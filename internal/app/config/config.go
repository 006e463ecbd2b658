package config

// Config provides read-only access to application configuration.
// This interface abstracts the configuration source (JSON, ENV, defaults)
// and ensures the app layer doesn't depend on infrastructure details.
type Config interface {
	// Progress tuning
	PartialCredit() float64 // Share of the active phase counted as done (partial_credit)
	ProgressCap() int       // Ceiling for incomplete workflows (progress_cap)

	// Display placeholders
	NotStartedLabel() string // Section label when none is set (not_started_label)
	NoTaskLabel() string     // Line item label when none is set (no_task_label)

	// Sources
	DBPath() string // SQLite project database (db_path)

	// Logging
	StderrLevel() string // Stderr log level (stderr_level)

	// Metadata
	ConfigSource() string // Source of configuration: "json", "env", or "default"
	SettingPath() string  // Path to setting.json if loaded from file
}

const (
	DefaultPartialCredit   = 0.5
	DefaultProgressCap     = 95
	DefaultNotStartedLabel = "Not Started"
	DefaultNoTaskLabel     = "No active task"
	DefaultStderrLevel     = "warn"
)

// AppConfig is the concrete implementation of Config interface.
type AppConfig struct {
	partialCredit float64
	progressCap   int

	notStartedLabel string
	noTaskLabel     string

	dbPath string

	stderrLevel string

	configSource string
	settingPath  string
}

// NewAppConfig creates a new AppConfig with the given values
func NewAppConfig(
	partialCredit float64, progressCap int,
	notStartedLabel, noTaskLabel string,
	dbPath string,
	stderrLevel string,
	configSource, settingPath string,
) *AppConfig {
	return &AppConfig{
		partialCredit:   partialCredit,
		progressCap:     progressCap,
		notStartedLabel: notStartedLabel,
		noTaskLabel:     noTaskLabel,
		dbPath:          dbPath,
		stderrLevel:     stderrLevel,
		configSource:    configSource,
		settingPath:     settingPath,
	}
}

// Defaults returns the configuration used when nothing is loaded
func Defaults() *AppConfig {
	return NewAppConfig(
		DefaultPartialCredit, DefaultProgressCap,
		DefaultNotStartedLabel, DefaultNoTaskLabel,
		"",
		DefaultStderrLevel,
		"default", "",
	)
}

// PartialCredit returns the share of the active phase counted as done
func (c *AppConfig) PartialCredit() float64 {
	return c.partialCredit
}

// ProgressCap returns the ceiling for incomplete workflows
func (c *AppConfig) ProgressCap() int {
	return c.progressCap
}

// NotStartedLabel returns the section placeholder
func (c *AppConfig) NotStartedLabel() string {
	return c.notStartedLabel
}

// NoTaskLabel returns the line item placeholder
func (c *AppConfig) NoTaskLabel() string {
	return c.noTaskLabel
}

// DBPath returns the SQLite project database path
func (c *AppConfig) DBPath() string {
	return c.dbPath
}

// StderrLevel returns the stderr log level
func (c *AppConfig) StderrLevel() string {
	return c.stderrLevel
}

// ConfigSource returns the source of configuration
func (c *AppConfig) ConfigSource() string {
	return c.configSource
}

// SettingPath returns the path to setting.json if loaded from file
func (c *AppConfig) SettingPath() string {
	return c.settingPath
}
