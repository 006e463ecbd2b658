package di

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/phasetrack/internal/app"
	appconfig "github.com/YoshitsuguKoike/phasetrack/internal/app/config"
	"github.com/YoshitsuguKoike/phasetrack/internal/application/port/output"
	"github.com/YoshitsuguKoike/phasetrack/internal/application/service"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/phase"
	"github.com/YoshitsuguKoike/phasetrack/internal/infrastructure/metrics"
	sqliterepo "github.com/YoshitsuguKoike/phasetrack/internal/infrastructure/persistence/sqlite"
	"github.com/YoshitsuguKoike/phasetrack/internal/infrastructure/repository"
)

// ErrNoMarkerSource is returned when neither a marker file nor a database was configured
var ErrNoMarkerSource = errors.New("no marker source configured")

// Container is the DI container that holds all dependencies
// This implements manual dependency injection for Clean Architecture
type Container struct {
	// Infrastructure Layer - Database
	db *sql.DB

	// Infrastructure Layer - Marker source (file or SQLite)
	markerSource output.MarkerSource
	markerFile   *repository.MarkerFileRepositoryImpl

	// Infrastructure Layer - Metrics
	metricsRegistry *prometheus.Registry
	cacheMetrics    *metrics.PrometheusCacheMetrics

	// Application Layer - Services
	stateService *service.WorkflowStateService
	notifier     *service.ChangeNotifier

	config Config
}

// Config holds configuration for the container
type Config struct {
	App        appconfig.Config // Loaded settings (defaults when nil)
	MarkerFile string           // YAML or JSON marker file
	DBPath     string           // SQLite project database, overrides App.DBPath()
	Fs         afero.Fs         // Filesystem for MarkerFile (default: OS filesystem)
	Logger     app.Logger       // Default: app.GetLogger()
}

// NewContainer creates and initializes the DI container
func NewContainer(config Config) (*Container, error) {
	c := &Container{
		config: config,
	}

	if c.config.App == nil {
		c.config.App = appconfig.Defaults()
	}
	if c.config.Fs == nil {
		c.config.Fs = afero.NewOsFs()
	}
	if c.config.Logger == nil {
		c.config.Logger = app.GetLogger()
	}

	if err := c.initializeInfrastructure(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}

	c.initializeApplication()
	return c, nil
}

// initializeInfrastructure initializes infrastructure layer components
func (c *Container) initializeInfrastructure() error {
	// 1. Metrics live in a private registry so several containers can coexist
	c.metricsRegistry = prometheus.NewRegistry()
	c.cacheMetrics = metrics.NewPrometheusCacheMetrics(c.metricsRegistry)

	// 2. Marker source: an explicit file wins, otherwise the project database
	dbPath := c.config.DBPath
	if dbPath == "" && c.config.MarkerFile == "" {
		dbPath = c.config.App.DBPath()
	}

	switch {
	case c.config.MarkerFile != "" && c.config.DBPath != "":
		return fmt.Errorf("marker file and database are mutually exclusive")

	case c.config.MarkerFile != "":
		c.markerFile = repository.NewMarkerFileRepository(c.config.Fs, c.config.MarkerFile)
		c.markerSource = c.markerFile

	case dbPath != "":
		db, err := sqliterepo.Open(dbPath)
		if err != nil {
			return err
		}
		c.db = db
		c.markerSource = sqliterepo.NewProjectMarkerRepository(db)
	}

	return nil
}

// initializeApplication initializes application layer components
func (c *Container) initializeApplication() {
	c.stateService = service.NewWorkflowStateServiceFromConfig(
		c.config.App,
		service.WithLogger(c.config.Logger),
		service.WithMetrics(c.cacheMetrics),
	)
	c.notifier = service.NewChangeNotifier(
		c.stateService,
		service.WithNotifierLogger(c.config.Logger),
		service.WithNotifierMetrics(c.cacheMetrics),
	)
}

// GetRegistry returns the phase registry used by the state service
func (c *Container) GetRegistry() *phase.Registry {
	return c.stateService.Registry()
}

// GetStateService returns the workflow state aggregator
func (c *Container) GetStateService() *service.WorkflowStateService {
	return c.stateService
}

// GetNotifier returns the change notification bus
func (c *Container) GetNotifier() *service.ChangeNotifier {
	return c.notifier
}

// GetMarkerSource returns the configured marker source
func (c *Container) GetMarkerSource() (output.MarkerSource, error) {
	if c.markerSource == nil {
		return nil, ErrNoMarkerSource
	}
	return c.markerSource, nil
}

// GetMarkerFile returns the file marker source, or nil when markers come from the database
func (c *Container) GetMarkerFile() *repository.MarkerFileRepositoryImpl {
	return c.markerFile
}

// GetMetricsRegistry returns the registry holding cache and notifier counters
func (c *Container) GetMetricsRegistry() *prometheus.Registry {
	return c.metricsRegistry
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}
