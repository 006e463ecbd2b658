package di

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/phasetrack/internal/app"
	appconfig "github.com/YoshitsuguKoike/phasetrack/internal/app/config"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/phase"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
)

func TestContainer_MarkerFileSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/markers.yaml", []byte("- project_id: p-1\n  current_phase: approved\n  version: 1\n"), 0644))

	container, err := NewContainer(Config{MarkerFile: "/markers.yaml", Fs: fs, Logger: app.NopLogger{}})
	require.NoError(t, err)
	defer container.Close()

	source, err := container.GetMarkerSource()
	require.NoError(t, err)
	assert.NotNil(t, container.GetMarkerFile())

	markers, err := source.ListMarkers(context.Background())
	require.NoError(t, err)
	require.Len(t, markers, 1)

	state := container.GetStateService().GetState(markers[0])
	assert.Equal(t, phase.KeyApproved, state.CurrentPhase())
	assert.Equal(t, 33, state.OverallProgress())
}

func TestContainer_DatabaseSource(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "projects.db")

	container, err := NewContainer(Config{DBPath: dbPath, Logger: app.NopLogger{}})
	require.NoError(t, err)
	defer container.Close()

	assert.Nil(t, container.GetMarkerFile())

	// the container migrated the database; write through a second handle
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`INSERT INTO projects (id, current_phase, revision) VALUES ('p-1', 'EXECUTION', 2)`)
	require.NoError(t, err)

	source, err := container.GetMarkerSource()
	require.NoError(t, err)
	m, err := source.FindMarker(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.VersionToken("2"), m.Version)
}

func TestContainer_DatabaseFromSettings(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "projects.db")
	cfg := appconfig.NewAppConfig(0.5, 95, "Not Started", "No active task", dbPath, "warn", "json", "")

	container, err := NewContainer(Config{App: cfg, Logger: app.NopLogger{}})
	require.NoError(t, err)
	defer container.Close()

	_, err = container.GetMarkerSource()
	assert.NoError(t, err)
}

func TestContainer_NoSource(t *testing.T) {
	container, err := NewContainer(Config{Logger: app.NopLogger{}})
	require.NoError(t, err)
	defer container.Close()

	_, err = container.GetMarkerSource()
	assert.True(t, errors.Is(err, ErrNoMarkerSource))

	// the engine works without a source
	assert.Equal(t, 6, container.GetRegistry().Len())
	assert.Equal(t, 0, container.GetStateService().GetState(nil).OverallProgress())
}

func TestContainer_FileAndDatabaseConflict(t *testing.T) {
	_, err := NewContainer(Config{
		MarkerFile: "/markers.yaml",
		DBPath:     filepath.Join(t.TempDir(), "projects.db"),
		Fs:         afero.NewMemMapFs(),
		Logger:     app.NopLogger{},
	})
	assert.Error(t, err)
}

func TestContainer_ConfigDrivesProgress(t *testing.T) {
	cfg := appconfig.NewAppConfig(0.25, 90, "Pending", "Idle", "", "warn", "json", "")

	container, err := NewContainer(Config{App: cfg, Logger: app.NopLogger{}})
	require.NoError(t, err)
	defer container.Close()

	approved := "APPROVED"
	state := container.GetStateService().GetState(&workflow.Marker{ProjectID: "p-1", CurrentPhase: &approved, Version: "1"})
	assert.Equal(t, 29, state.OverallProgress())
	assert.Equal(t, "Pending", state.CurrentSectionDisplay())
	assert.Equal(t, "Idle", state.CurrentLineItemDisplay())
}

func TestContainer_MetricsAreWired(t *testing.T) {
	container, err := NewContainer(Config{Logger: app.NopLogger{}})
	require.NoError(t, err)
	defer container.Close()

	marker := &workflow.Marker{ProjectID: "p-1", Version: "1"}
	states := container.GetStateService()
	states.GetState(marker)
	states.GetState(marker)

	container.GetNotifier().AnnounceChange("p-1", &workflow.Marker{ProjectID: "p-1", Version: "2"})

	count, err := testutil.GatherAndCount(container.GetMetricsRegistry(),
		"phasetrack_workflow_state_cache_hits_total",
		"phasetrack_workflow_state_cache_misses_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := container.GetMetricsRegistry().Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			values[mf.GetName()] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, values["phasetrack_workflow_state_cache_hits_total"])
	assert.Equal(t, 2.0, values["phasetrack_workflow_state_cache_misses_total"])
}
