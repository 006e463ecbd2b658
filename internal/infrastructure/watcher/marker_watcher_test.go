package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/YoshitsuguKoike/phasetrack/internal/app"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
	"github.com/YoshitsuguKoike/phasetrack/internal/infrastructure/repository"
)

type recordingAnnouncer struct {
	mu    sync.Mutex
	calls []string
}

func (a *recordingAnnouncer) AnnounceChange(projectID string, marker *workflow.Marker) *workflow.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, projectID+"@"+marker.Version.String())
	return nil
}

func (a *recordingAnnouncer) snapshot() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func TestMarkerWatcher_Reload(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/data/markers.yaml"
	require.NoError(t, afero.WriteFile(fs, path, []byte(`
- project_id: a
  version: 1
- project_id: b
  version: 1
- project_id: a
  version: 2
`), 0644))

	announcer := &recordingAnnouncer{}
	w := NewMarkerWatcher(path, repository.NewMarkerFileRepository(fs, path), announcer, app.NopLogger{})

	n, err := w.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a@2", "b@1"}, announcer.snapshot())

	// unchanged file announces nothing
	n, err = w.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, afero.WriteFile(fs, path, []byte(`
- project_id: a
  version: 2
- project_id: b
  version: 3
`), 0644))
	n, err = w.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a@2", "b@1", "b@3"}, announcer.snapshot())
}

func TestMarkerWatcher_ReloadError(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewMarkerWatcher("/missing.yaml", repository.NewMarkerFileRepository(fs, "/missing.yaml"), &recordingAnnouncer{}, app.NopLogger{})

	_, err := w.Reload(context.Background())
	assert.Error(t, err)
}

func TestMarkerWatcher_Run(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "markers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- project_id: a\n  version: 1\n"), 0644))

	announcer := &recordingAnnouncer{}
	w := NewMarkerWatcher(path, repository.NewMarkerFileRepository(afero.NewOsFs(), path), announcer, app.NopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(announcer.snapshot()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("- project_id: a\n  version: 2\n"), 0644))
	require.Eventually(t, func() bool {
		calls := announcer.snapshot()
		return len(calls) == 2 && calls[1] == "a@2"
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
