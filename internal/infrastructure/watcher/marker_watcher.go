package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/YoshitsuguKoike/phasetrack/internal/app"
	"github.com/YoshitsuguKoike/phasetrack/internal/application/port/output"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
)

// Announcer publishes a project's new position
type Announcer interface {
	AnnounceChange(projectID string, marker *workflow.Marker) *workflow.State
}

// MarkerWatcher re-reads a marker file whenever it changes on disk and announces
// every project whose version token moved since the previous read.
type MarkerWatcher struct {
	path      string
	source    output.MarkerSource
	announcer Announcer
	logger    app.Logger

	mu       sync.Mutex
	lastSeen map[string]workflow.VersionToken
}

// NewMarkerWatcher creates a watcher for the file at path, read through source
func NewMarkerWatcher(path string, source output.MarkerSource, announcer Announcer, logger app.Logger) *MarkerWatcher {
	if logger == nil {
		logger = app.GetLogger()
	}
	return &MarkerWatcher{
		path:      filepath.Clean(path),
		source:    source,
		announcer: announcer,
		logger:    logger,
		lastSeen:  make(map[string]workflow.VersionToken),
	}
}

// Reload reads the source once and announces changed projects.
// It returns the number of announcements made.
func (w *MarkerWatcher) Reload(ctx context.Context) (int, error) {
	markers, err := w.source.ListMarkers(ctx)
	if err != nil {
		return 0, err
	}

	// Only the last revision of each project in the file matters.
	latest := make(map[string]*workflow.Marker, len(markers))
	var order []string
	for _, m := range markers {
		if _, seen := latest[m.ProjectID]; !seen {
			order = append(order, m.ProjectID)
		}
		latest[m.ProjectID] = m
	}

	announced := 0
	for _, id := range order {
		m := latest[id]

		w.mu.Lock()
		prev, known := w.lastSeen[id]
		changed := !known || prev != m.Version
		if changed {
			w.lastSeen[id] = m.Version
		}
		w.mu.Unlock()

		if changed {
			w.announcer.AnnounceChange(id, m)
			announced++
		}
	}
	return announced, nil
}

// Run announces the current file contents, then watches the file until ctx is done.
// The parent directory is watched so that editors replacing the file are noticed.
func (w *MarkerWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	if _, err := w.Reload(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if n, err := w.Reload(ctx); err != nil {
				// a half-written file is common while editors save; keep watching
				w.logger.Warn("reload %s: %v", w.path, err)
			} else if n > 0 {
				w.logger.Info("reload %s: %d project(s) changed", w.path, n)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch %s: %v", w.path, err)
		}
	}
}
