package output

import (
	"context"
	"errors"

	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
)

// ErrMarkerNotFound is returned when a source has no marker for a project
var ErrMarkerNotFound = errors.New("marker not found")

// MarkerSource supplies project position markers from upstream project data.
// This abstraction allows markers to come from files, a database or an API client.
type MarkerSource interface {
	// ListMarkers returns every marker in source order
	ListMarkers(ctx context.Context) ([]*workflow.Marker, error)

	// FindMarker returns the marker of one project or ErrMarkerNotFound
	FindMarker(ctx context.Context, projectID string) (*workflow.Marker, error)
}
