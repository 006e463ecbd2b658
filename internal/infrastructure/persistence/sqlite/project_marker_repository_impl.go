package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/YoshitsuguKoike/phasetrack/internal/application/port/output"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
)

// ProjectMarkerRepositoryImpl implements output.MarkerSource over the projects table
type ProjectMarkerRepositoryImpl struct {
	db *sql.DB
}

var _ output.MarkerSource = (*ProjectMarkerRepositoryImpl)(nil)

// NewProjectMarkerRepository creates a new SQLite-based marker source
func NewProjectMarkerRepository(db *sql.DB) *ProjectMarkerRepositoryImpl {
	return &ProjectMarkerRepositoryImpl{db: db}
}

const selectMarkerColumns = `
	SELECT id, current_phase, current_section,
	       current_line_item_id, current_line_item_name,
	       workflow_complete, revision
	FROM projects
`

// ListMarkers returns every project ordered by last update
func (r *ProjectMarkerRepositoryImpl) ListMarkers(ctx context.Context) ([]*workflow.Marker, error) {
	rows, err := r.db.QueryContext(ctx, selectMarkerColumns+` ORDER BY updated_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query projects failed: %w", err)
	}
	defer rows.Close()

	var markers []*workflow.Marker
	for rows.Next() {
		m, err := scanMarker(rows)
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects failed: %w", err)
	}
	return markers, nil
}

// FindMarker returns the marker of one project
func (r *ProjectMarkerRepositoryImpl) FindMarker(ctx context.Context, projectID string) (*workflow.Marker, error) {
	row := r.db.QueryRowContext(ctx, selectMarkerColumns+` WHERE id = ?`, projectID)
	m, err := scanMarker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", projectID, output.ErrMarkerNotFound)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMarker(row rowScanner) (*workflow.Marker, error) {
	var (
		id           string
		phaseRaw     sql.NullString
		section      sql.NullString
		lineItemID   sql.NullString
		lineItemName sql.NullString
		complete     bool
		revision     int64
	)
	if err := row.Scan(&id, &phaseRaw, &section, &lineItemID, &lineItemName, &complete, &revision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan project failed: %w", err)
	}

	m := &workflow.Marker{
		ProjectID:        id,
		WorkflowComplete: complete,
		Version:          workflow.VersionToken(strconv.FormatInt(revision, 10)),
	}
	if phaseRaw.Valid {
		m.CurrentPhase = &phaseRaw.String
	}
	if section.Valid {
		m.CurrentSection = &section.String
	}
	if lineItemID.Valid || lineItemName.Valid {
		m.CurrentLineItem = &workflow.LineItemRef{ID: lineItemID.String, Name: lineItemName.String}
	}
	return m, nil
}

// Open opens the project database at path and applies migrations
func Open(path string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", path+sep+"_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := NewMigrator(db).Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
