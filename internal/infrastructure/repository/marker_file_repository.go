package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/YoshitsuguKoike/phasetrack/internal/application/port/output"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
)

// markerDocument is the on-disk layout of a marker file.
// A bare list of markers is accepted as well.
type markerDocument struct {
	Projects []*workflow.Marker `json:"projects" yaml:"projects" validate:"dive"`
}

var markerValidate = validator.New()

// MarkerFileRepositoryImpl implements output.MarkerSource over a YAML or JSON file
type MarkerFileRepositoryImpl struct {
	fs   afero.Fs
	path string
}

var _ output.MarkerSource = (*MarkerFileRepositoryImpl)(nil)

// NewMarkerFileRepository creates a file-based marker source.
// Files ending in .json are decoded as JSON, anything else as YAML.
func NewMarkerFileRepository(fs afero.Fs, path string) *MarkerFileRepositoryImpl {
	return &MarkerFileRepositoryImpl{fs: fs, path: path}
}

// Path returns the file backing the repository
func (r *MarkerFileRepositoryImpl) Path() string {
	return r.path
}

// ListMarkers reads and validates every marker in file order
func (r *MarkerFileRepositoryImpl) ListMarkers(ctx context.Context) ([]*workflow.Marker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return nil, fmt.Errorf("read markers %s: %w", r.path, err)
	}

	doc, err := r.decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse markers %s: %w", r.path, err)
	}

	markers := make([]*workflow.Marker, 0, len(doc.Projects))
	for _, m := range doc.Projects {
		if m != nil {
			markers = append(markers, m)
		}
	}
	doc.Projects = markers

	if err := markerValidate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid markers %s: %w", r.path, describeValidation(err))
	}
	return markers, nil
}

// FindMarker returns the last marker of projectID, which is its newest revision
func (r *MarkerFileRepositoryImpl) FindMarker(ctx context.Context, projectID string) (*workflow.Marker, error) {
	markers, err := r.ListMarkers(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(markers) - 1; i >= 0; i-- {
		if markers[i].ProjectID == projectID {
			return markers[i], nil
		}
	}
	return nil, fmt.Errorf("project %s: %w", projectID, output.ErrMarkerNotFound)
}

func (r *MarkerFileRepositoryImpl) decode(data []byte) (*markerDocument, error) {
	if strings.EqualFold(filepath.Ext(r.path), ".json") {
		return decodeJSON(data)
	}
	return decodeYAML(data)
}

func decodeJSON(data []byte) (*markerDocument, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []*workflow.Marker
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return &markerDocument{Projects: list}, nil
	}
	var doc markerDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeYAML(data []byte) (*markerDocument, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return &markerDocument{}, nil
	}

	body := root.Content[0]
	if body.Kind == yaml.SequenceNode {
		var list []*workflow.Marker
		if err := body.Decode(&list); err != nil {
			return nil, err
		}
		return &markerDocument{Projects: list}, nil
	}

	var doc markerDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Fail on unknown fields
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// describeValidation flattens validator errors into a readable message
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), err)
}
