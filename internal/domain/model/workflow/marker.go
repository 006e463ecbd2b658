package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// VersionToken distinguishes successive upstream revisions of a project's position.
// Upstream systems send either a revision number or a timestamp string.
type VersionToken string

// String returns the string representation
func (v VersionToken) String() string {
	return string(v)
}

// UnmarshalJSON accepts both JSON strings and numbers
func (v *VersionToken) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("version token: %w", err)
		}
		*v = VersionToken(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("version token: %w", err)
	}
	*v = VersionToken(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar
func (v *VersionToken) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("version token: line %d: expected scalar", node.Line)
	}
	if node.ShortTag() == "!!null" {
		*v = ""
		return nil
	}
	*v = VersionToken(node.Value)
	return nil
}

// LineItemRef points at the checklist entry a project is currently working on.
// Upstream data carries it either as a bare label or as an object.
type LineItemRef struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Label returns the best available textual form of the reference
func (l *LineItemRef) Label() string {
	if l == nil {
		return ""
	}
	if name := strings.TrimSpace(l.Name); name != "" {
		return name
	}
	return strings.TrimSpace(l.ID)
}

// IsZero reports whether the reference carries no information
func (l *LineItemRef) IsZero() bool {
	return l.Label() == ""
}

type lineItemObject struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title" yaml:"title"`
	Label string `json:"label" yaml:"label"`
}

func (o lineItemObject) toRef() LineItemRef {
	name := o.Name
	for _, alt := range []string{o.Title, o.Label} {
		if name == "" {
			name = alt
		}
	}
	return LineItemRef{ID: o.ID, Name: name}
}

// UnmarshalJSON accepts a string or an object with id/name (title and label are aliases of name)
func (l *LineItemRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("line item: %w", err)
		}
		*l = LineItemRef{Name: s}
		return nil
	}
	var obj lineItemObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("line item: %w", err)
	}
	*l = obj.toRef()
	return nil
}

// UnmarshalYAML accepts a scalar or a mapping with id/name
func (l *LineItemRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = LineItemRef{Name: node.Value}
		return nil
	case yaml.MappingNode:
		var obj lineItemObject
		if err := node.Decode(&obj); err != nil {
			return fmt.Errorf("line item: %w", err)
		}
		*l = obj.toRef()
		return nil
	default:
		return fmt.Errorf("line item: line %d: expected string or mapping", node.Line)
	}
}

// Marker is the read-only view of a project's position in its workflow.
// It is built once at the boundary (file, database, API) and never edited by the engine.
type Marker struct {
	ProjectID        string       `json:"project_id" yaml:"project_id" validate:"required"`
	CurrentPhase     *string      `json:"current_phase,omitempty" yaml:"current_phase,omitempty"`
	CurrentSection   *string      `json:"current_section,omitempty" yaml:"current_section,omitempty"`
	CurrentLineItem  *LineItemRef `json:"current_line_item,omitempty" yaml:"current_line_item,omitempty"`
	WorkflowComplete bool         `json:"workflow_complete" yaml:"workflow_complete"`
	Version          VersionToken `json:"version" yaml:"version"`
}

// MalformedMarkerWarning describes a marker that is usable but missing expected data.
// It is logged, never returned to callers of the engine.
type MalformedMarkerWarning struct {
	ProjectID string
	Missing   []string
}

func (w *MalformedMarkerWarning) Error() string {
	id := w.ProjectID
	if id == "" {
		id = "<unknown>"
	}
	return fmt.Sprintf("malformed marker for project %s: missing %s", id, strings.Join(w.Missing, ", "))
}

// Check reports fields an otherwise usable marker is missing
func (m *Marker) Check() *MalformedMarkerWarning {
	if m == nil {
		return nil
	}

	var missing []string
	if strings.TrimSpace(m.ProjectID) == "" {
		missing = append(missing, "project_id")
	}
	if m.Version == "" {
		missing = append(missing, "version")
	}
	if !m.WorkflowComplete && isBlank(m.CurrentPhase) {
		missing = append(missing, "current_phase")
	}
	if len(missing) == 0 {
		return nil
	}
	return &MalformedMarkerWarning{ProjectID: m.ProjectID, Missing: missing}
}

// CacheKey identifies a marker revision
func (m *Marker) CacheKey() string {
	return fmt.Sprintf("%s_%s", m.ProjectID, m.Version)
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// StringPtr is a convenience for building markers in code
func StringPtr(s string) *string {
	return &s
}
