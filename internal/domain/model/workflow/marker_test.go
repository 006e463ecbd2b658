package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestVersionToken_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  VersionToken
	}{
		{name: "string", input: `"2024-05-01T10:00:00Z"`, want: "2024-05-01T10:00:00Z"},
		{name: "integer", input: `42`, want: "42"},
		{name: "float", input: `1714557600.5`, want: "1714557600.5"},
		{name: "null", input: `null`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v VersionToken
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.want, v)
		})
	}

	var v VersionToken
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))
}

func TestLineItemRef_DecodeStringOrObject(t *testing.T) {
	var fromJSON struct {
		Items []LineItemRef `json:"items"`
	}
	err := json.Unmarshal([]byte(`{"items":["Install gutters",{"id":"li-7","name":"Tear off"},{"id":"li-8","title":"Dry in"}]}`), &fromJSON)
	require.NoError(t, err)
	assert.Equal(t, []LineItemRef{
		{Name: "Install gutters"},
		{ID: "li-7", Name: "Tear off"},
		{ID: "li-8", Name: "Dry in"},
	}, fromJSON.Items)

	var fromYAML struct {
		Items []LineItemRef `yaml:"items"`
	}
	err = yaml.Unmarshal([]byte("items:\n  - Install gutters\n  - id: li-9\n"), &fromYAML)
	require.NoError(t, err)
	assert.Equal(t, "Install gutters", fromYAML.Items[0].Label())
	assert.Equal(t, "li-9", fromYAML.Items[1].Label())
}

func TestMarker_Check(t *testing.T) {
	var nilMarker *Marker
	assert.Nil(t, nilMarker.Check())

	ok := &Marker{ProjectID: "p1", CurrentPhase: StringPtr("LEAD"), Version: "1"}
	assert.Nil(t, ok.Check())

	complete := &Marker{ProjectID: "p1", WorkflowComplete: true, Version: "1"}
	assert.Nil(t, complete.Check())

	bad := &Marker{CurrentPhase: StringPtr("  ")}
	w := bad.Check()
	require.NotNil(t, w)
	assert.Equal(t, []string{"project_id", "version", "current_phase"}, w.Missing)
	assert.Contains(t, w.Error(), "<unknown>")
}

func TestMarker_YAMLRoundTripOfNumericVersion(t *testing.T) {
	var m Marker
	err := yaml.Unmarshal([]byte("project_id: p-1\ncurrent_phase: Execution Phase\nversion: 17\n"), &m)
	require.NoError(t, err)

	assert.Equal(t, VersionToken("17"), m.Version)
	assert.Equal(t, "p-1_17", m.CacheKey())
	require.NotNil(t, m.CurrentPhase)
	assert.Equal(t, "Execution Phase", *m.CurrentPhase)
}
