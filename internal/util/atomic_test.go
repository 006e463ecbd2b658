package util

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "adds trailing newline", data: `{"a":1}`, want: "{\"a\":1}\n"},
		{name: "keeps existing newline", data: "[]\n", want: "[]\n"},
		{name: "empty", data: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			path := "/out/nested/state.json"

			require.NoError(t, WriteFileAtomic(fs, path, []byte(tt.data), 0644))

			got, err := afero.ReadFile(fs, path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			exists, err := afero.Exists(fs, path+".tmp")
			require.NoError(t, err)
			assert.False(t, exists, "temp file must not remain")
		})
	}
}

func TestWriteFileAtomic_Overwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteFileAtomic(fs, "/state.json", []byte("old"), 0644))
	require.NoError(t, WriteFileAtomic(fs, "/state.json", []byte("new"), 0644))

	got, err := afero.ReadFile(fs, "/state.json")
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))
}

func TestWriteFileAtomic_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	assert.Error(t, WriteFileAtomic(fs, "/state.json", []byte("x"), 0644))
}
