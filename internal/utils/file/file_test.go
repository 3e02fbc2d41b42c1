package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/pomo/internal/utils/file"
)

func TestWriteAtomic(t *testing.T) {
	tests := map[string]struct {
		existing *string
		data     string
	}{
		"Writing a new file should create it and its directory.": {
			data: `{"a":1}`,
		},

		"Writing an existing file should replace its content.": {
			existing: func() *string { s := "old content that is longer"; return &s }(),
			data:     "new",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dir := filepath.Join(t.TempDir(), "nested")
			path := filepath.Join(dir, "blob.json")
			if test.existing != nil {
				require.NoError(os.MkdirAll(dir, 0o755))
				require.NoError(os.WriteFile(path, []byte(*test.existing), 0o644))
			}

			err := file.WriteAtomic(path, []byte(test.data), 0o600)
			require.NoError(err)

			got, err := os.ReadFile(path)
			require.NoError(err)
			assert.Equal(test.data, string(got))

			// No temp files are left behind.
			entries, err := os.ReadDir(dir)
			require.NoError(err)
			assert.Len(entries, 1)
		})
	}
}

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.json")
	assert.NoError(t, file.RemoveIfExists(path))

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.NoError(t, file.RemoveIfExists(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
