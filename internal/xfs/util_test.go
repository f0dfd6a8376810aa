package xfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "models"), ExpandTilde("~/models"))
	assert.Equal(t, "/srv/models", ExpandTilde("/srv/models"))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("/srv", "models/model.json"), Resolve("/srv", "models/model.json"))
	assert.Equal(t, "/abs/model.json", Resolve("/srv", "/abs/model.json"))
	assert.Equal(t, "model.json", Resolve("", "model.json"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "model.json")

	assert.False(t, FileExists(path))
	require.NoError(t, EnsureParentDir(path))
	assert.False(t, FileExists(filepath.Dir(path)), "directories are not artifacts")

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.True(t, FileExists(path))
}
