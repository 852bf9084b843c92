package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInternal_EnvOverrideWins(t *testing.T) {
	t.Setenv("CODE_INDEX_HOME", "/tmp/custom-index-home")
	require.NoError(t, loadInternal())
	assert.Equal(t, "/tmp/custom-index-home", Global.BasePath)
}

func TestLoadInternal_CreatesDefaultConfig(t *testing.T) {
	t.Setenv("CODE_INDEX_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, loadInternal())
	assert.Equal(t, filepath.Join(home, ".code-index"), Global.BasePath)
	assert.Equal(t, int64(DefaultMaxFileSize), Global.DefaultMaxFileSize)

	_, err := os.Stat(filepath.Join(home, ".code-index", "config.yaml"))
	assert.NoError(t, err)
}

func TestResolveBasePath_ExplicitArgumentWins(t *testing.T) {
	path, err := ResolveBasePath("/explicit/path")
	require.NoError(t, err)
	assert.Equal(t, "/explicit/path", path)
}
