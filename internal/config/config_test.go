package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoader(t *testing.T) Loader {
	dir := t.TempDir()
	return Loader{
		GlobalPath: filepath.Join(dir, "home", ".lineageconfig"),
		RepoPath:   filepath.Join(dir, "repo", ".lineage", "config"),
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := testLoader(t).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 50, cfg.Log.Limit)
	assert.Equal(t, 4096, cfg.Cache.Size)
	assert.True(t, cfg.Color.UI)
}

func TestRepositoryOverridesGlobal(t *testing.T) {
	l := testLoader(t)
	require.NoError(t, l.Set("user.name", "Global Name", true))
	require.NoError(t, l.Set("user.email", "global@example.com", true))
	require.NoError(t, l.Set("color.ui", "false", true))
	require.NoError(t, l.Set("user.name", "Repo Name", false))
	require.NoError(t, l.Set("log.limit", "10", false))

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "Repo Name", cfg.User.Name)
	assert.Equal(t, "global@example.com", cfg.User.Email)
	assert.False(t, cfg.Color.UI, "repo file must not reset unset booleans")
	assert.Equal(t, 10, cfg.Log.Limit)

	author, err := cfg.Author()
	require.NoError(t, err)
	assert.Equal(t, "Repo Name <global@example.com>", author)

	v, err := l.Get("log.limit")
	require.NoError(t, err)
	assert.Equal(t, "10", v)
}

func TestSetValidates(t *testing.T) {
	l := testLoader(t)
	assert.ErrorIs(t, l.Set("core.editor", "vim", false), ErrUnknownKey)
	assert.ErrorIs(t, l.Set("log.limit", "-1", false), ErrInvalidValue)
	assert.ErrorIs(t, l.Set("cache.size", "0", false), ErrInvalidValue)
	assert.ErrorIs(t, l.Set("log.oneline", "sometimes", false), ErrInvalidValue)

	_, err := os.Stat(l.RepoPath)
	assert.True(t, os.IsNotExist(err), "rejected values must not create the file")

	_, err = l.Get("nope.nope")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestAuthorRequiresIdentity(t *testing.T) {
	_, err := DefaultConfig().Author()
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	l := testLoader(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(l.RepoPath), 0o755))
	require.NoError(t, os.WriteFile(l.RepoPath, []byte("{not json"), 0o644))
	_, err := l.Load()
	assert.Error(t, err)
}

func TestKeysSorted(t *testing.T) {
	assert.IsIncreasing(t, Keys())
	assert.Contains(t, Keys(), "log.nicknames")
}
