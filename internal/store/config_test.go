package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigRoundTrip(t *testing.T) {
	t.Setenv("MDCAL_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg, "missing config file loads as defaults")

	cfg.DocumentsFolder = "/tmp/notes"
	cfg.Backend = BackendFiles
	require.NoError(t, SaveConfig(cfg))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDocumentsDirDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MDCAL_CONFIG_DIR", dir)

	got, err := Config{}.DocumentsDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "documents"), got)

	got, err = Config{DocumentsFolder: "/elsewhere"}.DocumentsDir()
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", got)
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{
		"":       BackendSQLite,
		"sqlite": BackendSQLite,
		"files":  BackendFiles,
		" Files ": BackendFiles,
	} {
		got, err := ParseBackend(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseBackend("mongo")
	assert.Error(t, err)
}

func TestOpenSelectsBackend(t *testing.T) {
	t.Setenv("MDCAL_CONFIG_DIR", t.TempDir())

	s, err := Open(Config{Backend: BackendFiles})
	require.NoError(t, err)
	_, ok := s.(*FileStore)
	assert.True(t, ok)

	s, err = Open(Config{})
	require.NoError(t, err)
	_, ok = s.(*SQLiteStore)
	assert.True(t, ok)
}
