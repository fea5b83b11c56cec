package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedDirs struct{ dir string }

func (f *fixedDirs) DataDirectory() string { return f.dir }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(&fixedDirs{dir: t.TempDir()})
}

func TestLoadMissingReturnsEmpty(t *testing.T) {
	s := newTestStore(t)

	options, err := s.Load("never-saved")
	require.NoError(t, err)
	assert.NotNil(t, options)
	assert.Empty(t, options)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := map[string]any{
		"radius":  50.0,
		"enabled": true,
		"zone":    map[string]any{"state": "alert"},
	}
	require.NoError(t, s.Save("anchor-watch", in))

	out, err := s.Load("anchor-watch")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveNilRecord(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("p", nil))

	out, err := s.Load("p")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("p", map[string]any{"a": 1.0}))
	require.NoError(t, s.Save("p", map[string]any{"b": 2.0}))

	out, err := s.Load("p")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": 2.0}, out)
}

func TestLoadCorruptRecord(t *testing.T) {
	s := newTestStore(t)
	path := s.Path("broken")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := s.Load("broken")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("p", map[string]any{"a": 1.0}))
	require.NoError(t, s.Delete("p"))

	_, err := os.Stat(s.Path("p"))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine
	assert.NoError(t, s.Delete("p"))
}

func TestNoTempFileLeftBehind(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("p", map[string]any{"a": 1.0}))

	entries, err := os.ReadDir(filepath.Dir(s.Path("p")))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "p.json", entries[0].Name())
}
