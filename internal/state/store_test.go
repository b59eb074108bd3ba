package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s := NewStore(path, Recent{})
	assert.True(t, s.Get().Empty())

	started := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Set(Recent{InputPath: "/projects", OutputPath: "/out", StartedAt: started}))

	reopened := NewStore(path, Recent{})
	got := reopened.Get()
	assert.Equal(t, "/projects", got.InputPath)
	assert.Equal(t, "/out", got.OutputPath)
	assert.True(t, started.Equal(got.StartedAt))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")
}

func TestStore_Update(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"), Recent{OutputPath: "/default"})
	require.NoError(t, s.Update(func(r Recent) Recent {
		r.InputPath = "/projects"
		return r
	}))
	assert.Equal(t, Recent{InputPath: "/projects", OutputPath: "/default"}, s.Get())
}

func TestStore_CorruptFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewStore(path, Recent{OutputPath: "/default"})
	assert.Equal(t, "/default", s.Get().OutputPath)
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := NewStore(path, Recent{})
	require.NoError(t, s.Clear(), "clearing a store that was never saved")

	require.NoError(t, s.Set(Recent{InputPath: "/projects"}))
	require.NoError(t, s.Clear())
	assert.True(t, s.Get().Empty())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
