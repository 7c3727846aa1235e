package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/localstate"
)

func TestManager_GetOrCreateIdempotent(t *testing.T) {
	state, err := localstate.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer state.Close()

	m := NewManager(state, localstate.GlobalNamespace)

	first, err := m.GetOrCreate()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := m.GetOrCreate()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestManager_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	state, err := localstate.Open(path)
	require.NoError(t, err)
	m := NewManager(state, localstate.GlobalNamespace)
	first, err := m.GetOrCreate()
	require.NoError(t, err)
	require.NoError(t, state.Close())

	state, err = localstate.Open(path)
	require.NoError(t, err)
	defer state.Close()
	m = NewManager(state, localstate.GlobalNamespace)
	second, err := m.GetOrCreate()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestManager_ResetRotatesAndClearsCaches(t *testing.T) {
	state, err := localstate.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer state.Close()

	m := NewManager(state, localstate.GlobalNamespace)
	old, err := m.GetOrCreate()
	require.NoError(t, err)

	require.NoError(t, state.Set(localstate.GlobalNamespace, "rating:"+old+":3", "up"))
	require.NoError(t, state.Set(localstate.GlobalNamespace, "bookmark:"+old+":2", "1"))
	require.NoError(t, state.Set(localstate.GlobalNamespace, "draft:"+old, "half-typed"))

	fresh, err := m.Reset()
	require.NoError(t, err)
	require.NotEqual(t, old, fresh)

	got, err := m.GetOrCreate()
	require.NoError(t, err)
	require.Equal(t, fresh, got)

	_, ok, _ := state.Get(localstate.GlobalNamespace, "rating:"+old+":3")
	require.False(t, ok, "old session rating cache must be cleared")
	_, ok, _ = state.Get(localstate.GlobalNamespace, "bookmark:"+old+":2")
	require.False(t, ok, "old session bookmark cache must be cleared")
	_, ok, _ = state.Get(localstate.GlobalNamespace, "draft:"+old)
	require.False(t, ok, "old session draft must be cleared")
}
