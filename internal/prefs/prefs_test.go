package prefs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/localstate"
)

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	state, err := localstate.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer state.Close()

	p := Load(state, localstate.GlobalNamespace)
	require.Equal(t, Default(), p)
	require.True(t, p.StreamEnabled)
	require.Equal(t, "friendly", p.Tone)
}

func TestSaveLoad_RoundTripPerNamespace(t *testing.T) {
	state, err := localstate.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer state.Close()

	p := Default()
	p.Tone = "formal"
	p.Theme = "dark"
	p.Temperature = 0.2
	require.NoError(t, Save(state, "user:42", p))

	got := Load(state, "user:42")
	require.Equal(t, p, got)

	// Other namespaces are untouched.
	require.Equal(t, Default(), Load(state, localstate.GlobalNamespace))
}

func TestLoad_CorruptBlobFallsBack(t *testing.T) {
	state, err := localstate.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer state.Close()

	require.NoError(t, state.Set(localstate.GlobalNamespace, "preferences", "{not json"))
	require.Equal(t, Default(), Load(state, localstate.GlobalNamespace))
}
