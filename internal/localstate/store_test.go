package localstate

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SetGetDelete(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get(GlobalNamespace, "session_id")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(GlobalNamespace, "session_id", "abc"))
	v, ok, err := s.Get(GlobalNamespace, "session_id")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", v)

	// Overwrite.
	require.NoError(t, s.Set(GlobalNamespace, "session_id", "def"))
	v, _, _ = s.Get(GlobalNamespace, "session_id")
	require.Equal(t, "def", v)

	// Namespaces are independent.
	_, ok, err = s.Get("user-1", "session_id")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Delete(GlobalNamespace, "session_id"))
	_, ok, _ = s.Get(GlobalNamespace, "session_id")
	require.False(t, ok)
}

func TestStore_DeletePrefix(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set("user-1", "rating:sess-a:0", "up"))
	require.NoError(t, s.Set("user-1", "rating:sess-a:1", "down"))
	require.NoError(t, s.Set("user-1", "draft:sess-a", "hello"))

	require.NoError(t, s.DeletePrefix("user-1", "rating:sess-a:"))

	_, ok, _ := s.Get("user-1", "rating:sess-a:0")
	require.False(t, ok)
	_, ok, _ = s.Get("user-1", "draft:sess-a")
	require.True(t, ok, "unrelated keys must survive")
}

func TestStore_EventRingBounded(t *testing.T) {
	s := openTestStore(t)
	s.eventCap = 5

	for i := 0; i < 12; i++ {
		require.NoError(t, s.AppendEvent(GlobalNamespace, "analytics", fmt.Sprintf("event-%d", i)))
	}

	events, err := s.Events(GlobalNamespace, "analytics", 0)
	require.NoError(t, err)
	require.Len(t, events, 5)
	require.Equal(t, "event-7", events[0].Payload, "oldest surviving entry")
	require.Equal(t, "event-11", events[4].Payload, "newest entry last")
}
