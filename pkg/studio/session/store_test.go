package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeImpls runs a subtest against each Store implementation.
func storeImpls(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore()
		defer s.Close()
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "session.db"))
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
}

// TestStore_StateRoundTrip saves and reloads the session triple.
func TestStore_StateRoundTrip(t *testing.T) {
	storeImpls(t, func(t *testing.T, s Store) {
		state := State{Token: "tok", Email: "a@b.c", WorkspaceID: "ws-1"}
		require.NoError(t, s.SaveState(state))

		got, err := s.LoadState()
		require.NoError(t, err)
		assert.Equal(t, state, got)
		assert.True(t, got.Authenticated())
	})
}

// TestStore_LoadState_Empty returns a zero state, not an error.
func TestStore_LoadState_Empty(t *testing.T) {
	storeImpls(t, func(t *testing.T, s Store) {
		got, err := s.LoadState()
		require.NoError(t, err)
		assert.Equal(t, State{}, got)
		assert.False(t, got.Authenticated())
	})
}

// TestStore_ClearState wipes the persisted session.
func TestStore_ClearState(t *testing.T) {
	storeImpls(t, func(t *testing.T, s Store) {
		require.NoError(t, s.SaveState(State{Token: "tok", Email: "a@b.c"}))
		require.NoError(t, s.ClearState())

		got, err := s.LoadState()
		require.NoError(t, err)
		assert.Equal(t, State{}, got)
	})
}

// TestStore_Snapshots covers save, load, newest-first listing, and
// delete.
func TestStore_Snapshots(t *testing.T) {
	storeImpls(t, func(t *testing.T, s Store) {
		first, err := s.SaveSnapshot("draft", []byte(`{"nodes":[]}`))
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		second, err := s.SaveSnapshot("final", []byte(`{"nodes":[{}]}`))
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		snap, err := s.LoadSnapshot(first)
		require.NoError(t, err)
		assert.Equal(t, "draft", snap.Name)
		assert.JSONEq(t, `{"nodes":[]}`, string(snap.Data))

		list, err := s.ListSnapshots()
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second, list[0].ID, "newest first")
		assert.Equal(t, first, list[1].ID)

		require.NoError(t, s.DeleteSnapshot(first))
		_, err = s.LoadSnapshot(first)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// TestStore_LoadSnapshot_Unknown reports ErrNotFound.
func TestStore_LoadSnapshot_Unknown(t *testing.T) {
	storeImpls(t, func(t *testing.T, s Store) {
		_, err := s.LoadSnapshot("ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// TestStore_Closed verifies operations after Close fail.
func TestStore_Closed(t *testing.T) {
	storeImpls(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Close())

		_, err := s.LoadState()
		assert.ErrorIs(t, err, ErrStoreClosed)
		assert.ErrorIs(t, s.SaveState(State{}), ErrStoreClosed)
		_, err = s.SaveSnapshot("x", nil)
		assert.ErrorIs(t, err, ErrStoreClosed)
	})
}

// TestMemoryStore_SnapshotDataIsolated verifies stored bytes are not
// aliased to the caller's slice.
func TestMemoryStore_SnapshotDataIsolated(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	data := []byte(`{"nodes":[]}`)
	id, err := s.SaveSnapshot("draft", data)
	require.NoError(t, err)

	data[0] = 'X'
	snap, err := s.LoadSnapshot(id)
	require.NoError(t, err)
	assert.Equal(t, byte('{'), snap.Data[0])
}
