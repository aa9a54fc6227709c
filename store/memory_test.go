package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbooklab/sdk/canvas"
	"github.com/playbooklab/sdk/catalog"
)

func snapshotForTest(t *testing.T, toolIDs ...string) canvas.Snapshot {
	t.Helper()
	c := catalog.Default()
	s := canvas.NewSession()
	_, err := s.SeedFromToolList(toolIDs, c, canvas.SeedOptions{})
	require.NoError(t, err)
	return s.Snapshot()
}

func TestMemoryStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close()

	snap := snapshotForTest(t, "claude", "cursor")
	require.NoError(t, st.SaveSession(ctx, snap))

	got, err := st.LoadSession(ctx, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, snap.SessionID, got.SessionID)
	assert.Len(t, got.Nodes, 2)

	ids, err := st.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{snap.SessionID}, ids)

	require.NoError(t, st.DeleteSession(ctx, snap.SessionID))
	_, err = st.LoadSession(ctx, snap.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, st.DeleteSession(ctx, snap.SessionID), ErrSessionNotFound)
}

func TestMemoryStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close()

	snap := snapshotForTest(t, "claude")
	require.NoError(t, st.SaveSession(ctx, snap))

	snap.Title = "updated"
	require.NoError(t, st.SaveSession(ctx, snap))

	got, err := st.LoadSession(ctx, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Title)

	ids, err := st.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestMemoryStore_InvalidID(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close()

	assert.ErrorIs(t, st.SaveSession(ctx, canvas.Snapshot{}), ErrInvalidID)
	_, err := st.LoadSession(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, st.DeleteSession(ctx, ""), ErrInvalidID)
	assert.ErrorIs(t, st.PublishPlaybook(ctx, PublishedPlaybook{}), ErrInvalidID)
}

func TestMemoryStore_Feed(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close()

	for _, id := range []string{"first", "second", "third"} {
		require.NoError(t, st.PublishPlaybook(ctx, PublishedPlaybook{
			ID:          id,
			Title:       "My " + id + " playbook",
			PublishedAt: time.Now(),
		}))
	}

	feed, err := st.Feed(ctx, 2)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "third", feed[0].ID)
	assert.Equal(t, "second", feed[1].ID)

	all, err := st.Feed(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	require.NoError(t, st.Close())

	assert.ErrorIs(t, st.SaveSession(ctx, canvas.Snapshot{SessionID: "x"}), ErrClosed)
	_, err := st.LoadSession(ctx, "x")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = st.ListSessions(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = st.Feed(ctx, 0)
	assert.ErrorIs(t, err, ErrClosed)
}
