package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbooklab/sdk/catalog"
)

func toolRecord(id, name string) catalog.ToolRecord {
	return catalog.ToolRecord{ID: id, Name: name, Domain: id + ".com", Category: "Generative"}
}

func placeTool(t *testing.T, s *Session, id string) Node {
	t.Helper()
	node, err := s.PlaceNodeAt(ToolPayload{Tool: toolRecord(id, id)}, Position{})
	require.NoError(t, err)
	return node
}

func TestPlaceNode_TransformsThroughViewport(t *testing.T) {
	s := NewSession(WithViewport(Viewport{OffsetX: 50, OffsetY: -30, Zoom: 2}))

	node, err := s.PlaceNode(ToolPayload{Tool: toolRecord("chatgpt", "ChatGPT")}, Position{X: 100, Y: 100})
	require.NoError(t, err)

	// (100-50)/2, (100+30)/2
	assert.Equal(t, Position{X: 25, Y: 65}, node.Position)
	assert.Equal(t, NodeKindTool, node.Kind())
	assert.Zero(t, node.Rating)
}

func TestPlaceNode_NoDeduplication(t *testing.T) {
	s := NewSession()
	tool := ToolPayload{Tool: toolRecord("claude", "Claude")}

	first, err := s.PlaceNode(tool, Position{X: 10, Y: 10})
	require.NoError(t, err)
	second, err := s.PlaceNode(tool, Position{X: 400, Y: 10})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, s.Nodes(), 2)
}

func TestPlaceNode_NilPayload(t *testing.T) {
	s := NewSession()
	_, err := s.PlaceNode(nil, Position{})
	assert.Error(t, err)
}

func TestConnect_StateMachine(t *testing.T) {
	s := NewSession()
	a := placeTool(t, s, "claude")
	b := placeTool(t, s, "cursor")
	c := placeTool(t, s, "copilot")

	_, pending := s.Pending()
	assert.False(t, pending)

	require.NoError(t, s.Connect(a.ID, HandleRight, b.ID, HandleLeft))
	conn, pending := s.Pending()
	require.True(t, pending)
	assert.Equal(t, a.ID, conn.Source)
	assert.Equal(t, b.ID, conn.Target)

	// Only one connection slot: a second proposal is rejected outright.
	err := s.Connect(b.ID, HandleRight, c.ID, HandleLeft)
	assert.ErrorIs(t, err, ErrConnectionPending)

	require.NoError(t, s.CancelConnection())
	_, pending = s.Pending()
	assert.False(t, pending)

	// After cancel the slot is free again.
	assert.NoError(t, s.Connect(b.ID, HandleRight, c.ID, HandleLeft))
}

func TestConnect_Validation(t *testing.T) {
	s := NewSession()
	a := placeTool(t, s, "claude")

	err := s.Connect("ghost", HandleRight, a.ID, HandleLeft)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	err = s.Connect(a.ID, HandleRight, "ghost", HandleLeft)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	err = s.Connect(a.ID, HandleBottom, a.ID, HandleTop)
	assert.ErrorIs(t, err, ErrSelfLoop)
}

func TestCommitConnection_SkipAndSave(t *testing.T) {
	s := NewSession()
	a := placeTool(t, s, "claude")
	b := placeTool(t, s, "cursor")

	// Skip path: no meta, no label.
	require.NoError(t, s.Connect(a.ID, HandleRight, b.ID, HandleLeft))
	skipped, err := s.CommitConnection(nil)
	require.NoError(t, err)
	assert.Empty(t, skipped.Label)
	assert.Empty(t, skipped.Description)
	assert.True(t, skipped.Style.Animated)

	// Save path: label and description from meta.
	require.NoError(t, s.Connect(a.ID, HandleRight, b.ID, HandleLeft))
	saved, err := s.CommitConnection(&ConnectionMeta{
		Name:        "Hand off drafts",
		Description: "Claude writes, Cursor refines",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hand off drafts", saved.Label)
	assert.Equal(t, "Claude writes, Cursor refines", saved.Description)

	// Duplicate edges between the same handle pair are allowed.
	assert.Len(t, s.Edges(), 2)

	_, pending := s.Pending()
	assert.False(t, pending)
}

func TestCommitConnection_EmptyNameIsSkip(t *testing.T) {
	s := NewSession()
	a := placeTool(t, s, "claude")
	b := placeTool(t, s, "cursor")

	require.NoError(t, s.Connect(a.ID, HandleRight, b.ID, HandleLeft))
	edge, err := s.CommitConnection(&ConnectionMeta{Name: "", Description: "orphaned"})
	require.NoError(t, err)
	assert.Empty(t, edge.Label)
	assert.Empty(t, edge.Description)
}

func TestCommitConnection_NothingPending(t *testing.T) {
	s := NewSession()
	_, err := s.CommitConnection(nil)
	assert.ErrorIs(t, err, ErrNoPendingConnection)
	assert.ErrorIs(t, s.CancelConnection(), ErrNoPendingConnection)
}

func TestDeleteNode_CascadesEdges(t *testing.T) {
	s := NewSession()
	a := placeTool(t, s, "claude")
	b := placeTool(t, s, "cursor")
	c := placeTool(t, s, "copilot")

	require.NoError(t, s.Connect(a.ID, HandleRight, b.ID, HandleLeft))
	_, err := s.CommitConnection(nil)
	require.NoError(t, err)
	require.NoError(t, s.Connect(b.ID, HandleRight, c.ID, HandleLeft))
	_, err = s.CommitConnection(nil)
	require.NoError(t, err)
	require.Len(t, s.Edges(), 2)

	// Deleting the middle node removes both incident edges: no edge may
	// reference a dead node.
	require.NoError(t, s.DeleteNode(b.ID))
	assert.Len(t, s.Nodes(), 2)
	assert.Empty(t, s.Edges())

	assert.ErrorIs(t, s.DeleteNode(b.ID), ErrNodeNotFound)
}

func TestDeleteNode_CancelsPendingConnection(t *testing.T) {
	s := NewSession()
	a := placeTool(t, s, "claude")
	b := placeTool(t, s, "cursor")

	require.NoError(t, s.Connect(a.ID, HandleRight, b.ID, HandleLeft))
	require.NoError(t, s.DeleteNode(b.ID))

	_, pending := s.Pending()
	assert.False(t, pending)
}

func TestRateNode(t *testing.T) {
	s := NewSession()
	a := placeTool(t, s, "claude")

	require.NoError(t, s.RateNode(a.ID, 4))
	node, err := s.Node(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, node.Rating)

	// Re-rating replaces in place.
	require.NoError(t, s.RateNode(a.ID, 5))
	node, _ = s.Node(a.ID)
	assert.Equal(t, 5, node.Rating)

	for _, bad := range []int{0, -1, 6} {
		assert.ErrorIs(t, s.RateNode(a.ID, bad), ErrInvalidRating)
	}
	assert.ErrorIs(t, s.RateNode("ghost", 3), ErrNodeNotFound)
}

func TestNodes_InsertionOrder(t *testing.T) {
	s := NewSession()
	ids := []string{
		placeTool(t, s, "claude").ID,
		placeTool(t, s, "cursor").ID,
		placeTool(t, s, "copilot").ID,
	}

	got := s.Nodes()
	require.Len(t, got, 3)
	for i, n := range got {
		assert.Equal(t, ids[i], n.ID)
	}
}

func TestSubscribe_ReceivesMutations(t *testing.T) {
	s := NewSession()
	events, cancel := s.Subscribe()
	defer cancel()

	a := placeTool(t, s, "claude")
	require.NoError(t, s.RateNode(a.ID, 5))
	require.NoError(t, s.DeleteNode(a.ID))

	want := []EventType{EventNodeAdded, EventNodeRated, EventNodeRemoved}
	for _, wantType := range want {
		ev := <-events
		assert.Equal(t, wantType, ev.Type)
		assert.Equal(t, s.ID(), ev.SessionID)
		assert.False(t, ev.Time.IsZero())
	}
}
