package canvas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbooklab/sdk/catalog"
	"github.com/playbooklab/sdk/optimize"
)

func TestViewport_RoundTrip(t *testing.T) {
	v := Viewport{OffsetX: 40, OffsetY: -20, Zoom: 1.5}
	p := Position{X: 123, Y: 456}

	canvasPos := v.ScreenToCanvas(p)
	back := v.CanvasToScreen(canvasPos)
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestViewport_ZeroZoomTreatedAsIdentityScale(t *testing.T) {
	v := Viewport{OffsetX: 10}
	got := v.ScreenToCanvas(Position{X: 110, Y: 50})
	assert.Equal(t, Position{X: 100, Y: 50}, got)
}

func TestSnapshot_RestoreRoundTrip(t *testing.T) {
	c := catalog.Default()
	s := NewSession()

	_, err := s.SeedFromPlaybook(mustPlaybook(t, c, "figma-design"), c, SeedOptions{
		Optimizations: optimize.Default(),
		Catalog:       c,
	})
	require.NoError(t, err)
	require.NoError(t, s.RateNode(s.Nodes()[0].ID, 5))

	snap := s.Snapshot()
	restored := RestoreSession(snap)

	assert.Equal(t, s.ID(), restored.ID())
	assert.Equal(t, s.Nodes(), restored.Nodes())
	assert.Equal(t, s.Edges(), restored.Edges())

	// The seed guard survives restoration.
	_, err = restored.Seed(nil, SeedOptions{})
	assert.ErrorIs(t, err, ErrAlreadySeeded)

	// New ids continue past the snapshot's sequence.
	node, err := restored.PlaceNodeAt(ToolPayload{Tool: toolRecord("jasper", "Jasper")}, Position{})
	require.NoError(t, err)
	for _, existing := range snap.Nodes {
		assert.NotEqual(t, existing.ID, node.ID)
	}
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	c := catalog.Default()
	s := NewSession()
	_, err := s.SeedFromToolList([]string{"chatgpt", "cursor"}, c, SeedOptions{
		Optimizations: optimize.Default(),
		Catalog:       c,
	})
	require.NoError(t, err)

	snap := s.Snapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Equal(t, len(snap.Nodes), len(decoded.Nodes))
	for i := range snap.Nodes {
		assert.Equal(t, snap.Nodes[i].ID, decoded.Nodes[i].ID)
		assert.Equal(t, snap.Nodes[i].Kind(), decoded.Nodes[i].Kind())
		assert.Equal(t, snap.Nodes[i].Payload, decoded.Nodes[i].Payload)
	}
	assert.Equal(t, snap.Edges, decoded.Edges)
}

func TestNode_UnmarshalUnknownKind(t *testing.T) {
	raw := []byte(`{"id":"node_1","position":{"x":0,"y":0},"kind":"hologram","payload":{}}`)
	var n Node
	err := json.Unmarshal(raw, &n)
	assert.Error(t, err)
}

func mustPlaybook(t *testing.T, c *catalog.Catalog, id string) catalog.PlaybookRecord {
	t.Helper()
	pb, err := c.PlaybookByID(id)
	require.NoError(t, err)
	return pb
}
