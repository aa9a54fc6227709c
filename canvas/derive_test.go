package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbooklab/sdk/catalog"
	"github.com/playbooklab/sdk/optimize"
)

func mainNodesForDerive(t *testing.T, toolIDs ...string) []Node {
	t.Helper()
	c := catalog.Default()
	nodes := make([]Node, 0, len(toolIDs))
	for i, id := range toolIDs {
		tool, err := c.ToolByID(id)
		require.NoError(t, err)
		nodes = append(nodes, Node{
			ID:       "node_" + id,
			Position: Position{X: float64(i * 380), Y: 120},
			Payload:  ToolPayload{Tool: tool},
		})
	}
	return nodes
}

func TestDeriveOptimizations(t *testing.T) {
	c := catalog.Default()
	m := optimize.Default()

	// chatgpt has a suggestion resolving to claude; cursor's suggestion
	// (windsurf) is not in the catalog; grammarly's (writer) is not
	// either.
	nodes := mainNodesForDerive(t, "chatgpt", "cursor", "grammarly")

	extraNodes, extraEdges := DeriveOptimizations(nodes, m, c)
	require.Len(t, extraNodes, 1)
	require.Len(t, extraEdges, 1)

	opt := extraNodes[0]
	assert.Equal(t, "opt_node_chatgpt", opt.ID)
	assert.Equal(t, NodeKindOptimization, opt.Kind())
	assert.Equal(t, Position{X: 0, Y: 410}, opt.Position)

	payload := opt.Payload.(OptimizationPayload)
	assert.Equal(t, "claude", payload.Tool.ID)
	assert.Equal(t, "Better reasoning", payload.Suggestion.Metric)

	edge := extraEdges[0]
	assert.Equal(t, "opt-edge-node_chatgpt", edge.ID)
	assert.Equal(t, "node_chatgpt", edge.Source)
	assert.Equal(t, opt.ID, edge.Target)
}

func TestDeriveOptimizations_Pure(t *testing.T) {
	c := catalog.Default()
	m := optimize.Default()
	nodes := mainNodesForDerive(t, "chatgpt", "claude", "notion-ai")

	firstNodes, firstEdges := DeriveOptimizations(nodes, m, c)
	secondNodes, secondEdges := DeriveOptimizations(nodes, m, c)

	// Same inputs, structurally identical output: same count and the same
	// source->target pairings in the same order.
	require.Equal(t, len(firstNodes), len(secondNodes))
	require.Equal(t, len(firstEdges), len(secondEdges))
	for i := range firstEdges {
		assert.Equal(t, firstEdges[i].Source, secondEdges[i].Source)
		assert.Equal(t, firstEdges[i].Target, secondEdges[i].Target)
	}
	assert.Equal(t, firstNodes, secondNodes)
	assert.Equal(t, firstEdges, secondEdges)
}

func TestDeriveOptimizations_IgnoresOptimizationNodes(t *testing.T) {
	c := catalog.Default()
	m := optimize.Default()

	claude, err := c.ToolByID("claude")
	require.NoError(t, err)
	sugg, ok := m.Lookup("chatgpt")
	require.True(t, ok)

	nodes := []Node{{
		ID:      "opt_node_1",
		Payload: OptimizationPayload{Tool: claude, Suggestion: sugg},
	}}

	extraNodes, extraEdges := DeriveOptimizations(nodes, m, c)
	assert.Empty(t, extraNodes)
	assert.Empty(t, extraEdges)
}

func TestDeriveOptimizations_NilInputs(t *testing.T) {
	nodes := mainNodesForDerive(t, "chatgpt")

	extraNodes, extraEdges := DeriveOptimizations(nodes, nil, catalog.Default())
	assert.Empty(t, extraNodes)
	assert.Empty(t, extraEdges)

	extraNodes, extraEdges = DeriveOptimizations(nodes, optimize.Default(), nil)
	assert.Empty(t, extraNodes)
	assert.Empty(t, extraEdges)
}
