package canvas

import (
	"github.com/playbooklab/sdk/catalog"
	"github.com/playbooklab/sdk/optimize"
)

// Vertical distance between a tool node and its derived suggestion node.
const optimizationOffsetY = 290

// DeriveOptimizations synthesizes suggestion nodes and edges for every tool
// node whose tool id has an entry in the optimization map and whose
// suggested alternative resolves in the catalog.
//
// The function is pure: it reads its inputs and returns the additions
// without touching any session. Suggestion node ids are deterministic
// ("opt_" + main node id), the node sits directly below its main node, and
// the connecting edge runs from the main node's bottom handle to the
// suggestion's top handle, dashed and colored by suggestion type.
//
// Optimization nodes in the input are ignored; suggestions are never
// derived from other suggestions.
func DeriveOptimizations(nodes []Node, m *optimize.Map, c *catalog.Catalog) ([]Node, []Edge) {
	if m == nil || c == nil {
		return nil, nil
	}

	var (
		extraNodes []Node
		extraEdges []Edge
	)
	for _, main := range nodes {
		payload, ok := main.Payload.(ToolPayload)
		if !ok {
			continue
		}

		suggestion, ok := m.Lookup(payload.Tool.ID)
		if !ok {
			continue
		}

		alt, err := c.ToolByID(suggestion.AltToolID)
		if err != nil {
			// Suggestions may point at tools outside the catalog; skip.
			continue
		}

		optID := "opt_" + main.ID
		extraNodes = append(extraNodes, Node{
			ID: optID,
			Position: Position{
				X: main.Position.X,
				Y: main.Position.Y + optimizationOffsetY,
			},
			Payload: OptimizationPayload{Tool: alt, Suggestion: suggestion},
		})
		extraEdges = append(extraEdges, Edge{
			ID:           "opt-edge-" + main.ID,
			Source:       main.ID,
			Target:       optID,
			SourceHandle: HandleBottom,
			TargetHandle: HandleTop,
			Label:        suggestion.Type.EdgeLabel(),
			Style: EdgeStyle{
				Color:  suggestion.Type.EdgeColor(),
				Dashed: true,
			},
		})
	}
	return extraNodes, extraEdges
}
