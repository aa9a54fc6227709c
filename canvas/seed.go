package canvas

import (
	"github.com/playbooklab/sdk/catalog"
	"github.com/playbooklab/sdk/optimize"
)

// Seed layout constants: nodes march left to right with an alternating
// vertical offset.
const (
	seedSpacingX = 380
	seedBaseY    = 120
	seedOffsetY  = 200
)

// SeedItem is one entry of a seed sequence: a tool and the optional action
// text describing its step. Action becomes the label of the chaining edge
// leaving this item's node.
type SeedItem struct {
	Tool   catalog.ToolRecord
	Action string
}

// SeedOptions configures canvas seeding.
type SeedOptions struct {
	// Optimizations, when non-nil, injects suggestion nodes below every
	// seeded tool node that has an entry in the map. Catalog must also be
	// set to resolve the alternatives' display data.
	Optimizations *optimize.Map

	// Catalog resolves alternative tool ids for optimization injection.
	Catalog *catalog.Catalog
}

// SeedResult reports what a seed routine created. Main nodes and chain
// edges are counted separately from derived optimization additions.
type SeedResult struct {
	Nodes             []Node
	Edges             []Edge
	OptimizationNodes []Node
	OptimizationEdges []Edge
}

// Seed populates an empty session with a left-to-right chain of tool
// nodes: node i sits at (i*380, 120 + (i%2)*200), and consecutive nodes
// are linked right-handle to left-handle with the source item's action as
// the edge label when present.
//
// Seeding runs at most once per session. A second call — including the
// re-render storms a reactive view layer can produce — returns
// ErrAlreadySeeded and changes nothing. Optimization suggestions, when
// enabled, are derived here at populate time and are not recomputed as the
// graph is edited afterwards.
func (s *Session) Seed(items []SeedItem, opts SeedOptions) (SeedResult, error) {
	s.mu.Lock()
	if s.seeded {
		s.mu.Unlock()
		return SeedResult{}, ErrAlreadySeeded
	}
	s.seeded = true

	var res SeedResult
	for i, item := range items {
		pos := Position{
			X: float64(i * seedSpacingX),
			Y: float64(seedBaseY + (i%2)*seedOffsetY),
		}
		node := s.placeLocked(ToolPayload{Tool: item.Tool}, pos)
		res.Nodes = append(res.Nodes, node)
	}

	for i := 0; i+1 < len(res.Nodes); i++ {
		edge := Edge{
			ID:           s.ids.EdgeID(),
			Source:       res.Nodes[i].ID,
			Target:       res.Nodes[i+1].ID,
			SourceHandle: HandleRight,
			TargetHandle: HandleLeft,
			Label:        items[i].Action,
			Style:        defaultEdgeStyle(),
		}
		s.edges[edge.ID] = &edge
		s.edgeOrder = append(s.edgeOrder, edge.ID)
		res.Edges = append(res.Edges, edge)
	}

	if opts.Optimizations != nil {
		optNodes, optEdges := DeriveOptimizations(res.Nodes, opts.Optimizations, opts.Catalog)
		for _, n := range optNodes {
			s.insertNodeLocked(n)
		}
		for _, e := range optEdges {
			edge := e
			s.edges[edge.ID] = &edge
			s.edgeOrder = append(s.edgeOrder, edge.ID)
		}
		res.OptimizationNodes = optNodes
		res.OptimizationEdges = optEdges
	}
	s.mu.Unlock()

	s.logger.Info("session seeded",
		"session", s.id,
		"nodes", len(res.Nodes),
		"edges", len(res.Edges),
		"optimization_nodes", len(res.OptimizationNodes))
	s.events.publish(Event{Type: EventSeeded, SessionID: s.id})
	return res, nil
}

// SeedFromPlaybook seeds the session from a published playbook (the
// "remix" flow). The playbook's steps drive the sequence — each step's tool
// and action text — with steps whose tool id does not resolve skipped. If
// the playbook has no steps, its ToolIDs are used with no action labels.
func (s *Session) SeedFromPlaybook(pb catalog.PlaybookRecord, c *catalog.Catalog, opts SeedOptions) (SeedResult, error) {
	var items []SeedItem
	if len(pb.Steps) > 0 {
		for _, step := range pb.Steps {
			tool, err := c.ToolByID(step.ToolID)
			if err != nil {
				continue
			}
			items = append(items, SeedItem{Tool: tool, Action: step.Action})
		}
	} else {
		items = itemsFromToolIDs(pb.ToolIDs, c)
	}
	return s.Seed(items, opts)
}

// SeedFromToolList seeds the session from a plain tool-id list (the
// guided-onboarding flow). Ids that do not resolve are skipped.
func (s *Session) SeedFromToolList(toolIDs []string, c *catalog.Catalog, opts SeedOptions) (SeedResult, error) {
	return s.Seed(itemsFromToolIDs(toolIDs, c), opts)
}

func itemsFromToolIDs(ids []string, c *catalog.Catalog) []SeedItem {
	var items []SeedItem
	for _, id := range ids {
		tool, err := c.ToolByID(id)
		if err != nil {
			continue
		}
		items = append(items, SeedItem{Tool: tool})
	}
	return items
}
