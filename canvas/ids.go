package canvas

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator allocates node and edge ids for a single session.
//
// Generators are owned by the session that created them, never shared
// module-wide, so independent canvases (multiple tabs, multiple sessions in
// one process) cannot collide or interleave.
type IDGenerator interface {
	// NodeID returns a fresh node id.
	NodeID() string

	// EdgeID returns a fresh edge id.
	EdgeID() string
}

// sequentialIDs issues node_1, node_2, ... and edge_1, edge_2, ...
type sequentialIDs struct {
	mu    sync.Mutex
	nodes uint64
	edges uint64
}

// NewSequentialIDs returns the default generator: monotonically increasing
// ids unique within the session. Safe for concurrent use.
func NewSequentialIDs() IDGenerator {
	return &sequentialIDs{}
}

func (g *sequentialIDs) NodeID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes++
	return fmt.Sprintf("node_%d", g.nodes)
}

func (g *sequentialIDs) EdgeID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges++
	return fmt.Sprintf("edge_%d", g.edges)
}

// advancePast moves the counters beyond any sequential ids in the given
// lists, so a generator attached to a restored session cannot reissue an id
// already present in the snapshot.
func (g *sequentialIDs) advancePast(nodeIDs, edgeIDs []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range nodeIDs {
		if n, ok := sequenceOf(id, "node_"); ok && n > g.nodes {
			g.nodes = n
		}
	}
	for _, id := range edgeIDs {
		if n, ok := sequenceOf(id, "edge_"); ok && n > g.edges {
			g.edges = n
		}
	}
}

func sequenceOf(id, prefix string) (uint64, bool) {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// uuidIDs issues random UUIDs, globally unique rather than session-unique.
type uuidIDs struct{}

// NewUUIDIDs returns a generator issuing UUIDv4 ids. Use it when session
// graphs are persisted or merged across processes and ids must not collide.
func NewUUIDIDs() IDGenerator {
	return uuidIDs{}
}

func (uuidIDs) NodeID() string { return uuid.NewString() }

func (uuidIDs) EdgeID() string { return uuid.NewString() }
