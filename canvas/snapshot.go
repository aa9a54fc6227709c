package canvas

import "time"

// Snapshot is the serializable state of a session: what the store package
// persists and what the HTTP API returns for a session read. Snapshots are
// plain data; they do not reference the live session.
type Snapshot struct {
	// SessionID is the id of the session the snapshot was taken from.
	SessionID string `json:"session_id"`

	// Title is the user-editable playbook title.
	Title string `json:"title,omitempty"`

	// Nodes and Edges hold the graph in insertion order.
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	// Seeded records whether the seed guard has fired, so a restored
	// session cannot be re-seeded either.
	Seeded bool `json:"seeded,omitempty"`

	// TakenAt is when the snapshot was captured.
	TakenAt time.Time `json:"taken_at"`
}

// Snapshot captures the session's current graph.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID: s.id,
		Seeded:    s.seeded,
		TakenAt:   time.Now(),
		Nodes:     make([]Node, 0, len(s.nodeOrder)),
		Edges:     make([]Edge, 0, len(s.edgeOrder)),
	}
	for _, id := range s.nodeOrder {
		snap.Nodes = append(snap.Nodes, *s.nodes[id])
	}
	for _, id := range s.edgeOrder {
		snap.Edges = append(snap.Edges, *s.edges[id])
	}
	return snap
}

// RestoreSession rebuilds a live session from a snapshot. The restored
// session keeps the snapshot's session id and seed guard, and its
// sequential id generator is advanced past every id in the snapshot so new
// nodes and edges cannot collide with restored ones.
func RestoreSession(snap Snapshot, opts ...SessionOption) *Session {
	s := NewSession(append([]SessionOption{WithSessionID(snap.SessionID)}, opts...)...)

	s.mu.Lock()
	s.seeded = snap.Seeded
	for _, n := range snap.Nodes {
		node := n
		s.nodes[node.ID] = &node
		s.nodeOrder = append(s.nodeOrder, node.ID)
	}
	for _, e := range snap.Edges {
		edge := e
		s.edges[edge.ID] = &edge
		s.edgeOrder = append(s.edgeOrder, edge.ID)
	}

	if g, ok := s.ids.(*sequentialIDs); ok {
		g.advancePast(s.nodeOrder, s.edgeOrder)
	}
	s.mu.Unlock()
	return s
}
