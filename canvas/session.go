// Package canvas implements the playbook canvas graph model: a
// session-scoped node/edge graph with explicit edit operations for placing
// tools, connecting them, annotating connections, rating, and deleting.
//
// A Session owns its graph exclusively. All methods are safe for concurrent
// use, though the expected caller is a single UI event loop. State is
// process-lifetime only; persistence goes through Snapshot and the store
// package.
package canvas

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Errors returned by session edit operations.
var (
	// ErrNodeNotFound is returned when an operation references a node id
	// that is not (or no longer) in the session.
	ErrNodeNotFound = errors.New("canvas: node not found")

	// ErrConnectionPending is returned by Connect while another proposed
	// connection awaits commit or cancel. One connection slot exists per
	// session; concurrent attempts are rejected, not queued.
	ErrConnectionPending = errors.New("canvas: a connection is already pending")

	// ErrNoPendingConnection is returned by CommitConnection and
	// CancelConnection when nothing is pending.
	ErrNoPendingConnection = errors.New("canvas: no pending connection")

	// ErrSelfLoop is returned when a connection's source and target are
	// the same node.
	ErrSelfLoop = errors.New("canvas: connection would form a self-loop")

	// ErrInvalidRating is returned by RateNode for ratings outside 1-5.
	ErrInvalidRating = errors.New("canvas: rating must be between 1 and 5")

	// ErrAlreadySeeded is returned when a seed routine runs on a session
	// that has already been seeded.
	ErrAlreadySeeded = errors.New("canvas: session already seeded")
)

// Session is a single in-progress playbook graph.
type Session struct {
	id string

	mu       sync.Mutex
	ids      IDGenerator
	logger   *slog.Logger
	viewport Viewport

	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string

	pending *Connection
	seeded  bool

	events *eventHub
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithIDGenerator sets the session's id generator.
// Defaults to NewSequentialIDs.
func WithIDGenerator(g IDGenerator) SessionOption {
	return func(s *Session) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithLogger sets the session's structured logger.
// Defaults to slog.Default.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithViewport sets the initial pan/zoom state.
// Defaults to the identity viewport.
func WithViewport(v Viewport) SessionOption {
	return func(s *Session) {
		s.viewport = v
	}
}

// WithSessionID sets an explicit session id, used when restoring snapshots.
// Defaults to a fresh UUID.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// NewSession creates an empty canvas session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		id:       uuid.NewString(),
		ids:      NewSequentialIDs(),
		logger:   slog.Default(),
		viewport: DefaultViewport(),
		nodes:    make(map[string]*Node),
		edges:    make(map[string]*Edge),
		events:   newEventHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// SetViewport updates the session's pan/zoom state. The view layer calls
// this whenever the user pans or zooms so that subsequent drops land where
// the pointer is.
func (s *Session) SetViewport(v Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = v
}

// Viewport returns the current pan/zoom state.
func (s *Session) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// PlaceNode drops a tool onto the canvas at a screen-space position,
// converting through the current viewport. Each call creates a distinct
// node — placing the same tool twice is allowed and yields two independent
// nodes, since a workflow may reuse a tool at multiple stages.
//
// The new node starts unrated (rating 0). Returns the created node.
func (s *Session) PlaceNode(payload Payload, screen Position) (Node, error) {
	if payload == nil {
		return Node{}, fmt.Errorf("canvas: nil payload")
	}

	s.mu.Lock()
	pos := s.viewport.ScreenToCanvas(screen)
	node := s.placeLocked(payload, pos)
	s.mu.Unlock()

	s.events.publish(Event{Type: EventNodeAdded, SessionID: s.id, Node: &node})
	return node, nil
}

// PlaceNodeAt places a node directly at canvas coordinates, bypassing the
// viewport transform. Seeding and snapshot restoration use this path.
func (s *Session) PlaceNodeAt(payload Payload, pos Position) (Node, error) {
	if payload == nil {
		return Node{}, fmt.Errorf("canvas: nil payload")
	}

	s.mu.Lock()
	node := s.placeLocked(payload, pos)
	s.mu.Unlock()

	s.events.publish(Event{Type: EventNodeAdded, SessionID: s.id, Node: &node})
	return node, nil
}

// placeLocked inserts a node; s.mu must be held.
func (s *Session) placeLocked(payload Payload, pos Position) Node {
	node := Node{
		ID:       s.ids.NodeID(),
		Position: pos,
		Payload:  payload,
	}
	s.nodes[node.ID] = &node
	s.nodeOrder = append(s.nodeOrder, node.ID)

	s.logger.Debug("node placed",
		"session", s.id,
		"node", node.ID,
		"kind", node.Kind(),
		"tool", node.ToolID())
	return node
}

// insertNodeLocked inserts a pre-built node (derived optimization nodes
// carry their own deterministic ids); s.mu must be held.
func (s *Session) insertNodeLocked(node Node) {
	n := node
	s.nodes[n.ID] = &n
	s.nodeOrder = append(s.nodeOrder, n.ID)
}

// Connect proposes a connection between two node handles. The edge is not
// created yet: the session enters the pending-connection state and stays
// there until CommitConnection or CancelConnection.
//
// Returns ErrConnectionPending if a proposal is already open,
// ErrNodeNotFound if either endpoint is missing, and ErrSelfLoop when
// source and target are the same node.
func (s *Session) Connect(source string, sourceHandle Handle, target string, targetHandle Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return ErrConnectionPending
	}
	if _, ok := s.nodes[source]; !ok {
		return fmt.Errorf("%w: source %q", ErrNodeNotFound, source)
	}
	if _, ok := s.nodes[target]; !ok {
		return fmt.Errorf("%w: target %q", ErrNodeNotFound, target)
	}
	if source == target {
		return fmt.Errorf("%w: %q", ErrSelfLoop, source)
	}

	s.pending = &Connection{
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
	return nil
}

// Pending returns the currently proposed connection, if any.
func (s *Session) Pending() (Connection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Connection{}, false
	}
	return *s.pending, true
}

// CommitConnection turns the pending proposal into an edge. A nil meta (or
// an empty name) is the "skip" path: the edge gets default styling and no
// label. A non-empty meta.Name becomes the edge label, with
// meta.Description attached.
//
// Duplicate edges between the same handle pair are permitted.
func (s *Session) CommitConnection(meta *ConnectionMeta) (Edge, error) {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return Edge{}, ErrNoPendingConnection
	}

	conn := *s.pending
	s.pending = nil

	edge := Edge{
		ID:           s.ids.EdgeID(),
		Source:       conn.Source,
		Target:       conn.Target,
		SourceHandle: conn.SourceHandle,
		TargetHandle: conn.TargetHandle,
		Style:        defaultEdgeStyle(),
	}
	if meta != nil && meta.Name != "" {
		edge.Label = meta.Name
		edge.Description = meta.Description
	}

	s.edges[edge.ID] = &edge
	s.edgeOrder = append(s.edgeOrder, edge.ID)
	s.mu.Unlock()

	s.logger.Debug("connection committed",
		"session", s.id,
		"edge", edge.ID,
		"labeled", edge.Label != "")
	s.events.publish(Event{Type: EventEdgeAdded, SessionID: s.id, Edge: &edge})
	return edge, nil
}

// SkipConnection commits the pending proposal without a label or
// description. Equivalent to CommitConnection(nil).
func (s *Session) SkipConnection() (Edge, error) {
	return s.CommitConnection(nil)
}

// CancelConnection abandons the pending proposal without creating an edge.
func (s *Session) CancelConnection() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return ErrNoPendingConnection
	}
	s.pending = nil
	return nil
}

// DeleteNode removes a node and every edge incident to it. Leaving edges
// that reference a deleted node dangling is not permitted. If the pending
// connection references the node, the proposal is cancelled as well.
func (s *Session) DeleteNode(id string) error {
	s.mu.Lock()
	if _, ok := s.nodes[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}

	delete(s.nodes, id)
	s.nodeOrder = removeString(s.nodeOrder, id)

	var removed []Edge
	for _, eid := range s.edgeOrder {
		e := s.edges[eid]
		if e.Source == id || e.Target == id {
			removed = append(removed, *e)
			delete(s.edges, eid)
		}
	}
	for _, e := range removed {
		s.edgeOrder = removeString(s.edgeOrder, e.ID)
	}

	if s.pending != nil && (s.pending.Source == id || s.pending.Target == id) {
		s.pending = nil
	}
	s.mu.Unlock()

	s.logger.Debug("node deleted",
		"session", s.id,
		"node", id,
		"cascaded_edges", len(removed))
	s.events.publish(Event{Type: EventNodeRemoved, SessionID: s.id, NodeID: id})
	for i := range removed {
		s.events.publish(Event{Type: EventEdgeRemoved, SessionID: s.id, Edge: &removed[i]})
	}
	return nil
}

// RateNode sets a node's rating. Ratings are 1-5; anything else returns
// ErrInvalidRating.
func (s *Session) RateNode(id string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}

	s.mu.Lock()
	node, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	node.Rating = rating
	rated := *node
	s.mu.Unlock()

	s.events.publish(Event{Type: EventNodeRated, SessionID: s.id, Node: &rated})
	return nil
}

// Node returns the node with the given id.
func (s *Session) Node(id string) (Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	return *node, nil
}

// Nodes returns all nodes in insertion order.
func (s *Session) Nodes() []Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, *s.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (s *Session) Edges() []Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Edge, 0, len(s.edgeOrder))
	for _, id := range s.edgeOrder {
		out = append(out, *s.edges[id])
	}
	return out
}

// Seeded reports whether a seed routine already populated this session.
func (s *Session) Seeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seeded
}

// defaultEdgeStyle is the style of user-drawn connections.
func defaultEdgeStyle() EdgeStyle {
	return EdgeStyle{Color: "#5746b2", Animated: true}
}

func removeString(list []string, v string) []string {
	for i, s := range list {
		if s == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
