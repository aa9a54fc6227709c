package canvas

import (
	"sync"
	"time"
)

// EventType identifies a session mutation.
type EventType string

// Session mutation events.
const (
	EventNodeAdded   EventType = "node_added"
	EventNodeRemoved EventType = "node_removed"
	EventNodeRated   EventType = "node_rated"
	EventEdgeAdded   EventType = "edge_added"
	EventEdgeRemoved EventType = "edge_removed"
	EventSeeded      EventType = "seeded"
)

// Event describes a single session mutation. Exactly one of Node, Edge, or
// NodeID is populated depending on the event type.
type Event struct {
	// Type identifies the mutation.
	Type EventType `json:"type"`

	// SessionID is the id of the session that mutated.
	SessionID string `json:"session_id"`

	// Node is the affected node for node_added and node_rated.
	Node *Node `json:"node,omitempty"`

	// NodeID is the removed node's id for node_removed.
	NodeID string `json:"node_id,omitempty"`

	// Edge is the affected edge for edge_added and edge_removed.
	Edge *Edge `json:"edge,omitempty"`

	// Time is when the mutation happened.
	Time time.Time `json:"time"`
}

// subscriberBuffer is the per-subscriber channel capacity. A subscriber
// that falls this far behind starts losing events rather than blocking
// session edits.
const subscriberBuffer = 64

// eventHub fans session events out to subscribers.
type eventHub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[int]chan Event)}
}

func (h *eventHub) publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is not keeping up; drop rather than stall edits.
		}
	}
}

func (h *eventHub) subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, subscriberBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Subscribe returns a channel of this session's mutation events and a
// cancel function that closes it. Slow subscribers lose events instead of
// blocking edit operations.
func (s *Session) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}
