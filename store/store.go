// Package store persists canvas session snapshots and the published-playbook
// feed.
//
// Two backends exist: an in-memory store matching the demo's
// process-lifetime semantics, and a Redis store for deployments where
// sessions and published playbooks must survive the process or be shared
// between instances. Both implement Store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/playbooklab/sdk/canvas"
)

// Common errors returned by store operations.
var (
	// ErrSessionNotFound is returned when a session id does not exist in
	// the store.
	ErrSessionNotFound = errors.New("store: session not found")

	// ErrInvalidID is returned when an id is empty.
	ErrInvalidID = errors.New("store: invalid id")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store: closed")
)

// PublishedPlaybook is a composed playbook a user shared from the builder.
type PublishedPlaybook struct {
	// ID uniquely identifies the published entry.
	ID string `json:"id"`

	// Title is the playbook title at publish time.
	Title string `json:"title"`

	// Author is the publishing user's display name.
	Author string `json:"author,omitempty"`

	// Snapshot is the graph as published.
	Snapshot canvas.Snapshot `json:"snapshot"`

	// PublishedAt is when the playbook was shared.
	PublishedAt time.Time `json:"published_at"`
}

// Store persists session snapshots and published playbooks.
//
// Implementations must be safe for concurrent use. Lookups for missing
// sessions return ErrSessionNotFound; callers are expected to treat a miss
// as "start fresh", not as a failure.
type Store interface {
	// SaveSession stores a session snapshot, replacing any previous
	// snapshot with the same session id.
	SaveSession(ctx context.Context, snap canvas.Snapshot) error

	// LoadSession returns the snapshot for the given session id.
	LoadSession(ctx context.Context, sessionID string) (canvas.Snapshot, error)

	// DeleteSession removes a session's snapshot.
	// Returns ErrSessionNotFound if the id does not exist.
	DeleteSession(ctx context.Context, sessionID string) error

	// ListSessions returns the ids of all stored sessions.
	ListSessions(ctx context.Context) ([]string, error)

	// PublishPlaybook appends an entry to the published-playbook feed.
	PublishPlaybook(ctx context.Context, pb PublishedPlaybook) error

	// Feed returns the most recently published playbooks, newest first,
	// up to limit.
	Feed(ctx context.Context, limit int) ([]PublishedPlaybook, error)

	// Close releases the store's resources.
	Close() error
}

// EventPublisher is implemented by stores that can broadcast session events
// to other processes, such as RedisStore. Callers feed it from
// canvas.Session.Subscribe.
type EventPublisher interface {
	// PublishEvent broadcasts a session event to all subscribers.
	PublishEvent(ctx context.Context, ev canvas.Event) error
}
