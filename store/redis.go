package store

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playbooklab/sdk/canvas"
)

// RedisOptions configures the Redis-backed store.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration

	// Prefix namespaces all keys written by this store. Defaults to
	// "playbooklab".
	Prefix string

	// SessionTTL is how long a saved session survives without being saved
	// again. Zero means no expiry.
	SessionTTL time.Duration

	// FeedMax caps the published-playbook feed length. Older entries are
	// trimmed on publish. Zero means unbounded.
	FeedMax int
}

// RedisStore implements Store on Redis using go-redis/v9.
//
// Key layout:
//
//	<prefix>:session:<id>   session snapshot (JSON string, optional TTL)
//	<prefix>:sessions       set of known session ids
//	<prefix>:feed           published-playbook list (JSON, newest first)
//	<prefix>:events         pub/sub channel for session events
type RedisStore struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	feedMax int
}

// NewRedisStore creates a Redis store with the given options and verifies
// connectivity.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}

	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}

	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	if opts.Prefix == "" {
		opts.Prefix = "playbooklab"
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client:  client,
		prefix:  opts.Prefix,
		ttl:     opts.SessionTTL,
		feedMax: opts.FeedMax,
	}, nil
}

// SaveSession stores a snapshot under the session key and records the id in
// the session set.
func (s *RedisStore) SaveSession(ctx context.Context, snap canvas.Snapshot) error {
	if snap.SessionID == "" {
		return ErrInvalidID
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.sessionKey(snap.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", snap.SessionID, err)
	}

	if err := s.client.SAdd(ctx, s.key("sessions"), snap.SessionID).Err(); err != nil {
		return fmt.Errorf("failed to index session %s: %w", snap.SessionID, err)
	}

	return nil
}

// LoadSession returns the snapshot for the given session id.
func (s *RedisStore) LoadSession(ctx context.Context, sessionID string) (canvas.Snapshot, error) {
	if sessionID == "" {
		return canvas.Snapshot{}, ErrInvalidID
	}

	data, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return canvas.Snapshot{}, ErrSessionNotFound
		}
		return canvas.Snapshot{}, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var snap canvas.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return canvas.Snapshot{}, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
	}

	return snap, nil
}

// DeleteSession removes the snapshot and its index entry.
func (s *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidID
	}

	deleted, err := s.client.Del(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}

	if err := s.client.SRem(ctx, s.key("sessions"), sessionID).Err(); err != nil {
		return fmt.Errorf("failed to unindex session %s: %w", sessionID, err)
	}

	if deleted == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListSessions returns the ids in the session set.
//
// A session whose key expired may still appear here until it is deleted;
// callers should treat LoadSession misses as gone.
func (s *RedisStore) ListSessions(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.key("sessions")).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// PublishPlaybook pushes an entry onto the front of the feed list, trimming
// to FeedMax when set.
func (s *RedisStore) PublishPlaybook(ctx context.Context, pb PublishedPlaybook) error {
	if pb.ID == "" {
		return ErrInvalidID
	}

	data, err := json.Marshal(pb)
	if err != nil {
		return fmt.Errorf("failed to marshal playbook: %w", err)
	}

	key := s.key("feed")
	if err := s.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to publish playbook %s: %w", pb.ID, err)
	}

	if s.feedMax > 0 {
		if err := s.client.LTrim(ctx, key, 0, int64(s.feedMax)-1).Err(); err != nil {
			return fmt.Errorf("failed to trim feed: %w", err)
		}
	}

	return nil
}

// Feed returns up to limit entries, newest first. Entries that fail to
// decode are skipped.
func (s *RedisStore) Feed(ctx context.Context, limit int) ([]PublishedPlaybook, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := s.client.LRange(ctx, s.key("feed"), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	feed := make([]PublishedPlaybook, 0, len(raw))
	for _, entry := range raw {
		var pb PublishedPlaybook
		if err := json.Unmarshal([]byte(entry), &pb); err != nil {
			continue
		}
		feed = append(feed, pb)
	}

	return feed, nil
}

// PublishEvent broadcasts a session event to all subscribers.
func (s *RedisStore) PublishEvent(ctx context.Context, ev canvas.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := s.client.Publish(ctx, s.key("events"), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// SubscribeEvents subscribes to the session-event channel. The returned
// channel receives events until the context is cancelled.
func (s *RedisStore) SubscribeEvents(ctx context.Context) (<-chan canvas.Event, error) {
	pubsub := s.client.Subscribe(ctx, s.key("events"))

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to events: %w", err)
	}

	events := make(chan canvas.Event)

	go func() {
		defer close(events)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev canvas.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}

				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(suffix string) string {
	return s.prefix + ":" + suffix
}

func (s *RedisStore) sessionKey(id string) string {
	return s.prefix + ":session:" + id
}
