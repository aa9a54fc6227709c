package sdk

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playbooklab/sdk/canvas"
	"github.com/playbooklab/sdk/catalog"
	"github.com/playbooklab/sdk/logo"
	"github.com/playbooklab/sdk/optimize"
	"github.com/playbooklab/sdk/search"
	"github.com/playbooklab/sdk/serve"
	"github.com/playbooklab/sdk/store"
)

// Studio is the SDK's main entrypoint. It wires the catalogs, search index,
// optimization map, session store, and logo resolver together, and manages
// the live canvas sessions.
//
// A Studio is safe for concurrent use. It implements serve.SessionManager,
// so Handler() can expose it over HTTP directly.
type Studio struct {
	logger        *slog.Logger
	catalog       *catalog.Catalog
	index         *search.Index
	optimizations *optimize.Map
	store         store.Store
	logos         logo.Resolver
	metrics       *serve.Metrics
	cfg           studioConfig

	mu           sync.RWMutex
	sessions     map[string]*canvas.Session
	eventCancels map[string]func()
	closed       bool
}

// NewStudio creates a studio instance.
//
// Without options it runs fully self-contained: the embedded catalog and
// optimization map, an in-memory store, and the tokenless logo resolver.
//
// Example:
//
//	studio, err := sdk.NewStudio(
//	    sdk.WithLogger(logger),
//	    sdk.WithStore(redisStore),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer studio.Close()
func NewStudio(opts ...StudioOption) (*Studio, error) {
	cfg := studioConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	if cfg.catalog == nil {
		cfg.catalog = catalog.Default()
	}
	if !cfg.optimizationsSet {
		cfg.optimizations = optimize.Default()
	}
	if cfg.store == nil {
		cfg.store = store.NewMemoryStore()
	}
	if cfg.logos == nil {
		cfg.logos = &logo.URLResolver{}
	}

	if cfg.catalog.ToolCount() == 0 {
		return nil, NewConfigurationError("NewStudio", fmt.Errorf("%w: catalog has no tools", ErrInvalidConfig))
	}

	var metrics *serve.Metrics
	if cfg.meter != nil {
		m, err := serve.NewMetrics(cfg.meter)
		if err != nil {
			return nil, NewConfigurationError("NewStudio", err)
		}
		metrics = m
	}

	return &Studio{
		logger:        cfg.logger,
		catalog:       cfg.catalog,
		index:         search.NewIndex(cfg.catalog),
		optimizations: cfg.optimizations,
		store:         cfg.store,
		logos:         cfg.logos,
		metrics:       metrics,
		cfg:           cfg,
		sessions:      make(map[string]*canvas.Session),
		eventCancels:  make(map[string]func()),
	}, nil
}

// Catalog returns the studio's tool and playbook catalog.
func (s *Studio) Catalog() *catalog.Catalog { return s.catalog }

// Index returns the studio's search index.
func (s *Studio) Index() *search.Index { return s.index }

// Optimizations returns the optimization-suggestion map, nil when disabled.
func (s *Studio) Optimizations() *optimize.Map { return s.optimizations }

// Store returns the persistence backend.
func (s *Studio) Store() store.Store { return s.store }

// CreateSession starts a new empty canvas session owned by this studio.
// Returns nil on a closed studio.
func (s *Studio) CreateSession() *canvas.Session {
	session := canvas.NewSession(canvas.WithLogger(s.logger))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	s.forwardEvents(session)

	s.logger.Info("session created", "session", session.ID())
	return session
}

// forwardEvents bridges a session's mutation events onto the store's
// pub/sub channel when the store supports publishing.
func (s *Studio) forwardEvents(session *canvas.Session) {
	publisher, ok := s.store.(store.EventPublisher)
	if !ok {
		return
	}

	ch, cancel := session.Subscribe()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return
	}
	s.eventCancels[session.ID()] = cancel
	s.mu.Unlock()

	go func() {
		for ev := range ch {
			if err := publisher.PublishEvent(context.Background(), ev); err != nil {
				s.logger.Warn("failed to publish session event",
					"session", ev.SessionID,
					"type", ev.Type,
					"error", err)
			}
		}
	}()
}

// stopForwarding cancels a session's event subscription, ending its
// forwarder goroutine. Callers must not hold s.mu.
func (s *Studio) stopForwarding(id string) {
	s.mu.Lock()
	cancel, ok := s.eventCancels[id]
	if ok {
		delete(s.eventCancels, id)
	}
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// Session returns a live session by id.
func (s *Studio) Session(id string) (*canvas.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// CloseSession discards a live session without persisting it. Reports
// whether the session existed.
func (s *Studio) CloseSession(id string) bool {
	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	s.stopForwarding(id)
	return true
}

// SearchTools runs a tool search. An empty query returns the leading
// catalog tools.
func (s *Studio) SearchTools(query string) []catalog.ToolRecord {
	return s.index.Tools(query)
}

// SearchPlaybooks runs a playbook search.
func (s *Studio) SearchPlaybooks(query string) []catalog.PlaybookRecord {
	return s.index.Playbooks(query)
}

// ResolveLogo resolves the display logo for a tool.
func (s *Studio) ResolveLogo(ctx context.Context, toolID string, size int) (logo.Logo, error) {
	tool, err := s.catalog.ToolByID(toolID)
	if err != nil {
		return logo.Logo{}, NewNotFoundError("Studio.ResolveLogo", err).
			WithContext(map[string]any{"tool": toolID})
	}
	return s.logos.Resolve(ctx, tool, size), nil
}

// isClosed reports whether Close has been called.
func (s *Studio) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// SaveSession snapshots a live session into the store.
func (s *Studio) SaveSession(ctx context.Context, id string) (canvas.Snapshot, error) {
	if s.isClosed() {
		return canvas.Snapshot{}, NewConflictError("Studio.SaveSession", ErrStudioClosed)
	}

	session, ok := s.Session(id)
	if !ok {
		return canvas.Snapshot{}, NewNotFoundError("Studio.SaveSession", ErrSessionNotFound).
			WithContext(map[string]any{"session": id})
	}

	snap := session.Snapshot()
	if err := s.store.SaveSession(ctx, snap); err != nil {
		return canvas.Snapshot{}, NewStorageError("Studio.SaveSession", err)
	}
	return snap, nil
}

// RestoreSession loads a snapshot from the store and revives it as a live
// session. If a live session with the same id already exists it is
// replaced.
func (s *Studio) RestoreSession(ctx context.Context, id string) (*canvas.Session, error) {
	if s.isClosed() {
		return nil, NewConflictError("Studio.RestoreSession", ErrStudioClosed)
	}

	snap, err := s.store.LoadSession(ctx, id)
	if err != nil {
		return nil, NewStorageError("Studio.RestoreSession", err).
			WithContext(map[string]any{"session": id})
	}

	session := canvas.RestoreSession(snap, canvas.WithLogger(s.logger))

	// A replaced live session keeps its forwarder otherwise.
	s.stopForwarding(id)

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	s.forwardEvents(session)

	return session, nil
}

// Publish shares a session's current graph on the published-playbook feed.
func (s *Studio) Publish(ctx context.Context, sessionID, title, author string) (store.PublishedPlaybook, error) {
	if s.isClosed() {
		return store.PublishedPlaybook{}, NewConflictError("Studio.Publish", ErrStudioClosed)
	}

	if title == "" {
		return store.PublishedPlaybook{}, NewValidationError("Studio.Publish", fmt.Errorf("title is required"))
	}

	session, ok := s.Session(sessionID)
	if !ok {
		return store.PublishedPlaybook{}, NewNotFoundError("Studio.Publish", ErrSessionNotFound).
			WithContext(map[string]any{"session": sessionID})
	}

	pb := store.PublishedPlaybook{
		ID:          uuid.NewString(),
		Title:       title,
		Author:      author,
		Snapshot:    session.Snapshot(),
		PublishedAt: time.Now().UTC(),
	}
	if err := s.store.PublishPlaybook(ctx, pb); err != nil {
		return store.PublishedPlaybook{}, NewStorageError("Studio.Publish", err)
	}

	s.logger.Info("playbook published", "session", sessionID, "title", title)
	return pb, nil
}

// Handler returns the studio's JSON/HTTP API handler.
func (s *Studio) Handler() http.Handler {
	return serve.NewAPI(serve.APIConfig{
		Catalog:       s.catalog,
		Index:         s.index,
		Optimizations: s.optimizations,
		Sessions:      s,
		Store:         s.store,
		Logger:        s.logger,
		AllowedOrigin: s.cfg.allowedOrigin,
		Tracer:        s.cfg.tracer,
		Metrics:       s.metrics,
	})
}

// Close discards all live sessions and closes the store. The studio cannot
// be used afterwards.
func (s *Studio) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.sessions = make(map[string]*canvas.Session)
	cancels := s.eventCancels
	s.eventCancels = make(map[string]func())
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}

	if err := s.store.Close(); err != nil {
		return NewStorageError("Studio.Close", err)
	}
	return nil
}
