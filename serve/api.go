package serve

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/playbooklab/sdk/canvas"
	"github.com/playbooklab/sdk/catalog"
	"github.com/playbooklab/sdk/optimize"
	"github.com/playbooklab/sdk/search"
	"github.com/playbooklab/sdk/store"
)

// SessionManager provides the live canvas sessions the API edits. The root
// sdk package's Studio implements it.
type SessionManager interface {
	// CreateSession starts a new empty session. Returns nil when the
	// manager is shut down.
	CreateSession() *canvas.Session

	// Session returns a live session by id.
	Session(id string) (*canvas.Session, bool)

	// CloseSession discards a live session. Reports whether it existed.
	CloseSession(id string) bool
}

// APIConfig wires the API handler's collaborators.
type APIConfig struct {
	// Catalog is the tool and playbook reference data. Required.
	Catalog *catalog.Catalog

	// Index serves search queries. Required.
	Index *search.Index

	// Optimizations enables optimization suggestions on seeding. Optional.
	Optimizations *optimize.Map

	// Sessions manages live canvas sessions. Required for the session
	// endpoints; without it they return 503.
	Sessions SessionManager

	// Store persists snapshots and the published-playbook feed. Optional;
	// without it the save and feed endpoints return 503.
	Store store.Store

	// Logger is used for request logging. Default: slog.Default().
	Logger *slog.Logger

	// AllowedOrigin is the CORS origin. Empty allows all.
	AllowedOrigin string

	// Tracer wraps each request in a span when set.
	Tracer trace.Tracer

	// Metrics records request, search, and mutation counters when set.
	Metrics *Metrics
}

// API is the studio's JSON/HTTP surface.
type API struct {
	cfg     APIConfig
	logger  *slog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

// NewAPI builds the API handler with all /api/v1 routes registered.
func NewAPI(cfg APIConfig) *API {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &API{cfg: cfg, logger: logger, mux: http.NewServeMux()}

	a.mux.HandleFunc("GET /health", a.handleHealth)

	a.mux.HandleFunc("GET /api/v1/tools", a.handleListTools)
	a.mux.HandleFunc("GET /api/v1/tools/trending", a.handleTrending)
	a.mux.HandleFunc("GET /api/v1/tools/{id}", a.handleGetTool)
	a.mux.HandleFunc("GET /api/v1/tools/{id}/related", a.handleRelatedTools)
	a.mux.HandleFunc("GET /api/v1/playbooks", a.handleListPlaybooks)
	a.mux.HandleFunc("GET /api/v1/playbooks/{id}", a.handleGetPlaybook)
	a.mux.HandleFunc("GET /api/v1/search", a.handleSearch)

	a.mux.HandleFunc("GET /api/v1/feed", a.handleFeed)

	a.mux.HandleFunc("POST /api/v1/sessions", a.handleCreateSession)
	a.mux.HandleFunc("GET /api/v1/sessions/{id}", a.handleGetSession)
	a.mux.HandleFunc("DELETE /api/v1/sessions/{id}", a.handleCloseSession)
	a.mux.HandleFunc("POST /api/v1/sessions/{id}/seed", a.handleSeed)
	a.mux.HandleFunc("POST /api/v1/sessions/{id}/nodes", a.handlePlaceNode)
	a.mux.HandleFunc("DELETE /api/v1/sessions/{id}/nodes/{nodeID}", a.handleDeleteNode)
	a.mux.HandleFunc("POST /api/v1/sessions/{id}/nodes/{nodeID}/rating", a.handleRateNode)
	a.mux.HandleFunc("POST /api/v1/sessions/{id}/connections", a.handleConnect)
	a.mux.HandleFunc("POST /api/v1/sessions/{id}/connections/commit", a.handleCommitConnection)
	a.mux.HandleFunc("POST /api/v1/sessions/{id}/connections/cancel", a.handleCancelConnection)
	a.mux.HandleFunc("POST /api/v1/sessions/{id}/save", a.handleSaveSession)
	a.mux.HandleFunc("POST /api/v1/sessions/{id}/publish", a.handlePublish)

	a.handler = cors(cfg.AllowedOrigin, requestLog(logger, a.mux))

	return a
}

// ServeHTTP applies CORS, request logging, and optional tracing around the
// route table.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Tracer != nil {
		ctx, span := a.cfg.Tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()
		r = r.WithContext(ctx)
	}
	a.cfg.Metrics.recordRequest(r.Context())

	a.handler.ServeHTTP(w, r)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("failed to encode response", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, err error) {
	a.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, catalog.ErrToolNotFound),
		errors.Is(err, catalog.ErrPlaybookNotFound),
		errors.Is(err, canvas.ErrNodeNotFound),
		errors.Is(err, store.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, canvas.ErrConnectionPending),
		errors.Is(err, canvas.ErrAlreadySeeded):
		return http.StatusConflict
	case errors.Is(err, canvas.ErrNoPendingConnection),
		errors.Is(err, canvas.ErrSelfLoop),
		errors.Is(err, canvas.ErrInvalidRating),
		errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "playbooklab-studio",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleListTools(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.cfg.Catalog.Tools())
}

func (a *API) handleGetTool(w http.ResponseWriter, r *http.Request) {
	tool, err := a.cfg.Catalog.ToolByID(r.PathValue("id"))
	if err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}
	a.writeJSON(w, http.StatusOK, tool)
}

func (a *API) handleRelatedTools(w http.ResponseWriter, r *http.Request) {
	related, err := a.cfg.Catalog.RelatedTools(r.PathValue("id"))
	if err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}
	a.writeJSON(w, http.StatusOK, related)
}

func (a *API) handleTrending(w http.ResponseWriter, r *http.Request) {
	n := 6
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			a.writeError(w, http.StatusBadRequest, errors.New("invalid n"))
			return
		}
		n = parsed
	}
	a.writeJSON(w, http.StatusOK, a.cfg.Catalog.Trending(n))
}

func (a *API) handleListPlaybooks(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.cfg.Catalog.Playbooks())
}

func (a *API) handleGetPlaybook(w http.ResponseWriter, r *http.Request) {
	pb, err := a.cfg.Catalog.PlaybookByID(r.PathValue("id"))
	if err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}
	a.writeJSON(w, http.StatusOK, pb)
}

type searchResponse struct {
	Query     string                   `json:"query"`
	Tools     []catalog.ToolRecord     `json:"tools,omitempty"`
	Playbooks []catalog.PlaybookRecord `json:"playbooks,omitempty"`
}

// handleSearch serves GET /api/v1/search?q=…&kind=tools|playbooks&filter=…
//
// The filter parameter is a CEL expression over tool records; it applies to
// tool results only.
func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	kind := r.URL.Query().Get("kind")
	resp := searchResponse{Query: q}

	if kind == "" || kind == "tools" {
		if raw := r.URL.Query().Get("filter"); raw != "" {
			filter, err := search.CompileFilter(raw)
			if err != nil {
				a.writeError(w, http.StatusBadRequest, err)
				return
			}
			tools, err := a.cfg.Index.FilterTools(q, filter)
			if err != nil {
				a.writeError(w, http.StatusInternalServerError, err)
				return
			}
			resp.Tools = tools
		} else {
			resp.Tools = a.cfg.Index.Tools(q)
		}
		a.cfg.Metrics.recordSearch(r.Context(), "tools")
	}
	if kind == "" || kind == "playbooks" {
		resp.Playbooks = a.cfg.Index.Playbooks(q)
		a.cfg.Metrics.recordSearch(r.Context(), "playbooks")
	}

	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleFeed(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Store == nil {
		a.writeError(w, http.StatusServiceUnavailable, errors.New("no store configured"))
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			a.writeError(w, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		limit = parsed
	}

	feed, err := a.cfg.Store.Feed(r.Context(), limit)
	if err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}
	a.writeJSON(w, http.StatusOK, feed)
}
