package serve

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/playbooklab/sdk/canvas"
	"github.com/playbooklab/sdk/optimize"
	"github.com/playbooklab/sdk/store"
)

func (a *API) session(w http.ResponseWriter, r *http.Request) (*canvas.Session, bool) {
	if a.cfg.Sessions == nil {
		a.writeError(w, http.StatusServiceUnavailable, errors.New("no session manager configured"))
		return nil, false
	}

	id := r.PathValue("id")
	s, ok := a.cfg.Sessions.Session(id)
	if !ok {
		a.writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", id))
		return nil, false
	}
	return s, true
}

type sessionCreatedResponse struct {
	SessionID string `json:"session_id"`
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Sessions == nil {
		a.writeError(w, http.StatusServiceUnavailable, errors.New("no session manager configured"))
		return
	}

	s := a.cfg.Sessions.CreateSession()
	if s == nil {
		a.writeError(w, http.StatusServiceUnavailable, errors.New("session manager is shut down"))
		return
	}
	a.writeJSON(w, http.StatusCreated, sessionCreatedResponse{SessionID: s.ID()})
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	a.writeJSON(w, http.StatusOK, s.Snapshot())
}

func (a *API) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Sessions == nil {
		a.writeError(w, http.StatusServiceUnavailable, errors.New("no session manager configured"))
		return
	}

	id := r.PathValue("id")
	if !a.cfg.Sessions.CloseSession(id) {
		a.writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type seedRequest struct {
	PlaybookID string   `json:"playbook_id,omitempty"`
	ToolIDs    []string `json:"tool_ids,omitempty"`
	Optimize   bool     `json:"optimize,omitempty"`
}

func (a *API) handleSeed(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}

	var req seedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var optimizations *optimize.Map
	if req.Optimize {
		optimizations = a.cfg.Optimizations
	}
	opts := canvas.SeedOptions{Optimizations: optimizations, Catalog: a.cfg.Catalog}

	var (
		res canvas.SeedResult
		err error
	)
	switch {
	case req.PlaybookID != "":
		pb, lookupErr := a.cfg.Catalog.PlaybookByID(req.PlaybookID)
		if lookupErr != nil {
			a.writeError(w, statusForError(lookupErr), lookupErr)
			return
		}
		res, err = s.SeedFromPlaybook(pb, a.cfg.Catalog, opts)
	case len(req.ToolIDs) > 0:
		res, err = s.SeedFromToolList(req.ToolIDs, a.cfg.Catalog, opts)
	default:
		a.writeError(w, http.StatusBadRequest, errors.New("playbook_id or tool_ids required"))
		return
	}
	if err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}

	a.cfg.Metrics.recordMutation(r.Context(), "seed")
	a.writeJSON(w, http.StatusOK, res)
}

type placeNodeRequest struct {
	ToolID string  `json:"tool_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`

	// Screen marks X/Y as screen coordinates to be converted through the
	// session viewport. Canvas coordinates otherwise.
	Screen bool `json:"screen,omitempty"`
}

func (a *API) handlePlaceNode(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}

	var req placeNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	tool, err := a.cfg.Catalog.ToolByID(req.ToolID)
	if err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}

	pos := canvas.Position{X: req.X, Y: req.Y}
	var node canvas.Node
	if req.Screen {
		node, err = s.PlaceNode(canvas.ToolPayload{Tool: tool}, pos)
	} else {
		node, err = s.PlaceNodeAt(canvas.ToolPayload{Tool: tool}, pos)
	}
	if err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}

	a.cfg.Metrics.recordMutation(r.Context(), "place_node")
	a.writeJSON(w, http.StatusCreated, node)
}

func (a *API) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}

	if err := s.DeleteNode(r.PathValue("nodeID")); err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}

	a.cfg.Metrics.recordMutation(r.Context(), "delete_node")
	w.WriteHeader(http.StatusNoContent)
}

type rateNodeRequest struct {
	Rating int `json:"rating"`
}

func (a *API) handleRateNode(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}

	var req rateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := s.RateNode(r.PathValue("nodeID"), req.Rating); err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}

	a.cfg.Metrics.recordMutation(r.Context(), "rate_node")
	w.WriteHeader(http.StatusNoContent)
}

type connectRequest struct {
	Source       string        `json:"source"`
	SourceHandle canvas.Handle `json:"source_handle"`
	Target       string        `json:"target"`
	TargetHandle canvas.Handle `json:"target_handle"`
}

func (a *API) handleConnect(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := s.Connect(req.Source, req.SourceHandle, req.Target, req.TargetHandle); err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

type commitConnectionRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// handleCommitConnection turns the pending proposal into an edge. An empty
// body (or empty name) is the skip path: the edge is created unlabeled.
func (a *API) handleCommitConnection(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}

	var req commitConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var meta *canvas.ConnectionMeta
	if req.Name != "" {
		meta = &canvas.ConnectionMeta{Name: req.Name, Description: req.Description}
	}

	edge, err := s.CommitConnection(meta)
	if err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}

	a.cfg.Metrics.recordMutation(r.Context(), "commit_connection")
	a.writeJSON(w, http.StatusCreated, edge)
}

func (a *API) handleCancelConnection(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}

	if err := s.CancelConnection(); err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Store == nil {
		a.writeError(w, http.StatusServiceUnavailable, errors.New("no store configured"))
		return
	}

	s, ok := a.session(w, r)
	if !ok {
		return
	}

	snap := s.Snapshot()
	if err := a.cfg.Store.SaveSession(r.Context(), snap); err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}
	a.writeJSON(w, http.StatusOK, snap)
}

type publishRequest struct {
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
}

func (a *API) handlePublish(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Store == nil {
		a.writeError(w, http.StatusServiceUnavailable, errors.New("no store configured"))
		return
	}

	s, ok := a.session(w, r)
	if !ok {
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Title == "" {
		a.writeError(w, http.StatusBadRequest, errors.New("title required"))
		return
	}

	pb := store.PublishedPlaybook{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Author:      req.Author,
		Snapshot:    s.Snapshot(),
		PublishedAt: time.Now().UTC(),
	}
	if err := a.cfg.Store.PublishPlaybook(r.Context(), pb); err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}

	a.writeJSON(w, http.StatusCreated, pb)
}
