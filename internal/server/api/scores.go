package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/store"
)

// ScoreHandler serves high scores and finished sessions.
type ScoreHandler struct {
	store *store.Store
}

// NewScoreHandler creates a new ScoreHandler with the given store.
func NewScoreHandler(s *store.Store) *ScoreHandler {
	return &ScoreHandler{store: s}
}

// Routes registers the handler's endpoints on r.
func (h *ScoreHandler) Routes(r chi.Router) {
	r.Get("/scores", h.scores)
	r.Get("/sessions", h.sessions)
	r.Get("/sessions/{id}", h.session)
}

type listScoresResponse struct {
	Scores []*store.HighScore `json:"scores"`
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

// scores handles GET /api/scores, best first.
func (h *ScoreHandler) scores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.store.Scores().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list scores")
		return
	}
	if scores == nil {
		scores = []*store.HighScore{}
	}

	writeJSON(w, http.StatusOK, listScoresResponse{Scores: scores})
}

// sessions handles GET /api/sessions?game=&limit=, newest first.
func (h *ScoreHandler) sessions(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	if game != "" {
		if _, err := games.ParseKind(game); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(game, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}

	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

// session handles GET /api/sessions/{id}.
func (h *ScoreHandler) session(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Sessions().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, sess)
}
