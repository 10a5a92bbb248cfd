package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/arcade/internal/app"
	"github.com/ayusman/arcade/internal/config"
	"github.com/ayusman/arcade/internal/games"
)

// GameHandler serves the game list, the live state and the game controls.
type GameHandler struct {
	app *app.App
}

// NewGameHandler creates a new GameHandler driving a.
func NewGameHandler(a *app.App) *GameHandler {
	return &GameHandler{app: a}
}

// Routes registers the handler's endpoints on r.
func (h *GameHandler) Routes(r chi.Router) {
	r.Get("/games", h.list)
	r.Get("/state", h.state)
	r.Post("/game", h.switchGame)
	r.Post("/pause", h.pause)
	r.Post("/reset", h.reset)
	r.Post("/drawing", h.drawing)
}

type gameResponse struct {
	Kind     games.Kind `json:"kind"`
	Title    string     `json:"title"`
	Gestures bool       `json:"gestures"`
	Pointer  bool       `json:"pointer"`
	Scored   bool       `json:"scored"`
	Active   bool       `json:"active"`
}

type listGamesResponse struct {
	Games        []gameResponse      `json:"games"`
	Difficulties []config.Difficulty `json:"difficulties"`
	Controls     []string            `json:"drawing_controls"`
}

type switchRequest struct {
	Game string `json:"game"`
}

type pauseRequest struct {
	Paused *bool `json:"paused"`
}

type drawingRequest struct {
	Control string `json:"control"`
}

// list handles GET /api/games.
func (h *GameHandler) list(w http.ResponseWriter, r *http.Request) {
	active := h.app.Snapshot().Game

	response := listGamesResponse{
		Difficulties: config.Difficulties(),
		Controls:     app.DrawingControls,
	}
	for _, k := range games.Kinds() {
		response.Games = append(response.Games, gameResponse{
			Kind:     k,
			Title:    k.Title(),
			Gestures: k.NeedsGestures(),
			Pointer:  k.NeedsPointer(),
			Scored:   k.Scored(),
			Active:   k == active,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// state handles GET /api/state and returns the current snapshot.
func (h *GameHandler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Snapshot())
}

// switchGame handles POST /api/game and starts a fresh game.
func (h *GameHandler) switchGame(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if !decode(w, r, &req) {
		return
	}

	kind, err := games.ParseKind(req.Game)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.app.Switch(kind); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.app.Snapshot())
}

// pause handles POST /api/pause. Without a body it toggles.
func (h *GameHandler) pause(w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Paused == nil {
		h.app.TogglePause()
	} else {
		h.app.SetPaused(*req.Paused)
	}

	writeJSON(w, http.StatusOK, h.app.Snapshot())
}

// reset handles POST /api/reset and restarts the active game.
func (h *GameHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.app.Reset()
	writeJSON(w, http.StatusOK, h.app.Snapshot())
}

// drawing handles POST /api/drawing and applies a tool control.
func (h *GameHandler) drawing(w http.ResponseWriter, r *http.Request) {
	var req drawingRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.app.DrawingControl(req.Control)
	switch {
	case errors.Is(err, app.ErrNotDrawing):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, app.ErrUnknownControl):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to apply control")
		return
	}

	writeJSON(w, http.StatusOK, h.app.Snapshot())
}
