package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ayusman/arcade/internal/app"
	"github.com/ayusman/arcade/internal/config"
	"github.com/ayusman/arcade/internal/store"
)

// settingsSchema constrains PUT /api/settings bodies.
const settingsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "difficulty": {"type": "string", "enum": ["easy", "medium", "hard"]},
    "sound_enabled": {"type": "boolean"}
  },
  "additionalProperties": false,
  "minProperties": 1
}`

var settingsValidator = jsonschema.MustCompileString("settings.schema.json", settingsSchema)

// SettingsHandler reads and updates the persisted preferences.
type SettingsHandler struct {
	app   *app.App
	store *store.Store
}

// NewSettingsHandler creates a new SettingsHandler. Updates go through a so
// the running game sees them.
func NewSettingsHandler(a *app.App, s *store.Store) *SettingsHandler {
	return &SettingsHandler{app: a, store: s}
}

// Routes registers the handler's endpoints on r.
func (h *SettingsHandler) Routes(r chi.Router) {
	r.Get("/settings", h.get)
	r.Put("/settings", h.update)
}

type updateSettingsRequest struct {
	Difficulty   *string `json:"difficulty"`
	SoundEnabled *bool   `json:"sound_enabled"`
}

// get handles GET /api/settings.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// update handles PUT /api/settings. Only the fields present change.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := settingsValidator.Validate(doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateSettingsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Difficulty != nil {
		if err := h.app.SetDifficulty(config.Difficulty(*req.Difficulty)); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save difficulty")
			return
		}
	}
	if req.SoundEnabled != nil {
		if err := h.app.SetSound(*req.SoundEnabled); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save sound setting")
			return
		}
	}

	h.get(w, r)
}
