package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/arcade/internal/app"
	"github.com/ayusman/arcade/internal/capture"
	"github.com/ayusman/arcade/internal/config"
	"github.com/ayusman/arcade/internal/detector"
	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/store"
)

type testAPI struct {
	app    *app.App
	store  *store.Store
	router chi.Router
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "arcade.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfg := config.Default()
	cfg.Seed = 3
	a, err := app.New(app.Config{
		Arcade:   cfg,
		Game:     games.KindSnake,
		Store:    s,
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewGameHandler(a).Routes(r)
		NewScoreHandler(s).Routes(r)
		NewSettingsHandler(a, s).Routes(r)
	})
	return &testAPI{app: a, store: s, router: r}
}

func (ta *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}
