// Package server provides the HTTP server for the gesture arcade.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayusman/arcade/internal/app"
	"github.com/ayusman/arcade/internal/server/api"
)

// shutdownTimeout bounds how long Run waits for open requests on exit.
const shutdownTimeout = 5 * time.Second

// Config holds the server configuration.
type Config struct {
	StaticDir string
	// App is the arcade the API drives. Without it only health and static
	// files are served.
	App *app.App
}

// Server represents the HTTP server for the arcade.
type Server struct {
	config Config
	router chi.Router
	frames *FramesHandler
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)

	if a := s.config.App; a != nil {
		s.frames = NewFramesHandler(a)

		r.Route("/api", func(r chi.Router) {
			api.NewGameHandler(a).Routes(r)
			if st := a.Store(); st != nil {
				api.NewScoreHandler(st).Routes(r)
				api.NewSettingsHandler(a, st).Routes(r)
			}
			r.Method(http.MethodGet, "/frames", s.frames)
			r.Method(http.MethodGet, "/stream", NewStreamHandler(a))
		})
	}

	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Game    string `json:"game,omitempty"`
	Enabled bool   `json:"enabled"`
	Viewers int    `json:"viewers"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Second).String(),
	}
	if a := s.config.App; a != nil {
		response.Game = string(a.Snapshot().Game)
		response.Enabled = a.Enabled()
		response.Viewers = s.frames.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.frames.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
