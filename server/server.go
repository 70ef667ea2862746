// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the mapping engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/tm2map/core"
)

// Engine is the mapping engine served by the API.
type Engine interface {
	Search(query string, limit int) []core.MappingResult
	Translate(code string) (core.TranslationResult, bool)
	Stats() core.Stats
	Snapshot() core.SnapshotInfo
	Reload(ctx context.Context) error
}

// SettingsService reads and updates the integration settings.
type SettingsService interface {
	Get(ctx context.Context) (*core.Settings, error)
	Update(ctx context.Context, settings *core.Settings) (*core.Settings, error)
}

// Server routes HTTP requests to the engine and settings service.
type Server struct {
	engine   Engine
	settings SettingsService
	cfg      *Config
	logger   *slog.Logger
	metrics  *metrics
	now      func() time.Time
	started  time.Time
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock sets the time source used for uptime reporting.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a Server. A nil cfg uses DefaultConfig.
func New(engine Engine, settings SettingsService, cfg *Config, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if settings == nil {
		return nil, ErrSettingsRequired
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		engine:   engine,
		settings: settings,
		cfg:      cfg,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	s.started = s.now()
	s.metrics = newMetrics(engine)
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(s.logger),
		middleware.Recoverer,
		s.metrics.instrument,
		corsHandler(s.cfg.AllowedOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(req.Context(), w, newAPIError(CodeNotFound, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(req.Context(), w, newAPIError(CodeMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/search", s.searchQuery)
		api.Post("/search", s.searchBody)
		api.Get("/translate/{code}", s.translate)
		api.Get("/stats", s.stats)
		api.Get("/snapshot", s.snapshot)
		api.Post("/reload", s.reload)
		api.Get("/settings", s.getSettings)
		api.Put("/settings", s.putSettings)
	})

	if s.cfg.StaticDir != "" {
		r.Get("/*", spaHandler(s.cfg.StaticDir))
	}
	return r
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
