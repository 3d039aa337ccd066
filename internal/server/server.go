// Package server provides the HTTP server and routing for the overlay engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/config"
	alertshandlers "github.com/mfontana/overlay/internal/modules/alerts/handlers"
	ledgerhandlers "github.com/mfontana/overlay/internal/modules/ledger/handlers"
	portfoliohandlers "github.com/mfontana/overlay/internal/modules/portfolio/handlers"
	settingshandlers "github.com/mfontana/overlay/internal/modules/settings/handlers"
	snapshotshandlers "github.com/mfontana/overlay/internal/modules/snapshots/handlers"
	tradinghandlers "github.com/mfontana/overlay/internal/modules/trading/handlers"
)

// Handlers groups the module handlers mounted under /api.
type Handlers struct {
	Portfolio *portfoliohandlers.Handler
	Snapshots *snapshotshandlers.Handler
	Trading   *tradinghandlers.Handler
	Ledger    *ledgerhandlers.Handler
	Alerts    *alertshandlers.Handler
	Settings  *settingshandlers.Handler
}

// Config holds server configuration
type Config struct {
	Log      zerolog.Logger
	Config   *config.Config
	Handlers Handlers
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	cfg      *config.Config
	handlers Handlers
	system   *SystemHandlers
	started  time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		cfg:      cfg.Config,
		handlers: cfg.Handlers,
		started:  time.Now(),
	}
	s.system = NewSystemHandlers(cfg.Log, s.started)

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if devMode {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}
}

// setupRoutes mounts all module routes under /api
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.system.HandleHealth)

		s.handlers.Portfolio.RegisterRoutes(r)
		s.handlers.Snapshots.RegisterRoutes(r)
		s.handlers.Trading.RegisterRoutes(r)
		s.handlers.Ledger.RegisterRoutes(r)
		s.handlers.Alerts.RegisterRoutes(r)
		s.handlers.Settings.RegisterRoutes(r)
	})
}

// Start starts the HTTP server. Blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.log.Info().Str("addr", addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the chi router, used by tests.
func (s *Server) Router() chi.Router {
	return s.router
}
