package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"newsdesk/internal/config"
	"newsdesk/internal/logger"
	"newsdesk/internal/workflow"
)

// Server exposes the editorial workflow over HTTP: session login, the
// editor page, and the JSON API the page drives.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	flow       *workflow.Orchestrator
	config     config.Server
	log        *slog.Logger
	sessions   *sessionStore
	passwords  []string
}

// New creates a new HTTP server instance.
func New(flow *workflow.Orchestrator, cfg config.Server, passwords []string) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		flow:      flow,
		config:    cfg,
		log:       logger.Get(),
		sessions:  newSessionStore(),
		passwords: passwords,
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  parseDurationOr(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: parseDurationOr(cfg.WriteTimeout, 120*time.Second),
	}

	return s
}

// setupMiddleware configures middleware for the server.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// Generation and publish calls wait on the model; keep the budget
	// generous.
	s.router.Use(middleware.Timeout(120 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures routes for the server.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Post("/api/login", s.handleLogin)
	s.router.Post("/api/logout", s.handleLogout)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/api/session", s.handleSession)

		r.Get("/api/draft", s.handleGetDraft)
		r.Patch("/api/draft", s.handleEditDraft)
		r.Post("/api/generate", s.handleGenerate)

		r.Get("/api/discover", s.handleGetDiscovery)
		r.Post("/api/discover", s.handleDiscover)
		r.Post("/api/discover/select", s.handleSelectTopic)

		r.Post("/api/images/search", s.handleFindImages)
		r.Post("/api/images/generate", s.handleGenerateImage)
		r.Post("/api/images/choose", s.handleChooseImage)

		r.Post("/api/publish", s.handlePublish)

		r.Get("/api/settings", s.handleGetSettings)
		r.Put("/api/settings", s.handleUpdateSettings)
	})

	s.router.Get("/", s.handleEditorPage)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing).
func (s *Server) Router() *chi.Mux {
	return s.router
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
