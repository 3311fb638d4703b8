// Package web serves the prepared dataset over HTTP and lets an operator
// trigger a fresh run.
package web

import (
	"context"
	"net/http"
	"sync"

	"github.com/JonMunkholm/titanicprep/internal/config"
	"github.com/JonMunkholm/titanicprep/internal/dataset"
	"github.com/JonMunkholm/titanicprep/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Runner runs the dataset pipeline once. Satisfied by *dataset.Preparer.
type Runner interface {
	Run(ctx context.Context) (*dataset.Result, error)
}

// Server is the HTTP front end for the dataset pipeline.
type Server struct {
	runner     Runner
	outputPath string
	cfg        *config.Config
	router     *chi.Mux
	server     *http.Server

	// refreshMu serializes pipeline runs; TryLock rejects overlapping refreshes.
	refreshMu sync.Mutex

	mu   sync.RWMutex
	last *RunSummary
}

// NewServer creates a Server. outputPath is the file the runner writes.
func NewServer(runner Runner, outputPath string, cfg *config.Config) *Server {
	s := &Server{
		runner:     runner,
		outputPath: outputPath,
		cfg:        cfg,
		router:     chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/dataset", func(r chi.Router) {
		r.Get("/", s.handleDownload)
		r.Get("/summary", s.handleSummary)
		r.With(middleware.APIKeyAuth(s.cfg.Security.APIKeys)).Post("/refresh", s.handleRefresh)
	})
}

// Start listens on the configured address. It blocks until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
