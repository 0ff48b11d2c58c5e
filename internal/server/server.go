// Package server exposes the read-only HTTP surface over stored
// observations and rendered charts.
package server

import (
	"context"
	"expvar"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/econlab/econpipe/internal/store"
)

// Store is the read surface the HTTP handlers need.
type Store interface {
	LatestValues(ctx context.Context) ([]store.LatestValue, error)
	RecentRuns(ctx context.Context, limit int) ([]store.RunRecord, error)
}

// Server serves the summary API and the rendered chart files.
type Server struct {
	store     Store
	chartsDir string
	logger    *slog.Logger
	router    chi.Router
	addr      string
	srv       *http.Server
}

// New creates the HTTP server. chartsDir is served verbatim under /charts/.
func New(addr string, st Store, chartsDir string) *Server {
	s := &Server{
		store:     st,
		chartsDir: chartsDir,
		logger:    slog.Default(),
		addr:      addr,
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))
		r.Get("/summary", s.handleSummary)
		r.Get("/runs", s.handleRuns)
	})
	r.Handle("/charts/*", http.StripPrefix("/charts/", http.FileServer(http.Dir(chartsDir))))
	r.Handle("/debug/vars", expvar.Handler())

	s.router = r
	return s
}

// SetLogger overrides the default logger.
func (s *Server) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins serving HTTP requests and blocks until the listener closes.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	fmt.Printf("econpipe server listening on %s\n", s.addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
