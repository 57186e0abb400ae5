// Package httpserver is the observability HTTP surface: /metrics,
// /health, /ready, and a read-only /api/opportunities view over the
// tracker's current state.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/tracker"
	"github.com/avidal/oddsarb/pkg/healthprobe"
)

// Server is the HTTP surface wrapping observability and read endpoints.
type Server struct {
	server *http.Server
	logger *zap.Logger
	probe  *healthprobe.Probe
}

// Config holds server construction parameters.
type Config struct {
	Port    string
	Logger  *zap.Logger
	Probe   *healthprobe.Probe
	Tracker *tracker.Tracker
}

// New builds the chi router and binds it to an *http.Server.
func New(cfg *Config) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.Probe.Health())
	r.Get("/ready", cfg.Probe.Ready())

	if cfg.Tracker != nil {
		h := NewOpportunitiesHandler(cfg.Tracker, cfg.Logger)
		r.Get("/api/opportunities", h.HandleOpportunities)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		server: server,
		logger: cfg.Logger,
		probe:  cfg.Probe,
	}
}

// Start blocks, serving until the server stops or fails.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
