// Package health provides HTTP endpoints for liveness, readiness, and
// Prometheus metrics.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Readiness status values.
const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusNotReady = "not_ready"
)

// CycleSummary is what the update loop reports after each cycle.
type CycleSummary struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Response is the body of a readiness check.
type Response struct {
	Status    string        `json:"status"`
	LastCycle *CycleSummary `json:"last_cycle,omitempty"`
	LastRun   string        `json:"last_run,omitempty"`
}

// Server provides /health, /ready, and /metrics endpoints. It reports
// ready once the first update cycle has run, and degraded while the
// most recent cycle had failures.
type Server struct {
	port   int
	mux    *http.ServeMux
	server *http.Server
	logger *slog.Logger

	mu        sync.RWMutex
	lastCycle *CycleSummary
	lastRun   time.Time
}

// Option is a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new health server on the specified port.
func New(port int, opts ...Option) *Server {
	s := &Server{
		port:   port,
		mux:    http.NewServeMux(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// ReportCycle records the outcome of one update cycle. The update loop
// calls this after every pass over the catalog.
func (s *Server) ReportCycle(summary CycleSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCycle = &summary
	s.lastRun = time.Now()
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Response{Status: "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	cycle := s.lastCycle
	lastRun := s.lastRun
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")

	resp := Response{LastCycle: cycle}
	if !lastRun.IsZero() {
		resp.LastRun = lastRun.UTC().Format(time.RFC3339)
	}

	switch {
	case cycle == nil:
		// No cycle yet, still starting up.
		resp.Status = StatusNotReady
		w.WriteHeader(http.StatusServiceUnavailable)
	case cycle.Failed > 0:
		// Still serving, but the last cycle had failures.
		resp.Status = StatusDegraded
		w.WriteHeader(http.StatusOK)
	default:
		resp.Status = StatusReady
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// Start starts the health server in a goroutine.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("health server starting", slog.Int("port", s.port))
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("health server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the health server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
