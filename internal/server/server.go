// Package server provides the HTTP API for the translation pipeline:
// multipart upload handling, per-client rate limiting, WebSocket progress
// streaming, and Prometheus metrics exposure.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yomitoru/yomitoru/internal/config"
	"github.com/yomitoru/yomitoru/internal/pipeline"
)

// pipelineRunner is the slice of the pipeline the server depends on.
type pipelineRunner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Server handles HTTP requests for the translation API.
type Server struct {
	pipeline    pipelineRunner
	limiter     *CooldownLimiter
	corsOrigin  string
	maxUploadMB int64
	timeout     time.Duration

	stopSweeper func()
}

// NewServer creates a server around the given pipeline. It starts the
// rate limiter sweeper; call Close to stop it.
func NewServer(cfg *config.Config, pl pipelineRunner) *Server {
	limiter := NewCooldownLimiter(time.Duration(cfg.Server.CooldownSec) * time.Second)
	stop := limiter.StartSweeper(time.Duration(cfg.Server.SweepIntervalSec) * time.Second)

	return &Server{
		pipeline:    pl,
		limiter:     limiter,
		corsOrigin:  cfg.Server.CORSOrigin,
		maxUploadMB: cfg.Server.MaxUploadMB,
		timeout:     time.Duration(cfg.Server.TimeoutSec) * time.Second,
		stopSweeper: stop,
	}
}

// Close stops background goroutines owned by the server.
func (s *Server) Close() {
	if s.stopSweeper != nil {
		s.stopSweeper()
		s.stopSweeper = nil
	}
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/api/translate", s.translateHandler)
	mux.HandleFunc("/ws/translate", s.websocketHandler)
	mux.Handle("/metrics", promhttp.Handler())

	return s.corsMiddleware(mux)
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}
