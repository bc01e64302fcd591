// Package api provides the HTTP surface of the sentiment service.
package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"sentiment-analyzer/internal/sentiment"
)

// Service is the classification core the server exposes.
type Service interface {
	Classify(ctx context.Context, text string) (*sentiment.Result, error)
	Probe(ctx context.Context) sentiment.HealthStatus
}

// Server is the API server.
type Server struct {
	svc     Service
	logger  *zap.Logger
	limiter *rate.Limiter
	mux     *http.ServeMux
}

// Config holds API server configuration.
type Config struct {
	Service Service
	Logger  *zap.Logger
	// RateLimitRPS bounds the rate of analyze requests admitted to the model.
	// Zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	s := &Server{
		svc:    cfg.Service,
		logger: cfg.Logger,
		mux:    http.NewServeMux(),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if cfg.RateLimitRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)

	// The UI posts to /analyze/; accept both forms.
	s.mux.HandleFunc("POST /analyze", s.withRateLimit(s.handleAnalyze))
	s.mux.HandleFunc("POST /analyze/{$}", s.withRateLimit(s.handleAnalyze))

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /health/{$}", s.handleHealth)

	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.withAccessLog(s.mux.ServeHTTP)(w, r)
}
