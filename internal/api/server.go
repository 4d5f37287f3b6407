// Package api provides the HTTP REST interface for the workflow analysis
// system.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/reimagen/agentarchitecture/internal/analyzer"
	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/logging"
)

// Server is the HTTP server exposing the analysis pipeline and the approval
// workflow.
type Server struct {
	router       chi.Router
	httpServer   *http.Server
	config       Config
	logger       *logging.Logger
	orchestrator *analyzer.Orchestrator
	store        core.WorkflowStore
}

// Config holds the server configuration.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	EnableCORS      bool
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    2 * time.Minute, // analysis runs synchronously in the request
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		CORSOrigins:     []string{"*"},
		EnableCORS:      true,
	}
}

// New creates a new Server instance.
func New(cfg Config, orchestrator *analyzer.Orchestrator, store core.WorkflowStore, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		config:       cfg,
		logger:       logger,
		orchestrator: orchestrator,
		store:        store,
	}

	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// setupRouter configures the Chi router with middleware and routes.
func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	if s.config.EnableCORS {
		corsMiddleware := cors.New(cors.Options{
			AllowedOrigins: s.config.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		})
		r.Use(corsMiddleware.Handler)
	}

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/metrics", s.handleMetrics)

	r.Route("/api/workflows", func(r chi.Router) {
		r.Post("/", s.handleAnalyze)
		r.Get("/", s.handleList)
		r.Get("/{workflowID}", s.handleGet)
		r.Post("/{workflowID}/approve", s.handleApprove)
	})

	return r
}

// Router returns the configured router (used in tests).
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(shutdownCtx)
}

// loggingMiddleware logs each request with latency.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", float64(time.Since(start))/float64(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
