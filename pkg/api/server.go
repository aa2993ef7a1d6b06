package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/bgrules/pkg/engine"
	"github.com/yourusername/bgrules/pkg/session"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host           string        // Host to bind to (default "localhost")
	Port           int           // Port to listen on (default 8080)
	ReadTimeout    time.Duration // Read timeout (default 30s)
	WriteTimeout   time.Duration // Write timeout (default 30s)
	IdleTimeout    time.Duration // Idle timeout (default 60s)
	MaxFastWorkers int           // Max concurrent game requests (default 100)
	MaxSlowWorkers int           // Max concurrent simulations (default 2)
	PublicURL      string        // Base URL for share links
	AllowedOrigins []string      // CORS and WebSocket origins; empty or "*" allows all
	DefaultVariant string        // Variant used when a request names none
	MaxSimGames    int           // Cap on games per simulation request
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:           "localhost",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: 100,
		MaxSlowWorkers: 2,
		DefaultVariant: string(engine.Casual),
		MaxSimGames:    10000,
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	logger   *zap.Logger
	version  string
}

// NewServer creates a new API server. store may be nil to run without
// sessions.
func NewServer(e *engine.Engine, store session.Store, config ServerConfig, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool := NewWorkerPool(PoolConfig{
		MaxFastWorkers: config.MaxFastWorkers,
		MaxSlowWorkers: config.MaxSlowWorkers,
	})
	handlers := NewHandlersWithPool(e, store, HandlerConfig{
		Version:        version,
		DefaultVariant: config.DefaultVariant,
		PublicURL:      config.PublicURL,
		MaxSimGames:    config.MaxSimGames,
	}, logger, pool)
	handlers.origins = config.AllowedOrigins

	return &Server{
		config:   config,
		handlers: handlers,
		pool:     pool,
		logger:   logger,
		version:  version,
	}
}

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool {
	return s.pool
}

// originAllowed reports whether origin may call the API.
func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(allowed []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && originAllowed(allowed, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging. It passes
// Flush and Hijack through so SSE and WebSocket handlers keep working.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// loggingMiddleware logs all requests.
func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() http.Handler {
	h := s.handlers
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health)

	// Game operations on the stateless token
	mux.HandleFunc("POST /api/games", h.fast(h.NewGame))
	mux.HandleFunc("POST /api/games/roll", h.fast(h.Roll))
	mux.HandleFunc("POST /api/games/moves", h.fast(h.Moves))
	mux.HandleFunc("POST /api/games/move", h.fast(h.Move))
	mux.HandleFunc("POST /api/games/pass", h.fast(h.Pass))
	mux.HandleFunc("POST /api/games/rematch", h.fast(h.Rematch))
	mux.HandleFunc("GET /api/games/state", h.fast(h.GetState))
	mux.HandleFunc("GET /api/games/transcript", h.fast(h.Transcript))

	// Sessions
	mux.HandleFunc("POST /api/sessions", h.fast(h.CreateSession))
	mux.HandleFunc("GET /api/sessions/{id}", h.fast(h.GetSession))
	mux.HandleFunc("PUT /api/sessions/{id}", h.fast(h.UpdateSession))

	// Simulation
	mux.HandleFunc("POST /api/simulate", h.slow(h.Simulate))
	mux.HandleFunc("GET /api/simulate/stream", h.slow(h.SimulateSSE))

	mux.HandleFunc("/api/ws", h.WebSocket)

	return corsMiddleware(s.config.AllowedOrigins, loggingMiddleware(s.logger, mux))
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info("starting server",
		zap.String("version", s.version),
		zap.String("addr", addr),
		zap.Bool("sessions", s.handlers.store != nil),
		zap.String("public_url", s.config.PublicURL))

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and handles shutdown signals.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		s.logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
