// ABOUTME: HTTP server exposing batch summary generation
// ABOUTME: Owns the route table, middleware chain, and graceful shutdown
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/harper/lecture-summarizer/internal/core"
)

// Route paths
const (
	GenerateBatchPath = "/generate-summaries-batch"
	HealthPath        = "/healthz"
)

// Config controls the listener and boundary behaviour
type Config struct {
	Port       int
	StaticDir  string
	CORSOrigin string
}

// Server serves the batch endpoint. The orchestrator is shared, so batches
// are processed one at a time.
type Server struct {
	orchestrator *core.BatchOrchestrator
	cfg          Config
	logger       *log.Logger
	mu           sync.Mutex
	handler      http.Handler
}

// New builds a server; a nil logger writes to stderr
func New(orchestrator *core.BatchOrchestrator, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}

	s := &Server{
		orchestrator: orchestrator,
		cfg:          cfg,
		logger:       logger,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+GenerateBatchPath, s.handleGenerateBatch)
	mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	if s.cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(newStaticFS(s.cfg.StaticDir)))
	}

	return Chain(mux,
		Recover(s.logger),
		RequestID(),
		Logger(s.logger),
		CORS(s.cfg.CORSOrigin),
		OTel("lecture-summarizer"),
	)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Summarizer listening on http://0.0.0.0:%d", s.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Println("Shutdown signal received, gracefully shutting down...")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
