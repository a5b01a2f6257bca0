// Package server provides the read-only HTTP API over the artifacts the
// cssmap pipeline writes.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/cssmap/internal/monitoring"
	"github.com/agentstation/cssmap/internal/server/cache"
	"github.com/agentstation/cssmap/internal/server/handlers"
	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/errors"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	loader    handlers.Loader
	cache     *cache.Cache
	metrics   *monitoring.Metrics
	logger    *zerolog.Logger
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLoader replaces the directory loader.
func WithLoader(l handlers.Loader) Option {
	return func(s *Server) {
		s.loader = l
	}
}

// WithMetrics enables request metrics and the /metrics endpoint.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a new server instance with the given configuration.
func New(cfg Config, logger *zerolog.Logger, opts ...Option) *Server {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/api"
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		loader:    DirLoader{Dir: cfg.DataDir},
		cache:     cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Debug().
		Str("data_dir", cfg.DataDir).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Server instance created")
	return s
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", s.config.Addr).
			Str("prefix", s.config.PathPrefix).
			Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.cancel()
		if err != nil {
			return errors.WrapResource("start", "server", s.config.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Server shutdown failed")
	}
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops background services.
func (s *Server) Shutdown(_ context.Context) error {
	s.cancel()
	s.logger.Info().Dur("uptime", time.Since(s.startTime)).Msg("Server stopped")
	return nil
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Invalidate drops the cached catalog so the next request re-reads the files.
func (s *Server) Invalidate() {
	s.cache.Clear()
}
