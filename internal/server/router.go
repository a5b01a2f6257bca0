package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/agentstation/cssmap/internal/server/handlers"
	"github.com/agentstation/cssmap/internal/server/middleware"
	"github.com/agentstation/cssmap/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()
	s.applyMiddleware(r)

	h := handlers.New(s.loader, s.cache, s.logger)

	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)
	if s.config.MetricsEnabled && s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route(s.config.PathPrefix, func(r chi.Router) {
		r.Get("/specs", h.HandleListSpecs)
		r.Get("/specs/completed", h.HandleCompletedSpecs)
		r.Get("/features", h.HandleListFeatures)
		r.Get("/features/{spec}", h.HandleSpecFeatures)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found", r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method)
	})

	return r
}

// applyMiddleware installs the middleware chain, outermost first.
func (s *Server) applyMiddleware(r chi.Router) {
	cfg := s.config

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.Logger(s.logger))
	if s.metrics != nil {
		r.Use(middleware.Metrics(s.metrics))
	}
	r.Use(chimw.Timeout(30 * time.Second))

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		r.Use(middleware.CORS(corsConfig))
	}

	if cfg.RateLimit > 0 {
		r.Use(middleware.RateLimit(middleware.NewRateLimiter(s.ctx, cfg.RateLimit, s.logger)))
	}
}
