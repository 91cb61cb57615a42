// Package server exposes the scored-region catalog over HTTP for the
// navigation and chat consumers.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/maply-labs/risk-engine/internal/pipeline"
	"github.com/maply-labs/risk-engine/internal/regions"
	"github.com/maply-labs/risk-engine/internal/store"
)

// Server holds the API's dependencies.
type Server struct {
	catalog *regions.Catalog
	engine  *pipeline.Engine
	sources []string
	store   store.Store // optional
}

// New creates a Server serving the given catalog. engine and sources power
// the refresh endpoint; store powers run listings and may be nil.
func New(catalog *regions.Catalog, engine *pipeline.Engine, sources []string, st store.Store) *Server {
	return &Server{catalog: catalog, engine: engine, sources: sources, store: st}
}

// Router builds the chi router with CORS, request logging, and all routes.
func (s *Server) Router(corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1/risk", func(r chi.Router) {
		r.Get("/all", s.handleAll)
		r.Get("/score", s.handleScore)
		r.Get("/states", s.handleStates)
		r.Get("/districts", s.handleDistricts)
		r.Post("/refresh", s.handleRefresh)
	})

	r.Get("/api/v1/runs", s.handleRuns)

	return r
}

// requestLogger logs each request with zap after it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
