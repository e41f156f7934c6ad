// Package api exposes the pricing resolver and the recompute coordinator over JSON HTTP
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/obrador/fabricacion/pkg/application/services/pricing"
	"github.com/obrador/fabricacion/pkg/application/services/recompute"
	"github.com/obrador/fabricacion/pkg/domain/repositories"
)

// maxBodyBytes bounds every request body
const maxBodyBytes = 8 << 20

// Server holds the handlers' dependencies. Snapshots is optional.
type Server struct {
	resolver    *pricing.Resolver
	coordinator *recompute.Coordinator
	snapshots   repositories.SnapshotRepository
	logger      *zap.Logger
}

// NewServer creates a server. A nil logger disables logging; a nil snapshot repository
// disables persistence.
func NewServer(
	resolver *pricing.Resolver,
	coordinator *recompute.Coordinator,
	snapshots repositories.SnapshotRepository,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		resolver:    resolver,
		coordinator: coordinator,
		snapshots:   snapshots,
		logger:      logger,
	}
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/prices/resolve", s.handleResolvePrices)

		r.Get("/catalog", s.handleGetCatalog)
		r.Put("/catalog", s.handleReplaceCatalog)

		r.Post("/jobs", s.handleRecomputeAll)
		r.Get("/jobs", s.handleListJobs)
		r.Post("/jobs/reprice", s.handleReprice)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Patch("/jobs/{id}", s.handleRecomputeJob)
		r.Delete("/jobs/{id}", s.handleRemoveJob)
		r.Get("/jobs/{id}/history", s.handleJobHistory)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
