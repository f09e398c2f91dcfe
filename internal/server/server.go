// Package server exposes the quality gate and the article pipeline
// over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/metrics"
	"github.com/akoutras/medpress/internal/ratelimit"
	"github.com/akoutras/medpress/internal/repository"
	"github.com/akoutras/medpress/internal/service"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 5 * time.Minute // article runs block on LLM round-trips
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	evaluator *service.Evaluator
	workflow  *service.Workflow
	runs      repository.RunRepository
	limiter   *ratelimit.Limiter
	logger    *zap.Logger
	metrics   *metrics.Metrics

	router *chi.Mux
	http   *http.Server
}

type Deps struct {
	Evaluator *service.Evaluator
	Workflow  *service.Workflow
	Runs      repository.RunRepository
	Limiter   *ratelimit.Limiter
	Logger    *zap.Logger
	Metrics   *metrics.Metrics

	Addr string
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Addr == "" {
		deps.Addr = ":8080"
	}

	s := &Server{
		evaluator: deps.Evaluator,
		workflow:  deps.Workflow,
		runs:      deps.Runs,
		limiter:   deps.Limiter,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		router:    chi.NewRouter(),
	}
	s.routes()

	s.http = &http.Server{
		Addr:         deps.Addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

func (s *Server) routes() {
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(s.requestLogger)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/evaluations", s.handleEvaluate)
		r.Post("/validations", s.handleValidate)
		r.Post("/quick-checks", s.handleQuickCheck)
		r.Post("/articles", s.handleCreateArticle)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled, then drains connections.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	return s.http.Shutdown(shutdownCtx)
}
