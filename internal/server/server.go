// Package server exposes the report form and the training dashboard over
// HTTP: server rendered pages for browsers and a JSON API for other clients.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-reportform/internal/config"
	"github.com/goliatone/go-reportform/pkg/gateway"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/renderers/html"
	"github.com/goliatone/go-reportform/pkg/renderers/jsonapi"
	"github.com/goliatone/go-reportform/pkg/renderers/tui"
)

const shutdownTimeout = 10 * time.Second

// Deps wires the server. Config is required; nil gateways make the
// corresponding remote operations answer 503.
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Reports   gateway.ReportGateway
	Training  gateway.TrainingGateway
	Sessions  SessionStore
	Limiter   Limiter
	Registry  *prometheus.Registry
	Renderers *render.Registry
}

// Server is the HTTP portal.
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	reports   gateway.ReportGateway
	training  gateway.TrainingGateway
	sessions  SessionStore
	limiter   Limiter
	registry  *prometheus.Registry
	metrics   *Metrics
	renderers *render.Registry
	options   *OptionCache
}

// New validates deps and fills in defaults: an in-memory session store, a
// private metrics registry and the html, json and text renderers.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("server: config is required")
	}
	s := &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		reports:   deps.Reports,
		training:  deps.Training,
		sessions:  deps.Sessions,
		limiter:   deps.Limiter,
		registry:  deps.Registry,
		renderers: deps.Renderers,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.sessions == nil {
		s.sessions = NewMemoryStore(s.cfg.Server.SessionTTL)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	if s.renderers == nil {
		htmlRenderer, err := html.New()
		if err != nil {
			return nil, fmt.Errorf("server: html renderer: %w", err)
		}
		s.renderers = render.NewRegistry()
		s.renderers.MustRegister(htmlRenderer)
		s.renderers.MustRegister(jsonapi.New())
		s.renderers.MustRegister(tui.NewText())
	}
	s.metrics = NewMetrics(s.registry)
	s.options = NewOptionCache(s.reports, s.cfg.Server.OptionsTTL, s.logger)
	return s, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/openapi.json", s.handleOpenAPI)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, reportAction, http.StatusFound)
	})

	r.Route("/report", func(r chi.Router) {
		r.Get("/", s.handleReportPage)
		r.With(s.RateLimit("submit")).Post("/submit", s.handleReportSubmit)
		r.Post("/reset", s.handleReportReset)
		r.Post("/lookup", s.handleReportLookup)
	})

	r.Route("/training", func(r chi.Router) {
		r.Get("/", s.handleTrainingPage)
		r.Post("/courses", s.handleTrainingCourse)
		r.Post("/sessions", s.handleTrainingSession)
		r.Post("/sessions/{id}/register", s.handleTrainingRegister)
		r.Post("/sessions/{id}/cancel", s.handleTrainingCancel)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/report/sessions", func(r chi.Router) {
			r.Post("/", s.apiReportCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.apiReportGet)
				r.Put("/values/{field}", s.apiReportSetValue)
				r.With(s.RateLimit("submit")).Post("/submit", s.apiReportSubmit)
				r.Post("/reset", s.apiReportReset)
				r.Post("/lookup", s.apiReportLookup)
			})
		})
		r.Route("/training", func(r chi.Router) {
			r.Get("/courses", s.apiCourses)
			r.Post("/courses", s.apiCreateCourse)
			r.Get("/sessions", s.apiSessions)
			r.Post("/sessions", s.apiCreateTrainingSession)
			r.Get("/attendance", s.apiAttendance)
			r.Post("/sessions/{id}/register", s.apiRegister)
			r.Post("/sessions/{id}/cancel", s.apiCancel)
		})
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("portal listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info("portal shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if mem, ok := s.sessions.(*MemoryStore); ok {
		g.Go(func() error {
			return mem.RunJanitor(ctx, time.Minute, s.logger)
		})
	}
	return g.Wait()
}
