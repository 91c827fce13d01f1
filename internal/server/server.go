// Package server exposes the feed store, planner and chat proxy over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/orgball2608/contentflow/internal/chat"
	"github.com/orgball2608/contentflow/internal/chatproxy"
	"github.com/orgball2608/contentflow/internal/feed"
	"github.com/orgball2608/contentflow/internal/feedimport"
	"github.com/orgball2608/contentflow/internal/metrics"
	"github.com/orgball2608/contentflow/internal/planner"
	"github.com/orgball2608/contentflow/internal/ratelimit"
	"github.com/orgball2608/contentflow/internal/render"
	"github.com/orgball2608/contentflow/internal/settings"
	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/errors"
	"github.com/orgball2608/contentflow/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config   *config.Config
	Logger   logger.Logger
	Metrics  *metrics.Metrics
	Store    feed.Store
	History  chat.History
	Settings settings.Store
	Planner  planner.Planner
	Importer *feedimport.Importer
	Chat     *chatproxy.Handler
}

type Server struct {
	cfg      *config.Config
	logger   logger.Logger
	metrics  *metrics.Metrics
	store    feed.Store
	history  chat.History
	settings settings.Store
	planner  planner.Planner
	importer *feedimport.Importer
	chat     *chatproxy.Handler
	limiter  ratelimit.Limiter

	router chi.Router
}

func New(opts Opts) *Server {
	s := &Server{
		cfg:      opts.Config,
		logger:   opts.Logger.WithComponent("http"),
		metrics:  opts.Metrics,
		store:    opts.Store,
		history:  opts.History,
		settings: opts.Settings,
		planner:  opts.Planner,
		importer: opts.Importer,
		chat:     opts.Chat,
		limiter: ratelimit.NewInMemoryLimiter(
			opts.Config.Chat.RateLimitRequests,
			opts.Config.Chat.RateLimitPer,
			opts.Config.Chat.RateLimitBurst,
		),
	}
	s.setupRoutes()
	return s
}

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(register),
)

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.With(ratelimit.Middleware(s.limiter, s.chat.Deny)).Post("/chat", s.chat.ServeHTTP)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", s.handleListPosts)
			r.Post("/", s.handleCreatePost)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPost)
				r.Patch("/", s.handleUpdatePost)
				r.Delete("/", s.handleDeletePost)
				r.Put("/schedule", s.handleSchedule)
				r.Put("/pin", s.handlePin)
				r.Get("/related", s.handleRelated)
				r.Get("/export", s.handleExport)
				r.Get("/chat", s.handleGetChat)
				r.Delete("/chat", s.handleClearChat)
			})
		})

		r.Get("/weekly", s.handleWeekly)
		r.Put("/weekly/{id}", s.handleMoveToDay)
		r.Get("/cadence", s.handleGetCadence)
		r.Put("/cadence", s.handleSaveCadence)
		r.Get("/formats", s.handleGetFormats)
		r.Post("/formats", s.handleAddFormat)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleSaveSettings)
		r.Get("/playbooks", s.handlePlaybook)
		r.Post("/import", s.handleImport)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func register(lc fx.Lifecycle, s *Server, cfg *config.Config, log logger.Logger) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info(fmt.Sprintf("Starting server on %s", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

// decode reads a JSON body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.WrapWithCode(errors.ErrBadRequest, "invalid_json", "Invalid JSON")
	}
	return nil
}

func invalid(err error) error {
	return errors.WrapWithCode(errors.ErrInvalidInput, "invalid_query", err.Error())
}

// track counts a mutating call in the write metrics.
func (s *Server) track(operation string, err error) {
	s.metrics.FeedWrites.WithLabelValues(operation, metrics.Result(err)).Inc()
	if err != nil && errors.HTTPStatus(err) == http.StatusInternalServerError {
		s.logger.Error("Write failed", "operation", operation, "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.HTTPStatus(err) == http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	}
	render.Error(w, err)
}
