// Package api serves the YaMDb REST API: huma operations mounted on a chi router.
package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"

	"github.com/yamdb/yamdb-server/internal/http/response"
	"github.com/yamdb/yamdb-server/internal/metrics"
	"github.com/yamdb/yamdb-server/internal/ratelimit"
	"github.com/yamdb/yamdb-server/internal/service"
	"github.com/yamdb/yamdb-server/internal/store"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the services the handlers call.
type Services struct {
	Auth    *service.AuthService
	Users   *service.UserService
	Catalog *service.CatalogService
	Titles  *service.TitleService
	Content *service.ContentService
}

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigins []string
	PageSize       int
	MaxPageSize    int
	// AuthRateLimiter throttles /api/v1/auth/* per client IP. Nil disables throttling.
	AuthRateLimiter *ratelimit.KeyedRateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Pinger
	services *Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
	opts     Options
}

// NewServer creates the router with middleware and every route registered.
func NewServer(db Pinger, services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = store.DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = store.MaxPageSize
	}

	s := &Server{
		db:       db,
		services: services,
		router:   chi.NewRouter(),
		logger:   logger,
		opts:     opts,
	}

	s.setupMiddleware()

	RegisterErrorHandler(logger)
	s.api = humachi.New(s.router, newHumaConfig())

	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

func newHumaConfig() huma.Config {
	cfg := huma.DefaultConfig("YaMDb API", "1.0.0")
	cfg.Info.Description = "Reviews of books, films and music."
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	// Bodies carry no $schema link.
	cfg.CreateHooks = nil

	format := huma.Format{
		Marshal: func(w io.Writer, v any) error {
			return json.NewEncoder(w).Encode(v)
		},
		Unmarshal: json.Unmarshal,
	}
	cfg.Formats = map[string]huma.Format{
		"application/json": format,
		"json":             format,
	}
	return cfg
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	// Clients written against the trailing-slash URLs keep working.
	s.router.Use(middleware.StripSlashes)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	s.router.Use(metrics.Middleware)
	if s.opts.AuthRateLimiter != nil {
		s.router.Use(rateLimitAuth(s.opts.AuthRateLimiter, s.logger))
	}

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

func (s *Server) registerRoutes() {
	s.router.Handle("/metrics", metrics.Handler())

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerCatalogRoutes()
	s.registerTitleRoutes()
	s.registerReviewRoutes()
	s.registerCommentRoutes()
}
