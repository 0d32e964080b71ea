// Package api serves the leaderboard over HTTP: the HTML board, a Markdown
// export, a JSON API, and the live SSE stream.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/http/response"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/ratelimit"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/service"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/sse"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/view"
)

// StreamPath is where viewers open their live session.
const StreamPath = "/api/v1/stream"

// Config holds HTTP-facing settings.
type Config struct {
	Title          string
	Version        string
	AllowedOrigins []string
	DocumentKey    string
	ChampionsPath  string
}

// Services bundles what the handlers call.
type Services struct {
	Leaderboard *service.LeaderboardService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	cfg        Config
	services   *Services
	renderer   *view.Renderer
	sseHandler *sse.Handler
	sseManager *sse.Manager
	limiter    *ratelimit.KeyedRateLimiter
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured. A nil
// limiter disables inbound rate limiting.
func NewServer(
	cfg Config,
	services *Services,
	renderer *view.Renderer,
	sseHandler *sse.Handler,
	sseManager *sse.Manager,
	limiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *Server {
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}

	s := &Server{
		cfg:        cfg,
		services:   services,
		renderer:   renderer,
		sseHandler: sseHandler,
		sseManager: sseManager,
		limiter:    limiter,
		router:     chi.NewRouter(),
		logger:     logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig(cfg.Title+" API", cfg.Version)
	humaConfig.Info.Description = "Live standings read from the tournament spreadsheet."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		MaxAge:         300,
	}))
	// text/event-stream is not in Compress's type list, so the stream stays unbuffered.
	s.router.Use(middleware.Compress(5))
	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger, "/health"))
	}

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/leaderboard.md", s.handleMarkdown)
	s.router.Get(StreamPath, s.sseHandler.ServeHTTP)

	s.registerHealthRoutes()
	s.registerLeaderboardRoutes()
	s.registerPlayerRoutes()
}
