package providers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/samber/do/v2"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/api"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/config"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/logger"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/mdns"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/ratelimit"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/sse"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/view"
)

// defaultPort is used for mDNS when the configured port is not numeric.
const defaultPort = 8080

// ProvideRenderer provides the HTML and Markdown renderer.
func ProvideRenderer(i do.Injector) (*view.Renderer, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return view.New(view.Config{
		Title:           cfg.Tournament.Title,
		RefreshInterval: cfg.Refresh.Interval,
		StreamPath:      api.StreamPath,
	})
}

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Component("sse"))

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// RateLimiterHandle wraps the inbound per-IP limiter. Limiter is nil when
// limiting is disabled.
type RateLimiterHandle struct {
	Limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.Limiter != nil {
		h.Limiter.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the inbound request limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Server.RequestsPerMinute == 0 {
		log.Info("Inbound rate limiting disabled by configuration")
		return &RateLimiterHandle{}, nil
	}

	return &RateLimiterHandle{Limiter: ratelimit.PerMinute(cfg.Server.RequestsPerMinute)}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	sessions *sse.Manager
}

// Shutdown implements do.Shutdownable. Live streams never go idle on their
// own, so their sessions are closed before the server drains connections.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := h.sessions.Shutdown(ctx); err != nil {
		return err
	}
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	leaderboardHandle := do.MustInvoke[*LeaderboardServiceHandle](i)
	renderer := do.MustInvoke[*view.Renderer](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)

	sseHandler := sse.NewHandler(
		sseHandle.Manager,
		leaderboardHandle.LeaderboardService,
		renderer,
		cfg.Refresh.Interval,
		log.Component("sse"),
	)

	handler := api.NewServer(api.Config{
		Title:          cfg.Tournament.Title,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DocumentKey:    cfg.Sheet.DocumentKey,
		ChampionsPath:  cfg.Champions.Path,
	}, &api.Services{
		Leaderboard: leaderboardHandle.LeaderboardService,
	}, renderer, sseHandler, sseHandle.Manager, limiterHandle.Limiter, log.Component("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "title", cfg.Tournament.Title)

	return &HTTPServerHandle{Server: srv, sessions: sseHandle.Manager}, nil
}

// MDNSServiceHandle wraps mdns.Service with Shutdownable.
type MDNSServiceHandle struct {
	*mdns.Service
	started bool
}

// Shutdown implements do.Shutdownable.
func (h *MDNSServiceHandle) Shutdown() error {
	if h.started && h.Service != nil {
		h.Stop()
	}
	return nil
}

// ProvideMDNSService provides the mDNS advertisement service.
func ProvideMDNSService(i do.Injector) (*MDNSServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Server.AdvertiseMDNS {
		log.Info("mDNS advertisement disabled by configuration")
		return &MDNSServiceHandle{Service: nil, started: false}, nil
	}

	svc := mdns.NewService(log.Component("mdns"))

	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil {
		log.Warn("Failed to parse server port for mDNS, using default", "port", cfg.Server.Port)
		port = defaultPort
	}

	ad := mdns.Advertisement{
		Name:       cfg.Server.Name,
		Port:       port,
		StreamPath: api.StreamPath,
	}
	if err := svc.Start(ad); err != nil {
		log.Warn("mDNS advertisement unavailable", "error", err)
		// Non-fatal: server works without mDNS (e.g., Docker, cloud)
		return &MDNSServiceHandle{Service: svc, started: false}, nil
	}

	return &MDNSServiceHandle{Service: svc, started: true}, nil
}
