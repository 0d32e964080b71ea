// Package di provides dependency injection configuration for the leaderboard server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/config"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/di/providers"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/logger"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/service"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/view"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Source and pipeline
	do.Provide(injector, providers.ProvideSheetFetcher)
	do.Provide(injector, providers.ProvideLeaderboardService)

	// Presentation and streaming
	do.Provide(injector, providers.ProvideRenderer)
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Workers
	do.Provide(injector, providers.ProvideChampionsMonitor)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[service.Fetcher](injector)
	_ = do.MustInvoke[*providers.LeaderboardServiceHandle](injector)
	_ = do.MustInvoke[*view.Renderer](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)

	// Workers
	_ = do.MustInvoke[*providers.ChampionsMonitorHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	_ = do.MustInvoke[*providers.MDNSServiceHandle](injector)

	return nil
}
