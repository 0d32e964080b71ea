// Package providers contains dependency injection providers for the leaderboard server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/config"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(_ do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting leaderboard server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"document_key", cfg.Sheet.DocumentKey,
		"champions_path", cfg.Champions.Path,
		"refresh_interval", cfg.Refresh.Interval,
	)

	return log, nil
}
