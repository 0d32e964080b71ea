package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/config"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/credentials"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/leaderboard"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/logger"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/service"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/sheets"
)

// unavailableSheet stands in for the Sheets client when it could not be built.
// Every read fails with the startup error, so each cycle shows the
// source-unavailable notice instead of the server refusing to start.
type unavailableSheet struct {
	err error
}

// FetchTables implements service.Fetcher.
func (u unavailableSheet) FetchTables(context.Context) (*sheets.Tables, error) {
	return nil, u.err
}

// FetchPlayerRecord implements service.Fetcher.
func (u unavailableSheet) FetchPlayerRecord(context.Context, string) (sheets.Record, bool, error) {
	return nil, false, u.err
}

// ProvideSheetFetcher resolves credentials and builds the shared Sheets client.
func ProvideSheetFetcher(i do.Injector) (service.Fetcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), credentialsTimeout)
	defer cancel()

	provider := credentials.NewProvider(credentials.Config{
		SecretEnv: cfg.Credentials.SecretEnv,
		File:      cfg.Credentials.File,
	})
	opts, origin, err := provider.ClientOptions(ctx)
	if err != nil {
		log.WithError(err).Error("Sheets credentials unavailable; every cycle will report the source as unavailable")
		return unavailableSheet{err: err}, nil
	}

	client, err := sheets.NewClient(ctx, sheets.Config{
		DocumentKey:     cfg.Sheet.DocumentKey,
		IndividualTable: cfg.Sheet.IndividualTable,
		TeamTable:       cfg.Sheet.TeamTable,
		ReadsPerMinute:  cfg.Sheet.ReadsPerMinute,
		FetchTimeout:    cfg.Sheet.FetchTimeout,
	}, log.Component("sheets"), opts...)
	if err != nil {
		log.WithError(err).Error("Sheets client unavailable; every cycle will report the source as unavailable")
		return unavailableSheet{err: err}, nil
	}

	log.Info("Sheets client ready",
		"credentials", string(origin),
		"document_key", client.DocumentKey(),
		"reads_per_minute", cfg.Sheet.ReadsPerMinute,
	)

	return client, nil
}

// LeaderboardServiceHandle wraps the leaderboard service with shutdown capability.
type LeaderboardServiceHandle struct {
	*service.LeaderboardService
}

// Shutdown implements do.Shutdownable.
func (h *LeaderboardServiceHandle) Shutdown() error {
	return h.Close()
}

// ProvideLeaderboardService provides the fetch-then-project pipeline.
func ProvideLeaderboardService(i do.Injector) (*LeaderboardServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	fetcher := do.MustInvoke[service.Fetcher](i)

	svc := service.NewLeaderboardService(service.LeaderboardServiceConfig{
		Fetcher:       fetcher,
		ChampionsPath: cfg.Champions.Path,
		Projector:     leaderboard.NewProjector(leaderboard.DefaultConfig(cfg.Tournament.DefendingChampion)),
		Logger:        log.Component("leaderboard"),
	})

	return &LeaderboardServiceHandle{LeaderboardService: svc}, nil
}
