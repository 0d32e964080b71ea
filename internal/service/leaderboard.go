package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/champions"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/errors"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/id"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/leaderboard"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/search"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/sheets"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/validation"
)

// Fetcher reads the leaderboard tables. *sheets.Client implements it.
type Fetcher interface {
	FetchTables(ctx context.Context) (*sheets.Tables, error)
	FetchPlayerRecord(ctx context.Context, player string) (sheets.Record, bool, error)
}

// RegistryLoader loads the champions registry for one cycle.
type RegistryLoader func(path string) (champions.Registry, error)

// Notice kinds shown to viewers alongside an otherwise good cycle.
const (
	NoticeRegistryUnavailable = "registry-unavailable"
	NoticeDataWarnings        = "data-warnings"
)

// Notice is a non-fatal problem surfaced to viewers.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Snapshot is the projected result of one successful refresh cycle.
type Snapshot struct {
	CycleID     string                          `json:"cycleId"`
	GeneratedAt time.Time                       `json:"generatedAt"`
	Individual  []leaderboard.IndividualViewRow `json:"individual"`
	Teams       []leaderboard.TeamViewRow       `json:"teams"`
	Warnings    []leaderboard.Warning           `json:"warnings,omitempty"`
	Notices     []Notice                        `json:"notices,omitempty"`
}

// PlayerDetail is a player's round-by-round card. Found is false when the
// player has no row in the round table; that is not an error.
type PlayerDetail struct {
	Player      string                   `json:"player"`
	Found       bool                     `json:"found"`
	Rounds      []leaderboard.RoundEntry `json:"rounds"`
	GeneratedAt time.Time                `json:"generatedAt"`
}

// LeaderboardServiceConfig wires a LeaderboardService.
type LeaderboardServiceConfig struct {
	Fetcher       Fetcher
	ChampionsPath string
	LoadRegistry  RegistryLoader // defaults to champions.Load
	Projector     *leaderboard.Projector
	Logger        *slog.Logger
}

// LeaderboardService runs the fetch-then-project pipeline.
//
// Every cycle starts from scratch. The only thing kept between calls is the
// player search index of the most recent cycle, which a failed cycle drops.
type LeaderboardService struct {
	fetcher       Fetcher
	championsPath string
	loadRegistry  RegistryLoader
	projector     *leaderboard.Projector
	decoder       *leaderboard.Decoder
	validator     *validation.Validator
	logger        *slog.Logger
	now           func() time.Time

	indexMu sync.Mutex
	index   *search.PlayerIndex
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(cfg LeaderboardServiceConfig) *LeaderboardService {
	load := cfg.LoadRegistry
	if load == nil {
		load = champions.Load
	}
	v := validation.New()
	return &LeaderboardService{
		fetcher:       cfg.Fetcher,
		championsPath: cfg.ChampionsPath,
		loadRegistry:  load,
		projector:     cfg.Projector,
		decoder:       leaderboard.NewDecoder(v),
		validator:     v,
		logger:        cfg.Logger,
		now:           time.Now,
	}
}

// Cycle runs one refresh cycle. When the tables cannot be fetched it returns
// the source-unavailable error and no snapshot: nothing is projected and
// nothing from an earlier cycle is reused.
func (s *LeaderboardService) Cycle(ctx context.Context) (*Snapshot, error) {
	cycleID := id.Cycle()
	logger := s.logger.With(slog.String("cycle_id", cycleID))
	start := time.Now()

	tables, err := s.fetcher.FetchTables(ctx)
	if err != nil {
		logger.Warn("leaderboard fetch failed", slog.String("error", err.Error()))
		s.replaceIndex(nil)
		return nil, err
	}

	snap := &Snapshot{
		CycleID:     cycleID,
		GeneratedAt: s.now(),
	}

	registry, err := s.loadRegistry(s.championsPath)
	if err != nil {
		logger.Warn("champions registry unavailable, continuing without badges",
			slog.String("path", s.championsPath),
			slog.String("error", err.Error()))
		registry = champions.Registry{}
		snap.Notices = append(snap.Notices, Notice{
			Kind:    NoticeRegistryUnavailable,
			Message: "Past champions could not be loaded; badges may be missing.",
		})
	}

	individual, indWarnings := s.decoder.DecodeIndividual(tables.Individual)
	teams, teamWarnings := s.decoder.DecodeTeams(tables.Team)
	snap.Warnings = append(indWarnings, teamWarnings...)
	if len(snap.Warnings) > 0 {
		for _, w := range snap.Warnings {
			logger.Warn("sheet data warning", slog.String("warning", w.String()))
		}
		snap.Notices = append(snap.Notices, Notice{
			Kind:    NoticeDataWarnings,
			Message: "Some leaderboard rows could not be read; see warnings.",
		})
	}

	snap.Individual = s.projector.ProjectIndividual(individual, registry)
	snap.Teams = s.projector.ProjectTeams(teams)

	idx, err := search.Build(individual, logger)
	if err != nil {
		logger.Warn("player index build failed", slog.String("error", err.Error()))
	}
	s.replaceIndex(idx)

	logger.Info("refresh cycle complete",
		slog.Int("players", len(snap.Individual)),
		slog.Int("teams", len(snap.Teams)),
		slog.Int("warnings", len(snap.Warnings)),
		slog.Duration("duration", time.Since(start)))

	return snap, nil
}

// PlayerDetail fetches and projects one player's rounds.
func (s *LeaderboardService) PlayerDetail(ctx context.Context, player string) (*PlayerDetail, error) {
	if strings.TrimSpace(player) == "" {
		return nil, errors.ValidationWithDetails("player is required", map[string]string{"player": "is required"})
	}

	record, found, err := s.fetcher.FetchPlayerRecord(ctx, player)
	if err != nil {
		s.logger.Warn("round fetch failed", slog.String("player", player), slog.String("error", err.Error()))
		return nil, err
	}

	return &PlayerDetail{
		Player:      player,
		Found:       found,
		Rounds:      s.projector.ProjectPlayerRounds(record),
		GeneratedAt: s.now(),
	}, nil
}

// SearchPlayersRequest is a fuzzy player lookup.
type SearchPlayersRequest struct {
	Query string `json:"q" validate:"notblank,max=100"`
	Limit int    `json:"limit" validate:"gte=0,lte=50"`
}

// SearchPlayers looks players up in the latest cycle's index, running a
// cycle first when there is none.
func (s *LeaderboardService) SearchPlayers(ctx context.Context, req SearchPlayersRequest) ([]search.Hit, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.indexMu.Lock()
	idx := s.index
	s.indexMu.Unlock()

	if idx == nil {
		if _, err := s.Cycle(ctx); err != nil {
			return nil, err
		}
		s.indexMu.Lock()
		idx = s.index
		s.indexMu.Unlock()
		if idx == nil {
			return nil, errors.Internal("player index unavailable")
		}
	}

	hits, err := idx.Search(ctx, req.Query, req.Limit)
	if err != nil {
		// The index may have been swapped out under us; one retry with the new one.
		s.indexMu.Lock()
		next := s.index
		s.indexMu.Unlock()
		if next == nil || next == idx {
			return nil, errors.Wrap(err, errors.CodeInternal, "search players")
		}
		return next.Search(ctx, req.Query, req.Limit)
	}
	return hits, nil
}

// ChampionsPath returns the registry file the service reads each cycle.
func (s *LeaderboardService) ChampionsPath() string {
	return s.championsPath
}

func (s *LeaderboardService) replaceIndex(idx *search.PlayerIndex) {
	s.indexMu.Lock()
	old := s.index
	s.index = idx
	s.indexMu.Unlock()

	if old != nil {
		_ = old.Close()
	}
}

// Close releases the search index.
func (s *LeaderboardService) Close() error {
	s.replaceIndex(nil)
	return nil
}
