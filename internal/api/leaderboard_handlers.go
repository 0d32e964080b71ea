package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/leaderboard"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/service"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/view"
)

func (s *Server) registerLeaderboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboard",
		Summary:     "Get leaderboard",
		Description: "Runs one refresh cycle and returns both projected boards. Fails with SOURCE_UNAVAILABLE when the sheet cannot be read; no partial board is returned.",
		Tags:        []string{"Leaderboard"},
	}, s.handleGetLeaderboard)
}

func (s *Server) registerPlayerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPlayerRounds",
		Method:      http.MethodGet,
		Path:        "/api/v1/players/{player}/rounds",
		Summary:     "Get a player's rounds",
		Description: "Returns the scored slots of a player's card in card order. Unknown players return an empty list.",
		Tags:        []string{"Players"},
	}, s.handleGetPlayerRounds)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchPlayers",
		Method:      http.MethodGet,
		Path:        "/api/v1/players",
		Summary:     "Search players",
		Description: "Fuzzy, accent-insensitive player lookup over the latest cycle's standings.",
		Tags:        []string{"Players"},
	}, s.handleSearchPlayers)
}

// IndividualEntry is one row of the individual board.
type IndividualEntry struct {
	Rank      int               `json:"rank" doc:"Rank as shown in the sheet"`
	Player    string            `json:"player" doc:"Player name"`
	Team      string            `json:"team" doc:"Team name"`
	Total     float64           `json:"total" doc:"Total points"`
	Badge     leaderboard.Badge `json:"badge,omitempty" enum:"defending,past-champion" doc:"Champion badge, if any"`
	TeamColor string            `json:"team_color" doc:"CSS colour of the player's team"`
	Href      string            `json:"href" doc:"Link to the player's card"`
}

// TeamEntry is one row of the team board.
type TeamEntry struct {
	Rank    int     `json:"rank" doc:"Rank as shown in the sheet"`
	Team    string  `json:"team" doc:"Team name"`
	Total   float64 `json:"total" doc:"Total points"`
	Players string  `json:"players" doc:"Team members as listed in the sheet"`
	Color   string  `json:"color" doc:"CSS colour of the team"`
}

// LeaderboardResponse is one refresh cycle's boards.
type LeaderboardResponse struct {
	CycleID     string            `json:"cycle_id" doc:"Refresh cycle ID"`
	GeneratedAt time.Time         `json:"generated_at" doc:"When the cycle completed"`
	Individual  []IndividualEntry `json:"individual" doc:"Individual standings in sheet order"`
	Teams       []TeamEntry       `json:"teams" doc:"Team standings in sheet order"`
	Warnings    []string          `json:"warnings,omitempty" doc:"Rows or columns that could not be read"`
	Notices     []service.Notice  `json:"notices,omitempty" doc:"Non-fatal problems shown to viewers"`
}

// LeaderboardOutput wraps the leaderboard response for Huma.
type LeaderboardOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         LeaderboardResponse
}

func (s *Server) handleGetLeaderboard(ctx context.Context, _ *struct{}) (*LeaderboardOutput, error) {
	snap, err := s.services.Leaderboard.Cycle(ctx)
	if err != nil {
		return nil, err
	}

	resp := LeaderboardResponse{
		CycleID:     snap.CycleID,
		GeneratedAt: snap.GeneratedAt,
		Individual:  make([]IndividualEntry, len(snap.Individual)),
		Teams:       make([]TeamEntry, len(snap.Teams)),
		Notices:     snap.Notices,
	}
	for i, row := range snap.Individual {
		resp.Individual[i] = IndividualEntry{
			Rank:      row.Rank,
			Player:    row.Player,
			Team:      row.Team,
			Total:     row.Total,
			Badge:     row.Badge,
			TeamColor: row.TeamColor,
			Href:      view.PlayerHref(row.LinkKey),
		}
	}
	for i, row := range snap.Teams {
		resp.Teams[i] = TeamEntry{
			Rank:    row.Rank,
			Team:    row.Team,
			Total:   row.Total,
			Players: row.Players,
			Color:   row.Color,
		}
	}
	for _, w := range snap.Warnings {
		resp.Warnings = append(resp.Warnings, w.String())
	}

	return &LeaderboardOutput{CacheControl: CacheNoStore, Body: resp}, nil
}

// PlayerRoundsInput is the path of a player's card.
type PlayerRoundsInput struct {
	Player string `path:"player" minLength:"1" maxLength:"200" doc:"Exact player name as shown on the board"`
}

// PlayerRoundsResponse is a player's card.
type PlayerRoundsResponse struct {
	Player      string                   `json:"player" doc:"Player name"`
	Found       bool                     `json:"found" doc:"Whether the player has a row in the sheet"`
	Rounds      []leaderboard.RoundEntry `json:"rounds" doc:"Scored slots in card order"`
	GeneratedAt time.Time                `json:"generated_at" doc:"When the card was read"`
}

// PlayerRoundsOutput wraps the player rounds response for Huma.
type PlayerRoundsOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         PlayerRoundsResponse
}

func (s *Server) handleGetPlayerRounds(ctx context.Context, input *PlayerRoundsInput) (*PlayerRoundsOutput, error) {
	detail, err := s.services.Leaderboard.PlayerDetail(ctx, input.Player)
	if err != nil {
		return nil, err
	}

	return &PlayerRoundsOutput{
		CacheControl: CacheNoStore,
		Body: PlayerRoundsResponse{
			Player:      detail.Player,
			Found:       detail.Found,
			Rounds:      detail.Rounds,
			GeneratedAt: detail.GeneratedAt,
		},
	}, nil
}

// SearchPlayersInput is a fuzzy player lookup.
type SearchPlayersInput struct {
	Q     string `query:"q" required:"true" maxLength:"100" doc:"Name or part of a name"`
	Limit int    `query:"limit" minimum:"0" maximum:"50" default:"10" doc:"Maximum number of results"`
}

// PlayerHit is one search result.
type PlayerHit struct {
	Player string  `json:"player" doc:"Player name"`
	Team   string  `json:"team,omitempty" doc:"Team name"`
	Score  float64 `json:"score" doc:"Relevance score"`
	Href   string  `json:"href" doc:"Link to the player's card"`
}

// SearchPlayersResponse lists matching players, best first.
type SearchPlayersResponse struct {
	Query   string      `json:"query" doc:"The query as received"`
	Results []PlayerHit `json:"results" doc:"Matching players"`
}

// SearchPlayersOutput wraps the search response for Huma.
type SearchPlayersOutput struct {
	Body SearchPlayersResponse
}

func (s *Server) handleSearchPlayers(ctx context.Context, input *SearchPlayersInput) (*SearchPlayersOutput, error) {
	hits, err := s.services.Leaderboard.SearchPlayers(ctx, service.SearchPlayersRequest{
		Query: input.Q,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, err
	}

	results := make([]PlayerHit, len(hits))
	for i, h := range hits {
		results[i] = PlayerHit{
			Player: h.Player,
			Team:   h.Team,
			Score:  h.Score,
			Href:   view.PlayerHref(h.Player),
		}
	}

	return &SearchPlayersOutput{Body: SearchPlayersResponse{Query: input.Q, Results: results}}, nil
}
