package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/leaderboard"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/view"
)

func TestGetLeaderboard_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/leaderboard")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, CacheNoStore, resp.Header().Get("Cache-Control"))

	var board LeaderboardResponse
	env := decodeEnvelope(t, resp.Body.Bytes(), &board)
	assert.True(t, env.Success)

	assert.NotEmpty(t, board.CycleID)
	require.Len(t, board.Individual, 2)
	assert.Equal(t, "Gunter", board.Individual[0].Player)
	assert.Equal(t, leaderboard.BadgeDefending, board.Individual[0].Badge)
	assert.Equal(t, leaderboard.BadgePastChampion, board.Individual[1].Badge)
	assert.Equal(t, view.PlayerHref("Zoë Alvarez"), board.Individual[1].Href)

	require.Len(t, board.Teams, 2)
	assert.Equal(t, "Red", board.Teams[0].Team)
	assert.Equal(t, 90.0, board.Teams[0].Total)
	assert.NotEmpty(t, board.Teams[0].Color)
	assert.Empty(t, board.Notices)
}

func TestGetLeaderboard_SourceDown(t *testing.T) {
	ts := setupTestServer(t)
	ts.sheet.setDown(true)

	resp := ts.api.Get("/api/v1/leaderboard")

	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	env := decodeEnvelope(t, resp.Body.Bytes(), nil)
	assert.False(t, env.Success)
	assert.Equal(t, "SOURCE_UNAVAILABLE", env.Code)
	assert.Empty(t, env.Data)
}

func TestGetLeaderboard_BrokenChampionsFile(t *testing.T) {
	ts := setupTestServer(t, func(o *testOptions) { o.championsJSON = "{not json" })

	resp := ts.api.Get("/api/v1/leaderboard")
	require.Equal(t, http.StatusOK, resp.Code)

	var board LeaderboardResponse
	decodeEnvelope(t, resp.Body.Bytes(), &board)

	// The defending champion needs no registry; past champions do.
	assert.Equal(t, leaderboard.BadgeDefending, board.Individual[0].Badge)
	assert.Equal(t, leaderboard.BadgeNone, board.Individual[1].Badge)
	require.Len(t, board.Notices, 1)
	assert.Equal(t, "registry-unavailable", board.Notices[0].Kind)
}

func TestGetPlayerRounds(t *testing.T) {
	tests := []struct {
		name   string
		player string
		found  bool
		labels []string
	}{
		{"scored slots in card order", "Gunter", true, []string{"Round 1", "Round 3", "Putt-Off"}},
		{"accented name", "Zoë Alvarez", true, []string{"Round 1"}},
		{"unknown player", "Nobody", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t)

			resp := ts.api.Get("/api/v1/players/" + url.PathEscape(tt.player) + "/rounds")
			require.Equal(t, http.StatusOK, resp.Code)

			var card PlayerRoundsResponse
			decodeEnvelope(t, resp.Body.Bytes(), &card)

			assert.Equal(t, tt.player, card.Player)
			assert.Equal(t, tt.found, card.Found)
			labels := make([]string, 0, len(card.Rounds))
			for _, r := range card.Rounds {
				labels = append(labels, r.Label)
			}
			if tt.labels == nil {
				assert.Empty(t, labels)
			} else {
				assert.Equal(t, tt.labels, labels)
			}
		})
	}
}

func TestGetPlayerRounds_SourceDown(t *testing.T) {
	ts := setupTestServer(t)
	ts.sheet.setDown(true)

	resp := ts.api.Get("/api/v1/players/Gunter/rounds")

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestSearchPlayers(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/players?q=zoe")
	require.Equal(t, http.StatusOK, resp.Code)

	var result SearchPlayersResponse
	decodeEnvelope(t, resp.Body.Bytes(), &result)

	assert.Equal(t, "zoe", result.Query)
	require.NotEmpty(t, result.Results)
	assert.Equal(t, "Zoë Alvarez", result.Results[0].Player)
	assert.Equal(t, "Blue", result.Results[0].Team)
	assert.Equal(t, view.PlayerHref("Zoë Alvarez"), result.Results[0].Href)
}

func TestSearchPlayers_Validation(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"missing query", "/api/v1/players", http.StatusUnprocessableEntity},
		{"limit too large", "/api/v1/players?q=gun&limit=500", http.StatusUnprocessableEntity},
		{"blank query", "/api/v1/players?q=%20%20", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t)

			resp := ts.api.Get(tt.query)

			require.Equal(t, tt.status, resp.Code)
			env := decodeEnvelope(t, resp.Body.Bytes(), nil)
			assert.False(t, env.Success)
			assert.Equal(t, "VALIDATION", env.Code)
		})
	}
}
