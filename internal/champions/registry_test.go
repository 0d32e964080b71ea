package champions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "players_2024.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `{
  "players": {
    "1": {"name": "Walt", "past_champion": true},
    "2": {"name": "Ann", "past_champion": false},
    "3": {"name": "Gunter"},
    "4": {"past_champion": true}
  }
}`)

	registry, err := Load(path)
	require.NoError(t, err)

	assert.True(t, registry.IsPastChampion("Walt"))
	assert.False(t, registry.IsPastChampion("walt"), "names are case sensitive")
	assert.False(t, registry.IsPastChampion("Ann"))
	assert.False(t, registry.IsPastChampion("Gunter"))
	assert.False(t, registry.IsPastChampion(""))
	assert.Len(t, registry, 3)
	assert.Equal(t, 1, registry.Champions())
}

func TestParse_DuplicateNamesAnyTrueWins(t *testing.T) {
	registry, err := Parse([]byte(`{"players": {
		"a": {"name": "Walt", "past_champion": false},
		"b": {"name": "Walt", "past_champion": true}
	}}`))
	require.NoError(t, err)
	assert.True(t, registry.IsPastChampion("Walt"))
}

func TestLoad_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }},
		{"malformed json", func(t *testing.T) string { return writeFile(t, `{"players": [`) }},
		{"no players object", func(t *testing.T) string { return writeFile(t, `{"teams": {}}`) }},
		{"wrong shape", func(t *testing.T) string { return writeFile(t, `{"players": ["Walt"]}`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, err := Load(tt.path(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrRegistryUnavailable))
			assert.NotNil(t, registry)
			assert.Empty(t, registry)
		})
	}
}
