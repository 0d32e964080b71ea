package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/validation"
)

func individualRecord(rank any, player, team string, total any) map[string]any {
	return map[string]any{
		"Rank": rank, "Player": player, "Team": team, "Total": total,
		"R1": "", "R2": "", "R3": "", "R4": "", "R5": "", "Putt-Off": "", "Extras": "",
	}
}

func warningMessages(ws []Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}

func TestDecodeIndividual_Clean(t *testing.T) {
	d := NewDecoder(validation.New())

	rows, warnings := d.DecodeIndividual([]map[string]any{
		individualRecord(1.0, "Gunter", "Red", 42.0),
		individualRecord("T2", "Alice", "Blue", "40"),
		individualRecord(2.0, "Bob", "Blue", 40.0),
	})

	assert.Empty(t, warnings)
	assert.Equal(t, []IndividualRow{
		{Rank: 1, Player: "Gunter", Team: "Red", Total: 42},
		{Rank: 2, Player: "Alice", Team: "Blue", Total: 40},
		{Rank: 2, Player: "Bob", Team: "Blue", Total: 40},
	}, rows)
}

func TestDecodeIndividual_Warnings(t *testing.T) {
	d := NewDecoder(validation.New())

	rows, warnings := d.DecodeIndividual([]map[string]any{
		individualRecord(2.0, "Gunter", "Red", 42.0),
		individualRecord(1.0, "Walt", "Red", ""),
		individualRecord(3.0, "  ", "Red", 1.0),
		individualRecord("first", "Ann", "Red", 1.0),
		individualRecord(4.0, "Cy", "Red", "lots"),
		individualRecord(5.0, "Gunter", "Blue", 1.0),
		individualRecord(1.5, "Dee", "Red", 1.0),
	})

	require.Len(t, rows, 4)
	assert.Equal(t, "Gunter", rows[0].Player)
	assert.Equal(t, "Walt", rows[1].Player)
	assert.Zero(t, rows[1].Total)
	assert.Equal(t, "Cy", rows[2].Player)
	assert.Zero(t, rows[2].Total)
	assert.Equal(t, "Gunter", rows[3].Player)

	assert.Equal(t, []string{
		"individual row 2 Total: total is empty, shown as 0",
		"individual row 2 Rank: rank 1 follows rank 2",
		"individual row 3 Player: Player is required",
		`individual row 4 Rank: rank "first" is not a number`,
		`individual row 5 Total: total "lots" is not a number, shown as 0`,
		`individual row 6 Player: duplicate player "Gunter" (first seen on row 1)`,
		"individual row 7 Rank: rank 1.5 is not a whole number",
	}, warningMessages(warnings))
}

func TestDecode_TextTotalKeepsRow(t *testing.T) {
	d := NewDecoder(validation.New())

	tests := []struct {
		name  string
		total any
	}{
		{"withdrawn", "WD"},
		{"disqualified", "DQ"},
		{"dash", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, warnings := d.DecodeIndividual([]map[string]any{
				individualRecord(1.0, "Ann", "Red", 40.0),
				individualRecord(2.0, "Bob", "Red", tt.total),
			})
			require.Len(t, rows, 2)
			assert.Equal(t, IndividualRow{Rank: 2, Player: "Bob", Team: "Red", Total: 0}, rows[1])
			require.Len(t, warnings, 1)
			assert.Equal(t, ColumnTotal, warnings[0].Column)
			assert.Equal(t, 2, warnings[0].Row)
			assert.Contains(t, warnings[0].Message, "not a number")

			teams, teamWarnings := d.DecodeTeams([]map[string]any{
				{"Rank": 1.0, "Team": "Red", "Total": tt.total, "Players": "Ann, Bob"},
			})
			require.Len(t, teams, 1)
			assert.Zero(t, teams[0].Total)
			require.Len(t, teamWarnings, 1)
			assert.Equal(t, ColumnTotal, teamWarnings[0].Column)
		})
	}
}

func TestDecodeIndividual_Columns(t *testing.T) {
	d := NewDecoder(validation.New())

	rows, warnings := d.DecodeIndividual([]map[string]any{
		{"Rank": 1.0, "Player": "Gunter", "Total": 42.0, "R1": 10.0, "Handicap": 4.0},
	})

	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Team)
	assert.Equal(t, []string{
		"individual Team: required column missing",
		"individual R2: column missing",
		"individual R3: column missing",
		"individual R4: column missing",
		"individual R5: column missing",
		"individual Putt-Off: column missing",
		"individual Extras: column missing",
		"individual Handicap: unexpected column ignored",
	}, warningMessages(warnings))
}

func TestDecodeIndividual_Empty(t *testing.T) {
	rows, warnings := NewDecoder(validation.New()).DecodeIndividual(nil)
	assert.Empty(t, rows)
	assert.Empty(t, warnings)
}

func TestDecodeTeams(t *testing.T) {
	d := NewDecoder(validation.New())

	rows, warnings := d.DecodeTeams([]map[string]any{
		{"Rank": 1.0, "Team": "Blue", "Total": 90.0, "Players": "Ann, Bob"},
		{"Rank": 2.0, "Team": "", "Total": 80.0, "Players": "Cy"},
		{"Rank": 2.0, "Team": "Blue", "Total": 80.0, "Players": 7.0},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, TeamRow{Rank: 1, Team: "Blue", Total: 90, Players: "Ann, Bob"}, rows[0])
	assert.Equal(t, "7", rows[1].Players)
	assert.Equal(t, []string{
		"team row 2 Team: Team is required",
		`team row 3 Team: duplicate team "Blue" (first seen on row 1)`,
	}, warningMessages(warnings))
}
