package leaderboard

import (
	"strings"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/color"
)

// Config is the fixed display configuration a Projector is built with.
type Config struct {
	DefendingChampion string
	TeamPalette       color.Palette
	PlayerPalette     color.Palette
}

// DefaultConfig returns the configuration for the given defending champion
// with the tournament palettes.
func DefaultConfig(defendingChampion string) Config {
	return Config{
		DefendingChampion: defendingChampion,
		TeamPalette:       color.TeamPalette(),
		PlayerPalette:     color.PlayerPalette(),
	}
}

// Projector turns typed rows into view rows. It holds no mutable state and
// is safe for concurrent use.
type Projector struct {
	cfg Config
}

// NewProjector creates a projector with an immutable copy of cfg.
func NewProjector(cfg Config) *Projector {
	return &Projector{cfg: cfg}
}

// DefendingChampion returns the configured defending champion.
func (p *Projector) DefendingChampion() string {
	return p.cfg.DefendingChampion
}

// ProjectIndividual attaches badges, colours and link keys to rows.
// Output has the same length and order as the input.
func (p *Projector) ProjectIndividual(rows []IndividualRow, registry Registry) []IndividualViewRow {
	out := make([]IndividualViewRow, len(rows))
	for i, row := range rows {
		out[i] = IndividualViewRow{
			Rank:      row.Rank,
			Player:    row.Player,
			Team:      row.Team,
			Total:     row.Total,
			Badge:     p.badge(row.Player, registry),
			TeamColor: p.cfg.PlayerPalette.For(row.Team),
			LinkKey:   row.Player,
		}
	}
	return out
}

func (p *Projector) badge(player string, registry Registry) Badge {
	if p.cfg.DefendingChampion != "" && player == p.cfg.DefendingChampion {
		return BadgeDefending
	}
	if registry != nil && registry.IsPastChampion(player) {
		return BadgePastChampion
	}
	return BadgeNone
}

// ProjectTeams assigns each team its palette colour.
func (p *Projector) ProjectTeams(rows []TeamRow) []TeamViewRow {
	out := make([]TeamViewRow, len(rows))
	for i, row := range rows {
		out[i] = TeamViewRow{
			Rank:    row.Rank,
			Team:    row.Team,
			Total:   row.Total,
			Players: row.Players,
			Color:   p.cfg.TeamPalette.For(row.Team),
		}
	}
	return out
}

// roundSlots is the fixed display order of a player's card.
var roundSlots = []struct {
	column string
	label  string
}{
	{"R1", "Round 1"},
	{"R2", "Round 2"},
	{"R3", "Round 3"},
	{"R4", "Round 4"},
	{"R5", "Round 5"},
	{"Putt-Off", "Putt-Off"},
	{"Extras", "Extras"},
}

// RoundColumns lists the round columns expected in the individual table.
func RoundColumns() []string {
	cols := make([]string, len(roundSlots))
	for i, slot := range roundSlots {
		cols[i] = slot.column
	}
	return cols
}

// ProjectPlayerRounds lists the filled slots of record in card order.
// Absent and empty values are left out, never zero-filled. A value that is
// not a number is kept as written in Text. A nil record yields an empty slice.
func (p *Projector) ProjectPlayerRounds(record map[string]any) []RoundEntry {
	out := make([]RoundEntry, 0, len(roundSlots))
	for _, slot := range roundSlots {
		value, ok := record[slot.column]
		if !ok || isEmpty(value) {
			continue
		}
		if points, ok := toNumber(value); ok {
			out = append(out, RoundEntry{Label: slot.label, Points: points})
			continue
		}
		out = append(out, RoundEntry{Label: slot.label, Text: strings.TrimSpace(cellText(value))})
	}
	return out
}
