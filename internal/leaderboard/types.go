// Package leaderboard projects fetched sheet rows into display-ready views.
//
// The projection is read-only: it never re-ranks, recomputes totals or fills
// in missing scores. Source order is the rank order.
package leaderboard

// Column names in the individual and team tables.
const (
	ColumnRank    = "Rank"
	ColumnPlayer  = "Player"
	ColumnTeam    = "Team"
	ColumnTotal   = "Total"
	ColumnPlayers = "Players"
)

// IndividualRow is one typed row of the individual standings.
type IndividualRow struct {
	Rank   int     `sheet:"Rank" validate:"gte=1"`
	Player string  `sheet:"Player" validate:"notblank"`
	Team   string  `sheet:"Team"`
	Total  float64 `sheet:"Total"`
}

// TeamRow is one typed row of the team standings.
type TeamRow struct {
	Rank    int     `sheet:"Rank" validate:"gte=1"`
	Team    string  `sheet:"Team" validate:"notblank"`
	Total   float64 `sheet:"Total"`
	Players string  `sheet:"Players"`
}

// RoundEntry is one scored slot of a player's card. Text holds the cell as
// written when it is not a number (e.g. "DNS"); Points is then zero.
type RoundEntry struct {
	Label  string  `json:"label"`
	Points float64 `json:"points"`
	Text   string  `json:"text,omitempty"`
}

// Numeric reports whether the slot holds a score rather than a text mark.
func (r RoundEntry) Numeric() bool {
	return r.Text == ""
}

// Badge marks a champion on the individual board.
type Badge string

const (
	BadgeNone         Badge = ""
	BadgeDefending    Badge = "defending"
	BadgePastChampion Badge = "past-champion"
)

// Icon returns the glyph shown next to the player's name.
func (b Badge) Icon() string {
	switch b {
	case BadgeDefending:
		return "👑"
	case BadgePastChampion:
		return "🏆"
	default:
		return ""
	}
}

// IndividualViewRow is an individual row ready for display.
type IndividualViewRow struct {
	Rank      int     `json:"rank"`
	Player    string  `json:"player"`
	Team      string  `json:"team"`
	Total     float64 `json:"total"`
	Badge     Badge   `json:"badge,omitempty"`
	TeamColor string  `json:"teamColor"`
	// LinkKey addresses the player's detail view.
	LinkKey string `json:"linkKey"`
}

// TeamViewRow is a team row ready for display.
type TeamViewRow struct {
	Rank    int     `json:"rank"`
	Team    string  `json:"team"`
	Total   float64 `json:"total"`
	Players string  `json:"players"`
	Color   string  `json:"color"`
}

// Registry answers whether a player is a past champion.
type Registry interface {
	IsPastChampion(name string) bool
}
