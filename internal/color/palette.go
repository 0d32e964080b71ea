// Package color maps team names to display colours.
package color

// Default colours for teams the palette does not know.
const (
	DefaultTeam   = "#e74c3c"
	DefaultPlayer = "#3498db"
)

// Teams are named after colours; these are the twelve the tournament uses.
var teamColors = map[string]string{
	"Red":    "#e74c3c",
	"Blue":   "#3498db",
	"Green":  "#2ecc71",
	"Yellow": "#f1c40f",
	"Purple": "#9b59b6",
	"Orange": "#e67e22",
	"Pink":   "#e91e63",
	"Teal":   "#1abc9c",
	"Brown":  "#8b4513",
	"Gray":   "#95a5a6",
	"Black":  "#2d2d2d",
	"White":  "#ecf0f1",
}

// Palette resolves team names to hex colours with a fixed fallback.
// It is immutable once built and safe for concurrent use.
type Palette struct {
	colors   map[string]string
	fallback string
}

// NewPalette returns the tournament palette with the given fallback colour.
func NewPalette(fallback string) Palette {
	colors := make(map[string]string, len(teamColors))
	for name, hex := range teamColors {
		colors[name] = hex
	}
	return Palette{colors: colors, fallback: fallback}
}

// TeamPalette is the palette used for the team standings.
func TeamPalette() Palette { return NewPalette(DefaultTeam) }

// PlayerPalette is the palette used to tint individual rows by team.
func PlayerPalette() Palette { return NewPalette(DefaultPlayer) }

// For returns the colour for team. Matching is exact and case-sensitive:
// "blue" and " Blue" are unknown teams and get the fallback.
func (p Palette) For(team string) string {
	if hex, ok := p.colors[team]; ok {
		return hex
	}
	return p.Fallback()
}

// Fallback returns the colour used for unknown teams.
func (p Palette) Fallback() string {
	if p.fallback == "" {
		return DefaultTeam
	}
	return p.fallback
}

// Len returns the number of named colours.
func (p Palette) Len() int { return len(p.colors) }
