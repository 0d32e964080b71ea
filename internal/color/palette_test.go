package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPalette_For(t *testing.T) {
	p := TeamPalette()

	tests := []struct {
		team string
		want string
	}{
		{"Red", "#e74c3c"},
		{"Blue", "#3498db"},
		{"Brown", "#8b4513"},
		{"White", "#ecf0f1"},
		{"blue", DefaultTeam},
		{" Teal ", DefaultTeam},
		{"RED", DefaultTeam},
		{"Chartreuse", DefaultTeam},
		{"", DefaultTeam},
	}

	for _, tt := range tests {
		t.Run(tt.team, func(t *testing.T) {
			assert.Equal(t, tt.want, p.For(tt.team))
		})
	}
}

func TestPalette_Fallbacks(t *testing.T) {
	assert.Equal(t, "#e74c3c", TeamPalette().For("Mauve"))
	assert.Equal(t, "#3498db", PlayerPalette().For("Mauve"))
	assert.Equal(t, DefaultTeam, Palette{}.Fallback())
	assert.Equal(t, 12, TeamPalette().Len())
}

func TestPalette_Deterministic(t *testing.T) {
	p := TeamPalette()
	for range 50 {
		assert.Equal(t, "#9b59b6", p.For("Purple"))
	}
}
