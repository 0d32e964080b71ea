package view

import (
	"net/url"
	"strings"
)

// Route is the presentation state parsed from a request: the main board,
// or one player's detail when Player is set.
type Route struct {
	Player string
}

// ParseRoute reads the optional "player" query parameter. Whitespace-only
// values mean the main board.
func ParseRoute(q url.Values) Route {
	player := q.Get("player")
	if strings.TrimSpace(player) == "" {
		return Route{}
	}
	return Route{Player: player}
}

// IsDetail reports whether the route selects a player's detail view.
func (r Route) IsDetail() bool {
	return r.Player != ""
}

// PlayerHref returns the link to a player's detail view.
func PlayerHref(player string) string {
	return "/?" + url.Values{"player": {player}}.Encode()
}
