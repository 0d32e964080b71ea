// Package champions loads the past-champions registry from its JSON file.
//
// The file looks like:
//
//	{"players": {"p1": {"name": "Walt", "past_champion": true}, ...}}
//
// It is read fresh for every refresh cycle and never written.
package champions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/errors"
)

// Registry maps a player's exact name to whether they are a past champion.
// A cycle gets its own Registry; nothing mutates it after Load returns.
type Registry map[string]bool

// IsPastChampion reports whether name is flagged in the registry.
// Names match exactly, including case.
func (r Registry) IsPastChampion(name string) bool {
	return r[name]
}

// Champions returns the number of players flagged as past champions.
func (r Registry) Champions() int {
	n := 0
	for _, past := range r {
		if past {
			n++
		}
	}
	return n
}

type fileFormat struct {
	Players map[string]playerEntry `json:"players"`
}

type playerEntry struct {
	Name         string `json:"name"`
	PastChampion bool   `json:"past_champion"`
}

// Load reads the registry at path. A missing, unreadable or malformed file is
// reported as a registry-unavailable error; callers carry on with an empty Registry.
func Load(path string) (Registry, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- registry path comes from config
	if err != nil {
		return Registry{}, errors.RegistryUnavailable("read champions file", err)
	}
	return Parse(data)
}

// Parse decodes registry JSON. Entries without a name are skipped; a name that
// appears more than once is a past champion if any entry says so.
func Parse(data []byte) (Registry, error) {
	var file fileFormat
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&file); err != nil {
		return Registry{}, errors.RegistryUnavailable("decode champions file", err)
	}
	if file.Players == nil {
		return Registry{}, errors.RegistryUnavailable("decode champions file",
			fmt.Errorf("missing %q object", "players"))
	}

	registry := make(Registry, len(file.Players))
	for _, entry := range file.Players {
		if entry.Name == "" {
			continue
		}
		registry[entry.Name] = registry[entry.Name] || entry.PastChampion
	}
	return registry, nil
}
