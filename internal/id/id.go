// Package id generates prefixed NanoIDs for viewer sessions and refresh cycles.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes used across the server.
const (
	PrefixSession = "sess"
	PrefixCycle   = "cyc"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "sess-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Session returns a new viewer session id.
func Session() string { return MustGenerate(PrefixSession) }

// Cycle returns a new refresh cycle id.
func Cycle() string { return MustGenerate(PrefixCycle) }
