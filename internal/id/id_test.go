package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isURLSafe(r rune) bool {
	return (r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '-'
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixSession, PrefixCycle, "custom"} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(id, prefix+"-"))
			nanoidPart := strings.TrimPrefix(id, prefix+"-")
			assert.Len(t, nanoidPart, 21)
			for _, r := range nanoidPart {
				assert.True(t, isURLSafe(r), "character %c should be URL-safe", r)
			}
		})
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate("test")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestSessionAndCycle(t *testing.T) {
	assert.True(t, strings.HasPrefix(Session(), "sess-"))
	assert.True(t, strings.HasPrefix(Cycle(), "cyc-"))
	assert.NotEqual(t, Cycle(), Cycle())
}

func BenchmarkGenerate(b *testing.B) {
	for b.Loop() {
		_, _ = Generate("bench")
	}
}
