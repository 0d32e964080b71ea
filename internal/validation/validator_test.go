package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/errors"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/validation"
)

type testRow struct {
	Rank   int    `sheet:"Rank" validate:"gte=1"`
	Player string `sheet:"Player" validate:"notblank"`
	Query  string `json:"q,omitempty" validate:"omitempty,max=5"`
	Note   string `validate:"omitempty,oneof=a b"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate(testRow{Rank: 1, Player: "Gunter"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		row       testRow
		wantField string
		wantMsg   string
	}{
		{"rank below one", testRow{Rank: 0, Player: "Gunter"}, "Rank", "must be greater than or equal to 1"},
		{"blank player", testRow{Rank: 1, Player: "   "}, "Player", "is required"},
		{"json tag name", testRow{Rank: 1, Player: "A", Query: "toolong"}, "q", "must not exceed 5 characters"},
		{"go field name", testRow{Rank: 1, Player: "A", Note: "c"}, "Note", "must be one of: a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.row)
			require.Error(t, err)

			var domainErr *errors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_Fields(t *testing.T) {
	v := validation.New()

	assert.Nil(t, v.Fields(testRow{Rank: 3, Player: "Walt"}))

	fields := v.Fields(testRow{Rank: -1, Player: ""})
	assert.Equal(t, map[string]string{
		"Rank":   "must be greater than or equal to 1",
		"Player": "is required",
	}, fields)
}
