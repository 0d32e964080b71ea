package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/http/response"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/logger"
)

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{"success response", "200", map[string]string{"key": "value"}},
		{"no content response", "204", nil},
		{"not found error", "404", &APIError{Code: "NOT_FOUND", Message: "no such player"}},
		{
			name:   "error with details",
			status: "422",
			input: &APIError{
				Code:    "VALIDATION",
				Message: "validation failed",
				Details: map[string]string{"query.limit": "expected number <= 50"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			jsonBytes, err := json.Marshal(result)
			require.NoError(t, err)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(jsonBytes, &envelope))

			require.Contains(t, envelope, "v")
			assert.Equal(t, float64(response.Version), envelope["v"])
		})
	}
}

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"player": "Gunter"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(response.Envelope)
	require.True(t, ok)

	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_ErrorWithDetails(t *testing.T) {
	apiErr := &APIError{
		Code:    "VALIDATION",
		Message: "validation failed",
		Details: map[string]string{"q": "is required"},
	}

	result, err := EnvelopeTransformer(nil, "400", apiErr)
	require.NoError(t, err)

	envelope, ok := result.(response.Envelope)
	require.True(t, ok)

	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Equal(t, "validation failed", envelope.Message)
	assert.Equal(t, map[string]string{"q": "is required"}, envelope.Details)
}

func TestEnvelopeTransformer_PassesEnvelopeThrough(t *testing.T) {
	env := response.OK("already wrapped")

	result, err := EnvelopeTransformer(nil, "200", env)
	require.NoError(t, err)
	assert.Equal(t, env, result)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "10.0.0.7:51234", nil, "10.0.0.7"},
		{"ipv6 remote addr", "[::1]:8080", nil, "::1"},
		{"forwarded for", "10.0.0.7:1", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "203.0.113.9"},
		{"real ip", "10.0.0.7:1", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	handler := requestLogger(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
