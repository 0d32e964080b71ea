package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the shared envelope,
// so JSON from huma handlers and from plain chi handlers looks the same.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return response.Fail(body.Code, body.Message, body.Details), nil
	case response.Envelope, *response.Envelope:
		return v, nil
	default:
		return response.OK(v), nil
	}
}
