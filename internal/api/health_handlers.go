package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/champions"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health with component checks. Never reads the spreadsheet, so it costs no quota.",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"sheet":     s.checkSheet(),
		"champions": s.checkChampions(),
		"sse":       s.checkSSEManager(),
	}

	overall := "healthy"
	for _, c := range components {
		switch c.Status {
		case "unhealthy":
			overall = "unhealthy"
		case "degraded":
			if overall == "healthy" {
				overall = "degraded"
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkSheet reports whether a spreadsheet is configured.
func (s *Server) checkSheet() ComponentHealth {
	if strings.TrimSpace(s.cfg.DocumentKey) == "" {
		return ComponentHealth{Status: "unhealthy", Message: "no document key configured"}
	}
	return ComponentHealth{Status: "healthy", Message: "document " + s.cfg.DocumentKey}
}

// checkChampions loads the registry the way a cycle would. A broken file only
// costs badges, so it degrades rather than fails the server.
func (s *Server) checkChampions() ComponentHealth {
	if s.cfg.ChampionsPath == "" {
		return ComponentHealth{Status: "degraded", Message: "champions file not configured"}
	}

	start := time.Now()
	registry, err := champions.Load(s.cfg.ChampionsPath)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "degraded",
			Latency: latency.String(),
			Message: "champions file unreadable; badges disabled",
		}
	}
	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: fmt.Sprintf("%d past champions", registry.Champions()),
	}
}

// checkSSEManager reports connected viewer sessions.
func (s *Server) checkSSEManager() ComponentHealth {
	if s.sseManager == nil {
		return ComponentHealth{Status: "degraded", Message: "SSE manager not configured"}
	}

	return ComponentHealth{
		Status:  "healthy",
		Message: formatSessions(s.sseManager.SessionCount()),
	}
}

func formatSessions(count int) string {
	switch count {
	case 0:
		return "no connected viewers"
	case 1:
		return "1 connected viewer"
	default:
		return fmt.Sprintf("%d connected viewers", count)
	}
}
