package api

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/errors"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/view"
)

// handleIndex serves the board, or a player's card when ?player= is set.
// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	route := view.ParseRoute(r.URL.Query())

	var buf bytes.Buffer
	status := http.StatusOK

	if route.IsDetail() {
		detail, err := s.services.Leaderboard.PlayerDetail(ctx, route.Player)
		if err != nil {
			status = statusFor(err)
			detail = nil
		}
		if err := s.renderer.Detail(&buf, route, detail); err != nil {
			s.renderFailed(w, "detail", err)
			return
		}
	} else {
		snap, err := s.services.Leaderboard.Cycle(ctx)
		if err != nil {
			status = statusFor(err)
		}
		if err := s.renderer.Page(&buf, snap); err != nil {
			s.renderFailed(w, "page", err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", CacheNoStore)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handleMarkdown serves the current board as Markdown.
// GET /leaderboard.md
func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	snap, err := s.services.Leaderboard.Cycle(r.Context())
	if err != nil {
		status = statusFor(err)
	}

	md, err := s.renderer.Markdown(snap)
	if err != nil {
		s.renderFailed(w, "markdown", err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Cache-Control", CacheNoStore)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(md))
}

func (s *Server) renderFailed(w http.ResponseWriter, what string, err error) {
	s.logger.Error("Failed to render "+what, slog.String("error", err.Error()))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// statusFor picks the HTTP status for a page whose data could not be loaded.
func statusFor(err error) int {
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
