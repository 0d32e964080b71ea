package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/refresh"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/service"
)

const writeDeadline = 60 * time.Second

// Cycler runs one refresh cycle. *service.LeaderboardService implements it.
type Cycler interface {
	Cycle(ctx context.Context) (*service.Snapshot, error)
}

// BoardRenderer renders the fragments pushed to viewers. *view.Renderer implements it.
type BoardRenderer interface {
	Board(w io.Writer, snap *service.Snapshot) error
	Unavailable(w io.Writer) error
	Stamp(t time.Time) string
}

// Handler serves GET /api/v1/stream. Each connection is a viewer session
// that runs its own refresh loop until the viewer goes away.
type Handler struct {
	manager  *Manager
	cycler   Cycler
	renderer BoardRenderer
	interval time.Duration
	logger   *slog.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(manager *Manager, cycler Cycler, renderer BoardRenderer, interval time.Duration, logger *slog.Logger) *Handler {
	if interval <= 0 {
		interval = refresh.DefaultInterval
	}
	return &Handler{
		manager:  manager,
		cycler:   cycler,
		renderer: renderer,
		interval: interval,
		logger:   logger,
	}
}

// ServeHTTP handles the SSE connection.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)

	session, err := h.manager.Connect(r.RemoteAddr)
	if err != nil {
		h.logger.Warn("refusing viewer session", slog.String("error", err.Error()))
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.manager.Disconnect(session.ID)

	if err := rc.Flush(); err != nil {
		h.logger.Error("failed to flush headers", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	logger := h.logger.With(slog.String("session_id", session.ID))

	if err := h.sendEvent(w, rc, EventConnected, ConnectedData{
		SessionID: session.ID,
		Interval:  h.interval.String(),
	}); err != nil {
		logger.Info("viewer left before the stream started")
		return
	}

	// The loop's context ends with the request or the session, and the loop
	// must be gone before Disconnect closes the session's channels.
	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	loop := refresh.New(h.interval, h.cycleFunc(session.ID, logger), logger)
	wg.Go(func() {
		_ = loop.Run(ctx)
	})

	for {
		select {
		case event, ok := <-session.Events:
			if !ok {
				return
			}
			if err := h.sendEvent(w, rc, event.Type, event.Data); err != nil {
				logger.Info("viewer disconnected during send")
				return
			}

		case <-session.Done:
			logger.Info("session closed by manager")
			return

		case <-ctx.Done():
			logger.Info("viewer disconnected",
				slog.Uint64("cycles", loop.Cycles()),
				slog.Uint64("failed_cycles", loop.Failures()))
			return
		}
	}
}

// cycleFunc runs a cycle and pushes the rendered result to one session.
// A failed fetch pushes the unavailable notice in place of the board.
func (h *Handler) cycleFunc(sessionID string, logger *slog.Logger) refresh.CycleFunc {
	return func(ctx context.Context) error {
		snap, err := h.cycler.Cycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			var buf bytes.Buffer
			if rerr := h.renderer.Unavailable(&buf); rerr != nil {
				return fmt.Errorf("render unavailable notice: %w", rerr)
			}
			h.manager.Send(sessionID, NewUnavailableEvent(BoardData{
				HTML:        buf.String(),
				GeneratedAt: h.renderer.Stamp(time.Now()),
			}))
			return err
		}

		var buf bytes.Buffer
		if err := h.renderer.Board(&buf, snap); err != nil {
			return fmt.Errorf("render board: %w", err)
		}
		if h.manager.Send(sessionID, NewBoardEvent(BoardData{
			HTML:        buf.String(),
			GeneratedAt: h.renderer.Stamp(snap.GeneratedAt),
			CycleID:     snap.CycleID,
		})) {
			logger.Debug("board pushed", slog.String("cycle_id", snap.CycleID))
		}
		return nil
	}
}

// sendEvent writes one SSE frame and flushes it.
func (h *Handler) sendEvent(w http.ResponseWriter, rc *http.ResponseController, eventType EventType, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload); err != nil {
		return err
	}

	if err := rc.Flush(); err != nil {
		return err
	}

	// Not every ResponseWriter supports deadlines.
	if err := rc.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		h.logger.Debug("failed to set write deadline", slog.String("error", err.Error()))
	}

	return nil
}
