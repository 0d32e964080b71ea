package sse

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/id"
)

// ErrClosed is returned by Connect once the manager has shut down.
var ErrClosed = errors.New("sse: manager is shut down")

const (
	sessionBuffer = 16
	eventBuffer   = 64

	// DefaultHeartbeatInterval is how often idle sessions receive a heartbeat.
	DefaultHeartbeatInterval = 30 * time.Second
)

// Session is one connected viewer.
type Session struct {
	ConnectedAt time.Time
	Events      chan Event
	Done        chan struct{}
	ID          string
	RemoteAddr  string
}

// Manager tracks viewer sessions and delivers events to them.
type Manager struct {
	sessions          map[string]*Session
	events            chan Event
	logger            *slog.Logger
	wg                sync.WaitGroup
	heartbeatInterval time.Duration
	mu                sync.RWMutex

	// Guards events against a send after close.
	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewManager creates a new SSE Manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		sessions:          make(map[string]*Session),
		events:            make(chan Event, eventBuffer),
		logger:            logger,
		heartbeatInterval: DefaultHeartbeatInterval,
	}
}

// SetHeartbeatInterval changes the heartbeat period. Call before Start.
func (m *Manager) SetHeartbeatInterval(d time.Duration) {
	if d > 0 {
		m.heartbeatInterval = d
	}
}

// Start runs the broadcast loop until ctx is cancelled or Shutdown closes the
// event queue. Call once, in its own goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	m.logger.Info("SSE manager starting")

	heartbeat := time.NewTicker(m.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-m.events:
			if !ok {
				m.closeAllSessions()
				return
			}
			m.broadcast(event)

		case <-heartbeat.C:
			m.broadcast(NewHeartbeatEvent())

		case <-ctx.Done():
			m.logger.Info("SSE manager stopping")
			m.closeAllSessions()
			return
		}
	}
}

// Shutdown stops accepting events, lets the broadcast loop deliver what is
// queued, and closes every session.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdownMu.Lock()
	if m.shutdown {
		m.shutdownMu.Unlock()
		return nil
	}
	m.shutdown = true
	close(m.events)
	m.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("SSE drain timed out, some events may be lost")
	}

	m.closeAllSessions()
	m.logger.Info("SSE manager shutdown complete")
	return nil
}

// broadcast delivers an event to every session without blocking.
func (m *Manager) broadcast(event Event) {
	var delivered, dropped int

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sessions {
		select {
		case s.Events <- event:
			delivered++
		default:
			dropped++
			m.logger.Warn("dropped event for slow session",
				slog.String("session_id", s.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	if event.Type != EventHeartbeat {
		m.logger.Debug("event broadcast",
			slog.String("event_type", string(event.Type)),
			slog.Group("stats",
				slog.Int("delivered", delivered),
				slog.Int("dropped", dropped)))
	}
}

// Connect registers a new session.
func (m *Manager) Connect(remoteAddr string) (*Session, error) {
	m.shutdownMu.RLock()
	closed := m.shutdown
	m.shutdownMu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:          sessionID,
		RemoteAddr:  remoteAddr,
		Events:      make(chan Event, sessionBuffer),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	total := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("viewer session opened",
		slog.String("session_id", s.ID),
		slog.String("remote_addr", remoteAddr),
		slog.Int("total_sessions", total))
	return s, nil
}

// Disconnect removes a session and closes its channels. Unknown ids are ignored.
func (m *Manager) Disconnect(sessionID string) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, sessionID)
	total := len(m.sessions)
	close(s.Done)
	close(s.Events)
	m.mu.Unlock()

	m.logger.Info("viewer session closed",
		slog.String("session_id", sessionID),
		slog.Duration("duration", time.Since(s.ConnectedAt)),
		slog.Int("total_sessions", total))
}

// Send delivers an event to one session. It reports false when the session
// is gone or its buffer is full; a dropped board is replaced next cycle.
func (m *Manager) Send(sessionID string, event Event) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	select {
	case s.Events <- event:
		return true
	default:
		m.logger.Warn("dropped event for slow session",
			slog.String("session_id", sessionID),
			slog.String("event_type", string(event.Type)))
		return false
	}
}

// Emit queues an event for every session. Events emitted after Shutdown are dropped.
func (m *Manager) Emit(event Event) {
	m.shutdownMu.RLock()
	defer m.shutdownMu.RUnlock()

	if m.shutdown {
		return
	}

	select {
	case m.events <- event:
	default:
		m.logger.Error("SSE event queue full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}

// SessionCount returns the number of connected sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) closeAllSessions() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) == 0 {
		return
	}
	for _, s := range m.sessions {
		close(s.Done)
		close(s.Events)
	}
	m.sessions = make(map[string]*Session)

	m.logger.Info("all viewer sessions closed")
}
