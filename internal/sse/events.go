// Package sse streams live leaderboard updates to viewers over Server-Sent Events.
//
// Every connected viewer is a session with its own refresh loop. Each cycle's
// result is rendered and pushed to that session only; the manager broadcasts
// the few events every session shares (heartbeats, champions file notices).
package sse

import "time"

// EventType names an SSE event. It is written as the "event:" field.
type EventType string

const (
	// EventConnected is sent once when a session is established.
	EventConnected EventType = "connected"
	// EventLeaderboardUpdated carries a freshly rendered board fragment.
	EventLeaderboardUpdated EventType = "leaderboard.updated"
	// EventLeaderboardUnavailable replaces the board when a cycle fails to fetch.
	EventLeaderboardUnavailable EventType = "leaderboard.unavailable"
	// EventNotice is an operator-facing notice shared by all sessions.
	EventNotice EventType = "notice"
	// EventHeartbeat keeps idle connections open through proxies.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one SSE frame. Data is marshalled as the frame's "data:" payload.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// BoardData is the payload of leaderboard.updated and leaderboard.unavailable.
// HTML replaces the page's board element; GeneratedAt replaces its stamp.
type BoardData struct {
	HTML        string `json:"html"`
	GeneratedAt string `json:"generatedAt"`
	CycleID     string `json:"cycleId,omitempty"`
}

// NoticeData is the payload of a notice event.
type NoticeData struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ConnectedData is the payload of the connected event.
type ConnectedData struct {
	SessionID string `json:"sessionId"`
	Interval  string `json:"interval"`
}

// HeartbeatData is the payload of a heartbeat.
type HeartbeatData struct {
	ServerTime time.Time `json:"serverTime"`
}

// NewBoardEvent wraps a rendered board.
func NewBoardEvent(data BoardData) Event {
	return Event{Type: EventLeaderboardUpdated, Data: data, Timestamp: time.Now()}
}

// NewUnavailableEvent wraps the rendered source-unavailable notice.
func NewUnavailableEvent(data BoardData) Event {
	return Event{Type: EventLeaderboardUnavailable, Data: data, Timestamp: time.Now()}
}

// NewNoticeEvent creates a notice for every session.
func NewNoticeEvent(kind, message string) Event {
	return Event{Type: EventNotice, Data: NoticeData{Kind: kind, Message: message}, Timestamp: time.Now()}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{Type: EventHeartbeat, Data: HeartbeatData{ServerTime: now}, Timestamp: now}
}
