package watcher

import "time"

// EventType represents the type of file system event
type EventType int

const (
	// EventWritten is emitted when a watched file is created or rewritten, after settling
	EventWritten EventType = iota
	// EventRemoved is emitted when a watched file is deleted or renamed away
	EventRemoved
)

// String returns the string representation of the event type
func (t EventType) String() string {
	switch t {
	case EventWritten:
		return "written"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a change to a watched file
type Event struct {
	// Type is the kind of event
	Type EventType

	// Path is the watched file's path
	Path string

	// Size is the file size in bytes (zero for removals)
	Size int64

	// ModTime is the file's last modification time (zero for removals)
	ModTime time.Time
}
