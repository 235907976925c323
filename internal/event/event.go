package event

import (
	"context"
	"time"
)

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	ScanComplete
	CompareComplete
	SyncStarted
	SyncComplete
	FileCompleted
	FileFailed
	FileSkipped
	DirCreated
	DeleteFile
	DeleteFailed
)

var typeNames = [...]string{
	ScanStarted:     "ScanStarted",
	ScanComplete:    "ScanComplete",
	CompareComplete: "CompareComplete",
	SyncStarted:     "SyncStarted",
	SyncComplete:    "SyncComplete",
	FileCompleted:   "FileCompleted",
	FileFailed:      "FileFailed",
	FileSkipped:     "FileSkipped",
	DirCreated:      "DirCreated",
	DeleteFile:      "DeleteFile",
	DeleteFailed:    "DeleteFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single progress notification from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // absolute path of the entry
	Name      string // display name of the entry
	Size      int64  // bytes completed by this event
	Total     int64  // total items (SyncStarted, ScanComplete)
	TotalSize int64  // total bytes (SyncStarted, ScanComplete)
	Error     error
}

// Send stamps e and delivers it without blocking. A nil channel or a full
// buffer drops the event.
func Send(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}

// Emit stamps e and delivers it, waiting for the receiver until ctx is
// done. A nil channel drops the event.
func Emit(ctx context.Context, ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	case <-ctx.Done():
	}
}
