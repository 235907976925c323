package ui

import "github.com/bamsammich/dirdiff/internal/event"

// Event is the progress notification consumed by presenters.
type Event = event.Event

// Re-export event types for convenience.
const (
	ScanStarted     = event.ScanStarted
	ScanComplete    = event.ScanComplete
	CompareComplete = event.CompareComplete
	SyncStarted     = event.SyncStarted
	SyncComplete    = event.SyncComplete
	FileCompleted   = event.FileCompleted
	FileFailed      = event.FileFailed
	FileSkipped     = event.FileSkipped
	DirCreated      = event.DirCreated
	DeleteFile      = event.DeleteFile
	DeleteFailed    = event.DeleteFailed
)
