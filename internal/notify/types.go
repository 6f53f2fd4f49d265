// Package notify tracks mutating operations: live progress for the
// status bar and a capped history for the notification center.
package notify

import (
	"strings"
	"time"
)

// Status of a tracked operation.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSuccess
	StatusFailed
)

// Glyph returns the single-character marker shown next to a
// notification.
func (s Status) Glyph() string {
	switch s {
	case StatusPending:
		return "◯"
	case StatusRunning:
		return "↻"
	case StatusSuccess:
		return "✓"
	case StatusFailed:
		return "✗"
	}
	return "?"
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the operation has finished, either way.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Notification is one entry in the operation history.
type Notification struct {
	ID       string
	Status   Status
	Message  string
	Detail   string
	Resource string
	Target   string
	// OpURL is the long-running operation being polled, when the API
	// returned one.
	OpURL     string
	method    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// verbForms derives display verbs from an action method name such as
// "delete_instance" or "stop_instance".
func verbForms(method string) (progressive, past, infinitive string) {
	base, _, _ := strings.Cut(method, "_")
	switch base {
	case "delete":
		return "Deleting", "Deleted", "delete"
	case "start":
		return "Starting", "Started", "start"
	case "stop":
		return "Stopping", "Stopped", "stop"
	case "reset":
		return "Resetting", "Reset", "reset"
	}
	return "Processing", "Processed", "process"
}
