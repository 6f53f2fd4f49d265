package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// maxHistory caps the notification center; oldest finished entries
	// are evicted first.
	maxHistory = 50
	// ToastDuration is how long a finished operation stays in the
	// status bar.
	ToastDuration = 5 * time.Second
)

// Manager provides thread-safe access to operation notifications.
// Background trackers write completions while the render path reads.
type Manager struct {
	mu      sync.RWMutex
	history []Notification // newest first
	now     func() time.Time
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// Start records a new running operation and returns its id (thread-safe write).
func (m *Manager) Start(method, resource, target string) string {
	progressive, _, _ := verbForms(method)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := Notification{
		ID:        uuid.NewString(),
		Status:    StatusRunning,
		Message:   progressive + " " + target,
		Resource:  resource,
		Target:    target,
		method:    method,
		CreatedAt: m.now(),
		UpdatedAt: m.now(),
	}
	m.history = append([]Notification{n}, m.history...)
	m.trimLocked()
	return n.ID
}

// Complete marks an operation successful (thread-safe write).
func (m *Manager) Complete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.history {
		if m.history[i].ID != id {
			continue
		}
		_, past, _ := verbForms(m.history[i].method)
		m.history[i].Status = StatusSuccess
		m.history[i].Message = past + " " + m.history[i].Target
		m.history[i].UpdatedAt = m.now()
		return
	}
}

// Fail marks an operation failed with a cause (thread-safe write).
func (m *Manager) Fail(id, detail string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.history {
		if m.history[i].ID != id {
			continue
		}
		_, _, infinitive := verbForms(m.history[i].method)
		m.history[i].Status = StatusFailed
		m.history[i].Message = "Failed to " + infinitive + " " + m.history[i].Target
		m.history[i].Detail = detail
		m.history[i].UpdatedAt = m.now()
		return
	}
}

// SetOperationURL attaches the long-running operation URL once the API
// returns it (thread-safe write).
func (m *Manager) SetOperationURL(id, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.history {
		if m.history[i].ID != id {
			continue
		}
		m.history[i].OpURL = url
		return
	}
}

// Get returns one notification by id (thread-safe read).
func (m *Manager) Get(id string) (Notification, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.history {
		if n.ID == id {
			return n, true
		}
	}
	return Notification{}, false
}

// All returns a copy of the history, newest first (thread-safe read).
func (m *Manager) All() []Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Notification, len(m.history))
	copy(out, m.history)
	return out
}

// InProgress returns how many operations are still running (thread-safe read).
func (m *Manager) InProgress() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, n := range m.history {
		if !n.Status.Terminal() {
			count++
		}
	}
	return count
}

// ActiveToast returns the notification the status bar should show:
// the newest running operation, or the newest finished one still
// inside its toast window (thread-safe read).
func (m *Manager) ActiveToast() (Notification, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.history {
		if !n.Status.Terminal() {
			return n, true
		}
		if m.now().Sub(n.UpdatedAt) < ToastDuration {
			return n, true
		}
	}
	return Notification{}, false
}

// Clear removes all finished notifications (thread-safe write).
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.history[:0]
	for _, n := range m.history {
		if !n.Status.Terminal() {
			kept = append(kept, n)
		}
	}
	m.history = kept
}

// trimLocked evicts beyond maxHistory, oldest finished entries first.
// Callers hold the write lock.
func (m *Manager) trimLocked() {
	for i := len(m.history) - 1; i >= 0 && len(m.history) > maxHistory; i-- {
		if m.history[i].Status.Terminal() {
			m.history = append(m.history[:i], m.history[i+1:]...)
		}
	}
	if len(m.history) > maxHistory {
		m.history = m.history[:maxHistory]
	}
}
