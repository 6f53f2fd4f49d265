package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartCompleteLifecycle(t *testing.T) {
	m := NewManager()
	id := m.Start("delete_instance", "compute-instances", "web-1")
	require.NotEmpty(t, id)

	n, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusRunning, n.Status)
	assert.Equal(t, "Deleting web-1", n.Message)
	assert.Equal(t, "compute-instances", n.Resource)

	m.Complete(id)
	n, _ = m.Get(id)
	assert.Equal(t, StatusSuccess, n.Status)
	assert.Equal(t, "Deleted web-1", n.Message)
}

func TestFailRecordsCause(t *testing.T) {
	m := NewManager()
	id := m.Start("stop_instance", "compute-instances", "db-1")
	m.Fail(id, "quota exceeded")

	n, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, n.Status)
	assert.Equal(t, "Failed to stop db-1", n.Message)
	assert.Equal(t, "quota exceeded", n.Detail)
}

func TestSetOperationURL(t *testing.T) {
	m := NewManager()
	id := m.Start("delete_instance", "compute-instances", "web-1")

	m.SetOperationURL(id, "https://compute.googleapis.com/compute/v1/projects/p/zones/z/operations/op-1")
	n, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, "https://compute.googleapis.com/compute/v1/projects/p/zones/z/operations/op-1", n.OpURL)

	m.SetOperationURL("no-such-id", "https://example.com")
	all := m.All()
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)
}

func TestHistoryNewestFirst(t *testing.T) {
	m := NewManager()
	m.Start("start_instance", "compute-instances", "first")
	m.Start("start_instance", "compute-instances", "second")

	all := m.All()
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Target)
	assert.Equal(t, "first", all[1].Target)
}

func TestInProgressCount(t *testing.T) {
	m := NewManager()
	a := m.Start("delete_disk", "compute-disks", "d1")
	m.Start("delete_disk", "compute-disks", "d2")
	assert.Equal(t, 2, m.InProgress())

	m.Complete(a)
	assert.Equal(t, 1, m.InProgress())
}

func TestHistoryCapEvictsFinishedFirst(t *testing.T) {
	m := NewManager()
	for i := 0; i < maxHistory-1; i++ {
		id := m.Start("delete_object", "storage-objects", fmt.Sprintf("obj-%d", i))
		m.Complete(id)
	}
	running := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		running = append(running, m.Start("delete_instance", "compute-instances", fmt.Sprintf("vm-%d", i)))
	}

	all := m.All()
	assert.Len(t, all, maxHistory)
	for _, id := range running {
		_, ok := m.Get(id)
		assert.True(t, ok, "running operations must survive eviction")
	}
}

func TestActiveToastWindow(t *testing.T) {
	m := NewManager()
	current := time.Now()
	m.now = func() time.Time { return current }

	id := m.Start("reset_instance", "compute-instances", "web-1")
	n, ok := m.ActiveToast()
	require.True(t, ok)
	assert.Equal(t, StatusRunning, n.Status)

	current = current.Add(time.Hour)
	m.Complete(id)
	_, ok = m.ActiveToast()
	assert.True(t, ok, "fresh completion should still toast")

	current = current.Add(ToastDuration + time.Second)
	_, ok = m.ActiveToast()
	assert.False(t, ok, "expired completion should not toast")
}

func TestClearKeepsRunning(t *testing.T) {
	m := NewManager()
	done := m.Start("delete_instance", "compute-instances", "old")
	m.Complete(done)
	m.Start("delete_instance", "compute-instances", "busy")

	m.Clear()
	all := m.All()
	require.Len(t, all, 1)
	assert.Equal(t, "busy", all[0].Target)
}

func TestVerbForms(t *testing.T) {
	for _, tc := range []struct {
		method      string
		progressive string
		past        string
	}{
		{"delete_instance", "Deleting", "Deleted"},
		{"start_instance", "Starting", "Started"},
		{"stop_instance", "Stopping", "Stopped"},
		{"reset_instance", "Resetting", "Reset"},
		{"migrate_instance", "Processing", "Processed"},
	} {
		progressive, past, _ := verbForms(tc.method)
		assert.Equal(t, tc.progressive, progressive, tc.method)
		assert.Equal(t, tc.past, past, tc.method)
	}
}

func TestStatusGlyphs(t *testing.T) {
	assert.Equal(t, "↻", StatusRunning.Glyph())
	assert.Equal(t, "✓", StatusSuccess.Glyph())
	assert.Equal(t, "✗", StatusFailed.Glyph())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusRunning.Terminal())
}
