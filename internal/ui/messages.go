package ui

import "github.com/MrMichou/tgcp/internal/gcp"

// Bubble Tea messages

// DataMsg carries one page of list results for a frame. The frame id
// lets stale results be dropped after navigation.
type DataMsg struct {
	FrameID   int
	Items     []gcp.Item
	NextToken string
	Err       error
}

// SplashMsg carries the startup multi-type fetch: the first result
// populates the root frame, the rest feed the summary counts.
type SplashMsg struct {
	FrameID int
	Results []gcp.TypeResult
}

// DetailsMsg carries a full resource document for the describe view.
type DetailsMsg struct {
	FrameID int
	Name    string
	Doc     []byte
	Err     error
}

// ProjectsMsg fills the project selector.
type ProjectsMsg struct {
	Projects []gcp.Project
	Err      error
}

// ZonesMsg fills the zone selector. Fallback marks the static list
// used when the zones API was unreachable.
type ZonesMsg struct {
	Zones    []string
	Fallback bool
	Err      error
}

// ActionDoneMsg reports a mutation that ran to a terminal state,
// including its tracked operation when the API returned one.
type ActionDoneMsg struct {
	NotificationID string
	ResourceKey    string
	Err            error
}

// ExecFinishedMsg reports the end of a terminal handoff such as SSH.
type ExecFinishedMsg struct {
	Err error
}

// ToastExpiredMsg triggers a redraw once the status-bar toast window
// has passed.
type ToastExpiredMsg struct{}
