package state

import (
	"time"

	"github.com/MrMichou/tgcp/internal/gcp"
	"github.com/MrMichou/tgcp/internal/registry"
)

// PendingAction is a mutation waiting in the confirm dialog.
type PendingAction struct {
	Action      registry.ActionDef
	ResourceKey string
	Items       []gcp.Item
	Message     string
	Destructive bool
	// ChoiceYes is the highlighted dialog button, seeded from the
	// action's default.
	ChoiceYes bool
}

// App is the aggregate the update loop owns: input mode, scope, the
// navigation stack and any pending confirmation.
type App struct {
	Mode     Mode
	Project  string
	Zone     string
	ReadOnly bool

	stack  []*Frame
	nextID int

	Pending *PendingAction

	// InFlight guards the current frame against overlapping list
	// fetches. Frame identity handles results that arrive after
	// navigation.
	InFlight bool
}

// NewApp creates the state machine in normal mode with an empty stack.
func NewApp(project, zone string) *App {
	return &App{Mode: ModeNormal, Project: project, Zone: zone}
}

// Scope returns the fetch scope for the current project and zone.
func (a *App) Scope() gcp.Scope {
	return gcp.Scope{Project: a.Project, Zone: a.Zone}
}

// Push adds a new frame and makes it current.
func (a *App) Push(resourceKey, title string, filterParams map[string]string) *Frame {
	a.nextID++
	f := newFrame(a.nextID, resourceKey, title, filterParams)
	a.stack = append(a.stack, f)
	a.InFlight = false
	return f
}

// Pop removes the current frame and reveals the one below. The root
// frame never pops.
func (a *App) Pop() bool {
	if len(a.stack) <= 1 {
		return false
	}
	a.stack = a.stack[:len(a.stack)-1]
	a.InFlight = false
	return true
}

// SetRoot replaces the whole stack with a fresh frame, the way command
// navigation jumps between top-level resources.
func (a *App) SetRoot(resourceKey, title string) *Frame {
	a.stack = a.stack[:0]
	a.InFlight = false
	return a.Push(resourceKey, title, nil)
}

// Top returns the current frame, or nil before the first push.
func (a *App) Top() *Frame {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

// Depth returns the navigation stack depth.
func (a *App) Depth() int {
	return len(a.stack)
}

// Breadcrumb returns the stack titles from root to current.
func (a *App) Breadcrumb() []string {
	out := make([]string, 0, len(a.stack))
	for _, f := range a.stack {
		out = append(out, f.Title)
	}
	return out
}

// BeginFetch marks a list fetch for the current frame. A second fetch
// while one is outstanding is refused.
func (a *App) BeginFetch() error {
	if a.InFlight {
		return gcp.ErrFetchInFlight
	}
	if top := a.Top(); top != nil {
		top.Loading = true
	}
	a.InFlight = true
	return nil
}

// ApplyResult installs a fetch outcome if it still belongs to the
// current frame; stale results are dropped. A failed fetch keeps the
// previous items and surfaces the error.
func (a *App) ApplyResult(frameID int, items []gcp.Item, nextToken string, fetchErr error, cols []registry.ColumnDef) bool {
	top := a.Top()
	if top == nil || top.ID != frameID {
		return false
	}
	a.InFlight = false
	top.Loading = false
	top.FetchedAt = time.Now()
	if fetchErr != nil {
		top.LoadErr = fetchErr.Error()
		return true
	}
	top.LoadErr = ""
	top.Items = items
	top.NextToken = nextToken
	top.ClearSelection()
	top.Reproject(cols)
	return true
}

// RequestConfirm parks a mutation and switches to the confirm dialog.
func (a *App) RequestConfirm(p *PendingAction) {
	a.Pending = p
	a.Mode = ModeConfirm
}

// ResolveConfirm leaves confirm mode. It returns the pending action
// when accepted and nil when declined; either way nothing stays
// pending.
func (a *App) ResolveConfirm(accepted bool) *PendingAction {
	p := a.Pending
	a.Pending = nil
	a.Mode = ModeNormal
	if !accepted {
		return nil
	}
	return p
}

// SetScope switches project or zone. Every cached frame is invalidated
// because items from the old scope must not leak into the new one.
func (a *App) SetScope(project, zone string) {
	changed := a.Project != project || a.Zone != zone
	a.Project = project
	a.Zone = zone
	if !changed {
		return
	}
	for _, f := range a.stack {
		f.Items = nil
		f.View = nil
		f.NextToken = ""
		f.PageTokens = nil
		f.PageToken = ""
		f.FetchedAt = time.Time{}
		f.ClearSelection()
	}
}
