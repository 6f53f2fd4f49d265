package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrMichou/tgcp/internal/config"
	"github.com/MrMichou/tgcp/internal/gcp"
	"github.com/MrMichou/tgcp/internal/notify"
	"github.com/MrMichou/tgcp/internal/registry"
	"github.com/MrMichou/tgcp/internal/state"
)

// splashResources are fetched together at startup; the current
// resource always goes first and fills the opening view, the others
// contribute to the summary counts in the header.
var splashResources = []string{"compute-instances", "compute-disks", "storage-buckets"}

// quickSlots maps the digit keys 1-9 to resource views.
var quickSlots = []string{
	"compute-instances",
	"compute-disks",
	"compute-networks",
	"compute-firewalls",
	"storage-buckets",
	"gke-clusters",
	"compute-backend-services",
	"compute-forwarding-rules",
	"billing-accounts",
}

// Model is the main Bubble Tea model for the UI.
type Model struct {
	App      *state.App
	Registry *registry.Registry
	Client   gcp.Client
	Notifier *notify.Manager
	Config   *config.Config

	// Input handling: one text input shared by filter and command
	// modes, reset on every mode switch.
	TextInput textinput.Model

	// LSP-like autocomplete for command mode
	Suggestions     []string
	SuggestionIndex int

	// Viewport for the describe pane
	Viewport viewport.Model
	Ready    bool

	// Describe state
	DescribeName string
	DescribeDoc  []byte
	DescribeYAML bool

	// Selector state (projects and zones share it)
	Projects      []gcp.Project
	Zones         []string
	SelectorQuery string
	SelectorIndex int
	SelectorBusy  bool

	// Notification center cursor
	NotifyCursor int

	// Column config cursor
	ColumnCursor int

	// Multi-key state for gg
	PendingG   bool
	PendingGAt time.Time

	// Window dimensions
	Width      int
	Height     int
	ListHeight int

	// Transient status line text, cleared on the next keypress
	StatusMsg string

	// Warning holds the text of the modal warning box
	Warning string

	// Startup summary counts per resource key
	Counts map[string]int

	ctx context.Context
}

// NewModel creates the UI model. The app must already hold its root
// frame.
func NewModel(ctx context.Context, app *state.App, reg *registry.Registry, client gcp.Client, notifier *notify.Manager, cfg *config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "resource, alias, or command..."
	ti.CharLimit = 100
	ti.Width = 50

	return Model{
		App:        app,
		Registry:   reg,
		Client:     client,
		Notifier:   notifier,
		Config:     cfg,
		TextInput:  ti,
		ListHeight: DefaultListHeight,
		Counts:     map[string]int{},
		ctx:        ctx,
	}
}

// Init kicks off the startup fan-out for the root frame.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.splashCmd(), textinput.Blink)
}

// topDef resolves the resource definition of the current frame.
func (m Model) topDef() *registry.ResourceDef {
	top := m.App.Top()
	if top == nil {
		return nil
	}
	def, ok := m.Registry.Get(top.ResourceKey)
	if !ok {
		return nil
	}
	return def
}

// topCols returns the visible columns of the current frame.
func (m Model) topCols() []registry.ColumnDef {
	def := m.topDef()
	if def == nil {
		return nil
	}
	return def.Columns
}
