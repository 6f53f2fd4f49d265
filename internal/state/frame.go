package state

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MrMichou/tgcp/internal/gcp"
	"github.com/MrMichou/tgcp/internal/registry"
)

// FreshnessWindow is how long cached frame items stay good enough to
// show without a refetch when the user navigates back.
const FreshnessWindow = 30 * time.Second

// Frame is one level of the navigation stack: a resource view with its
// own filter, cursor, sort and pagination trail.
type Frame struct {
	ID          int
	ResourceKey string
	Title       string

	// FilterParams scope sub-resource listings to their parent, for
	// example bucket=<name> for objects.
	FilterParams map[string]string

	Items []gcp.Item
	// View is the display projection: indexes into Items after filter
	// and sort.
	View []int

	Filter     string
	Cursor     int
	Scroll     int
	SortColumn int
	SortDesc   bool

	// VisualAnchor is the view row where visual selection started, or
	// -1 when visual mode is off.
	VisualAnchor int

	Selected map[string]bool

	// PageTokens is the trail of tokens that led to the current page;
	// PageToken is the page on screen, NextToken the one after it.
	PageTokens []string
	PageToken  string
	NextToken  string

	FetchedAt time.Time
	Loading   bool
	LoadErr   string

	HiddenColumns map[int]bool
}

func newFrame(id int, resourceKey, title string, filterParams map[string]string) *Frame {
	return &Frame{
		ID:            id,
		ResourceKey:   resourceKey,
		Title:         title,
		FilterParams:  filterParams,
		SortColumn:    -1,
		VisualAnchor:  -1,
		Selected:      make(map[string]bool),
		HiddenColumns: make(map[int]bool),
		Loading:       true,
	}
}

// Reproject rebuilds the view: case-insensitive substring filter across
// the displayed columns, then the active sort. The cursor clamps to
// the new view.
func (f *Frame) Reproject(cols []registry.ColumnDef) {
	f.View = f.View[:0]
	q := strings.ToLower(f.Filter)
	for i, item := range f.Items {
		if q == "" || matchesFilter(item, cols, q) {
			f.View = append(f.View, i)
		}
	}
	f.sortView(cols)
	f.ClampCursor()
}

func matchesFilter(item gcp.Item, cols []registry.ColumnDef, q string) bool {
	for _, col := range cols {
		if strings.Contains(strings.ToLower(item.Field(col.JSONPath)), q) {
			return true
		}
	}
	return false
}

// SetFilter installs a new filter text and rebuilds the view. Changing
// the filter drops the selection; hidden rows cannot stay selected.
func (f *Frame) SetFilter(q string, cols []registry.ColumnDef) {
	if q == f.Filter {
		return
	}
	f.Filter = q
	f.ClearSelection()
	f.Cursor = 0
	f.Scroll = 0
	f.Reproject(cols)
}

// SetSort sorts by the given column, toggling direction when it is
// already active.
func (f *Frame) SetSort(col int, cols []registry.ColumnDef) {
	if f.SortColumn == col {
		f.SortDesc = !f.SortDesc
	} else {
		f.SortColumn = col
		f.SortDesc = false
	}
	f.Reproject(cols)
}

// ClearSort restores document order.
func (f *Frame) ClearSort(cols []registry.ColumnDef) {
	f.SortColumn = -1
	f.SortDesc = false
	f.Reproject(cols)
}

func (f *Frame) sortView(cols []registry.ColumnDef) {
	if f.SortColumn < 0 || f.SortColumn >= len(cols) {
		return
	}
	path := cols[f.SortColumn].JSONPath
	sort.SliceStable(f.View, func(a, b int) bool {
		va, vb := f.Items[f.View[a]].Field(path), f.Items[f.View[b]].Field(path)
		less := compareValues(va, vb) < 0
		if f.SortDesc {
			return !less
		}
		return less
	})
}

// compareValues orders numerically when both sides parse as numbers,
// lexically otherwise.
func compareValues(a, b string) int {
	na, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	nb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// CurrentItem returns the item under the cursor.
func (f *Frame) CurrentItem() (gcp.Item, bool) {
	if f.Cursor < 0 || f.Cursor >= len(f.View) {
		return gcp.Item{}, false
	}
	return f.Items[f.View[f.Cursor]], true
}

// ViewItems returns the projected items in display order.
func (f *Frame) ViewItems() []gcp.Item {
	out := make([]gcp.Item, 0, len(f.View))
	for _, i := range f.View {
		out = append(out, f.Items[i])
	}
	return out
}

// ClampCursor keeps cursor and scroll inside the view.
func (f *Frame) ClampCursor() {
	if f.Cursor >= len(f.View) {
		f.Cursor = len(f.View) - 1
	}
	if f.Cursor < 0 {
		f.Cursor = 0
	}
	if f.Scroll > f.Cursor {
		f.Scroll = f.Cursor
	}
	if f.Scroll < 0 {
		f.Scroll = 0
	}
}

// MoveCursor moves by delta rows, clamping at the ends.
func (f *Frame) MoveCursor(delta int) {
	f.Cursor += delta
	f.ClampCursor()
}

// JumpTop and JumpBottom implement gg and G.
func (f *Frame) JumpTop() {
	f.Cursor = 0
	f.Scroll = 0
}

func (f *Frame) JumpBottom() {
	f.Cursor = len(f.View) - 1
	f.ClampCursor()
}

// ToggleSelect flips selection for one item id.
func (f *Frame) ToggleSelect(id string) {
	if id == "" {
		return
	}
	if f.Selected[id] {
		delete(f.Selected, id)
	} else {
		f.Selected[id] = true
	}
}

// StartVisual anchors visual selection at the cursor.
func (f *Frame) StartVisual() {
	f.VisualAnchor = f.Cursor
}

// InVisual reports whether visual selection is active.
func (f *Frame) InVisual() bool {
	return f.VisualAnchor >= 0
}

// VisualRange returns the inclusive view-row range of the active
// visual selection.
func (f *Frame) VisualRange() (int, int) {
	lo, hi := f.VisualAnchor, f.Cursor
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// CommitVisual selects everything in the visual range and leaves
// visual mode.
func (f *Frame) CommitVisual(def *registry.ResourceDef) {
	if !f.InVisual() {
		return
	}
	lo, hi := f.VisualRange()
	for row := lo; row <= hi && row < len(f.View); row++ {
		if id := f.Items[f.View[row]].ID(def); id != "" {
			f.Selected[id] = true
		}
	}
	f.VisualAnchor = -1
}

// CancelVisual leaves visual mode without selecting.
func (f *Frame) CancelVisual() {
	f.VisualAnchor = -1
}

// ClearSelection drops all marks and visual state.
func (f *Frame) ClearSelection() {
	f.Selected = make(map[string]bool)
	f.VisualAnchor = -1
}

// SelectedItems returns marked items in display order. With nothing
// marked, the cursor item stands in.
func (f *Frame) SelectedItems(def *registry.ResourceDef) []gcp.Item {
	if len(f.Selected) == 0 {
		if item, ok := f.CurrentItem(); ok {
			return []gcp.Item{item}
		}
		return nil
	}
	var out []gcp.Item
	for _, i := range f.View {
		if f.Selected[f.Items[i].ID(def)] {
			out = append(out, f.Items[i])
		}
	}
	return out
}

// CanNextPage and CanPrevPage report pagination availability.
func (f *Frame) CanNextPage() bool { return f.NextToken != "" }
func (f *Frame) CanPrevPage() bool { return len(f.PageTokens) > 0 }

// AdvancePage moves the token trail forward; the caller refetches.
func (f *Frame) AdvancePage() {
	f.PageTokens = append(f.PageTokens, f.PageToken)
	f.PageToken = f.NextToken
	f.NextToken = ""
}

// RetreatPage moves the token trail back; the caller refetches.
func (f *Frame) RetreatPage() {
	if len(f.PageTokens) == 0 {
		return
	}
	f.PageToken = f.PageTokens[len(f.PageTokens)-1]
	f.PageTokens = f.PageTokens[:len(f.PageTokens)-1]
	f.NextToken = ""
}

// NeedsRefresh reports whether a frame revealed by back-navigation
// should refetch instead of showing cached items.
func (f *Frame) NeedsRefresh(now time.Time) bool {
	return f.FetchedAt.IsZero() || now.Sub(f.FetchedAt) > FreshnessWindow || len(f.Items) == 0
}

// ToggleColumn flips visibility of one column index.
func (f *Frame) ToggleColumn(col int) {
	if f.HiddenColumns[col] {
		delete(f.HiddenColumns, col)
	} else {
		f.HiddenColumns[col] = true
	}
}
