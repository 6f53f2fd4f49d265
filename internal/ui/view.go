package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrMichou/tgcp/internal/notify"
	"github.com/MrMichou/tgcp/internal/state"
)

// --- VIEW ---
func (m Model) View() string {
	if !m.Ready {
		return "Initializing..."
	}

	header := m.renderHeader()

	var body string
	switch m.App.Mode {
	case state.ModeDescribe:
		body = m.renderDescribePane()
	case state.ModeHelp:
		body = m.renderHelp()
	case state.ModeProjectSelect, state.ModeZoneSelect:
		body = m.renderSelector()
	case state.ModeNotifications:
		body = m.renderNotifications()
	case state.ModeColumnConfig:
		body = m.renderColumnConfig()
	case state.ModeConfirm:
		body = m.renderConfirm()
	case state.ModeWarning:
		body = m.renderWarning()
	default:
		body = m.renderTable()
	}

	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// 1. HEADER
func (m Model) renderHeader() string {
	title := StyleTitle.Render("☁ tgcp")
	scope := StyleHeader.Render(fmt.Sprintf("%s | %s", m.App.Project, m.App.Zone))
	crumb := StyleDim.Render(strings.Join(m.App.Breadcrumb(), " > "))
	line1 := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", scope, "  ", crumb)

	line2 := ""
	if len(m.Counts) > 0 {
		keys := make([]string, 0, len(m.Counts))
		for k := range m.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			label := k
			if def, ok := m.Registry.Get(k); ok {
				label = def.DisplayName
			}
			parts = append(parts, fmt.Sprintf("%s: %d", label, m.Counts[k]))
		}
		line2 = StyleDim.Render(strings.Join(parts, "   "))
	}

	return lipgloss.JoinVertical(lipgloss.Left, line1, line2, "")
}

// 2. RESOURCE TABLE
func (m Model) renderTable() string {
	top := m.App.Top()
	def := m.topDef()
	if top == nil || def == nil {
		return StyleDim.Render("Loading resources...")
	}
	if top.LoadErr != "" {
		return StyleErr.Render("Error: "+top.LoadErr) + "\n" + StyleDim.Render("[R] retry  [p] switch project")
	}
	if top.Loading && len(top.Items) == 0 {
		return StyleDim.Render("Loading resources...")
	}

	var rows []string

	// Column headers, with the sort marker on the active column.
	var headCells []string
	for ci, col := range def.Columns {
		if top.HiddenColumns[ci] {
			continue
		}
		label := col.Header
		if top.SortColumn == ci {
			if top.SortDesc {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		headCells = append(headCells, StyleColHeader.Render(truncateCell(label, col.Width)))
	}
	rows = append(rows, "  "+strings.Join(headCells, " "))

	if len(top.View) == 0 {
		if top.Filter != "" {
			rows = append(rows, StyleDim.Render("  no matches for /"+top.Filter))
		} else {
			rows = append(rows, StyleDim.Render("  no resources"))
		}
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	lo, hi := -1, -1
	if top.InVisual() {
		lo, hi = top.VisualRange()
	}

	end := top.Scroll + m.ListHeight
	if end > len(top.View) {
		end = len(top.View)
	}
	for row := top.Scroll; row < end; row++ {
		item := top.Items[top.View[row]]
		marked := top.Selected[item.ID(def)]

		var cells []string
		var plain []string
		for ci, col := range def.Columns {
			if top.HiddenColumns[ci] {
				continue
			}
			val := item.Field(col.JSONPath)
			cell := truncateCell(val, col.Width)
			plain = append(plain, cell)
			if col.ColorMap != "" {
				rgb, ok := m.Registry.ColorFor(col.ColorMap, val)
				cells = append(cells, cellStyle(rgb, ok).Render(cell))
			} else {
				cells = append(cells, cell)
			}
		}

		gutter := "  "
		if marked {
			gutter = StyleMarked.Render("• ")
		}

		switch {
		case row == top.Cursor:
			rows = append(rows, StyleSelected.Render("❯ "+strings.Join(plain, " ")))
		case lo <= row && row <= hi:
			rows = append(rows, StyleVisual.Render("  "+strings.Join(plain, " ")))
		default:
			rows = append(rows, gutter+strings.Join(cells, " "))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// 3. DESCRIBE PANE
func (m Model) renderDescribePane() string {
	t1, t2 := StyleTabInactive, StyleTabActive
	if !m.DescribeYAML {
		t1, t2 = StyleTabActive, StyleTabInactive
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top,
		t1.Render("JSON"), t2.Render("YAML"),
		StyleDim.Render("  "+m.DescribeName))

	body := StyleBorder.Width(m.Viewport.Width).Height(m.Viewport.Height).Render(m.Viewport.View())
	return lipgloss.JoinVertical(lipgloss.Left, tabs, body)
}

// 4. DIALOGS
func (m Model) renderConfirm() string {
	p := m.App.Pending
	if p == nil {
		return ""
	}

	box := StyleConfirmBox
	if p.Destructive {
		box = StyleDestructive
	}

	msgWidth := m.Width - 12
	if msgWidth > 60 {
		msgWidth = 60
	}
	if msgWidth < MinWrapWidth {
		msgWidth = MinWrapWidth
	}
	msg := lipgloss.NewStyle().Width(msgWidth).Render(p.Message)

	yes, no := "  Yes  ", "  No  "
	if p.ChoiceYes {
		yes = StyleSelected.Render(yes)
		no = StyleDim.Render(no)
	} else {
		yes = StyleDim.Render(yes)
		no = StyleSelected.Render(no)
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, yes, "   ", no)

	parts := []string{msg}
	if len(p.Items) > 1 {
		parts = append(parts, StyleWarn.Render(fmt.Sprintf("%d resources selected", len(p.Items))))
	}
	parts = append(parts, "", buttons)
	content := lipgloss.JoinVertical(lipgloss.Center, parts...)

	return lipgloss.Place(m.Width, m.ListHeight+2, lipgloss.Center, lipgloss.Center, box.Render(content))
}

func (m Model) renderWarning() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		StyleWarn.Render(m.Warning),
		"",
		StyleDim.Render("press any key"))
	return lipgloss.Place(m.Width, m.ListHeight+2, lipgloss.Center, lipgloss.Center, StyleDestructive.Render(content))
}

// 5. SELECTORS
func (m Model) renderSelector() string {
	title := "Select Zone"
	if m.App.Mode == state.ModeProjectSelect {
		title = "Select Project"
	}

	var lines []string
	lines = append(lines, StyleTitle.Render(title))
	lines = append(lines, StyleCmdBar.Render("> "+m.SelectorQuery))
	lines = append(lines, "")

	if m.SelectorBusy {
		lines = append(lines, StyleDim.Render("Loading..."))
		return StyleBorder.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	names := map[string]string{}
	if m.App.Mode == state.ModeProjectSelect {
		for _, p := range m.Projects {
			names[p.ID] = p.Name
		}
	}

	entries := m.selectorEntries()
	if len(entries) == 0 {
		lines = append(lines, StyleDim.Render("no matches"))
	}

	start := 0
	if m.SelectorIndex >= MaxSelectorRows {
		start = m.SelectorIndex - MaxSelectorRows + 1
	}
	end := start + MaxSelectorRows
	if end > len(entries) {
		end = len(entries)
	}
	for i := start; i < end; i++ {
		entry := entries[i]
		label := entry
		if name := names[entry]; name != "" && name != entry {
			label = fmt.Sprintf("%-30s %s", entry, name)
		}
		if i == m.SelectorIndex {
			lines = append(lines, StyleSelected.Render("❯ "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}

	return StyleBorder.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// 6. NOTIFICATION CENTER
func (m Model) renderNotifications() string {
	all := m.Notifier.All()

	var lines []string
	lines = append(lines, StyleTitle.Render(fmt.Sprintf("Notifications (%d)", len(all))))
	lines = append(lines, "")

	if len(all) == 0 {
		lines = append(lines, StyleDim.Render("no operations yet"))
		return StyleBorder.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	start := 0
	if m.NotifyCursor >= MaxSelectorRows {
		start = m.NotifyCursor - MaxSelectorRows + 1
	}
	end := start + MaxSelectorRows
	if end > len(all) {
		end = len(all)
	}
	for i := start; i < end; i++ {
		n := all[i]
		text := fmt.Sprintf("%s %s  %s", n.Status.Glyph(), n.Message, formatAge(time.Since(n.UpdatedAt)))
		if i == m.NotifyCursor {
			lines = append(lines, StyleSelected.Render("❯ "+text))
			if n.Detail != "" {
				lines = append(lines, StyleErr.Render("    "+n.Detail))
			}
			if n.OpURL != "" {
				lines = append(lines, StyleDim.Render("    "+n.OpURL))
			}
		} else {
			glyph := statusStyle(n.Status).Render(n.Status.Glyph())
			age := StyleDim.Render(formatAge(time.Since(n.UpdatedAt)))
			lines = append(lines, fmt.Sprintf("  %s %s  %s", glyph, n.Message, age))
		}
	}

	return StyleBorder.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// 7. COLUMN CONFIG
func (m Model) renderColumnConfig() string {
	top := m.App.Top()
	cols := m.topCols()
	if top == nil || len(cols) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, StyleTitle.Render("Columns"))
	lines = append(lines, "")
	for ci, col := range cols {
		marker := "[x]"
		if top.HiddenColumns[ci] {
			marker = "[ ]"
		}
		line := fmt.Sprintf("%s %s", marker, col.Header)
		if ci == m.ColumnCursor {
			lines = append(lines, StyleSelected.Render("❯ "+line))
		} else {
			lines = append(lines, "  "+line)
		}
	}

	return StyleBorder.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// 8. HELP
func (m Model) renderHelp() string {
	bind := func(key, desc string) string {
		return fmt.Sprintf("  %s %s", StyleColHeader.Render(fmt.Sprintf("%-12s", key)), desc)
	}

	var lines []string
	lines = append(lines, StyleTitle.Render("Keyboard Reference"))
	lines = append(lines, "")
	lines = append(lines, StyleHeader.Render("Navigation"))
	lines = append(lines, bind("j/k ↑/↓", "move cursor"))
	lines = append(lines, bind("gg / G", "jump to top / bottom"))
	lines = append(lines, bind("ctrl+u/d", "page up / down"))
	lines = append(lines, bind("] / [", "next / previous page"))
	lines = append(lines, bind("esc", "clear visual, clear filter, or go back"))
	lines = append(lines, bind("1-9", "quick resource views"))
	lines = append(lines, "")
	lines = append(lines, StyleHeader.Render("Views"))
	lines = append(lines, bind("enter / d", "describe resource"))
	lines = append(lines, bind("/", "filter rows"))
	lines = append(lines, bind(":", "command prompt"))
	lines = append(lines, bind("F1-F6", "sort by column, F12 clears"))
	lines = append(lines, bind("o", "configure columns"))
	lines = append(lines, bind("n", "notifications"))
	lines = append(lines, "")
	lines = append(lines, StyleHeader.Render("Selection"))
	lines = append(lines, bind("space", "mark resource"))
	lines = append(lines, bind("v / V", "visual select / clear marks"))
	lines = append(lines, bind("delete", "delete marked resources"))
	lines = append(lines, "")
	lines = append(lines, StyleHeader.Render("Scope"))
	lines = append(lines, bind("p / z", "switch project / zone"))
	lines = append(lines, bind("R", "refresh"))
	lines = append(lines, bind("q", "quit"))

	if def := m.topDef(); def != nil && (len(def.Actions) > 0 || len(def.SubResources) > 0) {
		lines = append(lines, "")
		lines = append(lines, StyleHeader.Render(def.DisplayName))
		for _, sub := range def.SubResources {
			lines = append(lines, bind(sub.Shortcut, "view "+strings.ToLower(sub.DisplayName)))
		}
		for _, action := range def.Actions {
			if action.Shortcut == "" {
				continue
			}
			lines = append(lines, bind(action.Shortcut, strings.ToLower(action.DisplayName)))
		}
	}

	return StyleBorder.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// 9. FOOTER
func (m Model) renderFooter() string {
	status := m.renderStatusLine()

	var hints string
	switch m.App.Mode {
	case state.ModeFilter, state.ModeCommand:
		hints = StyleCmdBar.Width(m.Width).Render(m.TextInput.View())
	case state.ModeDescribe:
		hints = StyleDim.Render(" [y] JSON/YAML  [↑/↓] Scroll  [esc] Back")
	case state.ModeConfirm:
		hints = StyleDim.Render(" [h/l] Choose  [y] Yes  [n] No  [enter] Confirm  [esc] Cancel")
	case state.ModeProjectSelect, state.ModeZoneSelect:
		hints = StyleDim.Render(" type to filter  [↑/↓] Select  [enter] Apply  [esc] Cancel")
	case state.ModeNotifications:
		hints = StyleDim.Render(" [j/k] Move  [c] Clear finished  [esc] Back")
	case state.ModeColumnConfig:
		hints = StyleDim.Render(" [space] Toggle  [j/k] Move  [esc] Back")
	case state.ModeHelp:
		hints = StyleDim.Render(" [esc] Back")
	case state.ModeWarning:
		hints = StyleDim.Render(" press any key")
	default:
		hints = StyleDim.Render(" [:] Commands  [/] Filter  [enter] Describe  [space] Mark  [p] Project  [z] Zone  [?] Help  [q] Quit")
	}

	return lipgloss.JoinVertical(lipgloss.Left, status, hints)
}

func (m Model) renderStatusLine() string {
	parts := []string{StyleHeader.Render(strings.ToUpper(m.App.Mode.String()))}

	if top := m.App.Top(); top != nil {
		parts = append(parts, fmt.Sprintf("%d/%d", len(top.View), len(top.Items)))
		if top.Filter != "" {
			parts = append(parts, StyleHighlight.Render("/"+top.Filter))
		}
		if len(top.PageTokens) > 0 || top.CanNextPage() {
			parts = append(parts, StyleDim.Render(fmt.Sprintf("page %d", len(top.PageTokens)+1)))
		}
		if len(top.Selected) > 0 {
			parts = append(parts, StyleMarked.Render(fmt.Sprintf("%d marked", len(top.Selected))))
		}
		if top.Loading {
			parts = append(parts, StyleDim.Render("loading..."))
		}
	}

	if m.App.Mode == state.ModeCommand && len(m.Suggestions) > 0 {
		sugg := make([]string, 0, len(m.Suggestions))
		for i, s := range m.Suggestions {
			if i == m.SuggestionIndex {
				sugg = append(sugg, StyleHighlight.Render(s))
			} else {
				sugg = append(sugg, StyleDim.Render(s))
			}
		}
		parts = append(parts, strings.Join(sugg, " "))
	}

	if n := m.Notifier.InProgress(); n > 0 {
		parts = append(parts, StyleWarn.Render(fmt.Sprintf("↻ %d", n)))
	}
	if toast, ok := m.Notifier.ActiveToast(); ok {
		parts = append(parts, statusStyle(toast.Status).Render(toast.Status.Glyph()+" "+toast.Message))
	} else if m.StatusMsg != "" {
		parts = append(parts, StyleDim.Render(m.StatusMsg))
	}

	return " " + strings.Join(parts, "  ")
}

func statusStyle(s notify.Status) lipgloss.Style {
	switch s {
	case notify.StatusSuccess:
		return StyleOK
	case notify.StatusFailed:
		return StyleErr
	}
	return StyleWarn
}

// formatAge renders a short relative timestamp for the notification
// list.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}
