package ui

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/MrMichou/tgcp/internal/gcp"
	"github.com/MrMichou/tgcp/internal/registry"
	"github.com/MrMichou/tgcp/internal/state"
)

// --- UPDATE ---
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

		m.ListHeight = msg.Height - HeaderHeight - FooterHeight - UILayoutPadding - 1
		if m.ListHeight < 1 {
			m.ListHeight = 1
		}

		vpWidth := msg.Width - 4
		vpHeight := msg.Height - HeaderHeight - FooterHeight - UILayoutPadding
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.Ready {
			m.Viewport = viewport.New(vpWidth, vpHeight)
			m.Viewport.YPosition = HeaderHeight + 1
			m.Ready = true
		} else {
			m.Viewport.Width = vpWidth
			m.Viewport.Height = vpHeight
		}
		if m.App.Mode == state.ModeDescribe {
			m.renderDescribe()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.App.Mode == state.ModeDescribe {
			var cmd tea.Cmd
			m.Viewport, cmd = m.Viewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case DataMsg:
		if m.App.ApplyResult(msg.FrameID, msg.Items, msg.NextToken, msg.Err, m.topCols()) {
			if top := m.App.Top(); top != nil {
				ensureVisible(top, m.ListHeight)
			}
		}
		return m, nil

	case SplashMsg:
		top := m.App.Top()
		for _, r := range msg.Results {
			if r.Err == nil {
				m.Counts[r.Key] = len(r.Items)
			}
			if top != nil && top.ID == msg.FrameID && r.Key == top.ResourceKey {
				m.App.ApplyResult(msg.FrameID, r.Items, "", r.Err, m.topCols())
			}
		}
		return m, nil

	case DetailsMsg:
		if m.App.Mode != state.ModeDescribe {
			return m, nil
		}
		if top := m.App.Top(); top == nil || top.ID != msg.FrameID {
			return m, nil
		}
		if msg.Err != nil {
			m.Viewport.SetContent(StyleErr.Render("Error: " + msg.Err.Error()))
			return m, nil
		}
		m.DescribeDoc = msg.Doc
		m.renderDescribe()
		return m, nil

	case ProjectsMsg:
		m.SelectorBusy = false
		if msg.Err != nil {
			m.StatusMsg = msg.Err.Error()
			return m, nil
		}
		m.Projects = msg.Projects
		m.SelectorIndex = 0
		return m, nil

	case ZonesMsg:
		m.SelectorBusy = false
		if msg.Fallback {
			m.StatusMsg = "zones API unreachable, showing known zones"
		}
		m.Zones = append([]string{gcp.ZoneAll}, msg.Zones...)
		m.SelectorIndex = 0
		return m, nil

	case ActionDoneMsg:
		cmds := []tea.Cmd{toastTickCmd()}
		if top := m.App.Top(); top != nil && top.ResourceKey == msg.ResourceKey {
			if err := m.App.BeginFetch(); err == nil {
				if def := m.topDef(); def != nil {
					cmds = append(cmds, m.fetchPageCmd(top, def))
				}
			}
		}
		return m, tea.Batch(cmds...)

	case ExecFinishedMsg:
		cmd := m.refreshTop()
		if msg.Err != nil {
			m.StatusMsg = msg.Err.Error()
		}
		return m, cmd

	case ToastExpiredMsg:
		// Redraw only; the toast window is checked at render time.
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.App.Mode {
	case state.ModeFilter:
		return m.updateFilter(msg)
	case state.ModeCommand:
		return m.updateCommand(msg)
	case state.ModeConfirm:
		return m.updateConfirm(msg)
	case state.ModeDescribe:
		return m.updateDescribe(msg)
	case state.ModeHelp:
		return m.updateHelp(msg)
	case state.ModeProjectSelect, state.ModeZoneSelect:
		return m.updateSelector(msg)
	case state.ModeNotifications:
		return m.updateNotifications(msg)
	case state.ModeColumnConfig:
		return m.updateColumnConfig(msg)
	case state.ModeWarning:
		m.Warning = ""
		m.App.Mode = state.ModeNormal
		return m, nil
	}
	return m.updateNormal(msg)
}

// --- NORMAL MODE ---
func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	top := m.App.Top()
	def := m.topDef()
	if top == nil || def == nil {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	s := msg.String()
	m.StatusMsg = ""
	if s != "g" {
		m.PendingG = false
	}

	switch s {
	case "q":
		return m, tea.Quit

	case "up", "k":
		top.MoveCursor(-1)
		ensureVisible(top, m.ListHeight)

	case "down", "j":
		top.MoveCursor(1)
		ensureVisible(top, m.ListHeight)

	case "pgup", "ctrl+u":
		top.MoveCursor(-m.ListHeight)
		ensureVisible(top, m.ListHeight)

	case "pgdown", "ctrl+d":
		top.MoveCursor(m.ListHeight)
		ensureVisible(top, m.ListHeight)

	case "g":
		if m.PendingG && time.Since(m.PendingGAt) <= DoubleKeyWindow {
			m.PendingG = false
			top.JumpTop()
			ensureVisible(top, m.ListHeight)
		} else {
			m.PendingG = true
			m.PendingGAt = time.Now()
		}

	case "G":
		top.JumpBottom()
		ensureVisible(top, m.ListHeight)

	case " ":
		if item, ok := top.CurrentItem(); ok {
			top.ToggleSelect(item.ID(def))
			top.MoveCursor(1)
			ensureVisible(top, m.ListHeight)
		}

	case "v":
		if top.InVisual() {
			top.CommitVisual(def)
		} else {
			top.StartVisual()
		}

	case "V":
		top.ClearSelection()

	case "/":
		m.App.Mode = state.ModeFilter
		m.TextInput.Placeholder = "filter..."
		m.TextInput.SetValue(top.Filter)
		m.TextInput.CursorEnd()
		m.TextInput.Focus()
		return m, textinput.Blink

	case ":":
		m.App.Mode = state.ModeCommand
		m.TextInput.Placeholder = "resource, alias, or command..."
		m.TextInput.Reset()
		m.TextInput.Focus()
		m.Suggestions = nil
		m.SuggestionIndex = 0
		return m, textinput.Blink

	case "?":
		m.App.Mode = state.ModeHelp

	case "enter", "d":
		return m.openDescribe()

	case "esc":
		switch {
		case top.InVisual():
			top.CancelVisual()
		case top.Filter != "":
			top.SetFilter("", def.Columns)
		default:
			if m.App.Pop() {
				if revealed := m.App.Top(); revealed != nil && revealed.NeedsRefresh(time.Now()) {
					cmd := m.refreshTop()
					return m, cmd
				}
			}
		}

	case "R", "ctrl+r":
		cmd := m.refreshTop()
		return m, cmd

	case "]":
		if top.CanNextPage() {
			if err := m.App.BeginFetch(); err != nil {
				m.StatusMsg = "fetch already in flight"
				return m, nil
			}
			top.AdvancePage()
			return m, m.fetchPageCmd(top, def)
		}

	case "[":
		if top.CanPrevPage() {
			if err := m.App.BeginFetch(); err != nil {
				m.StatusMsg = "fetch already in flight"
				return m, nil
			}
			top.RetreatPage()
			return m, m.fetchPageCmd(top, def)
		}

	case "p":
		m.App.Mode = state.ModeProjectSelect
		m.Projects = nil
		m.SelectorQuery = ""
		m.SelectorIndex = 0
		m.SelectorBusy = true
		return m, m.projectsCmd()

	case "z":
		m.App.Mode = state.ModeZoneSelect
		m.Zones = nil
		m.SelectorQuery = ""
		m.SelectorIndex = 0
		m.SelectorBusy = true
		return m, m.zonesCmd()

	case "n":
		m.App.Mode = state.ModeNotifications
		m.NotifyCursor = 0

	case "o":
		m.App.Mode = state.ModeColumnConfig
		m.ColumnCursor = 0

	case "f1", "f2", "f3", "f4", "f5", "f6":
		col := int(s[1] - '1')
		if col < len(def.Columns) {
			top.SetSort(col, def.Columns)
		}

	case "f12":
		top.ClearSort(def.Columns)

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(s[0] - '1')
		if idx < len(quickSlots) {
			cmd := m.jumpTo(quickSlots[idx])
			return m, cmd
		}

	case "delete":
		if action, ok := def.DeleteAction(); ok {
			return m.runAction(def, action)
		}

	default:
		if sub, ok := def.SubResourceByShortcut(s); ok {
			return m.pushSubResource(sub)
		}
		if action, ok := def.ActionByShortcut(s); ok {
			return m.runAction(def, action)
		}
	}
	return m, nil
}

// --- FILTER MODE ---
func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	top := m.App.Top()
	def := m.topDef()
	switch msg.String() {
	case "esc":
		if top != nil && def != nil {
			top.SetFilter("", def.Columns)
		}
		m.App.Mode = state.ModeNormal
		m.TextInput.Blur()
		m.TextInput.Reset()
		return m, nil
	case "enter":
		m.App.Mode = state.ModeNormal
		m.TextInput.Blur()
		m.TextInput.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.TextInput, cmd = m.TextInput.Update(msg)
	if top != nil && def != nil {
		top.SetFilter(m.TextInput.Value(), def.Columns)
	}
	return m, cmd
}

// --- COMMAND MODE ---
func (m Model) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.App.Mode = state.ModeNormal
		m.TextInput.Blur()
		m.TextInput.Reset()
		m.Suggestions = nil
		return m, nil

	case "enter":
		return m.executeCommand(m.TextInput.Value())

	case "tab":
		if len(m.Suggestions) > 0 {
			m.TextInput.SetValue(m.Suggestions[m.SuggestionIndex])
			m.TextInput.CursorEnd()
			m.refreshSuggestions()
		}
		return m, nil

	case "up", "ctrl+p":
		if len(m.Suggestions) > 0 {
			m.SuggestionIndex = (m.SuggestionIndex + len(m.Suggestions) - 1) % len(m.Suggestions)
		}
		return m, nil

	case "down", "ctrl+n":
		if len(m.Suggestions) > 0 {
			m.SuggestionIndex = (m.SuggestionIndex + 1) % len(m.Suggestions)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.TextInput, cmd = m.TextInput.Update(msg)
	m.refreshSuggestions()
	return m, cmd
}

func (m Model) executeCommand(raw string) (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(raw)
	m.App.Mode = state.ModeNormal
	m.TextInput.Blur()
	m.TextInput.Reset()
	m.Suggestions = nil
	if text == "" {
		return m, nil
	}

	fields := strings.Fields(text)
	switch fields[0] {
	case "q", "quit", "exit":
		return m, tea.Quit

	case "help":
		m.App.Mode = state.ModeHelp
		return m, nil

	case "alias":
		if len(fields) != 3 {
			m.StatusMsg = "usage: alias <name> <resource>"
			return m, nil
		}
		if _, ok := m.Registry.Get(fields[2]); !ok {
			m.StatusMsg = fmt.Sprintf("unknown resource %q", fields[2])
			return m, nil
		}
		m.Config.SetAlias(fields[1], fields[2])
		if err := m.Config.Save(); err != nil {
			slog.Warn("saving config", "error", err)
		}
		m.StatusMsg = fmt.Sprintf("alias %s -> %s", fields[1], fields[2])
		return m, nil
	}

	key := text
	if target, ok := m.Config.Alias(key); ok {
		key = target
	}
	if _, ok := m.Registry.Get(key); ok {
		cmd := m.jumpTo(key)
		return m, cmd
	}
	m.StatusMsg = fmt.Sprintf("unknown command %q", text)
	return m, nil
}

func (m *Model) refreshSuggestions() {
	m.SuggestionIndex = 0
	q := strings.TrimSpace(m.TextInput.Value())
	if q == "" {
		m.Suggestions = nil
		return
	}
	matches := fuzzy.Find(q, m.commandCandidates())
	n := len(matches)
	if n > MaxSuggestions {
		n = MaxSuggestions
	}
	out := make([]string, 0, n)
	for _, match := range matches[:n] {
		out = append(out, match.Str)
	}
	m.Suggestions = out
}

func (m Model) commandCandidates() []string {
	keys := m.Registry.Keys()
	out := make([]string, 0, len(keys)+len(m.Config.Aliases)+2)
	out = append(out, keys...)
	aliases := make([]string, 0, len(m.Config.Aliases))
	for name := range m.Config.Aliases {
		aliases = append(aliases, name)
	}
	sort.Strings(aliases)
	out = append(out, aliases...)
	out = append(out, "quit", "help")
	return out
}

// --- CONFIRM MODE ---
func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.App.Pending
	if p == nil {
		m.App.Mode = state.ModeNormal
		return m, nil
	}

	switch msg.String() {
	case "left", "h", "right", "l", "tab":
		p.ChoiceYes = !p.ChoiceYes
		return m, nil
	case "y":
		return m.resolveConfirm(true)
	case "n", "esc":
		return m.resolveConfirm(false)
	case "enter":
		return m.resolveConfirm(p.ChoiceYes)
	}
	return m, nil
}

func (m Model) resolveConfirm(accepted bool) (tea.Model, tea.Cmd) {
	p := m.App.ResolveConfirm(accepted)
	if p == nil {
		return m, nil
	}
	def, ok := m.Registry.Get(p.ResourceKey)
	if !ok {
		return m, nil
	}
	cmds := make([]tea.Cmd, 0, len(p.Items))
	for _, item := range p.Items {
		cmds = append(cmds, m.actionCmd(def, p.Action, item))
	}
	if top := m.App.Top(); top != nil {
		top.ClearSelection()
	}
	return m, tea.Batch(cmds...)
}

// --- DESCRIBE MODE ---
func (m Model) updateDescribe(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.App.Mode = state.ModeNormal
		m.DescribeDoc = nil
		return m, nil
	case "y":
		m.DescribeYAML = !m.DescribeYAML
		m.renderDescribe()
		return m, nil
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func (m *Model) openDescribe() (tea.Model, tea.Cmd) {
	top := m.App.Top()
	def := m.topDef()
	if top == nil || def == nil {
		return *m, nil
	}
	item, ok := top.CurrentItem()
	if !ok {
		return *m, nil
	}
	m.App.Mode = state.ModeDescribe
	m.DescribeName = item.Name(def)
	m.DescribeDoc = nil
	m.DescribeYAML = false
	m.Viewport.SetContent(StyleDim.Render("Loading..."))
	m.Viewport.GotoTop()
	return *m, m.describeCmd(def, item)
}

func (m *Model) renderDescribe() {
	if len(m.DescribeDoc) == 0 {
		return
	}
	content := RenderDoc(m.DescribeDoc, m.DescribeYAML)
	wrapWidth := m.Viewport.Width - 2
	if wrapWidth < MinWrapWidth {
		wrapWidth = MinWrapWidth
	}
	m.Viewport.SetContent(lipgloss.NewStyle().Width(wrapWidth).Render(content))
	m.Viewport.GotoTop()
}

// --- HELP MODE ---
func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.App.Mode = state.ModeNormal
	}
	return m, nil
}

// --- SELECTORS ---
func (m Model) updateSelector(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.App.Mode = state.ModeNormal
		m.SelectorQuery = ""
		m.SelectorIndex = 0
		return m, nil

	case "enter":
		return m.pickSelector()

	case "up", "ctrl+p":
		if m.SelectorIndex > 0 {
			m.SelectorIndex--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.SelectorIndex < len(m.selectorEntries())-1 {
			m.SelectorIndex++
		}
		return m, nil

	case "backspace":
		if m.SelectorQuery != "" {
			m.SelectorQuery = m.SelectorQuery[:len(m.SelectorQuery)-1]
			m.SelectorIndex = 0
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		m.SelectorQuery += string(msg.Runes)
		m.SelectorIndex = 0
	}
	return m, nil
}

func (m Model) selectorEntries() []string {
	var all []string
	if m.App.Mode == state.ModeProjectSelect {
		all = make([]string, 0, len(m.Projects))
		for _, p := range m.Projects {
			all = append(all, p.ID)
		}
	} else {
		all = m.Zones
	}
	if m.SelectorQuery == "" {
		return all
	}
	matches := fuzzy.Find(m.SelectorQuery, all)
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.Str)
	}
	return out
}

func (m Model) pickSelector() (tea.Model, tea.Cmd) {
	entries := m.selectorEntries()
	if m.SelectorIndex < 0 || m.SelectorIndex >= len(entries) {
		return m, nil
	}
	choice := entries[m.SelectorIndex]

	if m.App.Mode == state.ModeProjectSelect {
		m.App.SetScope(choice, m.App.Zone)
		m.Config.ProjectID = choice
	} else {
		m.App.SetScope(m.App.Project, choice)
		m.Config.Zone = choice
	}
	if err := m.Config.Save(); err != nil {
		slog.Warn("saving config", "error", err)
	}

	m.App.Mode = state.ModeNormal
	m.SelectorQuery = ""
	m.SelectorIndex = 0
	m.Counts = map[string]int{}
	cmd := m.refreshTop()
	return m, cmd
}

// --- NOTIFICATIONS ---
func (m Model) updateNotifications(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "n":
		m.App.Mode = state.ModeNormal
	case "up", "k":
		if m.NotifyCursor > 0 {
			m.NotifyCursor--
		}
	case "down", "j":
		if m.NotifyCursor < len(m.Notifier.All())-1 {
			m.NotifyCursor++
		}
	case "g", "home":
		m.NotifyCursor = 0
	case "G", "end":
		if n := len(m.Notifier.All()); n > 0 {
			m.NotifyCursor = n - 1
		}
	case "c":
		m.Notifier.Clear()
		m.NotifyCursor = 0
	}
	return m, nil
}

// --- COLUMN CONFIG ---
func (m Model) updateColumnConfig(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	top := m.App.Top()
	cols := m.topCols()
	if top == nil || len(cols) == 0 {
		m.App.Mode = state.ModeNormal
		return m, nil
	}

	switch msg.String() {
	case "esc", "q", "o":
		m.App.Mode = state.ModeNormal
	case "up", "k":
		if m.ColumnCursor > 0 {
			m.ColumnCursor--
		}
	case "down", "j":
		if m.ColumnCursor < len(cols)-1 {
			m.ColumnCursor++
		}
	case " ", "enter":
		top.ToggleColumn(m.ColumnCursor)
	}
	return m, nil
}

// --- NAVIGATION HELPERS ---

// ensureVisible scrolls the list window so the cursor stays on screen.
func ensureVisible(f *state.Frame, height int) {
	if height < 1 {
		height = 1
	}
	if f.Cursor >= f.Scroll+height {
		f.Scroll = f.Cursor - height + 1
	}
	if f.Cursor < f.Scroll {
		f.Scroll = f.Cursor
	}
}

// refreshTop refetches the current frame unless a fetch is already
// outstanding.
func (m *Model) refreshTop() tea.Cmd {
	top := m.App.Top()
	def := m.topDef()
	if top == nil || def == nil {
		return nil
	}
	if err := m.App.BeginFetch(); err != nil {
		m.StatusMsg = "fetch already in flight"
		return nil
	}
	return m.fetchPageCmd(top, def)
}

// jumpTo replaces the stack with a fresh view of one resource kind.
func (m *Model) jumpTo(key string) tea.Cmd {
	def, ok := m.Registry.Get(key)
	if !ok {
		m.StatusMsg = fmt.Sprintf("unknown resource %q", key)
		return nil
	}
	f := m.App.SetRoot(key, def.DisplayName)
	m.Config.LastResource = key
	_ = m.App.BeginFetch()
	return m.fetchPageCmd(f, def)
}

// pushSubResource drills into a child view scoped to the item under
// the cursor.
func (m Model) pushSubResource(sub *registry.SubResourceDef) (tea.Model, tea.Cmd) {
	top := m.App.Top()
	item, ok := top.CurrentItem()
	if !ok {
		return m, nil
	}
	parent := item.Field(sub.ParentIDField)
	if parent == "" {
		return m, nil
	}
	childDef, ok := m.Registry.Get(sub.ResourceKey)
	if !ok {
		return m, nil
	}

	params := map[string]string{sub.FilterParam: parent}
	if sub.FilterParam == "filter" {
		// Compute filter drill-downs are network-scoped and use the
		// legacy eq-regexp form.
		params["filter"] = fmt.Sprintf("network eq .*%s.*", parent)
	}
	if loc := item.Field("location"); loc != "" && sub.FilterParam != "location" {
		params["location"] = loc
	}

	title := fmt.Sprintf("%s: %s", sub.DisplayName, parent)
	f := m.App.Push(sub.ResourceKey, title, params)
	_ = m.App.BeginFetch()
	return m, m.fetchPageCmd(f, childDef)
}

// runAction routes an action shortcut: shell actions hand off the
// terminal, mutations go through read-only and confirmation gates.
func (m Model) runAction(def *registry.ResourceDef, action *registry.ActionDef) (tea.Model, tea.Cmd) {
	top := m.App.Top()
	if top == nil {
		return m, nil
	}

	if action.IsShell() {
		item, ok := top.CurrentItem()
		if !ok {
			return m, nil
		}
		switch action.SDKMethod {
		case "ssh_instance":
			return m, m.sshCmd(def, item, false)
		case "ssh_instance_iap":
			return m, m.sshCmd(def, item, true)
		}
		return m, m.consoleCmd(def, item)
	}

	if m.App.ReadOnly {
		m.Warning = fmt.Sprintf("Read-only mode: %s is disabled.", strings.ToLower(action.DisplayName))
		m.App.Mode = state.ModeWarning
		return m, nil
	}

	items := top.SelectedItems(def)
	if len(items) == 0 {
		return m, nil
	}

	if cc := action.ConfirmConfig(); cc != nil {
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, item.Name(def))
		}
		label := cc.Message
		if label == "" {
			label = action.DisplayName
		}
		m.App.RequestConfirm(&state.PendingAction{
			Action:      *action,
			ResourceKey: def.Key,
			Items:       items,
			Message:     label + "\n" + strings.Join(names, "\n"),
			Destructive: cc.Destructive,
			ChoiceYes:   cc.DefaultYes,
		})
		return m, nil
	}

	cmds := make([]tea.Cmd, 0, len(items))
	for _, item := range items {
		cmds = append(cmds, m.actionCmd(def, *action, item))
	}
	top.ClearSelection()
	return m, tea.Batch(cmds...)
}
