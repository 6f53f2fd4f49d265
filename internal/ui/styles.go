package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// UI Layout Constants
const (
	HeaderHeight    = 3
	FooterHeight    = 2
	UILayoutPadding = 2

	DefaultListHeight = 20
	MaxSuggestions    = 5
	MaxSelectorRows   = 12
	MinColumnWidth    = 4
	MinWrapWidth      = 10

	// DoubleKeyWindow is how long the first g of gg stays armed.
	DoubleKeyWindow = 500 * time.Millisecond
)

// Color definitions
var (
	CPrimary   = lipgloss.Color("62")  // Purple/Blue
	CSecondary = lipgloss.Color("39")  // Cyan
	CGreen     = lipgloss.Color("42")  // Green
	CRed       = lipgloss.Color("196") // Red
	CYellow    = lipgloss.Color("220") // Yellow
	CGray      = lipgloss.Color("240") // Gray
)

// Lipgloss styles
var (
	StyleBorder   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).BorderForeground(CGray)
	StylePane     = lipgloss.NewStyle().Padding(0, 1)
	StyleTitle    = lipgloss.NewStyle().Foreground(CSecondary).Bold(true)
	StyleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(CPrimary).Bold(true)
	StyleDim      = lipgloss.NewStyle().Foreground(CGray)
	StyleErr      = lipgloss.NewStyle().Foreground(CRed)
	StyleOK       = lipgloss.NewStyle().Foreground(CGreen)
	StyleWarn     = lipgloss.NewStyle().Foreground(CYellow)
	StyleHeader   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true).Background(lipgloss.Color("237")).Padding(0, 1)

	StyleColHeader = lipgloss.NewStyle().Foreground(CSecondary).Bold(true)
	StyleMarked    = lipgloss.NewStyle().Foreground(CYellow).Bold(true)
	StyleVisual    = lipgloss.NewStyle().Background(lipgloss.Color("238"))

	StyleTabActive   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, true, false).BorderForeground(CPrimary).Foreground(CPrimary).Bold(true).Padding(0, 1)
	StyleTabInactive = lipgloss.NewStyle().Padding(0, 1).Foreground(CGray)

	StyleCmdBar = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("236")).Padding(0, 1)

	StyleConfirmBox  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(CYellow).Padding(1, 2)
	StyleDestructive = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(CRed).Padding(1, 2)

	StyleHighlight = lipgloss.NewStyle().Background(lipgloss.Color("201")).Foreground(lipgloss.Color("255")).Bold(true)
)

// cellStyle maps a schema color map entry to a style; values outside
// the map render dim-neutral.
func cellStyle(rgb [3]uint8, ok bool) lipgloss.Style {
	if !ok {
		return lipgloss.NewStyle()
	}
	hex := fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

// truncateCell fits a value to a column, ellipsizing overflow.
func truncateCell(s string, width int) string {
	if width < MinColumnWidth {
		width = MinColumnWidth
	}
	runes := []rune(s)
	if len(runes) <= width {
		return fmt.Sprintf("%-*s", width, s)
	}
	return string(runes[:width-1]) + "…"
}
