// Package state holds the application state machine: the mode the UI
// is in, the navigation stack of resource views, and any mutation
// awaiting confirmation. Everything here is owned by the update loop;
// background work communicates through messages, so no locking.
package state

// Mode is the input mode of the UI.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeCommand
	ModeConfirm
	ModeDescribe
	ModeHelp
	ModeProjectSelect
	ModeZoneSelect
	ModeNotifications
	ModeColumnConfig
	ModeWarning
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeFilter:
		return "filter"
	case ModeCommand:
		return "command"
	case ModeConfirm:
		return "confirm"
	case ModeDescribe:
		return "describe"
	case ModeHelp:
		return "help"
	case ModeProjectSelect:
		return "project-select"
	case ModeZoneSelect:
		return "zone-select"
	case ModeNotifications:
		return "notifications"
	case ModeColumnConfig:
		return "column-config"
	case ModeWarning:
		return "warning"
	}
	return "unknown"
}
