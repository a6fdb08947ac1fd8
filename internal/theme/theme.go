package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sprintboard/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// SprintHeaderStyle is used for the sprint group headers on the board.
var SprintHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// EndedSprintStyle dims the header of a finished sprint.
var EndedSprintStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Padding(0, 1)

// ErrorStyle is used for inline error messages below inputs.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle de-emphasizes secondary text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// WorkflowStyle returns a color-coded style for the given workflow state.
func WorkflowStyle(wf model.Workflow) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch wf {
	case model.WorkflowBacklog:
		return base.Foreground(ColorGray)
	case model.WorkflowToDo:
		return base.Foreground(ColorBlue)
	case model.WorkflowInProgress:
		return base.Foreground(ColorYellow)
	case model.WorkflowOnHold:
		return base.Foreground(ColorOrange)
	case model.WorkflowQA, model.WorkflowReview:
		return base.Foreground(ColorMagenta)
	case model.WorkflowDone:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for the given priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.PriorityBlocker, model.PriorityCritical:
		return base.Foreground(ColorRed)
	case model.PriorityMajor:
		return base.Foreground(ColorOrange)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityMinor:
		return base.Foreground(ColorBlue)
	case model.PriorityTrivial:
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorGray)
	}
}

// WorkTypeStyle returns a color-coded style for the given work type.
func WorkTypeStyle(wt model.WorkType) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch wt {
	case model.WorkTypeBug:
		return base.Foreground(ColorRed)
	case model.WorkTypeStory:
		return base.Foreground(ColorGreen)
	case model.WorkTypeTask:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}
