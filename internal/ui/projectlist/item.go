package projectlist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/sprintboard/internal/projects"
	"github.com/nhle/sprintboard/internal/theme"
)

// ProjectItem wraps a projects.Row so it can be used in a bubbles/list.
type ProjectItem struct {
	Row projects.Row
}

// FilterValue returns the string used for fuzzy filtering.
func (i ProjectItem) FilterValue() string { return i.Row.Project.Title }

// Title returns the project title for the list.
func (i ProjectItem) Title() string { return i.Row.Project.Title }

// Description returns a short summary line for the list.
func (i ProjectItem) Description() string {
	manager := i.Row.ManagerName
	if manager == "" {
		manager = "..."
	}
	return fmt.Sprintf("manager %s | %d members", manager, i.Row.MemberCount)
}

// ItemDelegate implements list.ItemDelegate for rendering project rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages.
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single project line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(ProjectItem)
	if !ok {
		return
	}

	manager := pi.Row.ManagerName
	if manager == "" {
		manager = theme.DimmedStyle.Render("loading...")
	}

	line := fmt.Sprintf(
		"%s  %s  %s",
		pi.Row.Project.Title,
		theme.DimmedStyle.Render(manager),
		theme.DimmedStyle.Render(fmt.Sprintf("(%d)", pi.Row.MemberCount)),
	)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
