// Package detail implements the task detail panel: a scrollable field
// view with write-through edits committed one field at a time.
package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sprintboard/internal/board"
	"github.com/nhle/sprintboard/internal/keys"
	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/theme"
)

// BackMsg signals the parent to close the detail panel.
type BackMsg struct{}

// TaskUpdatedMsg is sent after an edit was committed; the parent
// re-refreshes the board on success.
type TaskUpdatedMsg struct {
	Task *model.Task
	Err  error
}

// editField identifies which text field is being edited.
type editField int

const (
	editNone editField = iota
	editTitle
	editDescription
)

// Model is the task detail panel component.
type Model struct {
	engine *board.Engine
	keys   *keys.KeyMap

	task     model.Task
	viewport viewport.Model

	editing   editField
	titleIn   textinput.Model
	descIn    textarea.Model
	statusMsg string

	width, height int
}

// New creates the detail panel for a task.
func New(engine *board.Engine, k *keys.KeyMap, task model.Task, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Width = width - 8

	ta := textarea.New()
	ta.SetWidth(width - 8)
	ta.SetHeight(6)

	m := Model{
		engine:   engine,
		keys:     k,
		task:     task,
		viewport: vp,
		titleIn:  ti,
		descIn:   ta,
		width:    width,
		height:   height,
	}
	m.viewport.SetContent(m.renderContent())
	return m
}

// Init returns the initial command for the detail panel.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TaskUpdatedMsg:
		if msg.Err != nil {
			m.statusMsg = msg.Err.Error()
		} else if msg.Task != nil {
			m.task = *msg.Task
			m.statusMsg = ""
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		if m.editing != editNone {
			return m.handleEditKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, m.keys.CycleWorkType):
		next := nextOf(model.WorkTypes, m.task.WorkType)
		return m, m.commit("work_type", string(next))

	case key.Matches(msg, m.keys.CycleWorkFlow):
		next := nextOf(model.Workflows, m.task.WorkFlow)
		return m, m.commit("work_flow", string(next))

	case key.Matches(msg, m.keys.CyclePriority):
		next := nextOf(model.Priorities, m.task.Priority)
		return m, m.commit("priority", string(next))
	}

	switch msg.String() {
	case "e":
		m.editing = editTitle
		m.titleIn.SetValue(m.task.Title)
		return m, m.titleIn.Focus()

	case "d":
		m.editing = editDescription
		if m.task.Description != nil {
			m.descIn.SetValue(*m.task.Description)
		} else {
			m.descIn.SetValue("")
		}
		return m, m.descIn.Focus()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleEditKeys commits the field on enter and abandons it on esc.
// The description textarea uses ctrl+d to commit since enter inserts a
// newline there.
func (m Model) handleEditKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case msg.String() == "esc":
		m.editing = editNone
		return m, nil

	case m.editing == editTitle && msg.String() == "enter":
		title := strings.TrimSpace(m.titleIn.Value())
		m.editing = editNone
		if title == "" {
			m.statusMsg = "task title is required"
			return m, nil
		}
		return m, m.commit("title", title)

	case m.editing == editDescription && msg.String() == "ctrl+d":
		desc := m.descIn.Value()
		m.editing = editNone
		return m, m.commit("description", desc)
	}

	var cmd tea.Cmd
	if m.editing == editTitle {
		m.titleIn, cmd = m.titleIn.Update(msg)
	} else {
		m.descIn, cmd = m.descIn.Update(msg)
	}
	return m, cmd
}

// commit PATCHes one field through the board engine.
func (m Model) commit(field string, value interface{}) tea.Cmd {
	engine := m.engine
	taskID := m.task.ID
	return func() tea.Msg {
		updated, err := engine.UpdateTaskField(context.Background(), taskID, field, value)
		return TaskUpdatedMsg{Task: updated, Err: err}
	}
}

// View renders the detail panel.
func (m Model) View() string {
	if m.editing == editTitle {
		return m.renderEditor("Edit Title", m.titleIn.View(),
			"enter save | esc cancel")
	}
	if m.editing == editDescription {
		return m.renderEditor("Edit Description", m.descIn.View(),
			"ctrl+d save | esc cancel")
	}

	content := m.viewport.View()
	if m.statusMsg != "" {
		content += "\n" + theme.ErrorStyle.Render(m.statusMsg)
	}

	return theme.DetailPanelStyle.
		Width(m.width - 2).
		Render(content)
}

func (m Model) renderEditor(title, input, hints string) string {
	content := theme.HeaderStyle.Render(title) + "\n\n" +
		input + "\n\n" +
		theme.HelpStyle.Render(hints)

	return theme.DetailPanelStyle.
		Width(m.width - 2).
		Render(content)
}

func (m Model) renderContent() string {
	var b strings.Builder

	labelStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorGray).
		Width(12)

	title := m.task.Title
	if m.task.Code != nil {
		title = fmt.Sprintf("#%d %s", *m.task.Code, title)
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).
		Foreground(theme.ColorWhite).Render(title))
	b.WriteString("\n\n")

	writeField := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	writeField("Type", theme.WorkTypeStyle(m.task.WorkType).Render(string(m.task.WorkType)))
	writeField("Status", theme.WorkflowStyle(m.task.WorkFlow).Render(string(m.task.WorkFlow)))
	writeField("Priority", theme.PriorityStyle(m.task.Priority).Render(string(m.task.Priority)))
	writeField("Assignee", m.task.AssigneeName())

	sprint := "Backlog"
	if m.task.SprintID != nil {
		sprint = fmt.Sprintf("Sprint %d", *m.task.SprintID)
	}
	writeField("Sprint", sprint)

	if m.task.StoryPoints != nil {
		writeField("Points", fmt.Sprintf("%d", *m.task.StoryPoints))
	}
	if m.task.ParentTask != nil {
		writeField("Parent", fmt.Sprintf("task %d", *m.task.ParentTask))
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Description"))
	b.WriteString("\n")
	if m.task.Description != nil && *m.task.Description != "" {
		b.WriteString(*m.task.Description)
	} else {
		b.WriteString(theme.DimmedStyle.Render("(none)"))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(
		"e title | d description | t type | w status | p priority | esc close",
	))

	return b.String()
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.titleIn.Width = width - 8
	m.descIn.SetWidth(width - 8)
}

// nextOf returns the element after current in order, wrapping around.
func nextOf[T comparable](order []T, current T) T {
	for i, v := range order {
		if v == current {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}
