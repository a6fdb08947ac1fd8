// Package projectlist implements the project selection screen: the
// user's projects with manager and member data, project creation, and
// the assign/unassign roster modals.
package projectlist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sprintboard/internal/keys"
	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/projects"
	"github.com/nhle/sprintboard/internal/theme"
)

// viewMode represents the current state of the project list screen.
type viewMode int

const (
	modeList   viewMode = iota
	modeCreate          // Name input for a new project
	modeRoster          // Assign/unassign user picker
)

// ProjectSelectedMsg is sent when the user opens a project board.
type ProjectSelectedMsg struct {
	Project model.Project
}

// ProjectsLoadedMsg is sent when the project rows have been fetched.
type ProjectsLoadedMsg struct {
	Rows []projects.Row
	Err  error
}

// projectCreatedMsg carries the outcome of a create attempt.
type projectCreatedMsg struct {
	row *projects.Row
	err error
}

// rosterLoadedMsg carries the users for the roster modal.
type rosterLoadedMsg struct {
	mode  projects.RosterMode
	users []model.User
	err   error
}

// memberChangedMsg is sent after an assign or unassign completes.
type memberChangedMsg struct {
	projectID   int
	memberCount int
	err         error
}

// Model is the Bubble Tea model for the project list screen.
type Model struct {
	service *projects.Service
	keys    *keys.KeyMap
	userID  int

	mode viewMode
	list list.Model
	rows []projects.Row

	// Create flow
	nameInput textinput.Model
	createErr string
	creating  bool

	// Roster modal
	rosterMode  projects.RosterMode
	rosterUsers []model.User
	rosterIdx   int
	rosterErr   string

	statusMsg     string
	width, height int
}

// New creates the project list screen for the given user.
func New(service *projects.Service, k *keys.KeyMap, userID, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	ni := textinput.New()
	ni.Placeholder = "project name"
	ni.Prompt = "> "
	ni.CharLimit = 50
	ni.Width = width - 4

	return Model{
		service:   service,
		keys:      k,
		userID:    userID,
		list:      l,
		nameInput: ni,
		width:     width,
		height:    height,
	}
}

// Init loads the projects.
func (m Model) Init() tea.Cmd {
	return m.loadProjects()
}

// Update handles messages for the project list screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProjectsLoadedMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Error loading projects: %v", msg.Err)
			return m, nil
		}
		m.rows = msg.Rows
		return m, m.setItems()

	case projectCreatedMsg:
		m.creating = false
		if msg.err != nil {
			m.createErr = msg.err.Error()
			return m, nil
		}
		m.mode = modeList
		m.nameInput.Reset()
		m.createErr = ""
		m.statusMsg = fmt.Sprintf("Project %q created", msg.row.Project.Title)
		return m, m.loadProjects()

	case rosterLoadedMsg:
		if msg.err != nil {
			m.mode = modeList
			m.statusMsg = fmt.Sprintf("Error loading users: %v", msg.err)
			return m, nil
		}
		m.rosterUsers = msg.users
		m.rosterIdx = 0
		m.rosterErr = ""
		return m, nil

	case memberChangedMsg:
		if msg.err != nil {
			m.rosterErr = msg.err.Error()
			return m, nil
		}
		m.mode = modeList
		if msg.memberCount >= 0 {
			for i := range m.rows {
				if m.rows[i].Project.ID == msg.projectID {
					m.rows[i].MemberCount = msg.memberCount
				}
			}
		}
		return m, tea.Batch(m.setItems(), m.loadProjects())

	case tea.KeyMsg:
		switch m.mode {
		case modeCreate:
			return m.handleCreateKeys(msg)
		case modeRoster:
			return m.handleRosterKeys(msg)
		default:
			return m.handleListKeys(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(ProjectItem)
		if !ok {
			return m, nil
		}
		project := item.Row.Project
		return m, func() tea.Msg {
			return ProjectSelectedMsg{Project: project}
		}

	case key.Matches(msg, m.keys.NewTask):
		m.mode = modeCreate
		m.nameInput.Reset()
		m.createErr = ""
		return m, m.nameInput.Focus()

	case key.Matches(msg, m.keys.Assign):
		return m.openRoster(projects.RosterAssign)

	case key.Matches(msg, m.keys.Unassign):
		return m.openRoster(projects.RosterUnassign)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadProjects()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleCreateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.creating {
			return m, nil
		}
		name := m.nameInput.Value()
		// Validation failures stay local; no request is made.
		if err := projects.ValidateProjectName(name); err != nil {
			m.createErr = err.Error()
			return m, nil
		}
		m.creating = true
		m.createErr = ""
		service := m.service
		return m, func() tea.Msg {
			row, err := service.Create(context.Background(), name)
			return projectCreatedMsg{row: row, err: err}
		}

	case "esc":
		m.mode = modeList
		m.nameInput.Reset()
		m.createErr = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m Model) openRoster(mode projects.RosterMode) (Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(ProjectItem)
	if !ok {
		return m, nil
	}
	m.mode = modeRoster
	m.rosterMode = mode
	m.rosterUsers = nil
	m.rosterErr = ""

	service := m.service
	projectID := item.Row.Project.ID
	return m, func() tea.Msg {
		users, err := service.Roster(context.Background(), projectID, mode)
		return rosterLoadedMsg{mode: mode, users: users, err: err}
	}
}

func (m Model) handleRosterKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if len(m.rosterUsers) > 0 {
			m.rosterIdx = (m.rosterIdx + 1) % len(m.rosterUsers)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.rosterUsers) > 0 {
			m.rosterIdx--
			if m.rosterIdx < 0 {
				m.rosterIdx = len(m.rosterUsers) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(m.rosterUsers) == 0 {
			return m, nil
		}
		item, ok := m.list.SelectedItem().(ProjectItem)
		if !ok {
			return m, nil
		}
		user := m.rosterUsers[m.rosterIdx]
		projectID := item.Row.Project.ID
		service := m.service
		mode := m.rosterMode
		return m, func() tea.Msg {
			var (
				count int
				err   error
			)
			if mode == projects.RosterAssign {
				count, err = service.Assign(context.Background(), projectID, user.ID)
			} else {
				count, err = service.Unassign(context.Background(), projectID, user.ID)
			}
			return memberChangedMsg{projectID: projectID, memberCount: count, err: err}
		}
	}
	return m, nil
}

// View renders the project list screen.
func (m Model) View() string {
	switch m.mode {
	case modeCreate:
		return m.viewCreate()
	case modeRoster:
		return m.viewRoster()
	}

	if len(m.rows) == 0 {
		style := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return style.Render("No projects yet.\n\nPress 'n' to create one.")
	}

	view := m.list.View()
	if m.statusMsg != "" {
		view += "\n" + theme.DimmedStyle.Render(m.statusMsg)
	}
	return view
}

func (m Model) viewCreate() string {
	var content string
	content = theme.HeaderStyle.Render("New Project") + "\n\n" +
		m.nameInput.View()

	if m.creating {
		content += "\n\n" + theme.DimmedStyle.Render("Creating...")
	}
	if m.createErr != "" {
		content += "\n\n" + theme.ErrorStyle.Render(m.createErr)
	}
	content += "\n\n" + theme.HelpStyle.Render("enter create | esc cancel")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m Model) viewRoster() string {
	title := "Assign User"
	if m.rosterMode == projects.RosterUnassign {
		title = "Remove User"
	}

	content := theme.HeaderStyle.Render(title) + "\n\n"

	if m.rosterUsers == nil {
		content += theme.DimmedStyle.Render("Loading users...")
	} else if len(m.rosterUsers) == 0 {
		content += theme.DimmedStyle.Render("No eligible users.")
	} else {
		for i, u := range m.rosterUsers {
			line := u.DisplayName()
			if i == m.rosterIdx {
				line = theme.SelectedItemStyle.Render(line)
			} else {
				line = theme.ListItemStyle.Render(line)
			}
			content += line + "\n"
		}
	}

	if m.rosterErr != "" {
		content += "\n" + theme.ErrorStyle.Render(m.rosterErr)
	}
	content += "\n" + theme.HelpStyle.Render("enter select | esc cancel")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.nameInput.Width = width - 4
}

func (m Model) setItems() tea.Cmd {
	items := make([]list.Item, len(m.rows))
	for i, row := range m.rows {
		items[i] = ProjectItem{Row: row}
	}
	return m.list.SetItems(items)
}

// loadProjects returns a command that fetches the project rows.
func (m Model) loadProjects() tea.Cmd {
	service := m.service
	userID := m.userID
	return func() tea.Msg {
		rows, err := service.List(context.Background(), userID)
		return ProjectsLoadedMsg{Rows: rows, Err: err}
	}
}
