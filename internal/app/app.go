// Package app wires the screens together: session restore, view
// routing, and the shared layout chrome.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/sprintboard/internal/api"
	"github.com/nhle/sprintboard/internal/board"
	"github.com/nhle/sprintboard/internal/keys"
	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/projects"
	"github.com/nhle/sprintboard/internal/search"
	"github.com/nhle/sprintboard/internal/session"
	"github.com/nhle/sprintboard/internal/store"
	"github.com/nhle/sprintboard/internal/ui"
	"github.com/nhle/sprintboard/internal/ui/boardview"
	"github.com/nhle/sprintboard/internal/ui/detail"
	"github.com/nhle/sprintboard/internal/ui/login"
	"github.com/nhle/sprintboard/internal/ui/profile"
	"github.com/nhle/sprintboard/internal/ui/projectlist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewProjects
	ViewBoard
	ViewDetail
	ViewProfile
)

// sessionRestoredMsg is sent once the saved session has been loaded.
type sessionRestoredMsg struct {
	user *model.User
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and the shared stores.
type Model struct {
	currentView ViewState
	chrome      ui.Chrome
	keys        *keys.KeyMap
	helpView    help.Model
	showHelp    bool

	client      *api.Client
	db          *store.SQLiteStore
	session     *session.Store
	searchStore *search.Store
	engine      *board.Engine
	projService *projects.Service

	loginView   login.Model
	projects    projectlist.Model
	boardView   boardview.Model
	detail      detail.Model
	profileView profile.Model

	project model.Project
	ready   bool
}

// New creates the root application model.
func New(
	client *api.Client,
	db *store.SQLiteStore,
	sess *session.Store,
	fallbackOrg string,
) Model {
	k := keys.DefaultKeyMap()
	searchStore := search.New()

	return Model{
		currentView: ViewLogin,
		keys:        k,
		helpView:    help.New(),
		client:      client,
		db:          db,
		session:     sess,
		searchStore: searchStore,
		engine:      board.NewEngine(client, searchStore, db),
		projService: projects.NewService(client, sess, fallbackOrg),
		loginView:   login.New(sess, 80, 24),
	}
}

// Init restores the saved session before showing any screen.
func (m Model) Init() tea.Cmd {
	sess := m.session
	return tea.Batch(
		m.loginView.Init(),
		func() tea.Msg {
			_ = sess.Restore(context.Background())
			return sessionRestoredMsg{user: sess.User()}
		},
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.chrome = ui.NewChrome(msg.Width, msg.Height)
		m.ready = true
		w, h := m.chrome.ContentWidth(), m.chrome.ContentHeight()
		m.loginView.SetSize(w, h)
		m.projects.SetSize(w, h)
		m.boardView.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.profileView.SetSize(w, h)
		m.helpView.Width = w
		return m.updateActiveView(msg)

	case sessionRestoredMsg:
		if msg.user == nil {
			m.currentView = ViewLogin
			return m, nil
		}
		return m.openProjects(msg.user)

	case login.AuthenticatedMsg:
		return m.openProjects(msg.User)

	case projectlist.ProjectSelectedMsg:
		m.project = msg.Project
		m.engine.SetProject(context.Background(), msg.Project.ID)
		m.searchStore.Clear()
		m.searchStore.SetQuery("")
		m.boardView = boardview.New(
			m.engine, m.client, m.searchStore, m.keys, msg.Project,
			m.chrome.ContentWidth(), m.chrome.ContentHeight(),
		)
		m.currentView = ViewBoard
		return m, m.boardView.Init()

	case boardview.BoardClosedMsg:
		m.currentView = ViewProjects
		return m, m.projects.Init()

	case boardview.OpenDetailMsg:
		m.detail = detail.New(
			m.engine, m.keys, msg.Task,
			m.chrome.ContentWidth(), m.chrome.ContentHeight(),
		)
		m.currentView = ViewDetail
		return m, m.detail.Init()

	case detail.BackMsg:
		m.currentView = ViewBoard
		// An edit may have moved the task; reload the whole board.
		var cmd tea.Cmd
		m.boardView, cmd = m.boardView.Update(boardview.RefreshRequestedMsg{})
		return m, cmd

	case profile.DoneMsg:
		m.currentView = ViewProjects
		return m, m.projects.Init()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && m.currentView != ViewLogin &&
			!m.inTextEntry() {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Help) && !m.inTextEntry() {
			m.showHelp = !m.showHelp
			m.helpView.ShowAll = m.showHelp
			return m, nil
		}
		if key.Matches(msg, m.keys.Profile) && m.currentView == ViewProjects {
			m.profileView = profile.New(
				m.session, m.chrome.ContentWidth(), m.chrome.ContentHeight(),
			)
			m.currentView = ViewProfile
			return m, m.profileView.Init()
		}
		if key.Matches(msg, m.keys.Logout) && m.currentView == ViewProjects {
			m.session.Logout()
			m.currentView = ViewLogin
			m.loginView = login.New(
				m.session, m.chrome.ContentWidth(), m.chrome.ContentHeight(),
			)
			return m, m.loginView.Init()
		}
	}

	return m.updateActiveView(msg)
}

// inTextEntry reports whether the active view is likely consuming raw
// text, so global single-letter shortcuts stay out of the way.
func (m Model) inTextEntry() bool {
	return m.currentView == ViewLogin || m.currentView == ViewDetail ||
		m.currentView == ViewProfile
}

func (m Model) openProjects(user *model.User) (tea.Model, tea.Cmd) {
	m.projects = projectlist.New(
		m.projService, m.keys, user.ID,
		m.chrome.ContentWidth(), m.chrome.ContentHeight(),
	)
	m.currentView = ViewProjects
	return m, m.projects.Init()
}

// updateActiveView forwards a message to the current view only.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewProjects:
		m.projects, cmd = m.projects.Update(msg)
	case ViewBoard:
		m.boardView, cmd = m.boardView.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewProfile:
		m.profileView, cmd = m.profileView.Update(msg)
	}
	return m, cmd
}

// View renders the active view inside the shared frame.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var content string
	switch m.currentView {
	case ViewLogin:
		content = m.loginView.View()
	case ViewProjects:
		content = m.projects.View()
	case ViewBoard:
		content = m.boardView.View()
	case ViewDetail:
		content = m.detail.View()
	case ViewProfile:
		content = m.profileView.View()
	}

	return m.chrome.Render(
		"Sprint Board",
		m.headerContext(),
		content,
		m.helpView.View(m.keys),
	)
}

// headerContext returns the right-aligned header label for the current
// view: the user, and the project when one is open.
func (m Model) headerContext() string {
	user := m.session.User()
	if user == nil {
		return ""
	}
	switch m.currentView {
	case ViewBoard, ViewDetail:
		return m.project.Title + " | " + user.DisplayName()
	default:
		return user.DisplayName()
	}
}
