// Package login implements the authentication screen: a login/signup
// form submitted against the backend through the session store.
package login

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/session"
	"github.com/nhle/sprintboard/internal/theme"
)

// Mode selects which action the form submits.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

// AuthenticatedMsg signals a successful login or signup.
type AuthenticatedMsg struct {
	User *model.User
}

// authResultMsg carries the outcome of a login or signup attempt.
type authResultMsg struct {
	user *model.User
	err  error
}

// formBindings holds the values huh binds to. Heap-allocated so the
// bindings survive Model copies made by Bubble Tea.
type formBindings struct {
	email    string
	password string
	signup   bool
}

// Model is the Bubble Tea model for the authentication screen.
type Model struct {
	session *session.Store

	form     *huh.Form
	bindings *formBindings

	submitting bool
	spinner    spinner.Model
	errMsg     string

	width, height int
}

// New creates the authentication screen.
func New(sess *session.Store, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		session:  sess,
		bindings: &formBindings{},
		spinner:  sp,
		width:    width,
		height:   height,
	}
	m.form = m.buildForm()
	return m
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.bindings.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.bindings.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(m.formWidth())
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the authentication screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case authResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, func() tea.Msg {
			return AuthenticatedMsg{User: msg.user}
		}

	case spinner.TickMsg:
		if m.submitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		// Tab between login and signup before the form consumes the key.
		if msg.String() == "ctrl+s" {
			m.bindings.signup = !m.bindings.signup
			return m, nil
		}
	}

	if m.submitting {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.submit()
	}
	if m.form.State == huh.StateAborted {
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	m.submitting = true
	m.errMsg = ""

	mode := ModeLogin
	if m.bindings.signup {
		mode = ModeSignup
	}
	email := strings.TrimSpace(m.bindings.email)
	password := m.bindings.password
	sess := m.session

	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			ctx := context.Background()

			var (
				user *model.User
				err  error
			)
			if mode == ModeSignup {
				user, err = sess.Signup(ctx, email, password)
			} else {
				user, err = sess.Login(ctx, email, password)
			}
			return authResultMsg{user: user, err: err}
		},
	)
}

// View renders the authentication screen.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Sprint Board"))
	b.WriteString("\n\n")

	if m.submitting {
		b.WriteString(fmt.Sprintf("%s Signing in...", m.spinner.View()))
	} else {
		modeLabel := "Logging in"
		if m.bindings.signup {
			modeLabel = "Creating account"
		}
		b.WriteString(theme.DimmedStyle.Render(
			modeLabel + "  (ctrl+s switches login/signup)",
		))
		b.WriteString("\n\n")
		b.WriteString(m.form.View())
	}

	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorStyle.Render(m.errMsg))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("email is required")
	}
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}
