// Package profile implements the edit-profile screen: a form over the
// session user's account fields, saved through the session store.
package profile

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

// DoneMsg signals the profile screen is finished, whether the user saved
// or backed out.
type DoneMsg struct{}

// saveResultMsg carries the outcome of a save attempt.
type saveResultMsg struct {
	err error
}

// formBindings holds the values huh binds to. Heap-allocated so the
// bindings survive Model copies made by Bubble Tea.
type formBindings struct {
	fullName     string
	mobile       string
	role         string
	location     string
	organisation string
}

// Model is the Bubble Tea model for the edit-profile screen.
type Model struct {
	session *session.Store
	email   string

	form     *huh.Form
	bindings *formBindings

	submitting bool
	spinner    spinner.Model
	errMsg     string

	width, height int
}

// New creates the edit-profile screen prefilled from the session user.
func New(sess *session.Store, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	b := &formBindings{}
	email := ""
	if user := sess.User(); user != nil {
		b.fullName = user.FullName
		b.mobile = user.Mobile
		b.role = user.Role
		b.location = user.Location
		b.organisation = user.Organisation
		email = user.Email
	}

	m := Model{
		session:  sess,
		email:    email,
		bindings: b,
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
				Title("Full name").
				Value(&m.bindings.fullName).
				Validate(validateRequired("Full name")),
			huh.NewInput().
				Title("Mobile").
				Value(&m.bindings.mobile),
			huh.NewInput().
				Title("Role").
				Value(&m.bindings.role),
			huh.NewInput().
				Title("Location").
				Value(&m.bindings.location),
			huh.NewInput().
				Title("Organisation").
				Value(&m.bindings.organisation),
		),
	).WithWidth(m.formWidth())
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the edit-profile screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saveResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, func() tea.Msg { return DoneMsg{} }

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
		return m, func() tea.Msg { return DoneMsg{} }
	}

	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	m.submitting = true
	m.errMsg = ""

	update := model.ProfileUpdate{
		FullName:     strings.TrimSpace(m.bindings.fullName),
		Email:        m.email,
		Mobile:       optional(m.bindings.mobile),
		Role:         optional(m.bindings.role),
		Location:     optional(m.bindings.location),
		Organisation: optional(m.bindings.organisation),
	}
	sess := m.session

	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			_, err := sess.UpdateProfile(context.Background(), update)
			return saveResultMsg{err: err}
		},
	)
}

// View renders the edit-profile screen.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Edit Profile"))
	b.WriteString("\n\n")
	b.WriteString(theme.DimmedStyle.Render(m.email))
	b.WriteString("\n\n")

	if m.submitting {
		b.WriteString(fmt.Sprintf("%s Saving...", m.spinner.View()))
	} else {
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

// optional trims a form value, mapping blank to nil so the backend
// clears the field.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
