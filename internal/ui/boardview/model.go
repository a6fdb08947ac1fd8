// Package boardview implements the task board screen: sprint sections
// and the backlog, inline edits, task and sprint creation, free-text
// search, and per-section assignee filters.
package boardview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/sprintboard/internal/api"
	"github.com/nhle/sprintboard/internal/board"
	"github.com/nhle/sprintboard/internal/keys"
	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/search"
	"github.com/nhle/sprintboard/internal/theme"
)

// BoardClosedMsg signals the board should close back to the project list.
type BoardClosedMsg struct{}

// OpenDetailMsg asks the app to open the detail panel for a task.
type OpenDetailMsg struct {
	Task model.Task
}

// RefreshRequestedMsg asks the board to reload itself. The app sends it
// when another screen may have changed task data.
type RefreshRequestedMsg struct{}

// BoardLoadedMsg carries a full refresh result.
type BoardLoadedMsg struct {
	Snapshot *board.Snapshot
	Err      error
}

// sprintRefreshedMsg carries a single-sprint refresh result.
type sprintRefreshedMsg struct {
	snapshot *board.Snapshot
	err      error
}

// taskMutatedMsg is sent after an inline edit or creation completed; the
// board re-refreshes on success.
type taskMutatedMsg struct {
	err error
}

// sprintMutatedMsg is sent after a sprint was created or ended.
type sprintMutatedMsg struct {
	err error
}

// membersLoadedMsg carries the project members used for assignee cycling.
type membersLoadedMsg struct {
	members []model.User
	err     error
}

// rowKind discriminates the flattened board rows the cursor moves over.
type rowKind int

const (
	rowSprintHeader rowKind = iota
	rowBacklogHeader
	rowSearchHeader
	rowTask
	rowEmpty
)

// row is one rendered line of the board.
type row struct {
	kind   rowKind
	sprint *model.Sprint
	task   *model.Task

	// sectionSprint is the sprint the row belongs to, nil for the backlog.
	sectionSprint *int
}

// sprintFormBindings holds the new-sprint form values. Heap-allocated so
// the bindings survive Model copies made by Bubble Tea.
type sprintFormBindings struct {
	start string
	end   string
}

// Model is the Bubble Tea model for the board screen.
type Model struct {
	engine  *board.Engine
	client  *api.Client
	search  *search.Store
	keys    *keys.KeyMap
	project model.Project

	snapshot *board.Snapshot
	members  []model.User
	rows     []row
	cursor   int

	// Search input
	searchMode  bool
	searchInput textinput.Model

	// Task creation slot; at most one section has an open slot.
	createOpen    bool
	createSection *int
	createInput   textinput.Model
	createErr     string

	// New sprint form
	sprintForm     *huh.Form
	sprintBindings *sprintFormBindings

	// End-sprint confirmation
	confirmEndSprint *int

	loading       bool
	statusMsg     string
	width, height int
}

// New creates the board screen for one project.
func New(
	engine *board.Engine,
	client *api.Client,
	searchStore *search.Store,
	k *keys.KeyMap,
	project model.Project,
	width, height int,
) Model {
	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	ci := textinput.New()
	ci.Placeholder = "task title"
	ci.Prompt = "+ "
	ci.Width = width - 8

	return Model{
		engine:      engine,
		client:      client,
		search:      searchStore,
		keys:        k,
		project:     project,
		searchInput: si,
		createInput: ci,
		loading:     true,
		width:       width,
		height:      height,
	}
}

// Init starts the initial board load and member fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.loadMembers())
}

// Update handles messages for the board screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshRequestedMsg:
		m.loading = true
		return m, m.refresh()

	case BoardLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Error loading board: %v", msg.Err)
			return m, nil
		}
		if msg.Snapshot == nil {
			// A newer refresh superseded this one.
			return m, nil
		}
		m.snapshot = msg.Snapshot
		m.rebuildRows()
		return m, nil

	case sprintRefreshedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error refreshing sprint: %v", msg.err)
			return m, nil
		}
		m.snapshot = msg.snapshot
		m.rebuildRows()
		return m, nil

	case taskMutatedMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
			return m, nil
		}
		m.statusMsg = ""
		return m, m.refresh()

	case sprintMutatedMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
			return m, nil
		}
		m.statusMsg = ""
		return m, m.refresh()

	case membersLoadedMsg:
		if msg.err == nil {
			m.members = msg.members
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.searchMode:
			return m.handleSearchKeys(msg)
		case m.createOpen:
			return m.handleCreateKeys(msg)
		case m.sprintForm != nil:
			return m.updateSprintForm(msg)
		case m.confirmEndSprint != nil:
			return m.handleConfirmEndKeys(msg)
		default:
			return m.handleNormalKeys(msg)
		}
	}

	if m.sprintForm != nil {
		return m.updateSprintForm(msg)
	}
	return m, nil
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.snapshot != nil && m.snapshot.Searching {
			m.search.SetQuery("")
			return m, m.refresh()
		}
		return m, func() tea.Msg { return BoardClosedMsg{} }

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if t := m.selectedTask(); t != nil {
			task := *t
			return m, func() tea.Msg { return OpenDetailMsg{Task: task} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.search.Query())
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.refresh()

	case key.Matches(msg, m.keys.CycleWorkType):
		return m.cycleTaskField("work_type")

	case key.Matches(msg, m.keys.CycleWorkFlow):
		return m.cycleTaskField("work_flow")

	case key.Matches(msg, m.keys.CyclePriority):
		return m.cycleTaskField("priority")

	case key.Matches(msg, m.keys.CycleSprint):
		return m.cycleTaskSprint()

	case key.Matches(msg, m.keys.CycleAssignee):
		return m.cycleTaskAssignee()

	case key.Matches(msg, m.keys.NewTask):
		return m.openCreateSlot()

	case key.Matches(msg, m.keys.NewSprint):
		m.sprintBindings = &sprintFormBindings{}
		m.sprintForm = m.buildSprintForm()
		return m, m.sprintForm.Init()

	case key.Matches(msg, m.keys.EndSprint):
		if s := m.selectedSprint(); s != nil && s.Status {
			id := s.ID
			m.confirmEndSprint = &id
		}
		return m, nil

	case key.Matches(msg, m.keys.ShowFinished):
		m.engine.SetShowFinished(context.Background(), !m.engine.ShowFinished())
		m.rebuildRows()
		return m, nil

	case key.Matches(msg, m.keys.FilterAssignee):
		return m.cycleSectionAssignee()
	}

	// Number keys cycle the shared categorical filters.
	switch msg.String() {
	case "1":
		m.search.SetWorkType(nextWorkTypeFilter(m.search.Filters().WorkType))
		return m, m.refresh()
	case "2":
		m.search.SetWorkFlow(nextWorkFlowFilter(m.search.Filters().WorkFlow))
		return m, m.refresh()
	case "3":
		m.search.SetPriority(nextPriorityFilter(m.search.Filters().Priority))
		return m, m.refresh()
	case "0":
		m.search.Clear()
		return m, m.refresh()
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.search.SetQuery(m.searchInput.Value())
		m.loading = true
		return m, m.refresh()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.search.SetQuery("")
		m.loading = true
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// openCreateSlot opens the inline creation input under the section the
// cursor is in. Opening a slot closes any other open slot implicitly.
func (m Model) openCreateSlot() (Model, tea.Cmd) {
	if m.snapshot == nil || m.snapshot.Searching {
		return m, nil
	}
	m.createOpen = true
	m.createSection = m.selectedSection()
	m.createErr = ""
	m.createInput.Reset()
	return m, m.createInput.Focus()
}

func (m Model) handleCreateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(m.createInput.Value())
		if title == "" {
			m.createErr = "task title is required"
			return m, nil
		}
		m.createOpen = false
		engine := m.engine
		in := board.CreateTaskInput{Title: title, SprintID: m.createSection}
		return m, func() tea.Msg {
			_, err := engine.CreateTask(context.Background(), in)
			return taskMutatedMsg{err: err}
		}

	case "esc":
		m.createOpen = false
		m.createErr = ""
		m.createInput.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.createInput, cmd = m.createInput.Update(msg)
	return m, cmd
}

func (m Model) buildSprintForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Start date").
				Description("YYYY-MM-DD, blank for today").
				Placeholder(model.DateLayout).
				Value(&m.sprintBindings.start).
				Validate(validateDate),
			huh.NewInput().
				Title("End date").
				Description("YYYY-MM-DD, blank for a two-week sprint").
				Placeholder(model.DateLayout).
				Value(&m.sprintBindings.end).
				Validate(validateDate),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateSprintForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.sprintForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.sprintForm = f
	}

	if m.sprintForm.State == huh.StateCompleted {
		start := strings.TrimSpace(m.sprintBindings.start)
		end := strings.TrimSpace(m.sprintBindings.end)
		m.sprintForm = nil
		engine := m.engine
		return m, func() tea.Msg {
			_, err := engine.CreateSprint(context.Background(), start, end)
			return sprintMutatedMsg{err: err}
		}
	}
	if m.sprintForm.State == huh.StateAborted {
		m.sprintForm = nil
		return m, nil
	}

	return m, cmd
}

func (m Model) handleConfirmEndKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		sprintID := *m.confirmEndSprint
		m.confirmEndSprint = nil
		engine := m.engine
		return m, func() tea.Msg {
			err := engine.EndSprint(context.Background(), sprintID)
			return sprintMutatedMsg{err: err}
		}
	case "n", "esc":
		m.confirmEndSprint = nil
		return m, nil
	}
	return m, nil
}

// cycleTaskField advances the selected task's enum field to its next
// value and PATCHes the change.
func (m Model) cycleTaskField(field string) (Model, tea.Cmd) {
	t := m.selectedTask()
	if t == nil {
		return m, nil
	}

	var next string
	switch field {
	case "work_type":
		next = string(nextOf(model.WorkTypes, t.WorkType))
	case "work_flow":
		next = string(nextOf(model.Workflows, t.WorkFlow))
	case "priority":
		next = string(nextOf(model.Priorities, t.Priority))
	default:
		return m, nil
	}

	return m, m.updateField(t.ID, field, next)
}

// cycleTaskSprint moves the selected task to the next sprint, wrapping
// through the backlog.
func (m Model) cycleTaskSprint() (Model, tea.Cmd) {
	t := m.selectedTask()
	if t == nil {
		return m, nil
	}

	sprints := m.engine.VisibleSprints()
	// Targets: backlog (nil), then each visible sprint in order.
	targets := make([]*int, 0, len(sprints)+1)
	targets = append(targets, nil)
	for i := range sprints {
		id := sprints[i].ID
		targets = append(targets, &id)
	}

	current := 0
	for i, target := range targets {
		if target != nil && t.SprintID != nil && *target == *t.SprintID {
			current = i
			break
		}
	}
	next := targets[(current+1)%len(targets)]

	var value interface{}
	if next != nil {
		value = *next
	}
	return m, m.updateField(t.ID, "sprint_id", value)
}

// cycleTaskAssignee moves the selected task to the next project member,
// wrapping through unassigned.
func (m Model) cycleTaskAssignee() (Model, tea.Cmd) {
	t := m.selectedTask()
	if t == nil || len(m.members) == 0 {
		return m, nil
	}

	current := -1
	if t.UserID != nil {
		for i, u := range m.members {
			if u.ID == *t.UserID {
				current = i
				break
			}
		}
	}

	next := current + 1
	var value interface{}
	if next < len(m.members) {
		value = m.members[next].ID
	}
	return m, m.updateField(t.ID, "user_id", value)
}

// cycleSectionAssignee advances the assignee filter of the section under
// the cursor: everyone, unassigned only, then each member in turn.
func (m Model) cycleSectionAssignee() (Model, tea.Cmd) {
	if m.snapshot == nil || m.snapshot.Searching {
		return m, nil
	}

	section := m.selectedSection()
	if section == nil {
		next := m.nextFilterValue(m.engine.BacklogAssignee())
		m.engine.SetBacklogAssignee(context.Background(), next)
		m.loading = true
		return m, m.refresh()
	}

	sprintID := *section
	next := m.nextFilterValue(m.engine.SprintAssignee(sprintID))
	engine := m.engine
	return m, func() tea.Msg {
		snap, err := engine.RefreshSprint(context.Background(), sprintID, next)
		return sprintRefreshedMsg{snapshot: snap, err: err}
	}
}

// nextFilterValue cycles 0 (everyone), AssigneeUnassigned, then each
// project member's id.
func (m Model) nextFilterValue(current int) int {
	order := make([]int, 0, len(m.members)+2)
	order = append(order, 0, board.AssigneeUnassigned)
	for _, u := range m.members {
		order = append(order, u.ID)
	}

	for i, v := range order {
		if v == current {
			return order[(i+1)%len(order)]
		}
	}
	return 0
}

func (m Model) updateField(taskID int, field string, value interface{}) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		_, err := engine.UpdateTaskField(context.Background(), taskID, field, value)
		return taskMutatedMsg{err: err}
	}
}

// refresh runs a full board refresh. A stale result delivers a nil
// snapshot which Update ignores.
func (m Model) refresh() tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		snap, err := engine.Refresh(context.Background())
		if errors.Is(err, board.ErrStale) {
			return BoardLoadedMsg{}
		}
		return BoardLoadedMsg{Snapshot: snap, Err: err}
	}
}

func (m Model) loadMembers() tea.Cmd {
	client := m.client
	projectID := m.project.ID
	return func() tea.Msg {
		members, err := client.ProjectMembers(context.Background(), projectID)
		return membersLoadedMsg{members: members, err: err}
	}
}

// rebuildRows flattens the snapshot into cursor-addressable rows.
func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]

	if m.snapshot == nil {
		return
	}

	if m.snapshot.Searching {
		m.rows = append(m.rows, row{kind: rowSearchHeader})
		for i := range m.snapshot.Tasks {
			m.rows = append(m.rows, row{kind: rowTask, task: &m.snapshot.Tasks[i]})
		}
		if len(m.snapshot.Tasks) == 0 {
			m.rows = append(m.rows, row{kind: rowEmpty})
		}
		m.clampCursor()
		return
	}

	showFinished := m.engine.ShowFinished()
	for i := range m.snapshot.Sprints {
		sprint := &m.snapshot.Sprints[i]
		if !sprint.Status && !showFinished {
			continue
		}
		id := sprint.ID
		m.rows = append(m.rows, row{
			kind:          rowSprintHeader,
			sprint:        sprint,
			sectionSprint: &id,
		})
		tasks := m.snapshot.TasksForSprint(sprint.ID)
		for j := range tasks {
			t := tasks[j]
			m.rows = append(m.rows, row{
				kind:          rowTask,
				task:          &t,
				sectionSprint: &id,
			})
		}
		if len(tasks) == 0 {
			m.rows = append(m.rows, row{kind: rowEmpty, sectionSprint: &id})
		}
	}

	m.rows = append(m.rows, row{kind: rowBacklogHeader})
	backlog := m.snapshot.BacklogTasks()
	for i := range backlog {
		t := backlog[i]
		m.rows = append(m.rows, row{kind: rowTask, task: &t})
	}
	if len(backlog) == 0 {
		m.rows = append(m.rows, row{kind: rowEmpty})
	}

	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	m.clampCursor()
}

// selectedTask returns the task under the cursor, or nil.
func (m Model) selectedTask() *model.Task {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].task
}

// selectedSprint returns the sprint of the cursor's section, or nil when
// the cursor is in the backlog.
func (m Model) selectedSprint() *model.Sprint {
	section := m.selectedSection()
	if section == nil || m.snapshot == nil {
		return nil
	}
	for i := range m.snapshot.Sprints {
		if m.snapshot.Sprints[i].ID == *section {
			return &m.snapshot.Sprints[i]
		}
	}
	return nil
}

// selectedSection returns the sprint id of the cursor's section, nil for
// the backlog.
func (m Model) selectedSection() *int {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].sectionSprint
}

// View renders the board screen.
func (m Model) View() string {
	if m.sprintForm != nil {
		return lipgloss.NewStyle().
			Padding(1, 2).
			Width(m.width).
			Height(m.height).
			Render(theme.HeaderStyle.Render("New Sprint") + "\n\n" + m.sprintForm.View())
	}

	var b strings.Builder

	if m.searchMode {
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	} else if filterLine := m.renderFilterLine(); filterLine != "" {
		b.WriteString(filterLine)
		b.WriteString("\n")
	}

	if m.loading && m.snapshot == nil {
		b.WriteString(theme.DimmedStyle.Render("Loading board..."))
		return m.frame(b.String())
	}

	for i, r := range m.rows {
		b.WriteString(m.renderRow(i, r))
		b.WriteString("\n")

		// The open creation slot renders directly under its section header.
		if m.createOpen && isSlotAnchor(r, m.createSection) {
			b.WriteString("  " + m.createInput.View())
			if m.createErr != "" {
				b.WriteString("  " + theme.ErrorStyle.Render(m.createErr))
			}
			b.WriteString("\n")
		}
	}

	if m.confirmEndSprint != nil {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(
			fmt.Sprintf("End sprint %d? (y/n)", *m.confirmEndSprint),
		))
	}
	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(m.statusMsg))
	}

	return m.frame(b.String())
}

// isSlotAnchor reports whether the creation slot belongs under this row.
func isSlotAnchor(r row, section *int) bool {
	switch r.kind {
	case rowSprintHeader:
		return section != nil && r.sectionSprint != nil && *section == *r.sectionSprint
	case rowBacklogHeader:
		return section == nil
	}
	return false
}

func (m Model) frame(content string) string {
	return lipgloss.NewStyle().
		Padding(0, 1).
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m Model) renderFilterLine() string {
	var parts []string

	if q := m.search.Query(); q != "" {
		parts = append(parts, fmt.Sprintf("search: %q", q))
	}
	f := m.search.Filters()
	if f.WorkType != "" {
		parts = append(parts, "type: "+f.WorkType)
	}
	if f.WorkFlow != "" {
		parts = append(parts, "status: "+f.WorkFlow)
	}
	if f.Priority != "" {
		parts = append(parts, "priority: "+f.Priority)
	}
	if m.engine.ShowFinished() {
		parts = append(parts, "finished sprints shown")
	}

	if len(parts) == 0 {
		return ""
	}
	return theme.DimmedStyle.Render(strings.Join(parts, " | "))
}

func (m Model) renderRow(index int, r row) string {
	selected := index == m.cursor

	switch r.kind {
	case rowSprintHeader:
		return m.renderSprintHeader(r.sprint, selected)

	case rowBacklogHeader:
		label := "Backlog"
		if a := m.engine.BacklogAssignee(); a != 0 {
			label += "  " + m.assigneeFilterLabel(a)
		}
		line := theme.SprintHeaderStyle.Render(label)
		if selected {
			line = theme.SelectedItemStyle.Render(label)
		}
		return line

	case rowSearchHeader:
		return theme.SprintHeaderStyle.Render("Search Results")

	case rowTask:
		return m.renderTask(r.task, selected)

	case rowEmpty:
		return theme.DimmedStyle.Render("  no tasks")
	}
	return ""
}

func (m Model) renderSprintHeader(s *model.Sprint, selected bool) string {
	label := fmt.Sprintf("%s  %s", s.Name(), s.Window())
	if !s.Status {
		label += "  (finished)"
	}
	if a := m.engine.SprintAssignee(s.ID); a != 0 {
		label += "  " + m.assigneeFilterLabel(a)
	}

	if selected {
		return theme.SelectedItemStyle.Render(label)
	}
	if !s.Status {
		return theme.EndedSprintStyle.Render(label)
	}
	return theme.SprintHeaderStyle.Render(label)
}

func (m Model) renderTask(t *model.Task, selected bool) string {
	typeBadge := theme.WorkTypeStyle(t.WorkType).Render(string(t.WorkType))
	flowBadge := theme.WorkflowStyle(t.WorkFlow).Render(string(t.WorkFlow))
	priBadge := theme.PriorityStyle(t.Priority).Render(string(t.Priority))

	code := ""
	if t.Code != nil {
		code = fmt.Sprintf("#%d ", *t.Code)
	}

	line := fmt.Sprintf(
		"%s%s %s %s %s  %s",
		code, t.Title, typeBadge, flowBadge, priBadge,
		theme.DimmedStyle.Render(t.AssigneeName()),
	)

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// assigneeFilterLabel names an assignee filter value for section headers.
func (m Model) assigneeFilterLabel(value int) string {
	if value == board.AssigneeUnassigned {
		return theme.DimmedStyle.Render("[unassigned]")
	}
	for _, u := range m.members {
		if u.ID == value {
			return theme.DimmedStyle.Render("[" + u.DisplayName() + "]")
		}
	}
	return theme.DimmedStyle.Render(fmt.Sprintf("[user %d]", value))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.searchInput.Width = width - 4
	m.createInput.Width = width - 8
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

// nextOf returns the element after current in order, wrapping around.
func nextOf[T comparable](order []T, current T) T {
	for i, v := range order {
		if v == current {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

// nextWorkTypeFilter cycles none -> each work type -> none.
func nextWorkTypeFilter(current string) string {
	return nextFilter(model.WorkTypes, current)
}

func nextWorkFlowFilter(current string) string {
	return nextFilter(model.Workflows, current)
}

func nextPriorityFilter(current string) string {
	return nextFilter(model.Priorities, current)
}

func nextFilter[T ~string](order []T, current string) string {
	if current == "" {
		return string(order[0])
	}
	for i, v := range order {
		if string(v) == current {
			if i == len(order)-1 {
				return ""
			}
			return string(order[i+1])
		}
	}
	return ""
}

func validateDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := model.ParseDate(s); err != nil {
		return fmt.Errorf("use the %s format", model.DateLayout)
	}
	return nil
}
