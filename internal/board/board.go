// Package board implements the task board's data engine: fetching sprints
// and tasks from the backend, merging overlapping listings by id, and
// applying the shared search query and categorical filters.
package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nhle/sprintboard/internal/api"
	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/search"
	"github.com/nhle/sprintboard/internal/store"
)

// ErrStale is returned by Refresh when a newer refresh started while this
// one was in flight; the stale result has been discarded.
var ErrStale = errors.New("stale refresh result discarded")

// AssigneeUnassigned selects "tasks with no assignee" in an assignee
// filter; 0 means no filter.
const AssigneeUnassigned = -1

// Snapshot is the board state produced by a refresh, ready for rendering.
type Snapshot struct {
	Sprints []model.Sprint
	Tasks   []model.Task

	// Searching is true when the snapshot came from a free-text search;
	// sprint/backlog grouping does not apply to such snapshots.
	Searching bool
}

// BacklogTasks returns the snapshot's tasks that have no sprint.
func (s *Snapshot) BacklogTasks() []model.Task {
	var out []model.Task
	for _, t := range s.Tasks {
		if t.InBacklog() {
			out = append(out, t)
		}
	}
	return out
}

// TasksForSprint returns the snapshot's tasks belonging to one sprint.
func (s *Snapshot) TasksForSprint(sprintID int) []model.Task {
	var out []model.Task
	for _, t := range s.Tasks {
		if t.InSprint(sprintID) {
			out = append(out, t)
		}
	}
	return out
}

// Engine owns the board data for one project. All methods are safe for
// concurrent use; fetches run outside the lock and commit under it.
type Engine struct {
	client *api.Client
	search *search.Store
	db     store.Store

	mu              sync.Mutex
	projectID       int
	generation      uint64
	tasks           []model.Task
	sprints         []model.Sprint
	searching       bool
	sprintAssignees map[int]int
	backlogAssignee int
	showFinished    bool
}

// NewEngine creates a board engine. The db store may be nil; it is only
// used to persist board view preferences between runs.
func NewEngine(client *api.Client, searchStore *search.Store, db store.Store) *Engine {
	return &Engine{
		client:          client,
		search:          searchStore,
		db:              db,
		sprintAssignees: make(map[int]int),
	}
}

// SetProject switches the engine to a project and restores that project's
// saved board preferences. The caller refreshes afterwards.
func (e *Engine) SetProject(ctx context.Context, projectID int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.projectID = projectID
	e.tasks = nil
	e.sprints = nil
	e.searching = false
	e.sprintAssignees = make(map[int]int)
	e.backlogAssignee = 0
	e.showFinished = false

	if e.db == nil {
		return
	}
	prefs, err := e.db.LoadBoardPrefs(ctx, projectID)
	if err != nil || prefs == nil {
		return
	}
	if prefs.SprintAssignees != nil {
		e.sprintAssignees = prefs.SprintAssignees
	}
	e.backlogAssignee = prefs.BacklogAssignee
	e.showFinished = prefs.ShowFinished
}

// ProjectID returns the engine's current project.
func (e *Engine) ProjectID() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projectID
}

// Refresh re-fetches the whole board. When a free-text search query is
// active it fetches matching tasks only and skips grouping; otherwise it
// fetches sprints, the backlog, and every sprint's tasks, then merges the
// lists de-duplicated by id (the last fetch wins for a duplicate id).
//
// Each call starts a new refresh generation; if another refresh begins
// before this one commits, the result is dropped and ErrStale returned.
func (e *Engine) Refresh(ctx context.Context) (*Snapshot, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	projectID := e.projectID
	backlogAssignee := e.backlogAssignee
	assignees := make(map[int]int, len(e.sprintAssignees))
	for id, uid := range e.sprintAssignees {
		assignees[id] = uid
	}
	e.mu.Unlock()

	if projectID == 0 {
		return nil, errors.New("no project selected")
	}

	// Search mode suppresses sprint/backlog grouping entirely.
	if query := strings.TrimSpace(e.search.Query()); query != "" {
		tasks, err := e.client.SearchTasks(ctx, projectID, query)
		if err != nil {
			return nil, fmt.Errorf("searching board: %w", err)
		}
		return e.commit(gen, nil, model.DedupeTasks(tasks), true)
	}

	filters := e.search.Filters().TaskFilters()

	sprintsData, err := e.client.Sprints(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading board: %w", err)
	}
	sprints := model.DedupeSprints(sprintsData)

	backlog, err := e.fetchBacklog(ctx, projectID, backlogAssignee, filters)
	if err != nil {
		return nil, fmt.Errorf("loading board: %w", err)
	}

	// Fan out one fetch per sprint. A failed sprint fetch contributes an
	// empty list rather than failing the whole board.
	perSprint := make([][]model.Task, len(sprints))
	var wg sync.WaitGroup
	for i, sprint := range sprints {
		wg.Add(1)
		go func(i int, sprint model.Sprint) {
			defer wg.Done()
			f := api.TaskFilters{}
			if sprint.Status {
				f = filters
			}
			tasks, err := e.fetchSprintTasks(
				ctx, projectID, sprint.ID, assignees[sprint.ID], f,
			)
			if err != nil {
				return
			}
			perSprint[i] = tasks
		}(i, sprint)
	}
	wg.Wait()

	merged := make([]model.Task, 0, len(backlog))
	merged = append(merged, backlog...)
	for _, tasks := range perSprint {
		merged = append(merged, tasks...)
	}

	return e.commit(gen, sprints, model.DedupeTasks(merged), false)
}

// RefreshSprint re-fetches a single sprint's tasks with the given assignee
// filter and splices them into the collection, leaving the backlog and the
// other sprints untouched. Categorical filters apply only while the sprint
// is active, the same rule the full refresh follows.
func (e *Engine) RefreshSprint(
	ctx context.Context,
	sprintID int,
	assignee int,
) (*Snapshot, error) {
	e.mu.Lock()
	projectID := e.projectID
	active := true
	for _, s := range e.sprints {
		if s.ID == sprintID {
			active = s.Status
			break
		}
	}
	if assignee == 0 {
		delete(e.sprintAssignees, sprintID)
	} else {
		e.sprintAssignees[sprintID] = assignee
	}
	e.mu.Unlock()
	e.persistPrefs(ctx)

	filters := api.TaskFilters{}
	if active {
		filters = e.search.Filters().TaskFilters()
	}
	tasks, err := e.fetchSprintTasks(ctx, projectID, sprintID, assignee, filters)
	if err != nil {
		return nil, fmt.Errorf("refreshing sprint %d: %w", sprintID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	kept := make([]model.Task, 0, len(e.tasks))
	for _, t := range e.tasks {
		if !t.InSprint(sprintID) {
			kept = append(kept, t)
		}
	}
	e.tasks = model.DedupeTasks(append(kept, tasks...))

	return e.snapshotLocked(), nil
}

// fetchBacklog fetches the backlog section. The assignee filter selects
// one user's sprint-less tasks, unassigned-only tasks, or (by default)
// the pure backlog.
func (e *Engine) fetchBacklog(
	ctx context.Context,
	projectID int,
	assignee int,
	filters api.TaskFilters,
) ([]model.Task, error) {
	var (
		tasks []model.Task
		err   error
	)
	if assignee > 0 {
		tasks, err = e.client.UserBacklogTasks(ctx, projectID, assignee, filters)
	} else {
		tasks, err = e.client.BacklogTasks(ctx, projectID, filters)
	}
	if err != nil {
		return nil, err
	}
	// Some deployments omit sprint_id on backlog listings; nil means
	// backlog either way, so nothing to normalize beyond the tag.
	for i := range tasks {
		tasks[i].SprintID = nil
	}
	return tasks, nil
}

// fetchSprintTasks fetches one sprint's tasks honoring its assignee
// filter, and tags every task with the sprint id.
func (e *Engine) fetchSprintTasks(
	ctx context.Context,
	projectID int,
	sprintID int,
	assignee int,
	filters api.TaskFilters,
) ([]model.Task, error) {
	var (
		tasks []model.Task
		err   error
	)
	switch {
	case assignee == AssigneeUnassigned:
		tasks, err = e.client.UnassignedSprintTasks(ctx, projectID, sprintID, filters)
	case assignee > 0:
		tasks, err = e.client.SprintTasks(ctx, projectID, sprintID, assignee, filters)
	default:
		tasks, err = e.client.SprintTasks(ctx, projectID, sprintID, 0, filters)
	}
	if err != nil {
		return nil, err
	}
	id := sprintID
	for i := range tasks {
		tasks[i].SprintID = &id
	}
	return tasks, nil
}

// commit installs a refresh result unless a newer refresh has started.
func (e *Engine) commit(
	gen uint64,
	sprints []model.Sprint,
	tasks []model.Task,
	searching bool,
) (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		return nil, ErrStale
	}

	if !searching {
		e.sprints = sprints
	}
	e.tasks = tasks
	e.searching = searching

	return e.snapshotLocked(), nil
}

// snapshotLocked copies the current state. Callers must hold e.mu.
func (e *Engine) snapshotLocked() *Snapshot {
	snap := &Snapshot{
		Sprints:   make([]model.Sprint, len(e.sprints)),
		Tasks:     make([]model.Task, len(e.tasks)),
		Searching: e.searching,
	}
	copy(snap.Sprints, e.sprints)
	copy(snap.Tasks, e.tasks)
	return snap
}

// Snapshot returns a copy of the current board state.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// UpdateTaskField PATCHes the full task record with the single named
// field replaced, keyed by task id. On success the server's returned
// representation replaces the in-memory task; the caller re-runs Refresh
// to keep the grouping consistent. On failure nothing is mutated.
func (e *Engine) UpdateTaskField(
	ctx context.Context,
	taskID int,
	field string,
	value interface{},
) (*model.Task, error) {
	e.mu.Lock()
	var current *model.Task
	for i := range e.tasks {
		if e.tasks[i].ID == taskID {
			t := e.tasks[i]
			current = &t
			break
		}
	}
	e.mu.Unlock()

	if current == nil {
		return nil, fmt.Errorf("task %d not on the board", taskID)
	}

	record, err := taskRecord(*current)
	if err != nil {
		return nil, err
	}
	record[field] = value

	updated, err := e.client.UpdateTask(ctx, taskID, record)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	for i := range e.tasks {
		if e.tasks[i].ID == taskID {
			e.tasks[i] = *updated
			break
		}
	}
	e.mu.Unlock()

	return updated, nil
}

// CreateTaskInput describes a new task targeted at a sprint or, with a
// nil SprintID, the backlog.
type CreateTaskInput struct {
	Title    string
	SprintID *int
	Assignee *model.User
	WorkType model.WorkType
	WorkFlow model.Workflow
	Priority model.Priority
}

// CreateTask validates and submits a new task, then appends the created
// record to the collection. The caller re-runs Refresh afterwards.
func (e *Engine) CreateTask(
	ctx context.Context,
	in CreateTaskInput,
) (*model.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errors.New("task title is required")
	}

	if in.WorkType == "" {
		in.WorkType = model.WorkTypeTask
	}
	if in.WorkFlow == "" {
		in.WorkFlow = model.WorkflowToDo
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}

	task := api.NewTask{
		Title:     in.Title,
		WorkType:  in.WorkType,
		WorkFlow:  in.WorkFlow,
		Priority:  in.Priority,
		ProjectID: e.ProjectID(),
		SprintID:  in.SprintID,
	}
	if in.Assignee != nil {
		task.UserID = &in.Assignee.ID
		name := in.Assignee.FullName
		task.UserName = &name
	}

	created, err := e.client.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.tasks = append(e.tasks, *created)
	e.mu.Unlock()

	return created, nil
}

// CreateSprint creates an active sprint. With both dates blank it uses
// the default window starting today; with only one date set it rejects
// the input before any network call.
func (e *Engine) CreateSprint(
	ctx context.Context,
	startDate string,
	endDate string,
) (*model.Sprint, error) {
	if startDate == "" && endDate == "" {
		startDate, endDate = model.DefaultSprintWindow(time.Now())
	}
	if startDate == "" || endDate == "" {
		return nil, errors.New("sprint start and end dates are required")
	}

	created, err := e.client.CreateSprint(ctx, e.ProjectID(), startDate, endDate)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.sprints = model.DedupeSprints(append(e.sprints, *created))
	e.mu.Unlock()

	return created, nil
}

// EndSprint flips a sprint to finished on the backend and locally. Ended
// sprints stay in the collection; rendering hides them unless the
// finished-sprints toggle is on.
func (e *Engine) EndSprint(ctx context.Context, sprintID int) error {
	if err := e.client.EndSprint(ctx, sprintID); err != nil {
		return err
	}

	e.mu.Lock()
	for i := range e.sprints {
		if e.sprints[i].ID == sprintID {
			e.sprints[i].Status = false
			break
		}
	}
	e.mu.Unlock()

	return nil
}

// SetBacklogAssignee sets the backlog section's assignee filter: a user
// id, AssigneeUnassigned, or 0 to clear. The caller re-runs Refresh.
func (e *Engine) SetBacklogAssignee(ctx context.Context, userID int) {
	e.mu.Lock()
	e.backlogAssignee = userID
	e.mu.Unlock()
	e.persistPrefs(ctx)
}

// BacklogAssignee returns the backlog section's assignee filter.
func (e *Engine) BacklogAssignee() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backlogAssignee
}

// SprintAssignee returns the assignee filter of one sprint (0 when none).
func (e *Engine) SprintAssignee(sprintID int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sprintAssignees[sprintID]
}

// SetShowFinished toggles whether ended sprints are visible.
func (e *Engine) SetShowFinished(ctx context.Context, show bool) {
	e.mu.Lock()
	e.showFinished = show
	e.mu.Unlock()
	e.persistPrefs(ctx)
}

// ShowFinished reports whether ended sprints are visible.
func (e *Engine) ShowFinished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.showFinished
}

// VisibleSprints returns the active sprints, plus the finished ones when
// the toggle is on. Finished sprints are never removed from the data.
func (e *Engine) VisibleSprints() []model.Sprint {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []model.Sprint
	for _, s := range e.sprints {
		if s.Status || e.showFinished {
			out = append(out, s)
		}
	}
	return out
}

// persistPrefs saves the view preferences best-effort; a failure never
// affects board behavior.
func (e *Engine) persistPrefs(ctx context.Context) {
	if e.db == nil {
		return
	}

	e.mu.Lock()
	prefs := store.BoardPrefs{
		ProjectID:       e.projectID,
		SprintAssignees: make(map[int]int, len(e.sprintAssignees)),
		BacklogAssignee: e.backlogAssignee,
		ShowFinished:    e.showFinished,
	}
	for id, uid := range e.sprintAssignees {
		prefs.SprintAssignees[id] = uid
	}
	e.mu.Unlock()

	if prefs.ProjectID != 0 {
		_ = e.db.SaveBoardPrefs(ctx, prefs)
	}
}

// taskRecord converts a task to the generic record PATCHed on edits.
func taskRecord(t model.Task) (map[string]interface{}, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding task %d: %w", t.ID, err)
	}
	var record map[string]interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("encoding task %d: %w", t.ID, err)
	}
	delete(record, "id")
	return record, nil
}
