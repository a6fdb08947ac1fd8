package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/sprintboard/internal/model"
)

// TaskFilters narrows a task listing by the optional categorical fields.
// Empty values are omitted from the query string.
type TaskFilters struct {
	WorkType string
	WorkFlow string
	Priority string
}

// Empty reports whether no filter is set.
func (f TaskFilters) Empty() bool {
	return f.WorkType == "" && f.WorkFlow == "" && f.Priority == ""
}

func (f TaskFilters) apply(v url.Values) {
	if f.WorkType != "" {
		v.Set("work_type", f.WorkType)
	}
	if f.WorkFlow != "" {
		v.Set("work_flow", f.WorkFlow)
	}
	if f.Priority != "" {
		v.Set("priority", f.Priority)
	}
}

// NewTask is the POST body for task creation. A nil SprintID targets the
// backlog; nil UserID/UserName leave the task unassigned.
type NewTask struct {
	Title     string         `json:"title"`
	WorkType  model.WorkType `json:"work_type"`
	WorkFlow  model.Workflow `json:"work_flow"`
	Priority  model.Priority `json:"priority"`
	ProjectID int            `json:"project_id"`
	SprintID  *int           `json:"sprint_id"`
	UserID    *int           `json:"user_id"`
	UserName  *string        `json:"user_name"`
}

// SprintTasks fetches the tasks of one sprint, optionally narrowed to a
// single assignee and by categorical filters.
func (c *Client) SprintTasks(
	ctx context.Context,
	projectID int,
	sprintID int,
	userID int,
	filters TaskFilters,
) ([]model.Task, error) {
	v := url.Values{}
	v.Set("project_ids", strconv.Itoa(projectID))
	v.Set("sprint_ids", strconv.Itoa(sprintID))
	if userID > 0 {
		v.Set("user_ids", strconv.Itoa(userID))
	}
	filters.apply(v)

	var tasks []model.Task
	if err := c.Get(ctx, "/tasks/all?"+v.Encode(), &tasks); err != nil {
		return nil, fmt.Errorf(
			"fetching tasks for sprint %d: %w", sprintID, err,
		)
	}
	return tasks, nil
}

// UnassignedSprintTasks fetches the tasks of one sprint that have no
// assignee.
func (c *Client) UnassignedSprintTasks(
	ctx context.Context,
	projectID int,
	sprintID int,
	filters TaskFilters,
) ([]model.Task, error) {
	v := url.Values{}
	v.Set("project_ids", strconv.Itoa(projectID))
	v.Set("sprint_ids", strconv.Itoa(sprintID))
	filters.apply(v)

	var tasks []model.Task
	if err := c.Get(ctx, "/tasks/unassigned?"+v.Encode(), &tasks); err != nil {
		return nil, fmt.Errorf(
			"fetching unassigned tasks for sprint %d: %w", sprintID, err,
		)
	}
	return tasks, nil
}

// BacklogTasks fetches a project's tasks that have neither assignee nor
// sprint (backlog=true), narrowed by categorical filters.
func (c *Client) BacklogTasks(
	ctx context.Context,
	projectID int,
	filters TaskFilters,
) ([]model.Task, error) {
	v := url.Values{}
	v.Set("project_ids", strconv.Itoa(projectID))
	v.Set("backlog", "true")
	filters.apply(v)

	var tasks []model.Task
	if err := c.Get(ctx, "/tasks/unassigned?"+v.Encode(), &tasks); err != nil {
		return nil, fmt.Errorf(
			"fetching backlog for project %d: %w", projectID, err,
		)
	}
	return tasks, nil
}

// UserBacklogTasks fetches a project's sprint-less tasks assigned to one
// user, narrowed by categorical filters.
func (c *Client) UserBacklogTasks(
	ctx context.Context,
	projectID int,
	userID int,
	filters TaskFilters,
) ([]model.Task, error) {
	v := url.Values{}
	v.Set("project_ids", strconv.Itoa(projectID))
	v.Set("user_ids", strconv.Itoa(userID))
	filters.apply(v)

	var tasks []model.Task
	if err := c.Get(ctx, "/tasks/unassigned?"+v.Encode(), &tasks); err != nil {
		return nil, fmt.Errorf(
			"fetching backlog of user %d in project %d: %w",
			userID, projectID, err,
		)
	}
	return tasks, nil
}

// SearchTasks finds a project's tasks whose title matches the query.
func (c *Client) SearchTasks(
	ctx context.Context,
	projectID int,
	query string,
) ([]model.Task, error) {
	v := url.Values{}
	v.Set("project_id", strconv.Itoa(projectID))
	v.Set("q", query)

	var tasks []model.Task
	if err := c.Get(ctx, "/tasks/search/ByTitle?"+v.Encode(), &tasks); err != nil {
		return nil, fmt.Errorf("searching tasks for %q: %w", query, err)
	}
	return tasks, nil
}

// Task fetches a single task by id.
func (c *Client) Task(ctx context.Context, id int) (*model.Task, error) {
	var t model.Task
	if err := c.Get(ctx, fmt.Sprintf("/tasks/%d", id), &t); err != nil {
		return nil, fmt.Errorf("fetching task %d: %w", id, err)
	}
	return &t, nil
}

// CreateTask creates a task and returns the backend's representation.
func (c *Client) CreateTask(
	ctx context.Context,
	task NewTask,
) (*model.Task, error) {
	var created model.Task
	if err := c.Post(ctx, "/tasks", task, &created); err != nil {
		return nil, fmt.Errorf("creating task %q: %w", task.Title, err)
	}
	return &created, nil
}

// UpdateTask PATCHes the full task record and returns the server's
// representation, which callers must treat as the source of truth.
func (c *Client) UpdateTask(
	ctx context.Context,
	id int,
	record map[string]interface{},
) (*model.Task, error) {
	var updated model.Task
	path := fmt.Sprintf("/tasks/%d", id)
	if err := c.Patch(ctx, path, record, &updated); err != nil {
		return nil, fmt.Errorf("updating task %d: %w", id, err)
	}
	return &updated, nil
}
