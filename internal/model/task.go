package model

// WorkType categorizes a task (the "card type" on the board).
type WorkType string

const (
	WorkTypeTask   WorkType = "Task"
	WorkTypeStory  WorkType = "Story"
	WorkTypeBug    WorkType = "Bug"
	WorkTypeReview WorkType = "Review"
	WorkTypeClosed WorkType = "Closed - Won't Do"
)

// WorkTypes lists every work type in display order.
var WorkTypes = []WorkType{
	WorkTypeTask,
	WorkTypeStory,
	WorkTypeBug,
	WorkTypeReview,
	WorkTypeClosed,
}

// Workflow is the task's status column on the board.
type Workflow string

const (
	WorkflowBacklog    Workflow = "Backlog"
	WorkflowToDo       Workflow = "To Do"
	WorkflowInProgress Workflow = "In Progress"
	WorkflowOnHold     Workflow = "On Hold"
	WorkflowQA         Workflow = "QA"
	WorkflowDone       Workflow = "Done"
	WorkflowReview     Workflow = "Review"
	WorkflowClosed     Workflow = "Closed - Won't Do"
)

// Workflows lists every workflow state in display order.
var Workflows = []Workflow{
	WorkflowBacklog,
	WorkflowToDo,
	WorkflowInProgress,
	WorkflowOnHold,
	WorkflowQA,
	WorkflowDone,
	WorkflowReview,
	WorkflowClosed,
}

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityBlocker  Priority = "Blocker"
	PriorityCritical Priority = "Critical"
	PriorityMajor    Priority = "Major"
	PriorityMedium   Priority = "Medium"
	PriorityMinor    Priority = "Minor"
	PriorityTrivial  Priority = "Trivial"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{
	PriorityBlocker,
	PriorityCritical,
	PriorityMajor,
	PriorityMedium,
	PriorityMinor,
	PriorityTrivial,
}

// Task is a single work item on a project board.
//
// A nil SprintID places the task in the backlog; a nil UserID means the task
// is unassigned. The two relations are independent: a backlog task may have
// an assignee and a sprint task may have none.
type Task struct {
	// ID is the backend identifier for this task.
	ID int `json:"id"`

	// ProjectID is the owning project. A task belongs to exactly one project.
	ProjectID int `json:"project_id"`

	// Code is the optional short reference number shown on cards.
	Code *int `json:"code,omitempty"`

	// Title is the human-readable summary of the task.
	Title string `json:"title"`

	// Description is the optional full body text.
	Description *string `json:"description,omitempty"`

	WorkType WorkType `json:"work_type"`
	WorkFlow Workflow `json:"work_flow"`
	Priority Priority `json:"priority"`

	// StoryPoints is the optional estimation value.
	StoryPoints *int `json:"story_points,omitempty"`

	// SprintID is the containing sprint, or nil for the backlog.
	SprintID *int `json:"sprint_id"`

	// UserID and UserName identify the assignee, or nil when unassigned.
	UserID   *int    `json:"user_id"`
	UserName *string `json:"user_name,omitempty"`

	// ParentTask optionally links a subtask to its parent.
	ParentTask *int `json:"parent_task,omitempty"`
}

// InBacklog reports whether the task has no sprint.
func (t Task) InBacklog() bool {
	return t.SprintID == nil
}

// InSprint reports whether the task belongs to the given sprint.
func (t Task) InSprint(sprintID int) bool {
	return t.SprintID != nil && *t.SprintID == sprintID
}

// AssigneeName returns the assignee's display name, or "Unassigned".
func (t Task) AssigneeName() string {
	if t.UserName != nil && *t.UserName != "" {
		return *t.UserName
	}
	return "Unassigned"
}

// DedupeTasks collapses a task list by id. When the same id appears more
// than once the later entry wins, but the task keeps the position of its
// first occurrence. Tasks without an id are dropped.
func DedupeTasks(tasks []Task) []Task {
	index := make(map[int]int, len(tasks))
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == 0 {
			continue
		}
		if i, ok := index[t.ID]; ok {
			out[i] = t
			continue
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	return out
}
