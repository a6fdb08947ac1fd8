package store

import (
	"context"

	"github.com/nhle/sprintboard/internal/model"
)

// BoardPrefs holds a user's per-project board view settings so the client
// reopens where it left off. This is view state only, never task data.
type BoardPrefs struct {
	ProjectID int

	// SprintAssignees maps sprint id to the per-sprint assignee filter:
	// a user id, or -1 for "unassigned only".
	SprintAssignees map[int]int

	// BacklogAssignee is the backlog section's assignee filter: 0 for
	// none, a user id, or -1 for "unassigned only".
	BacklogAssignee int

	// ShowFinished reveals ended sprints on the board.
	ShowFinished bool
}

// Store is the local client-state persistence interface: the durable copy
// of the session user and per-project board preferences.
type Store interface {
	SaveSession(ctx context.Context, user *model.User) error
	LoadSession(ctx context.Context) (*model.User, error)
	ClearSession(ctx context.Context) error

	SaveBoardPrefs(ctx context.Context, prefs BoardPrefs) error
	LoadBoardPrefs(ctx context.Context, projectID int) (*BoardPrefs, error)

	Close() error
}
