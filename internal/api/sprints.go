package api

import (
	"context"
	"fmt"

	"github.com/nhle/sprintboard/internal/model"
)

// Sprints fetches all sprints of a project, active and finished.
func (c *Client) Sprints(
	ctx context.Context,
	projectID int,
) ([]model.Sprint, error) {
	var sprints []model.Sprint
	path := fmt.Sprintf("/sprints/%d", projectID)
	if err := c.Get(ctx, path, &sprints); err != nil {
		return nil, fmt.Errorf(
			"fetching sprints for project %d: %w", projectID, err,
		)
	}
	return sprints, nil
}

// CreateSprint creates an active sprint with the given date window.
func (c *Client) CreateSprint(
	ctx context.Context,
	projectID int,
	startDate string,
	endDate string,
) (*model.Sprint, error) {
	body := map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
		"project_id": projectID,
		"status":     true,
	}

	var s model.Sprint
	if err := c.Post(ctx, "/sprints/", body, &s); err != nil {
		return nil, fmt.Errorf(
			"creating sprint for project %d: %w", projectID, err,
		)
	}
	return &s, nil
}

// EndSprint flips a sprint's status to finished. The endpoint takes no
// body; the backend decides what happens to the sprint's tasks.
func (c *Client) EndSprint(ctx context.Context, sprintID int) error {
	path := fmt.Sprintf("/sprints/%d", sprintID)
	if err := c.Patch(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("ending sprint %d: %w", sprintID, err)
	}
	return nil
}
