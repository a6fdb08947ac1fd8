package api

import (
	"context"
	"fmt"

	"github.com/nhle/sprintboard/internal/model"
)

// ProjectsForUser fetches the projects the given user is a member of.
func (c *Client) ProjectsForUser(
	ctx context.Context,
	userID int,
) ([]model.Project, error) {
	var projects []model.Project
	path := fmt.Sprintf("/projects/user/%d", userID)
	if err := c.Get(ctx, path, &projects); err != nil {
		return nil, fmt.Errorf("fetching projects for user %d: %w", userID, err)
	}
	return projects, nil
}

// Project fetches a single project by id.
func (c *Client) Project(ctx context.Context, id int) (*model.Project, error) {
	var p model.Project
	if err := c.Get(ctx, fmt.Sprintf("/projects/%d", id), &p); err != nil {
		return nil, fmt.Errorf("fetching project %d: %w", id, err)
	}
	return &p, nil
}

// CreateProject creates a project with the given title, manager, and
// initial member set.
func (c *Client) CreateProject(
	ctx context.Context,
	title string,
	managerID int,
	memberIDs []int,
) (*model.Project, error) {
	body := map[string]interface{}{
		"title":      title,
		"users":      memberIDs,
		"manager_id": managerID,
	}

	var p model.Project
	if err := c.Post(ctx, "/projects/", body, &p); err != nil {
		return nil, fmt.Errorf("creating project %q: %w", title, err)
	}
	return &p, nil
}

// AddProjectUsers adds the given users to a project's member set.
func (c *Client) AddProjectUsers(
	ctx context.Context,
	projectID int,
	userIDs []int,
) error {
	return c.mutateMembers(ctx, "add-users", projectID, userIDs)
}

// RemoveProjectUsers removes the given users from a project's member set.
func (c *Client) RemoveProjectUsers(
	ctx context.Context,
	projectID int,
	userIDs []int,
) error {
	return c.mutateMembers(ctx, "remove-users", projectID, userIDs)
}

func (c *Client) mutateMembers(
	ctx context.Context,
	action string,
	projectID int,
	userIDs []int,
) error {
	body := map[string][]int{"user_ids": userIDs}
	path := fmt.Sprintf("/projects/%s/%d", action, projectID)
	if err := c.Post(ctx, path, body, nil); err != nil {
		return fmt.Errorf(
			"%s on project %d: %w", action, projectID, err,
		)
	}
	return nil
}
