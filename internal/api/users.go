package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/sprintboard/internal/model"
)

// User fetches a user profile by id.
func (c *Client) User(ctx context.Context, id int) (*model.User, error) {
	var u model.User
	if err := c.Get(ctx, fmt.Sprintf("/users/%d", id), &u); err != nil {
		return nil, fmt.Errorf("fetching user %d: %w", id, err)
	}
	return &u, nil
}

// UpdateUser patches a user profile and returns the updated record.
func (c *Client) UpdateUser(
	ctx context.Context,
	id int,
	update model.ProfileUpdate,
) (*model.User, error) {
	var u model.User
	if err := c.Patch(ctx, fmt.Sprintf("/users/%d", id), update, &u); err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}
	return &u, nil
}

// ProjectMembers fetches the member roster of a project.
func (c *Client) ProjectMembers(
	ctx context.Context,
	projectID int,
) ([]model.User, error) {
	var users []model.User
	path := fmt.Sprintf("/users/project/%d", projectID)
	if err := c.Get(ctx, path, &users); err != nil {
		return nil, fmt.Errorf(
			"fetching members of project %d: %w", projectID, err,
		)
	}
	return users, nil
}

// OrganisationUsers fetches every user in an organisation.
func (c *Client) OrganisationUsers(
	ctx context.Context,
	organisation string,
) ([]model.User, error) {
	var users []model.User
	path := "/users/organisation/" + url.PathEscape(organisation)
	if err := c.Get(ctx, path, &users); err != nil {
		return nil, fmt.Errorf(
			"fetching users of organisation %s: %w", organisation, err,
		)
	}
	return users, nil
}

// AssignableUsers fetches the organisation users eligible to be added to
// the given project.
func (c *Client) AssignableUsers(
	ctx context.Context,
	organisation string,
	projectID int,
) ([]model.User, error) {
	return c.rosterUsers(ctx, "assignproject", organisation, projectID)
}

// UnassignableUsers fetches the organisation users eligible to be removed
// from the given project.
func (c *Client) UnassignableUsers(
	ctx context.Context,
	organisation string,
	projectID int,
) ([]model.User, error) {
	return c.rosterUsers(ctx, "unassignproject", organisation, projectID)
}

func (c *Client) rosterUsers(
	ctx context.Context,
	action string,
	organisation string,
	projectID int,
) ([]model.User, error) {
	var users []model.User
	path := fmt.Sprintf(
		"/users/%s/%s?project_id=%d",
		action, url.PathEscape(organisation), projectID,
	)
	if err := c.Get(ctx, path, &users); err != nil {
		return nil, fmt.Errorf(
			"fetching %s roster for project %d: %w", action, projectID, err,
		)
	}
	return users, nil
}
