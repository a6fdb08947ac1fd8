// Package projects implements the project list view's data operations:
// listing with member/manager fan-out, validated creation, and the
// assign/unassign rosters.
package projects

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/nhle/sprintboard/internal/api"
	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/session"
)

// Row is a project decorated with the aggregate data the list renders.
// ManagerName is empty while the manager fetch is missing or failed; the
// view shows a pending placeholder instead of blocking the row.
type Row struct {
	Project     model.Project
	ManagerName string
	MemberCount int
}

// RosterMode selects which organisation roster a modal shows.
type RosterMode int

const (
	RosterAssign RosterMode = iota
	RosterUnassign
)

// Service performs the project list operations against the backend.
type Service struct {
	client  *api.Client
	session *session.Store

	// fallbackOrg is used for roster lookups when the profile carries
	// no organisation.
	fallbackOrg string
}

// NewService creates a project service.
func NewService(client *api.Client, sess *session.Store, fallbackOrg string) *Service {
	return &Service{
		client:      client,
		session:     sess,
		fallbackOrg: fallbackOrg,
	}
}

// List fetches the user's projects and, in parallel for each project, its
// member count and manager display name. A failed member-count fetch
// yields 0; a failed manager fetch leaves the name empty.
func (s *Service) List(ctx context.Context, userID int) ([]Row, error) {
	projects, err := s.client.ProjectsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(projects))
	var wg sync.WaitGroup
	for i, p := range projects {
		rows[i].Project = p

		wg.Add(1)
		go func(i, projectID int) {
			defer wg.Done()
			members, err := s.client.ProjectMembers(ctx, projectID)
			if err != nil {
				return
			}
			rows[i].MemberCount = len(members)
		}(i, p.ID)

		if p.ManagerID == 0 {
			continue
		}
		wg.Add(1)
		go func(i, managerID int) {
			defer wg.Done()
			manager, err := s.client.User(ctx, managerID)
			if err != nil {
				return
			}
			rows[i].ManagerName = manager.DisplayName()
		}(i, p.ManagerID)
	}
	wg.Wait()

	return rows, nil
}

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

// ValidateProjectName enforces the client-side naming rules: 3-50
// characters, letters, digits, and spaces only. It never touches the
// network.
func ValidateProjectName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return errors.New("project name is required")
	case len(name) < 3:
		return errors.New("project name must be at least 3 characters")
	case len(name) > 50:
		return errors.New("project name must be at most 50 characters")
	case !projectNamePattern.MatchString(name):
		return errors.New("project name may only contain letters, digits, and spaces")
	}
	return nil
}

// Create validates the name and creates a project with the session user
// as manager and initial member. The manager name resolves from the
// session user without a fetch.
func (s *Service) Create(ctx context.Context, name string) (*Row, error) {
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}

	user := s.session.User()
	if user == nil {
		return nil, errors.New("not logged in")
	}

	created, err := s.client.CreateProject(
		ctx, strings.TrimSpace(name), user.ID, []int{user.ID},
	)
	if err != nil {
		return nil, err
	}

	row := &Row{Project: *created, MemberCount: 1}

	if created.ManagerID == user.ID {
		row.ManagerName = user.DisplayName()
	} else if created.ManagerID != 0 {
		if manager, err := s.client.User(ctx, created.ManagerID); err == nil {
			row.ManagerName = manager.DisplayName()
		}
	}

	if members, err := s.client.ProjectMembers(ctx, created.ID); err == nil {
		row.MemberCount = len(members)
	}

	return row, nil
}

// Roster fetches the organisation users eligible for the given mode
// against a project. Users without a display name are dropped.
func (s *Service) Roster(
	ctx context.Context,
	projectID int,
	mode RosterMode,
) ([]model.User, error) {
	org := s.organisation(ctx)

	var (
		users []model.User
		err   error
	)
	if mode == RosterAssign {
		users, err = s.client.AssignableUsers(ctx, org, projectID)
	} else {
		users, err = s.client.UnassignableUsers(ctx, org, projectID)
	}
	if err != nil {
		return nil, err
	}

	named := users[:0]
	for _, u := range users {
		if u.FullName != "" {
			named = append(named, u)
		}
	}
	return named, nil
}

// Assign adds a user to the project and returns the refreshed member
// count. A failed count refresh is not an error; -1 signals "unknown".
func (s *Service) Assign(
	ctx context.Context,
	projectID int,
	userID int,
) (int, error) {
	if err := s.client.AddProjectUsers(ctx, projectID, []int{userID}); err != nil {
		return -1, fmt.Errorf("assigning user %d: %w", userID, err)
	}
	return s.memberCount(ctx, projectID), nil
}

// Unassign removes a user from the project and returns the refreshed
// member count, or -1 when the refresh failed.
func (s *Service) Unassign(
	ctx context.Context,
	projectID int,
	userID int,
) (int, error) {
	if err := s.client.RemoveProjectUsers(ctx, projectID, []int{userID}); err != nil {
		return -1, fmt.Errorf("unassigning user %d: %w", userID, err)
	}
	return s.memberCount(ctx, projectID), nil
}

func (s *Service) memberCount(ctx context.Context, projectID int) int {
	members, err := s.client.ProjectMembers(ctx, projectID)
	if err != nil {
		return -1
	}
	return len(members)
}

// organisation resolves the organisation used for roster lookups: a fresh
// profile fetch, then the cached session user, then the configured
// fallback.
func (s *Service) organisation(ctx context.Context) string {
	user := s.session.User()
	if user != nil {
		if profile, err := s.client.User(ctx, user.ID); err == nil &&
			profile.Organisation != "" {
			return profile.Organisation
		}
		if user.Organisation != "" {
			return user.Organisation
		}
	}
	return s.fallbackOrg
}
