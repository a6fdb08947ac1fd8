package projects_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nhle/sprintboard/internal/api"
	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/projects"
	"github.com/nhle/sprintboard/internal/session"
	"github.com/nhle/sprintboard/tests/testutil"
)

func newService(t *testing.T, backend *testutil.Backend) (*projects.Service, *session.Store) {
	t.Helper()
	client := api.NewClient(backend.URL(), time.Second)
	db := testutil.NewTestStore(t)
	sess := session.New(client, db)
	return projects.NewService(client, sess, "Acme"), sess
}

func login(t *testing.T, backend *testutil.Backend, sess *session.Store, u model.User) {
	t.Helper()
	backend.SeedUser(u, "pw")
	if _, err := sess.Login(context.Background(), u.Email, "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestValidateProjectName(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"valid", "Payments Portal", ""},
		{"valid with digits", "Q3 2026", ""},
		{"minimum length", "abc", ""},
		{"empty", "", "required"},
		{"blank", "   ", "required"},
		{"too short", "ab", "at least 3"},
		{"too long", strings.Repeat("a", 51), "at most 50"},
		{"maximum length", strings.Repeat("a", 50), ""},
		{"punctuation", "ops-tools", "letters, digits, and spaces"},
		{"unicode", "café", "letters, digits, and spaces"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := projects.ValidateProjectName(tc.input)
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("got %v, want valid", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestCreateValidatesBeforeNetwork(t *testing.T) {
	backend := testutil.NewBackend(t)
	service, sess := newService(t, backend)
	login(t, backend, sess, model.User{ID: 7, Email: "ada@example.com", FullName: "Ada"})

	backend.ResetRequests()
	if _, err := service.Create(context.Background(), "x"); err == nil {
		t.Fatal("expected a validation error")
	}
	if n := backend.RequestCount("/projects"); n != 0 {
		t.Errorf("invalid name reached the backend: %v", backend.Requests())
	}
}

func TestCreate(t *testing.T) {
	backend := testutil.NewBackend(t)
	service, sess := newService(t, backend)
	login(t, backend, sess, model.User{
		ID: 7, Email: "ada@example.com", FullName: "Ada Lovelace",
	})

	row, err := service.Create(context.Background(), "  Payments Portal  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if row.Project.Title != "Payments Portal" {
		t.Errorf("got title %q, want it trimmed", row.Project.Title)
	}
	if row.Project.ManagerID != 7 {
		t.Errorf("got manager %d, want the creator", row.Project.ManagerID)
	}
	if row.ManagerName != "Ada Lovelace" {
		t.Errorf("got manager name %q", row.ManagerName)
	}
	if row.MemberCount != 1 {
		t.Errorf("got member count %d, want 1", row.MemberCount)
	}
}

func TestList(t *testing.T) {
	backend := testutil.NewBackend(t)
	service, sess := newService(t, backend)
	login(t, backend, sess, model.User{
		ID: 7, Email: "ada@example.com", FullName: "Ada Lovelace",
	})
	backend.SeedUser(model.User{ID: 8, Email: "bob@example.com", FullName: "Bob"}, "pw")

	backend.SeedProject(model.Project{
		ID: 1, Title: "Alpha", ManagerID: 8,
		Users: []model.User{{ID: 7}, {ID: 8}},
	})
	backend.SeedProject(model.Project{
		ID: 2, Title: "Beta", ManagerID: 7,
		Users: []model.User{{ID: 7}},
	})

	rows, err := service.List(context.Background(), 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	byTitle := make(map[string]projects.Row)
	for _, r := range rows {
		byTitle[r.Project.Title] = r
	}

	alpha := byTitle["Alpha"]
	if alpha.MemberCount != 2 {
		t.Errorf("Alpha member count = %d, want 2", alpha.MemberCount)
	}
	if alpha.ManagerName != "Bob" {
		t.Errorf("Alpha manager = %q, want Bob", alpha.ManagerName)
	}

	beta := byTitle["Beta"]
	if beta.MemberCount != 1 {
		t.Errorf("Beta member count = %d, want 1", beta.MemberCount)
	}
	if beta.ManagerName != "Ada Lovelace" {
		t.Errorf("Beta manager = %q", beta.ManagerName)
	}
}

func TestRoster(t *testing.T) {
	backend := testutil.NewBackend(t)
	service, sess := newService(t, backend)
	login(t, backend, sess, model.User{
		ID: 7, Email: "ada@example.com", FullName: "Ada Lovelace",
		Organisation: "Acme",
	})

	backend.SeedUser(model.User{
		ID: 8, Email: "bob@example.com", FullName: "Bob", Organisation: "Acme",
	}, "pw")
	backend.SeedUser(model.User{
		ID: 9, Email: "eve@example.com", Organisation: "Acme",
	}, "pw")
	backend.SeedUser(model.User{
		ID: 10, Email: "mallory@other.com", FullName: "Mallory",
		Organisation: "Other",
	}, "pw")

	backend.SeedProject(model.Project{
		ID: 1, Title: "Alpha", ManagerID: 7,
		Users: []model.User{{ID: 7}},
	})

	t.Run("assignable excludes members and unnamed users", func(t *testing.T) {
		users, err := service.Roster(context.Background(), 1, projects.RosterAssign)
		if err != nil {
			t.Fatalf("roster: %v", err)
		}
		// 9 has no display name and 10 is in another organisation.
		if len(users) != 1 || users[0].ID != 8 {
			t.Errorf("got %v, want only Bob", users)
		}
	})

	t.Run("unassignable lists current members", func(t *testing.T) {
		users, err := service.Roster(context.Background(), 1, projects.RosterUnassign)
		if err != nil {
			t.Fatalf("roster: %v", err)
		}
		if len(users) != 1 || users[0].ID != 7 {
			t.Errorf("got %v, want only the manager", users)
		}
	})
}

func TestAssignUnassign(t *testing.T) {
	backend := testutil.NewBackend(t)
	service, sess := newService(t, backend)
	login(t, backend, sess, model.User{ID: 7, Email: "ada@example.com", FullName: "Ada"})
	backend.SeedUser(model.User{ID: 8, Email: "bob@example.com", FullName: "Bob"}, "pw")

	backend.SeedProject(model.Project{
		ID: 1, Title: "Alpha", ManagerID: 7,
		Users: []model.User{{ID: 7}},
	})
	ctx := context.Background()

	count, err := service.Assign(ctx, 1, 8)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if count != 2 {
		t.Errorf("got member count %d, want 2", count)
	}

	count, err = service.Unassign(ctx, 1, 8)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if count != 1 {
		t.Errorf("got member count %d, want 1", count)
	}
}
