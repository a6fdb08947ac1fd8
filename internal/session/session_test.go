package session_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nhle/sprintboard/internal/api"
	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/session"
	"github.com/nhle/sprintboard/tests/testutil"
)

func newSession(t *testing.T, backend *testutil.Backend) (*session.Store, *api.Client) {
	t.Helper()
	client := api.NewClient(backend.URL(), time.Second)
	db := testutil.NewTestStore(t)
	return session.New(client, db), client
}

func TestLogin(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SeedUser(model.User{
		ID: 7, Email: "ada@example.com", FullName: "Ada Lovelace",
	}, "hunter2")

	t.Run("success installs the user", func(t *testing.T) {
		sess, _ := newSession(t, backend)

		user, err := sess.Login(context.Background(), "ada@example.com", "hunter2")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if user.ID != 7 {
			t.Errorf("got user id %d, want 7", user.ID)
		}
		if got := sess.User(); got == nil || got.ID != 7 {
			t.Errorf("session user not installed: %+v", got)
		}
	})

	t.Run("wrong password surfaces the backend message", func(t *testing.T) {
		sess, _ := newSession(t, backend)

		_, err := sess.Login(context.Background(), "ada@example.com", "wrong")
		if err == nil {
			t.Fatal("expected an error")
		}
		if err.Error() != "Invalid email or password" {
			t.Errorf("got %q, want the backend detail", err)
		}
		if sess.User() != nil {
			t.Error("session user should stay nil after a failed login")
		}
	})

	t.Run("persists across a restart", func(t *testing.T) {
		backend := testutil.NewBackend(t)
		backend.SeedUser(model.User{ID: 9, Email: "bob@example.com"}, "pw")

		client := api.NewClient(backend.URL(), time.Second)
		db := testutil.NewTestStore(t)

		first := session.New(client, db)
		if _, err := first.Login(context.Background(), "bob@example.com", "pw"); err != nil {
			t.Fatalf("login: %v", err)
		}

		// A new session store over the same database simulates a restart.
		second := session.New(client, db)
		if !second.Loading() {
			t.Error("fresh session should report loading before restore")
		}
		if err := second.Restore(context.Background()); err != nil {
			t.Fatalf("restore: %v", err)
		}
		if second.Loading() {
			t.Error("restore should clear the loading flag")
		}
		if got := second.User(); got == nil || got.ID != 9 {
			t.Errorf("restored user = %+v, want id 9", got)
		}
	})
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("direct user object", func(t *testing.T) {
		backend := testutil.NewBackend(t)
		backend.SetSignupMode(testutil.SignupDirect)
		sess, _ := newSession(t, backend)

		user, err := sess.Signup(ctx, "new@example.com", "pw")
		if err != nil {
			t.Fatalf("signup: %v", err)
		}
		if user.Email != "new@example.com" {
			t.Errorf("got email %q", user.Email)
		}
		if sess.User() == nil {
			t.Error("signup should start a session")
		}
	})

	t.Run("wrapped under success message", func(t *testing.T) {
		backend := testutil.NewBackend(t)
		backend.SetSignupMode(testutil.SignupWrapped)
		sess, _ := newSession(t, backend)

		user, err := sess.Signup(ctx, "new@example.com", "pw")
		if err != nil {
			t.Fatalf("signup: %v", err)
		}
		if user.ID == 0 {
			t.Error("wrapped user not unwrapped")
		}
	})

	t.Run("already-registered array", func(t *testing.T) {
		backend := testutil.NewBackend(t)
		backend.SetSignupMode(testutil.SignupErrorArray)
		sess, _ := newSession(t, backend)

		_, err := sess.Signup(ctx, "dup@example.com", "pw")
		if err == nil {
			t.Fatal("expected an error")
		}
		if !strings.Contains(err.Error(), "already registered") {
			t.Errorf("got %q", err)
		}
		if sess.User() != nil {
			t.Error("no session should start from an error response")
		}
	})

	t.Run("error field", func(t *testing.T) {
		backend := testutil.NewBackend(t)
		backend.SetSignupMode(testutil.SignupErrorField)
		sess, _ := newSession(t, backend)

		_, err := sess.Signup(ctx, "dup@example.com", "pw")
		if err == nil || err.Error() != "Email already registered" {
			t.Errorf("got %v, want the error field text", err)
		}
	})

	t.Run("rejected with detail", func(t *testing.T) {
		backend := testutil.NewBackend(t)
		backend.SetSignupMode(testutil.SignupReject)
		sess, _ := newSession(t, backend)

		_, err := sess.Signup(ctx, "dup@example.com", "pw")
		if err == nil || err.Error() != "Email already registered" {
			t.Errorf("got %v, want the backend detail", err)
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SeedUser(model.User{
		ID: 7, Email: "ada@example.com", FullName: "Ada Lovelace",
	}, "hunter2")

	client := api.NewClient(backend.URL(), time.Second)
	db := testutil.NewTestStore(t)
	sess := session.New(client, db)
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		if _, err := sess.UpdateProfile(ctx, model.ProfileUpdate{}); err == nil {
			t.Fatal("expected an error before login")
		}
	})

	if _, err := sess.Login(ctx, "ada@example.com", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}

	role := "Engineer"
	updated, err := sess.UpdateProfile(ctx, model.ProfileUpdate{
		FullName: "Ada King",
		Email:    "ada@example.com",
		Role:     &role,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FullName != "Ada King" || updated.Role != "Engineer" {
		t.Errorf("got %+v", updated)
	}

	if got := sess.User(); got == nil || got.FullName != "Ada King" {
		t.Errorf("session user not replaced: %+v", got)
	}

	// The durable session reflects the edit, so a restart shows it too.
	saved, err := db.LoadSession(ctx)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if saved == nil || saved.FullName != "Ada King" {
		t.Errorf("durable session not updated: %+v", saved)
	}
}

func TestLogout(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SeedUser(model.User{ID: 7, Email: "ada@example.com"}, "pw")

	client := api.NewClient(backend.URL(), time.Second)
	db := testutil.NewTestStore(t)
	sess := session.New(client, db)

	if _, err := sess.Login(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	backend.ResetRequests()
	sess.Logout()

	if sess.User() != nil {
		t.Error("user should be cleared")
	}
	if client.Token() != "" {
		t.Error("token should be cleared")
	}
	if len(backend.Requests()) != 0 {
		t.Errorf("logout made %v network requests, want none", backend.Requests())
	}

	saved, err := db.LoadSession(context.Background())
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if saved != nil {
		t.Error("durable session should be cleared")
	}
}
