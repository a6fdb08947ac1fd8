package store

import (
	"context"
	"testing"

	"github.com/nhle/sprintboard/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		user, err := s.LoadSession(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if user != nil {
			t.Errorf("got %+v, want nil", user)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		saved := &model.User{
			ID: 7, Email: "ada@example.com", FullName: "Ada Lovelace",
			Organisation: "Acme",
		}
		if err := s.SaveSession(ctx, saved); err != nil {
			t.Fatalf("save: %v", err)
		}

		loaded, err := s.LoadSession(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded == nil || loaded.ID != 7 || loaded.Email != saved.Email {
			t.Errorf("got %+v, want the saved user", loaded)
		}
	})

	t.Run("second save replaces the first", func(t *testing.T) {
		if err := s.SaveSession(ctx, &model.User{ID: 8, Email: "bob@example.com"}); err != nil {
			t.Fatalf("save: %v", err)
		}
		loaded, err := s.LoadSession(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded == nil || loaded.ID != 8 {
			t.Errorf("got %+v, want the replacement user", loaded)
		}
	})

	t.Run("clear", func(t *testing.T) {
		if err := s.ClearSession(ctx); err != nil {
			t.Fatalf("clear: %v", err)
		}
		loaded, err := s.LoadSession(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded != nil {
			t.Errorf("got %+v after clear, want nil", loaded)
		}
	})
}

func TestBoardPrefsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("missing project", func(t *testing.T) {
		prefs, err := s.LoadBoardPrefs(ctx, 5)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if prefs != nil {
			t.Errorf("got %+v, want nil", prefs)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		saved := BoardPrefs{
			ProjectID:       5,
			SprintAssignees: map[int]int{3: 7, 4: -1},
			BacklogAssignee: -1,
			ShowFinished:    true,
		}
		if err := s.SaveBoardPrefs(ctx, saved); err != nil {
			t.Fatalf("save: %v", err)
		}

		loaded, err := s.LoadBoardPrefs(ctx, 5)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded == nil {
			t.Fatal("got nil prefs")
		}
		if loaded.BacklogAssignee != -1 || !loaded.ShowFinished {
			t.Errorf("got %+v", loaded)
		}
		if loaded.SprintAssignees[3] != 7 || loaded.SprintAssignees[4] != -1 {
			t.Errorf("got sprint assignees %v", loaded.SprintAssignees)
		}
	})

	t.Run("replace", func(t *testing.T) {
		if err := s.SaveBoardPrefs(ctx, BoardPrefs{ProjectID: 5}); err != nil {
			t.Fatalf("save: %v", err)
		}
		loaded, err := s.LoadBoardPrefs(ctx, 5)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded.ShowFinished || loaded.BacklogAssignee != 0 ||
			len(loaded.SprintAssignees) != 0 {
			t.Errorf("got %+v, want reset prefs", loaded)
		}
	})

	t.Run("projects are independent", func(t *testing.T) {
		if err := s.SaveBoardPrefs(ctx, BoardPrefs{
			ProjectID: 6, ShowFinished: true,
		}); err != nil {
			t.Fatalf("save: %v", err)
		}
		five, err := s.LoadBoardPrefs(ctx, 5)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if five.ShowFinished {
			t.Error("project 5 prefs affected by project 6 save")
		}
	})
}
