package model

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestDedupeTasks(t *testing.T) {
	t.Run("later entry wins", func(t *testing.T) {
		tasks := []Task{
			{ID: 1, Title: "first"},
			{ID: 2, Title: "other"},
			{ID: 1, Title: "second"},
		}

		out := DedupeTasks(tasks)

		if len(out) != 2 {
			t.Fatalf("got %d tasks, want 2", len(out))
		}
		if out[0].Title != "second" {
			t.Errorf("got title %q, want the later entry to win", out[0].Title)
		}
	})

	t.Run("keeps first-seen position", func(t *testing.T) {
		tasks := []Task{
			{ID: 10, Title: "a"},
			{ID: 20, Title: "b"},
			{ID: 10, Title: "a2"},
			{ID: 30, Title: "c"},
		}

		out := DedupeTasks(tasks)

		want := []int{10, 20, 30}
		if len(out) != len(want) {
			t.Fatalf("got %d tasks, want %d", len(out), len(want))
		}
		for i, id := range want {
			if out[i].ID != id {
				t.Errorf("position %d: got id %d, want %d", i, out[i].ID, id)
			}
		}
	})

	t.Run("drops zero ids", func(t *testing.T) {
		out := DedupeTasks([]Task{{ID: 0, Title: "ghost"}, {ID: 1}})
		if len(out) != 1 || out[0].ID != 1 {
			t.Fatalf("got %v, want only the task with id 1", out)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if out := DedupeTasks(nil); len(out) != 0 {
			t.Fatalf("got %v, want empty", out)
		}
	})
}

func TestTaskClassification(t *testing.T) {
	backlog := Task{ID: 1}
	sprint := Task{ID: 2, SprintID: intPtr(7)}

	if !backlog.InBacklog() {
		t.Error("task without sprint should be in the backlog")
	}
	if sprint.InBacklog() {
		t.Error("task with a sprint should not be in the backlog")
	}
	if !sprint.InSprint(7) {
		t.Error("task should be in sprint 7")
	}
	if sprint.InSprint(8) {
		t.Error("task should not be in sprint 8")
	}
}

func TestAssigneeName(t *testing.T) {
	name := "Ada Lovelace"
	assigned := Task{UserID: intPtr(3), UserName: &name}
	if got := assigned.AssigneeName(); got != name {
		t.Errorf("got %q, want %q", got, name)
	}

	unassigned := Task{}
	if got := unassigned.AssigneeName(); got != "Unassigned" {
		t.Errorf("got %q, want Unassigned", got)
	}
}

func TestDedupeSprints(t *testing.T) {
	sprints := []Sprint{
		{ID: 1, Status: true},
		{ID: 2, Status: true},
		{ID: 1, Status: false},
	}

	out := DedupeSprints(sprints)

	if len(out) != 2 {
		t.Fatalf("got %d sprints, want 2", len(out))
	}
	if out[0].ID != 1 || out[0].Status {
		t.Errorf("got %+v, want the later entry for id 1 in first position", out[0])
	}
}

func TestDefaultSprintWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	start, end := DefaultSprintWindow(now)

	if start != "2026-03-01" {
		t.Errorf("got start %q, want 2026-03-01", start)
	}
	if end != "2026-03-15" {
		t.Errorf("got end %q, want 2026-03-15", end)
	}
}

func TestSprintWindow(t *testing.T) {
	s := Sprint{ID: 1, StartDate: "2026-01-05", EndDate: "2026-01-19"}
	if got := s.Window(); got != "2026-01-05 - 2026-01-19" {
		t.Errorf("got %q", got)
	}

	if got := (Sprint{ID: 2}).Window(); got != "" {
		t.Errorf("got %q, want empty window for missing dates", got)
	}
}
