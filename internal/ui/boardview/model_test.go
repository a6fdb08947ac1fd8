package boardview_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nhle/sprintboard/internal/api"
	"github.com/nhle/sprintboard/internal/board"
	"github.com/nhle/sprintboard/internal/keys"
	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/search"
	"github.com/nhle/sprintboard/internal/ui/boardview"
	"github.com/nhle/sprintboard/tests/testutil"
)

// A refresh request is a message of its own, so it keeps working however
// the refresh key is bound.
func TestRefreshRequested(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SeedProject(model.Project{ID: 5, Title: "Payments"})
	backend.SeedTask(model.Task{
		ID: 101, ProjectID: 5, Title: "Design invoice layout",
		WorkType: model.WorkTypeTask, WorkFlow: model.WorkflowBacklog,
		Priority: model.PriorityMedium,
	})

	client := api.NewClient(backend.URL(), time.Second)
	searchStore := search.New()
	engine := board.NewEngine(client, searchStore, nil)
	engine.SetProject(context.Background(), 5)

	m := boardview.New(
		engine, client, searchStore, keys.DefaultKeyMap(),
		model.Project{ID: 5, Title: "Payments"}, 80, 24,
	)

	m, cmd := m.Update(boardview.RefreshRequestedMsg{})
	if cmd == nil {
		t.Fatal("expected a refresh command")
	}

	msg := cmd()
	loaded, ok := msg.(boardview.BoardLoadedMsg)
	if !ok {
		t.Fatalf("got %T, want BoardLoadedMsg", msg)
	}
	if loaded.Err != nil {
		t.Fatalf("refresh: %v", loaded.Err)
	}
	if loaded.Snapshot == nil {
		t.Fatal("refresh returned no snapshot")
	}

	m, _ = m.Update(loaded)
	if !strings.Contains(m.View(), "Design invoice layout") {
		t.Error("refreshed board does not show the task")
	}
}
