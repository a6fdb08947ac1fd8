package board_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nhle/sprintboard/internal/api"
	"github.com/nhle/sprintboard/internal/board"
	"github.com/nhle/sprintboard/internal/model"
	"github.com/nhle/sprintboard/internal/search"
	"github.com/nhle/sprintboard/tests/testutil"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

// seedBoard populates a project with one active sprint, one ended
// sprint, and tasks spread across the sections.
func seedBoard(backend *testutil.Backend) {
	backend.SeedProject(model.Project{ID: 5, Title: "Payments"})
	backend.SeedSprint(model.Sprint{
		ID: 3, ProjectID: 5,
		StartDate: "2026-08-01", EndDate: "2026-08-15", Status: true,
	})
	backend.SeedSprint(model.Sprint{
		ID: 4, ProjectID: 5,
		StartDate: "2026-07-01", EndDate: "2026-07-15", Status: false,
	})

	backend.SeedTask(model.Task{
		ID: 101, ProjectID: 5, Title: "Design invoice layout",
		WorkType: model.WorkTypeTask, WorkFlow: model.WorkflowBacklog,
		Priority: model.PriorityMedium,
	})
	backend.SeedTask(model.Task{
		ID: 102, ProjectID: 5, Title: "Implement payment flow",
		WorkType: model.WorkTypeStory, WorkFlow: model.WorkflowInProgress,
		Priority: model.PriorityMajor,
		SprintID: intPtr(3), UserID: intPtr(7), UserName: strPtr("Ada Lovelace"),
	})
	backend.SeedTask(model.Task{
		ID: 103, ProjectID: 5, Title: "Fix rounding bug",
		WorkType: model.WorkTypeBug, WorkFlow: model.WorkflowToDo,
		Priority: model.PriorityCritical,
		SprintID: intPtr(3),
	})
	backend.SeedTask(model.Task{
		ID: 104, ProjectID: 5, Title: "Retire legacy gateway",
		WorkType: model.WorkTypeTask, WorkFlow: model.WorkflowDone,
		Priority: model.PriorityMinor,
		SprintID: intPtr(4), UserID: intPtr(7), UserName: strPtr("Ada Lovelace"),
	})
}

func newEngine(t *testing.T, backend *testutil.Backend) (*board.Engine, *search.Store) {
	t.Helper()
	client := api.NewClient(backend.URL(), time.Second)
	searchStore := search.New()
	engine := board.NewEngine(client, searchStore, nil)
	engine.SetProject(context.Background(), 5)
	return engine, searchStore
}

func taskIDs(tasks []model.Task) []int {
	ids := make([]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func assertIDs(t *testing.T, tasks []model.Task, want ...int) {
	t.Helper()
	got := taskIDs(tasks)
	if len(got) != len(want) {
		t.Fatalf("got tasks %v, want %v", got, want)
	}
	seen := make(map[int]bool)
	for _, id := range got {
		seen[id] = true
	}
	for _, id := range want {
		if !seen[id] {
			t.Errorf("got tasks %v, missing %d", got, id)
		}
	}
}

func TestRefresh(t *testing.T) {
	backend := testutil.NewBackend(t)
	seedBoard(backend)
	engine, _ := newEngine(t, backend)
	ctx := context.Background()

	snap, err := engine.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if snap.Searching {
		t.Error("snapshot should not be in search mode")
	}
	if len(snap.Sprints) != 2 {
		t.Fatalf("got %d sprints, want 2", len(snap.Sprints))
	}

	assertIDs(t, snap.BacklogTasks(), 101)
	assertIDs(t, snap.TasksForSprint(3), 102, 103)
	assertIDs(t, snap.TasksForSprint(4), 104)

	// No id appears twice after the merge.
	seen := make(map[int]bool)
	for _, task := range snap.Tasks {
		if seen[task.ID] {
			t.Errorf("task %d appears twice in the snapshot", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestRefreshSearchMode(t *testing.T) {
	backend := testutil.NewBackend(t)
	seedBoard(backend)
	engine, searchStore := newEngine(t, backend)
	ctx := context.Background()

	searchStore.SetQuery("payment")
	backend.ResetRequests()

	snap, err := engine.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if !snap.Searching {
		t.Error("snapshot should be in search mode")
	}
	assertIDs(t, snap.Tasks, 102)

	if n := backend.RequestCount("/tasks/search/ByTitle"); n != 1 {
		t.Errorf("got %d search requests, want 1", n)
	}
	if n := backend.RequestCount("/sprints/"); n != 0 {
		t.Error("search mode should not fetch sprints")
	}
	if n := backend.RequestCount("/tasks/unassigned"); n != 0 {
		t.Error("search mode should not fetch the backlog")
	}

	// Clearing the query restores the grouped board.
	searchStore.SetQuery("  ")
	snap, err = engine.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snap.Searching {
		t.Error("blank query should leave search mode")
	}
	assertIDs(t, snap.BacklogTasks(), 101)
}

func TestRefreshCategoricalFilters(t *testing.T) {
	backend := testutil.NewBackend(t)
	seedBoard(backend)
	engine, searchStore := newEngine(t, backend)
	ctx := context.Background()

	searchStore.SetWorkType("Bug")
	backend.ResetRequests()

	snap, err := engine.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	var backlogReq, activeReq, endedReq string
	for _, r := range backend.Requests() {
		switch {
		case strings.Contains(r, "backlog=true"):
			backlogReq = r
		case strings.Contains(r, "sprint_ids=3"):
			activeReq = r
		case strings.Contains(r, "sprint_ids=4"):
			endedReq = r
		}
	}

	if !strings.Contains(backlogReq, "work_type=Bug") {
		t.Errorf("backlog request %q missing the filter", backlogReq)
	}
	if !strings.Contains(activeReq, "work_type=Bug") {
		t.Errorf("active sprint request %q missing the filter", activeReq)
	}
	if strings.Contains(endedReq, "work_type=") {
		t.Errorf("ended sprint request %q should not carry the filter", endedReq)
	}

	// The Bug lives in sprint 3; the ended sprint keeps its full listing.
	assertIDs(t, snap.TasksForSprint(3), 103)
	assertIDs(t, snap.TasksForSprint(4), 104)
}

func TestRefreshSprint(t *testing.T) {
	backend := testutil.NewBackend(t)
	seedBoard(backend)
	engine, _ := newEngine(t, backend)
	ctx := context.Background()

	if _, err := engine.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	t.Run("assignee filter narrows one sprint only", func(t *testing.T) {
		backend.ResetRequests()

		snap, err := engine.RefreshSprint(ctx, 3, 7)
		if err != nil {
			t.Fatalf("refresh sprint: %v", err)
		}

		// Only one request went out, scoped to the sprint and user.
		reqs := backend.Requests()
		if len(reqs) != 1 {
			t.Fatalf("got requests %v, want exactly one", reqs)
		}
		if !strings.Contains(reqs[0], "sprint_ids=3") ||
			!strings.Contains(reqs[0], "user_ids=7") {
			t.Errorf("got request %q", reqs[0])
		}

		// The backlog and the other sprint were left untouched.
		assertIDs(t, snap.BacklogTasks(), 101)
		assertIDs(t, snap.TasksForSprint(3), 102)
		assertIDs(t, snap.TasksForSprint(4), 104)

		if engine.SprintAssignee(3) != 7 {
			t.Errorf("got filter %d, want 7", engine.SprintAssignee(3))
		}
	})

	t.Run("unassigned-only filter", func(t *testing.T) {
		snap, err := engine.RefreshSprint(ctx, 3, board.AssigneeUnassigned)
		if err != nil {
			t.Fatalf("refresh sprint: %v", err)
		}
		assertIDs(t, snap.TasksForSprint(3), 103)
	})

	t.Run("clearing the filter restores the full sprint", func(t *testing.T) {
		snap, err := engine.RefreshSprint(ctx, 3, 0)
		if err != nil {
			t.Fatalf("refresh sprint: %v", err)
		}
		assertIDs(t, snap.TasksForSprint(3), 102, 103)
		if engine.SprintAssignee(3) != 0 {
			t.Errorf("filter should be cleared, got %d", engine.SprintAssignee(3))
		}
	})

	t.Run("categorical filters skip an ended sprint", func(t *testing.T) {
		searchStore := search.New()
		searchStore.SetWorkType("Task")
		client := api.NewClient(backend.URL(), time.Second)
		filtered := board.NewEngine(client, searchStore, nil)
		filtered.SetProject(ctx, 5)
		if _, err := filtered.Refresh(ctx); err != nil {
			t.Fatalf("refresh: %v", err)
		}

		backend.ResetRequests()
		if _, err := filtered.RefreshSprint(ctx, 4, 0); err != nil {
			t.Fatalf("refresh sprint: %v", err)
		}
		if _, err := filtered.RefreshSprint(ctx, 3, 0); err != nil {
			t.Fatalf("refresh sprint: %v", err)
		}

		var endedReq, activeReq string
		for _, r := range backend.Requests() {
			switch {
			case strings.Contains(r, "sprint_ids=4"):
				endedReq = r
			case strings.Contains(r, "sprint_ids=3"):
				activeReq = r
			}
		}
		if strings.Contains(endedReq, "work_type=") {
			t.Errorf("ended sprint request %q should not carry the filter", endedReq)
		}
		if !strings.Contains(activeReq, "work_type=Task") {
			t.Errorf("active sprint request %q missing the filter", activeReq)
		}
	})
}

func TestRefreshStaleGeneration(t *testing.T) {
	backend := testutil.NewBackend(t)
	seedBoard(backend)
	engine, searchStore := newEngine(t, backend)
	ctx := context.Background()

	searchStore.SetQuery("payment")

	// Stall the first search request until the second refresh commits.
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32
	backend.SetHook(func(r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/tasks/search") {
			return
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
	})

	firstDone := make(chan error, 1)
	go func() {
		_, err := engine.Refresh(ctx)
		firstDone <- err
	}()

	<-started
	if _, err := engine.Refresh(ctx); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	close(release)

	if err := <-firstDone; !errors.Is(err, board.ErrStale) {
		t.Errorf("first refresh returned %v, want ErrStale", err)
	}

	// The collection holds the second refresh's result.
	assertIDs(t, engine.Snapshot().Tasks, 102)
}

func TestUpdateTaskField(t *testing.T) {
	backend := testutil.NewBackend(t)
	seedBoard(backend)
	engine, _ := newEngine(t, backend)
	ctx := context.Background()

	if _, err := engine.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	t.Run("patches the full record with one field replaced", func(t *testing.T) {
		updated, err := engine.UpdateTaskField(ctx, 102, "work_flow", "Done")
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.WorkFlow != model.WorkflowDone {
			t.Errorf("got workflow %q", updated.WorkFlow)
		}

		stored, ok := backend.Task(102)
		if !ok {
			t.Fatal("task disappeared")
		}
		if stored.WorkFlow != model.WorkflowDone {
			t.Errorf("backend workflow %q, want Done", stored.WorkFlow)
		}
		// The rest of the record survived the full-record PATCH.
		if stored.Title != "Implement payment flow" {
			t.Errorf("title lost in update: %q", stored.Title)
		}
		if stored.UserID == nil || *stored.UserID != 7 {
			t.Errorf("assignee lost in update: %v", stored.UserID)
		}
	})

	t.Run("moving to the backlog", func(t *testing.T) {
		updated, err := engine.UpdateTaskField(ctx, 103, "sprint_id", nil)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.SprintID != nil {
			t.Errorf("got sprint %v, want backlog", updated.SprintID)
		}
	})

	t.Run("unknown task makes no request", func(t *testing.T) {
		backend.ResetRequests()
		if _, err := engine.UpdateTaskField(ctx, 999, "title", "x"); err == nil {
			t.Fatal("expected an error")
		}
		if len(backend.Requests()) != 0 {
			t.Errorf("got requests %v, want none", backend.Requests())
		}
	})
}

func TestCreateTask(t *testing.T) {
	backend := testutil.NewBackend(t)
	seedBoard(backend)
	engine, _ := newEngine(t, backend)
	ctx := context.Background()

	t.Run("blank title makes no request", func(t *testing.T) {
		backend.ResetRequests()
		_, err := engine.CreateTask(ctx, board.CreateTaskInput{Title: "   "})
		if err == nil {
			t.Fatal("expected an error")
		}
		if len(backend.Requests()) != 0 {
			t.Errorf("got requests %v, want none", backend.Requests())
		}
	})

	t.Run("defaults and backlog placement", func(t *testing.T) {
		created, err := engine.CreateTask(ctx, board.CreateTaskInput{Title: "New thing"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.WorkType != model.WorkTypeTask ||
			created.WorkFlow != model.WorkflowToDo ||
			created.Priority != model.PriorityMedium {
			t.Errorf("got defaults %s/%s/%s",
				created.WorkType, created.WorkFlow, created.Priority)
		}
		if created.SprintID != nil {
			t.Errorf("got sprint %v, want backlog", created.SprintID)
		}
	})

	t.Run("sprint placement with assignee", func(t *testing.T) {
		created, err := engine.CreateTask(ctx, board.CreateTaskInput{
			Title:    "Sprint work",
			SprintID: intPtr(3),
			Assignee: &model.User{ID: 7, FullName: "Ada Lovelace"},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.SprintID == nil || *created.SprintID != 3 {
			t.Errorf("got sprint %v, want 3", created.SprintID)
		}
		if created.UserID == nil || *created.UserID != 7 {
			t.Errorf("got assignee %v, want 7", created.UserID)
		}
	})
}

func TestCreateSprint(t *testing.T) {
	backend := testutil.NewBackend(t)
	seedBoard(backend)
	engine, _ := newEngine(t, backend)
	ctx := context.Background()

	t.Run("blank dates use the default window", func(t *testing.T) {
		created, err := engine.CreateSprint(ctx, "", "")
		if err != nil {
			t.Fatalf("create sprint: %v", err)
		}
		wantStart, wantEnd := model.DefaultSprintWindow(time.Now())
		if created.StartDate != wantStart || created.EndDate != wantEnd {
			t.Errorf("got window %s - %s, want %s - %s",
				created.StartDate, created.EndDate, wantStart, wantEnd)
		}
		if !created.Status {
			t.Error("new sprint should be active")
		}
	})

	t.Run("one blank date makes no request", func(t *testing.T) {
		backend.ResetRequests()
		if _, err := engine.CreateSprint(ctx, "2026-09-01", ""); err == nil {
			t.Fatal("expected an error")
		}
		if len(backend.Requests()) != 0 {
			t.Errorf("got requests %v, want none", backend.Requests())
		}
	})
}

func TestEndSprint(t *testing.T) {
	backend := testutil.NewBackend(t)
	seedBoard(backend)
	engine, _ := newEngine(t, backend)
	ctx := context.Background()

	if _, err := engine.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := engine.EndSprint(ctx, 3); err != nil {
		t.Fatalf("end sprint: %v", err)
	}

	stored, _ := backend.Sprint(3)
	if stored.Status {
		t.Error("backend sprint should be ended")
	}

	// Ended sprints disappear from the visible set but stay in the data.
	if got := engine.VisibleSprints(); len(got) != 0 {
		t.Errorf("got visible sprints %v, want none", got)
	}
	engine.SetShowFinished(ctx, true)
	if got := engine.VisibleSprints(); len(got) != 2 {
		t.Errorf("got %d visible sprints with the toggle on, want 2", len(got))
	}
	if got := engine.Snapshot().Sprints; len(got) != 2 {
		t.Errorf("ended sprint was dropped from the data: %v", got)
	}
}

func TestBacklogAssigneeFilter(t *testing.T) {
	backend := testutil.NewBackend(t)
	seedBoard(backend)
	backend.SeedTask(model.Task{
		ID: 105, ProjectID: 5, Title: "Ada's backlog item",
		WorkType: model.WorkTypeTask, WorkFlow: model.WorkflowBacklog,
		Priority: model.PriorityMedium,
		UserID:   intPtr(7), UserName: strPtr("Ada Lovelace"),
	})

	engine, _ := newEngine(t, backend)
	ctx := context.Background()

	engine.SetBacklogAssignee(ctx, 7)
	snap, err := engine.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	assertIDs(t, snap.BacklogTasks(), 105)

	engine.SetBacklogAssignee(ctx, 0)
	snap, err = engine.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	assertIDs(t, snap.BacklogTasks(), 101)
}

func TestBoardPrefsPersist(t *testing.T) {
	backend := testutil.NewBackend(t)
	seedBoard(backend)
	db := testutil.NewTestStore(t)
	client := api.NewClient(backend.URL(), time.Second)
	ctx := context.Background()

	first := board.NewEngine(client, search.New(), db)
	first.SetProject(ctx, 5)
	if _, err := first.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := first.RefreshSprint(ctx, 3, 7); err != nil {
		t.Fatalf("refresh sprint: %v", err)
	}
	first.SetBacklogAssignee(ctx, board.AssigneeUnassigned)
	first.SetShowFinished(ctx, true)

	second := board.NewEngine(client, search.New(), db)
	second.SetProject(ctx, 5)

	if got := second.SprintAssignee(3); got != 7 {
		t.Errorf("got sprint filter %d, want 7", got)
	}
	if got := second.BacklogAssignee(); got != board.AssigneeUnassigned {
		t.Errorf("got backlog filter %d, want unassigned", got)
	}
	if !second.ShowFinished() {
		t.Error("show-finished toggle was not restored")
	}
}
