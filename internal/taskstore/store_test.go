package taskstore_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"hopper/internal/task"
	"hopper/internal/taskstore"
	"hopper/internal/testsupport"
)

func TestAddAssignsSequentialIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, err := store.Add(ctx, taskstore.NewTask{Command: "echo one", Path: "/srv", Label: "first", Envs: map[string]string{"A": "1"}})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	second, err := store.Add(ctx, taskstore.NewTask{Command: "echo two", Group: "build"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if first.ID != 0 || second.ID != 1 {
		t.Fatalf("unexpected ids: %d %d", first.ID, second.ID)
	}
	if first.Status != task.StatusQueued || first.Group != taskstore.DefaultGroup {
		t.Fatalf("unexpected defaults: %+v", first)
	}
	if first.Label != "first" || first.Envs["A"] != "1" {
		t.Fatalf("unexpected fields: %+v", first)
	}
	if first.Enqueued.IsZero() {
		t.Fatal("expected enqueue time")
	}
}

func TestAddRequiresCommand(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := store.Add(context.Background(), taskstore.NewTask{}); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	got, err := store.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestStatusTransitions(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	added := testsupport.AddTask(t, store, "sleep 5", task.StatusQueued)

	if err := store.SetStatus(ctx, added.ID, task.StatusRunning); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	running, err := store.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !running.IsRunning() || running.Start == nil {
		t.Fatalf("expected running task with start time: %+v", running)
	}

	if err := store.SetStatus(ctx, added.ID, task.StatusDone); err == nil {
		t.Fatal("SetStatus must not finish tasks")
	}

	if err := store.Finish(ctx, added.ID, task.ResultFailed, 3, ""); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	done, err := store.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !done.IsDone() || done.Result != task.ResultFailed || done.ExitCode != 3 {
		t.Fatalf("unexpected finished task: %+v", done)
	}
	if done.End == nil || done.Start == nil || done.End.Before(*done.Start) {
		t.Fatalf("unexpected timestamps: start=%v end=%v", done.Start, done.End)
	}
	if done.Describe() != "failed with exit code 3" {
		t.Fatalf("unexpected description: %q", done.Describe())
	}

	if err := store.SetStatus(ctx, 99, task.StatusRunning); err == nil {
		t.Fatal("expected error for missing task")
	}
}

func TestListSelections(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	for _, in := range []taskstore.NewTask{
		{Command: "a"},
		{Command: "b", Group: "build"},
		{Command: "c", Group: "build"},
	} {
		if _, err := store.Add(ctx, in); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	cases := []struct {
		name string
		sel  task.Selection
		want []int
	}{
		{"all", task.SelectAll(), []int{0, 1, 2}},
		{"implicit", task.Selection{}, []int{0, 1, 2}},
		{"group", task.SelectGroup("build"), []int{1, 2}},
		{"ids", task.SelectIDs(2, 0, 7), []int{0, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks, err := store.List(ctx, tc.sel)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(tasks) != len(tc.want) {
				t.Fatalf("got %d tasks, want %v", len(tasks), tc.want)
			}
			for i, id := range tc.want {
				if tasks[i].ID != id {
					t.Fatalf("position %d: got id %d want %d", i, tasks[i].ID, id)
				}
			}
		})
	}

	exists, err := store.GroupExists(ctx, "build")
	if err != nil || !exists {
		t.Fatalf("expected build group: %v %v", exists, err)
	}
	exists, err = store.GroupExists(ctx, "deploy")
	if err != nil || exists {
		t.Fatalf("unexpected deploy group: %v %v", exists, err)
	}
}

func TestRemove(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	added := testsupport.AddTask(t, store, "true", task.StatusDone)

	if err := store.Remove(ctx, added.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	got, err := store.Get(ctx, added.ID)
	if err != nil || got != nil {
		t.Fatalf("expected task to be gone, got %+v err=%v", got, err)
	}
	if err := store.Remove(ctx, added.ID); err != nil {
		t.Fatalf("Remove of missing task failed: %v", err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := taskstore.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	path := store.Path()
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 999"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := taskstore.Open(cfg); !errors.Is(err, taskstore.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
