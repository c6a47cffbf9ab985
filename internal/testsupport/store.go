package testsupport

import (
	"context"
	"testing"

	"hopper/internal/config"
	"hopper/internal/task"
	"hopper/internal/taskstore"
)

// MustOpenStore opens a taskstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *taskstore.Store {
	t.Helper()

	store, err := taskstore.Open(cfg)
	if err != nil {
		t.Fatalf("taskstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddTask enqueues a task and moves it to status. Done tasks finish
// successfully.
func AddTask(t testing.TB, store *taskstore.Store, command string, status task.Status) *task.Task {
	t.Helper()

	ctx := context.Background()
	added, err := store.Add(ctx, taskstore.NewTask{Command: command, Path: "/tmp"})
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	switch status {
	case task.StatusQueued:
	case task.StatusDone:
		if err := store.Finish(ctx, added.ID, task.ResultSuccess, 0, ""); err != nil {
			t.Fatalf("store.Finish: %v", err)
		}
	default:
		if err := store.SetStatus(ctx, added.ID, status); err != nil {
			t.Fatalf("store.SetStatus: %v", err)
		}
	}

	updated, err := store.Get(ctx, added.ID)
	if err != nil || updated == nil {
		t.Fatalf("store.Get: %v", err)
	}
	return updated
}
