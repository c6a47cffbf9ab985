package follow_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hopper/internal/logs"
	"hopper/internal/task"
)

type fakeClock struct {
	now     time.Time
	sleeps  int
	onSleep func(n int)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps++
	c.now = c.now.Add(d)
	if c.onSleep != nil {
		c.onSleep(c.sleeps)
	}
	if c.sleeps > 1000 {
		return context.DeadlineExceeded
	}
	return ctx.Err()
}

type fakeDirectory struct {
	mu      sync.Mutex
	tasks   map[int]task.Task
	queries int
	onQuery func(n int)
}

func newDirectory(tasks ...task.Task) *fakeDirectory {
	d := &fakeDirectory{tasks: make(map[int]task.Task)}
	for _, t := range tasks {
		d.tasks[t.ID] = t
	}
	return d
}

func (d *fakeDirectory) Tasks(context.Context) ([]task.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]task.Task, 0, len(d.tasks))
	for _, t := range d.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (d *fakeDirectory) Task(_ context.Context, id int) (*task.Task, error) {
	d.mu.Lock()
	d.queries++
	n := d.queries
	hook := d.onQuery
	d.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (d *fakeDirectory) setStatus(id int, status task.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := d.tasks[id]
	t.Status = status
	if status == task.StatusDone {
		t.Result = task.ResultSuccess
	}
	d.tasks[id] = t
}

func (d *fakeDirectory) remove(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.tasks, id)
}

func writeLog(t *testing.T, root string, id int, content string) string {
	t.Helper()
	path := logs.Path(root, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

func intPtr(v int) *int { return &v }
