package task_test

import (
	"testing"

	"hopper/internal/task"
)

func TestSelectRunning(t *testing.T) {
	cases := []struct {
		name       string
		tasks      []task.Task
		kind       task.SelectionKind
		id         int
		candidates []int
	}{
		{
			name: "none",
			tasks: []task.Task{
				{ID: 0, Status: task.StatusQueued},
				{ID: 1, Status: task.StatusDone, Result: task.ResultSuccess},
			},
			kind: task.NoneRunning,
		},
		{
			name: "single",
			tasks: []task.Task{
				{ID: 0, Status: task.StatusDone},
				{ID: 4, Status: task.StatusRunning},
			},
			kind:       task.Selected,
			id:         4,
			candidates: []int{4},
		},
		{
			name: "paused counts as running",
			tasks: []task.Task{
				{ID: 2, Status: task.StatusPaused},
			},
			kind:       task.Selected,
			id:         2,
			candidates: []int{2},
		},
		{
			name: "ambiguous sorted",
			tasks: []task.Task{
				{ID: 7, Status: task.StatusRunning},
				{ID: 3, Status: task.StatusRunning},
				{ID: 5, Status: task.StatusQueued},
			},
			kind:       task.Ambiguous,
			candidates: []int{3, 7},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := task.SelectRunning(tc.tasks)
			if got.Kind != tc.kind {
				t.Fatalf("kind: got %v want %v", got.Kind, tc.kind)
			}
			if tc.kind == task.Selected && got.ID != tc.id {
				t.Fatalf("id: got %d want %d", got.ID, tc.id)
			}
			if len(got.Candidates) != len(tc.candidates) {
				t.Fatalf("candidates: got %v want %v", got.Candidates, tc.candidates)
			}
			for i := range tc.candidates {
				if got.Candidates[i] != tc.candidates[i] {
					t.Fatalf("candidates: got %v want %v", got.Candidates, tc.candidates)
				}
			}
		})
	}
}

func TestSelectionFromParams(t *testing.T) {
	if sel := task.SelectionFromParams(true, "build", []int{1}); !sel.All {
		t.Fatalf("expected --all to win, got %+v", sel)
	}
	if sel := task.SelectionFromParams(false, " build ", []int{1}); sel.Group != "build" {
		t.Fatalf("expected group selection, got %+v", sel)
	}
	if sel := task.SelectionFromParams(false, "", nil); !sel.All {
		t.Fatalf("expected empty params to select all, got %+v", sel)
	}
	sel := task.SelectionFromParams(false, "", []int{3, 1})
	if len(sel.TaskIDs) != 2 || sel.TaskIDs[0] != 3 {
		t.Fatalf("unexpected id selection: %+v", sel)
	}
	if !sel.Matches(task.Task{ID: 1}) || sel.Matches(task.Task{ID: 2}) {
		t.Fatal("id selection matched the wrong tasks")
	}
	if !task.SelectIDs().Implicit() {
		t.Fatal("expected empty id selection to be implicit")
	}
	if task.SelectIDs().Matches(task.Task{ID: 0}) {
		t.Fatal("implicit selection should not match")
	}
}

func TestDescribe(t *testing.T) {
	cases := map[string]task.Task{
		"running":                  {Status: task.StatusRunning},
		"paused":                   {Status: task.StatusPaused},
		"queued":                   {Status: task.StatusQueued},
		"completed successfully":   {Status: task.StatusDone, Result: task.ResultSuccess},
		"failed with exit code 3":  {Status: task.StatusDone, Result: task.ResultFailed, ExitCode: 3},
		"killed by system or user": {Status: task.StatusDone, Result: task.ResultKilled},
	}
	for want, tk := range cases {
		if got := tk.Describe(); got != want {
			t.Fatalf("Describe(%+v) = %q, want %q", tk, got, want)
		}
	}
	if task.JoinIDs([]int{1, 2, 10}) != "1, 2, 10" {
		t.Fatalf("unexpected JoinIDs output: %q", task.JoinIDs([]int{1, 2, 10}))
	}
}
