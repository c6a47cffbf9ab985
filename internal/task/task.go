package task

import (
	"fmt"
	"time"
)

// Status represents the lifecycle of a task.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusStashed Status = "stashed"
	StatusLocked  Status = "locked"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	StatusDone    Status = "done"
)

// Result describes how a finished task ended. It is empty until Status is done.
type Result string

const (
	ResultSuccess          Result = "success"
	ResultFailed           Result = "failed"
	ResultFailedToSpawn    Result = "failed_to_spawn"
	ResultKilled           Result = "killed"
	ResultErrored          Result = "errored"
	ResultDependencyFailed Result = "dependency_failed"
)

var knownStatuses = map[Status]struct{}{
	StatusQueued:  {},
	StatusStashed: {},
	StatusLocked:  {},
	StatusRunning: {},
	StatusPaused:  {},
	StatusDone:    {},
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s Status) bool {
	_, ok := knownStatuses[s]
	return ok
}

// Task is a snapshot of a task as stored in the task directory.
type Task struct {
	ID         int               `json:"id"`
	Command    string            `json:"command"`
	Path       string            `json:"path"`
	Label      string            `json:"label,omitempty"`
	Group      string            `json:"group"`
	Envs       map[string]string `json:"envs,omitempty"`
	Status     Status            `json:"status"`
	Result     Result            `json:"result,omitempty"`
	ExitCode   int               `json:"exit_code,omitempty"`
	SpawnError string            `json:"spawn_error,omitempty"`
	Enqueued   time.Time         `json:"enqueued_at"`
	Start      *time.Time        `json:"start,omitempty"`
	End        *time.Time        `json:"end,omitempty"`
}

// IsRunning reports whether the task currently owns a process. Paused tasks
// still have a live process and are treated as running.
func (t Task) IsRunning() bool {
	return t.Status == StatusRunning || t.Status == StatusPaused
}

// IsDone reports whether the task has finished.
func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// HasOutput reports whether the task has been started and may have written logs.
func (t Task) HasOutput() bool {
	return t.IsRunning() || t.IsDone()
}

// StartAndEnd returns the start and end times, when known.
func (t Task) StartAndEnd() (*time.Time, *time.Time) {
	return t.Start, t.End
}

// Describe renders the task status for humans, including the result for
// finished tasks.
func (t Task) Describe() string {
	switch t.Status {
	case StatusPaused:
		return "paused"
	case StatusRunning:
		return "running"
	case StatusDone:
		switch t.Result {
		case ResultSuccess:
			return "completed successfully"
		case ResultFailed:
			return fmt.Sprintf("failed with exit code %d", t.ExitCode)
		case ResultFailedToSpawn:
			return "failed to spawn"
		case ResultKilled:
			return "killed by system or user"
		case ResultErrored:
			return "some IO error, check daemon log"
		case ResultDependencyFailed:
			return "dependency failed"
		default:
			return "done"
		}
	default:
		return string(t.Status)
	}
}

// Failed reports whether a finished task ended unsuccessfully.
func (t Task) Failed() bool {
	return t.IsDone() && t.Result != ResultSuccess
}
