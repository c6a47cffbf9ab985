package daemon

import (
	"context"
	"errors"
	"io/fs"

	"hopper/internal/ipc"
	"hopper/internal/logging"
	"hopper/internal/logs"
	"hopper/internal/task"
)

var _ ipc.Handler = (*Daemon)(nil)

// Tasks lists every task in the directory.
func (d *Daemon) Tasks(ctx context.Context) ([]task.Task, error) {
	return d.store.List(ctx, task.SelectAll())
}

// Task returns a single task, or nil when it does not exist.
func (d *Daemon) Task(ctx context.Context, id int) (*task.Task, error) {
	return d.store.Get(ctx, id)
}

// Logs answers a log request. Payloads are attached only when the client
// asked for them; a task without a log file gets an empty payload.
func (d *Daemon) Logs(ctx context.Context, req ipc.Request) (map[int]ipc.TaskLogEntry, error) {
	tasks, err := d.store.List(ctx, req.Selection)
	if err != nil {
		return nil, err
	}

	entries := make(map[int]ipc.TaskLogEntry, len(tasks))
	for _, t := range tasks {
		entry := ipc.TaskLogEntry{Task: t}
		if req.SendLogs {
			entry.Output, entry.OutputComplete = d.compressLog(ctx, t.ID, req.Lines)
		}
		entries[t.ID] = entry
	}
	return entries, nil
}

func (d *Daemon) compressLog(ctx context.Context, id int, lines *int) ([]byte, bool) {
	payload, complete, err := logs.CompressWindow(d.cfg.Paths.DataDir, id, lines)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WithContext(ctx, d.logger).Warn("failed to read task log",
				logging.Int(logging.FieldTaskID, id),
				logging.Error(err),
				logging.String(logging.FieldEventType, "task_log_read_failed"),
				logging.String(logging.FieldErrorHint, "Check permissions of the task log directory"))
		}
		return []byte{}, true
	}
	if payload == nil {
		payload = []byte{}
	}
	return payload, complete
}
