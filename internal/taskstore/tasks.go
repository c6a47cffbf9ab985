package taskstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hopper/internal/task"
)

// DefaultGroup is assigned to tasks added without a group.
const DefaultGroup = "default"

// NewTask describes a task to enqueue.
type NewTask struct {
	Command string
	Path    string
	Label   string
	Group   string
	Envs    map[string]string
}

const taskColumns = "id, command, path, label, group_name, envs_json, status, result, exit_code, spawn_error, enqueued_at, started_at, ended_at"

// Add enqueues a task and returns it with its assigned id. Ids start at 0
// and are never reused while higher ids exist.
func (s *Store) Add(ctx context.Context, in NewTask) (*task.Task, error) {
	if strings.TrimSpace(in.Command) == "" {
		return nil, errors.New("task command is required")
	}
	group := strings.TrimSpace(in.Group)
	if group == "" {
		group = DefaultGroup
	}
	var envs any
	if len(in.Envs) > 0 {
		data, err := json.Marshal(in.Envs)
		if err != nil {
			return nil, fmt.Errorf("marshal envs: %w", err)
		}
		envs = string(data)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	var id int
	err := retryOnBusy(ensureContext(ctx), func() error {
		return s.db.QueryRowContext(ctx,
			`INSERT INTO tasks (id, command, path, label, group_name, envs_json, status, enqueued_at)
             VALUES ((SELECT COALESCE(MAX(id) + 1, 0) FROM tasks), ?, ?, ?, ?, ?, ?, ?)
             RETURNING id`,
			in.Command,
			in.Path,
			nullableString(in.Label),
			group,
			envs,
			task.StatusQueued,
			now,
		).Scan(&id)
	})
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.Get(ctx, id)
}

// Get fetches a task. It returns nil, nil when the task does not exist.
func (s *Store) Get(ctx context.Context, id int) (*task.Task, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// List returns the tasks addressed by sel ordered by id. Implicit selections
// list every task.
func (s *Store) List(ctx context.Context, sel task.Selection) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	switch {
	case sel.All || sel.Implicit():
	case sel.Group != "":
		query += ` WHERE group_name = ?`
		args = append(args, sel.Group)
	default:
		query += ` WHERE id IN (` + makePlaceholders(len(sel.TaskIDs)) + `)`
		for _, id := range sel.TaskIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// GroupExists reports whether any task belongs to group.
func (s *Store) GroupExists(ctx context.Context, group string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM tasks WHERE group_name = ?`, group).Scan(&count); err != nil {
		return false, fmt.Errorf("check group %q: %w", group, err)
	}
	return count > 0, nil
}

// SetStatus moves a task to a non-final status. The start time is recorded
// the first time a task runs.
func (s *Store) SetStatus(ctx context.Context, id int, status task.Status) error {
	if !task.ValidStatus(status) || status == task.StatusDone {
		return fmt.Errorf("invalid status %q for task %d", status, id)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE tasks SET status = ?,
            started_at = CASE WHEN ? = 'running' AND started_at IS NULL THEN ? ELSE started_at END
         WHERE id = ?`,
		status, status, now, id)
	if err != nil {
		return fmt.Errorf("update task %d status: %w", id, err)
	}
	return requireRow(res, id)
}

// Finish marks a task done with the given result.
func (s *Store) Finish(ctx context.Context, id int, result task.Result, exitCode int, spawnError string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE tasks SET status = ?, result = ?, exit_code = ?, spawn_error = ?,
            started_at = COALESCE(started_at, ?), ended_at = ?
         WHERE id = ?`,
		task.StatusDone, result, exitCode, nullableString(spawnError), now, now, id)
	if err != nil {
		return fmt.Errorf("finish task %d: %w", id, err)
	}
	return requireRow(res, id)
}

// Remove deletes a task. Removing a missing task is not an error.
func (s *Store) Remove(ctx context.Context, id int) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove task %d: %w", id, err)
	}
	return nil
}

func requireRow(res sql.Result, id int) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task %d does not exist", id)
	}
	return nil
}
