package taskstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"hopper/internal/task"
)

func scanTask(scanner interface{ Scan(dest ...any) error }) (*task.Task, error) {
	var (
		id          int
		command     string
		path        string
		label       sql.NullString
		group       string
		envsJSON    sql.NullString
		status      string
		result      sql.NullString
		exitCode    int
		spawnError  sql.NullString
		enqueuedRaw string
		startedRaw  sql.NullString
		endedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&command,
		&path,
		&label,
		&group,
		&envsJSON,
		&status,
		&result,
		&exitCode,
		&spawnError,
		&enqueuedRaw,
		&startedRaw,
		&endedRaw,
	); err != nil {
		return nil, err
	}

	t := &task.Task{
		ID:         id,
		Command:    command,
		Path:       path,
		Label:      label.String,
		Group:      group,
		Status:     task.Status(status),
		Result:     task.Result(result.String),
		ExitCode:   exitCode,
		SpawnError: spawnError.String,
	}
	if envsJSON.Valid && envsJSON.String != "" {
		if err := json.Unmarshal([]byte(envsJSON.String), &t.Envs); err != nil {
			return nil, err
		}
	}
	if enqueued, err := parseTimeString(enqueuedRaw); err == nil {
		t.Enqueued = enqueued
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			t.Start = &started
		}
	}
	if endedRaw.Valid {
		if ended, err := parseTimeString(endedRaw.String); err == nil {
			t.End = &ended
		}
	}
	return t, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
