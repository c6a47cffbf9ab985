// Package taskstore persists the daemon's task directory in SQLite.
//
// The store records each task's command, working directory, status, and
// result; the log output itself lives in per-task files next to the
// database. Reads return nil when a task does not exist so callers can tell
// "missing" apart from a failed query.
package taskstore
