// Package task defines the task snapshots the daemon hands to clients and
// the selection helpers used to address them.
//
// Snapshots are read-only from the client's point of view: the task directory
// owns them and commands only re-fetch fresh copies. Selection logic that does
// not need I/O, such as picking the single running task to follow, lives here
// so it can be tested against plain slices.
package task
