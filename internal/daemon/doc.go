// Package daemon coordinates the long-running hopperd process.
//
// The daemon owns the task directory and the per-task log files. It answers
// task, log and stream requests arriving over the ipc server and holds a
// flock-based lock so only one instance serves a data directory. Streaming
// tails a log file server side and pushes appended bytes to the client until
// the task stops running or its log disappears.
package daemon
