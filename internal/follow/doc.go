// Package follow continuously displays the output of a single task.
//
// LocalEngine tails the task's log file directly and polls the task
// directory to decide when to stop. StreamConsumer asks the daemon to
// stream the log instead and stops when the daemon closes the stream.
// Both return an Outcome describing why following ended; mapping it to a
// process exit code is left to the caller.
package follow
