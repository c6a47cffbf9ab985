// Package main hosts the hopper CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into requests against
// the hopper daemon: following the live output of a task, printing the logs
// of finished tasks, listing tasks, and starting or stopping the daemon.
// Log files are read straight from the data directory unless the
// configuration asks for them to be shipped over the socket.
package main
