// Package ipc carries requests between the hopper CLI and the daemon.
//
// Frames are JSON messages exchanged over a websocket that is served on a
// Unix domain socket. A connection processes one request at a time; a
// request is answered by a single response, except for log streams, which
// answer with any number of chunk responses followed by a close or failure.
//
// The server delegates to a Handler so the daemon can be exercised without
// a socket, and the client exposes the low-level Send and Receive calls the
// follow engine needs besides the request/response helpers.
package ipc
