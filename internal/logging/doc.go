// Package logging builds the slog loggers used by hopper and hopperd.
//
// Records are rendered either as single console lines, with the component and
// task id lifted into the line prefix, or as JSON. Request handlers tag their
// logger with the ipc request id through WithContext. CleanupOldLogs prunes
// old daemon run logs.
package logging
