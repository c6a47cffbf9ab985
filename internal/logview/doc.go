// Package logview renders the logs of finished and running tasks for the
// log command, either from local log files or from compressed payloads
// sent by the daemon.
package logview
