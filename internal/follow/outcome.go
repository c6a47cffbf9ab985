package follow

import "fmt"

// Reason explains why following stopped.
type Reason int

const (
	ReasonTaskFinished Reason = iota
	ReasonFileMissing
	ReasonIOError
	ReasonClosed
	ReasonNoRunningTasks
	ReasonAmbiguous
	ReasonTaskMissing
	ReasonRemoteFailure
)

func (r Reason) String() string {
	switch r {
	case ReasonTaskFinished:
		return "task finished"
	case ReasonFileMissing:
		return "log file missing"
	case ReasonIOError:
		return "io error"
	case ReasonClosed:
		return "stream closed"
	case ReasonNoRunningTasks:
		return "no running tasks"
	case ReasonAmbiguous:
		return "ambiguous selection"
	case ReasonTaskMissing:
		return "task missing"
	case ReasonRemoteFailure:
		return "remote failure"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Outcome is the result of following a task.
type Outcome struct {
	Reason Reason
	TaskID int
}

// ExitCode maps the outcome to a process exit status. Reading problems after
// tailing started end gracefully; selection problems and failures do not.
func (o Outcome) ExitCode() int {
	switch o.Reason {
	case ReasonTaskFinished, ReasonFileMissing, ReasonIOError, ReasonClosed:
		return 0
	default:
		return 1
	}
}
