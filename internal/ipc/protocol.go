package ipc

import (
	"github.com/google/uuid"

	"hopper/internal/task"
)

// RequestKind names a request frame.
type RequestKind string

const (
	RequestTasks  RequestKind = "tasks"
	RequestTask   RequestKind = "task"
	RequestStream RequestKind = "stream"
	RequestLog    RequestKind = "log"
)

// ResponseKind names a response frame.
type ResponseKind string

const (
	ResponseTasks   ResponseKind = "tasks"
	ResponseTask    ResponseKind = "task"
	ResponseChunk   ResponseKind = "chunk"
	ResponseLog     ResponseKind = "log"
	ResponseClose   ResponseKind = "close"
	ResponseFailure ResponseKind = "failure"
	ResponseSuccess ResponseKind = "success"
)

// Request is the frame sent by clients.
type Request struct {
	ID        string         `json:"id"`
	Kind      RequestKind    `json:"kind"`
	TaskID    int            `json:"task_id,omitempty"`
	Selection task.Selection `json:"selection,omitempty"`
	Lines     *int           `json:"lines,omitempty"`
	SendLogs  bool           `json:"send_logs,omitempty"`
}

// Chunk is a fragment of log text streamed for a task.
type Chunk struct {
	TaskID int    `json:"task_id"`
	Text   string `json:"text"`
}

// TaskLogEntry pairs a task with its optionally compressed log.
type TaskLogEntry struct {
	Task           task.Task `json:"task"`
	Output         []byte    `json:"output,omitempty"`
	OutputComplete bool      `json:"output_complete"`
}

// Response is the frame sent by the daemon.
type Response struct {
	ID      string               `json:"id,omitempty"`
	Kind    ResponseKind         `json:"kind"`
	Tasks   []task.Task          `json:"tasks,omitempty"`
	Task    *task.Task           `json:"task,omitempty"`
	Chunk   *Chunk               `json:"chunk,omitempty"`
	Logs    map[int]TaskLogEntry `json:"logs,omitempty"`
	Message string               `json:"message,omitempty"`
}

func newRequest(kind RequestKind) Request {
	return Request{ID: uuid.NewString(), Kind: kind}
}

// TasksRequest asks for every known task.
func TasksRequest() Request {
	return newRequest(RequestTasks)
}

// TaskRequest asks for a single task.
func TaskRequest(id int) Request {
	req := newRequest(RequestTask)
	req.TaskID = id
	return req
}

// StreamRequest asks the daemon to stream the log of the selected task.
func StreamRequest(sel task.Selection, lines *int) Request {
	req := newRequest(RequestStream)
	req.Selection = sel
	req.Lines = lines
	return req
}

// LogRequest asks for the tasks of a selection and, when sendLogs is set,
// their compressed logs limited to lines.
func LogRequest(sel task.Selection, sendLogs bool, lines *int) Request {
	req := newRequest(RequestLog)
	req.Selection = sel
	req.SendLogs = sendLogs
	req.Lines = lines
	return req
}

// Failure builds a failure response.
func Failure(id, message string) Response {
	return Response{ID: id, Kind: ResponseFailure, Message: message}
}
