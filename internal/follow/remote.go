package follow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"hopper/internal/ipc"
	"hopper/internal/logging"
	"hopper/internal/logs"
	"hopper/internal/task"
)

// Transport is the request/response channel to the daemon.
type Transport interface {
	Send(ctx context.Context, req ipc.Request) error
	Receive(ctx context.Context) (ipc.Response, error)
}

// StreamConsumer follows a task through a daemon-side log stream.
type StreamConsumer struct {
	Transport Transport
	Out       io.Writer
	Err       io.Writer
	Annotator logs.Annotator
	Logger    *slog.Logger
}

// Run subscribes to the log stream of taskID, or lets the daemon pick the
// running task when taskID is nil, and prints chunks until the daemon ends
// the stream.
//
// Each chunk is annotated on its own and every stamped line ends with a line
// break. A line split across two chunks is therefore printed as two stamped
// lines.
func (c *StreamConsumer) Run(ctx context.Context, taskID *int, lines *int, timestamps bool) (Outcome, error) {
	out, errOut := c.Out, c.Err
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logger := c.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	var sel task.Selection
	if taskID != nil {
		sel = task.SelectIDs(*taskID)
	} else {
		sel = task.SelectIDs()
	}
	if err := c.Transport.Send(ctx, ipc.StreamRequest(sel, lines)); err != nil {
		return Outcome{}, err
	}

	for {
		resp, err := c.Transport.Receive(ctx)
		if err != nil {
			return Outcome{}, err
		}
		switch resp.Kind {
		case ipc.ResponseChunk:
			if resp.Chunk == nil {
				continue
			}
			text := resp.Chunk.Text
			if timestamps {
				text = stampChunk(c.Annotator, text)
			}
			fmt.Fprint(out, text)
			if f, ok := out.(flusher); ok {
				_ = f.Flush()
			}
		case ipc.ResponseClose:
			return Outcome{Reason: ReasonClosed}, nil
		case ipc.ResponseFailure:
			fmt.Fprintln(errOut, resp.Message)
			return Outcome{Reason: ReasonRemoteFailure}, nil
		default:
			logger.Warn("unexpected response while following",
				logging.String("kind", string(resp.Kind)),
				logging.String(logging.FieldEventType, "follow_unexpected_response"))
		}
	}
}

func stampChunk(a logs.Annotator, text string) string {
	lines, rest := a.Annotate(text, "")
	if rest != "" {
		lines = append(lines, a.Stamp(rest))
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
