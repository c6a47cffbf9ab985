package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"hopper/internal/task"
)

// ErrClosed is returned when the daemon closed the connection.
var ErrClosed = errors.New("connection closed by daemon")

const (
	socketURL    = "ws://hopper/ws"
	maxFrameSize = 64 << 20
)

// Client talks to the daemon over its Unix socket.
type Client struct {
	conn *websocket.Conn
}

func unixHTTPClient(path string) *http.Client {
	dialer := &net.Dialer{}
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return dialer.DialContext(ctx, "unix", path)
			},
		},
	}
}

// Dial connects to the daemon listening on the socket at path.
func Dial(ctx context.Context, path string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, socketURL, &websocket.DialOptions{
		HTTPClient: unixHTTPClient(path),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to daemon at %s: %w", path, err)
	}
	conn.SetReadLimit(maxFrameSize)
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}

// Send writes a request frame.
func (c *Client) Send(ctx context.Context, req Request) error {
	if err := wsjson.Write(ctx, c.conn, req); err != nil {
		return fmt.Errorf("send %s request: %w", req.Kind, err)
	}
	return nil
}

// Receive blocks until the next response frame arrives.
func (c *Client) Receive(ctx context.Context) (Response, error) {
	var resp Response
	if err := wsjson.Read(ctx, c.conn, &resp); err != nil {
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			return Response{}, ErrClosed
		}
		return Response{}, fmt.Errorf("receive response: %w", err)
	}
	return resp, nil
}

// Call sends req and returns the first response.
func (c *Client) Call(ctx context.Context, req Request) (Response, error) {
	if err := c.Send(ctx, req); err != nil {
		return Response{}, err
	}
	return c.Receive(ctx)
}

// Tasks lists every task known to the daemon.
func (c *Client) Tasks(ctx context.Context) ([]task.Task, error) {
	resp, err := c.Call(ctx, TasksRequest())
	if err != nil {
		return nil, err
	}
	if err := expect(resp, ResponseTasks); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// Task fetches a single task. It returns nil when the task does not exist.
func (c *Client) Task(ctx context.Context, id int) (*task.Task, error) {
	resp, err := c.Call(ctx, TaskRequest(id))
	if err != nil {
		return nil, err
	}
	if err := expect(resp, ResponseTask); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

func expect(resp Response, kind ResponseKind) error {
	switch resp.Kind {
	case kind:
		return nil
	case ResponseFailure:
		return errors.New(resp.Message)
	default:
		return fmt.Errorf("unexpected %s response, want %s", resp.Kind, kind)
	}
}
