package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hopper/internal/logging"
	"hopper/internal/task"
)

// Handler answers requests on behalf of the daemon.
type Handler interface {
	Tasks(ctx context.Context) ([]task.Task, error)
	Task(ctx context.Context, id int) (*task.Task, error)
	Logs(ctx context.Context, req Request) (map[int]TaskLogEntry, error)
	// Stream sends chunk responses until the stream ends. Returning nil
	// closes the stream; an error is reported to the client as a failure.
	Stream(ctx context.Context, req Request, send func(Response) error) error
}

// Server exposes a Handler over a websocket on a Unix domain socket.
type Server struct {
	path       string
	handler    Handler
	logger     *slog.Logger
	listener   net.Listener
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the server at the given socket path.
func NewServer(ctx context.Context, path string, handler Handler, logger *slog.Logger) (*Server, error) {
	if handler == nil {
		return nil, errors.New("ipc server requires handler")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	s := &Server{
		path:     path,
		handler:  handler,
		logger:   logger,
		listener: listener,
		ctx:      serverCtx,
		cancel:   cancel,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Handler:     r,
		BaseContext: func(net.Listener) context.Context { return serverCtx },
	}
	return s, nil
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Serve starts accepting connections until Close is called.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("ipc server stopped",
				logging.Error(err),
				logging.String(logging.FieldEventType, "ipc_serve_failed"),
				logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon"))
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually before restarting hopperd"))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_accept_failed"))
		return
	}
	conn.SetReadLimit(maxFrameSize)
	defer conn.CloseNow()

	ctx := r.Context()
	for {
		var req Request
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				s.logger.Debug("ipc read failed", logging.Error(err))
			}
			return
		}
		reqCtx := logging.WithRequestID(ctx, req.ID)
		if req.Kind == RequestStream {
			s.stream(reqCtx, conn, req)
			return
		}
		resp := s.dispatch(reqCtx, req)
		resp.ID = req.ID
		if err := wsjson.Write(ctx, conn, resp); err != nil {
			s.logger.Debug("ipc write failed", logging.Error(err))
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	switch req.Kind {
	case RequestTasks:
		tasks, err := s.handler.Tasks(ctx)
		if err != nil {
			return Failure(req.ID, err.Error())
		}
		return Response{Kind: ResponseTasks, Tasks: tasks}
	case RequestTask:
		t, err := s.handler.Task(ctx, req.TaskID)
		if err != nil {
			return Failure(req.ID, err.Error())
		}
		return Response{Kind: ResponseTask, Task: t}
	case RequestLog:
		entries, err := s.handler.Logs(ctx, req)
		if err != nil {
			return Failure(req.ID, err.Error())
		}
		return Response{Kind: ResponseLog, Logs: entries}
	default:
		return Failure(req.ID, fmt.Sprintf("unsupported request %q", req.Kind))
	}
}

// stream serves a stream request. The connection carries nothing else
// afterwards, so reads stop and a client hang-up cancels the stream.
func (s *Server) stream(ctx context.Context, conn *websocket.Conn, req Request) {
	ctx = conn.CloseRead(ctx)
	send := func(resp Response) error {
		resp.ID = req.ID
		return wsjson.Write(ctx, conn, resp)
	}

	final := Response{ID: req.ID, Kind: ResponseClose}
	if err := s.handler.Stream(ctx, req, send); err != nil {
		if ctx.Err() != nil {
			return
		}
		final = Failure(req.ID, err.Error())
	}
	if err := wsjson.Write(ctx, conn, final); err != nil {
		s.logger.Debug("ipc stream end write failed", logging.Error(err))
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}
