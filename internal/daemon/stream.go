package daemon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"

	"hopper/internal/ipc"
	"hopper/internal/logging"
	"hopper/internal/logs"
	"hopper/internal/task"
)

// maxChunkSize bounds the text carried by one chunk response.
const maxChunkSize = 1 << 20

var errTaskMissing = errors.New("The task to be followed doesn't exist.")

// Stream follows the log of one task and sends appended output as chunks.
// It returns nil once the task stopped running and its output was drained,
// or when the log file disappears.
func (d *Daemon) Stream(ctx context.Context, req ipc.Request, send func(ipc.Response) error) error {
	id, err := d.resolveStreamTask(ctx, req.Selection)
	if err != nil {
		return err
	}
	logger := logging.WithContext(ctx, d.logger).With(logging.Int(logging.FieldTaskID, id))

	if err := d.waitForStart(ctx, id); err != nil {
		return err
	}

	tail, err := logs.OpenTail(d.cfg.Paths.DataDir, id)
	if err != nil {
		return fmt.Errorf("Failed to open log file: %w", err)
	}
	defer tail.Close()
	if _, err := tail.Window(req.Lines); err != nil {
		return err
	}

	wake := d.watch(tail.Path(), logger)
	defer wake.close()

	logger.Debug("streaming task log", logging.String(logging.FieldEventType, "stream_started"))
	for {
		if err := d.sendAppended(tail, id, send); err != nil {
			return err
		}
		if !tail.Exists() {
			logger.Debug("task log removed", logging.String(logging.FieldEventType, "stream_log_removed"))
			return nil
		}

		t, err := d.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return errTaskMissing
		}
		if !t.IsRunning() {
			logger.Debug("task stopped running", logging.String(logging.FieldEventType, "stream_finished"))
			return d.sendAppended(tail, id, send)
		}

		if err := wake.wait(ctx); err != nil {
			return err
		}
	}
}

// resolveStreamTask picks the task to stream. A single id is used as is;
// anything else must narrow down to exactly one running task.
func (d *Daemon) resolveStreamTask(ctx context.Context, sel task.Selection) (int, error) {
	if !sel.All && sel.Group == "" && len(sel.TaskIDs) == 1 {
		t, err := d.store.Get(ctx, sel.TaskIDs[0])
		if err != nil {
			return 0, err
		}
		if t == nil {
			return 0, errTaskMissing
		}
		return t.ID, nil
	}
	if sel.Group != "" {
		exists, err := d.store.GroupExists(ctx, sel.Group)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, fmt.Errorf("Group %s doesn't exist.", sel.Group)
		}
	}

	tasks, err := d.store.List(ctx, sel)
	if err != nil {
		return 0, err
	}
	auto := task.SelectRunning(tasks)
	switch auto.Kind {
	case task.NoneRunning:
		return 0, errors.New("There are no running tasks.")
	case task.Ambiguous:
		return 0, fmt.Errorf("Multiple tasks are running, please select one of the following: %s", task.JoinIDs(auto.Candidates))
	default:
		return auto.ID, nil
	}
}

func (d *Daemon) waitForStart(ctx context.Context, id int) error {
	for {
		t, err := d.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return errTaskMissing
		}
		if t.IsRunning() || t.IsDone() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.startWait):
		}
	}
}

// sendAppended sends everything written since the last read, split into
// chunks that end on a line or rune boundary.
func (d *Daemon) sendAppended(tail *logs.Tail, id int, send func(ipc.Response) error) error {
	var buf bytes.Buffer
	if _, err := tail.ReadNew(&buf); err != nil {
		return err
	}
	data := buf.Bytes()
	for len(data) > 0 {
		n := chunkLength(data, maxChunkSize)
		resp := ipc.Response{Kind: ipc.ResponseChunk, Chunk: &ipc.Chunk{TaskID: id, Text: string(data[:n])}}
		if err := send(resp); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func chunkLength(data []byte, limit int) int {
	if len(data) <= limit {
		return len(data)
	}
	if i := bytes.LastIndexByte(data[:limit], '\n'); i >= 0 {
		return i + 1
	}
	n := limit
	for n > 0 && !utf8.RuneStart(data[n]) {
		n--
	}
	if n == 0 {
		return limit
	}
	return n
}

// waker wakes the stream loop on file activity or on the poll interval.
type waker struct {
	path    string
	ticker  *time.Ticker
	watcher *fsnotify.Watcher
}

// watch sets up a directory watch for path. Without inotify the ticker
// alone drives the loop.
func (d *Daemon) watch(path string, logger *slog.Logger) *waker {
	w := &waker{path: path, ticker: time.NewTicker(d.pollInterval)}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Debug("file watcher unavailable", logging.Error(err))
		return w
	}
	if err := watcher.Add(logs.Dir(d.cfg.Paths.DataDir)); err != nil {
		logger.Debug("file watcher unavailable", logging.Error(err))
		_ = watcher.Close()
		return w
	}
	w.watcher = watcher
	return w
}

func (w *waker) wait(ctx context.Context) error {
	var events <-chan fsnotify.Event
	var errs <-chan error
	if w.watcher != nil {
		events = w.watcher.Events
		errs = w.watcher.Errors
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.ticker.C:
			return nil
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Name == w.path {
				return nil
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		}
	}
}

func (w *waker) close() {
	w.ticker.Stop()
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}
