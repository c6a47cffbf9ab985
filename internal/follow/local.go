package follow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"hopper/internal/logging"
	"hopper/internal/logs"
	"hopper/internal/task"
)

const (
	DefaultPollInterval = 250 * time.Millisecond
	DefaultStartWait    = time.Second
	DefaultStatusEvery  = 2
	// MaxStatusEvery bounds how many ticks may pass between status checks.
	MaxStatusEvery = 2
)

// TaskDirectory answers task status queries. Task returns nil, nil when the
// task does not exist.
type TaskDirectory interface {
	Tasks(ctx context.Context) ([]task.Task, error)
	Task(ctx context.Context, id int) (*task.Task, error)
}

type flusher interface {
	Flush() error
}

// LocalEngine follows a task by reading its log file below Root.
type LocalEngine struct {
	Tasks        TaskDirectory
	Root         string
	Out          io.Writer
	Err          io.Writer
	Clock        Clock
	PollInterval time.Duration
	StartWait    time.Duration
	StatusEvery  int
	Logger       *slog.Logger
}

type tailState struct {
	engine     *LocalEngine
	tail       *logs.Tail
	annotator  logs.Annotator
	timestamps bool
	carry      string
}

// Run follows taskID, or the only running task when taskID is nil, until the
// task stops running or its log disappears. lines limits the initial output
// to the trailing window of the log.
func (e *LocalEngine) Run(ctx context.Context, taskID *int, lines *int, timestamps bool) (Outcome, error) {
	e.defaults()

	var id int
	if taskID == nil {
		tasks, err := e.Tasks.Tasks(ctx)
		if err != nil {
			return Outcome{}, fmt.Errorf("list tasks: %w", err)
		}
		auto := task.SelectRunning(tasks)
		switch auto.Kind {
		case task.NoneRunning:
			fmt.Fprintln(e.Err, "There are no running tasks.")
			return Outcome{Reason: ReasonNoRunningTasks}, nil
		case task.Ambiguous:
			fmt.Fprintf(e.Err, "Multiple tasks are running, please select one of the following: %s\n", task.JoinIDs(auto.Candidates))
			return Outcome{Reason: ReasonAmbiguous}, nil
		}
		id = auto.ID
	} else {
		id = *taskID
	}

	found, err := e.waitForStart(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		fmt.Fprintln(e.Err, "The task to be followed doesn't exist.")
		return Outcome{Reason: ReasonTaskMissing, TaskID: id}, nil
	}

	tail, err := logs.OpenTail(e.Root, id)
	if err != nil {
		fmt.Fprintf(e.Err, "Failed to open log file: %v\n", err)
		return Outcome{Reason: ReasonIOError, TaskID: id}, nil
	}
	defer tail.Close()

	if lines != nil {
		if _, err := tail.Window(lines); err != nil {
			fmt.Fprintf(e.Err, "Error while reading the last lines of the log: %v\n", err)
		}
	}

	state := &tailState{
		engine:     e,
		tail:       tail,
		annotator:  logs.Annotator{Now: e.Clock.Now},
		timestamps: timestamps,
	}
	return state.loop(ctx, id)
}

func (e *LocalEngine) defaults() {
	if e.Out == nil {
		e.Out = io.Discard
	}
	if e.Err == nil {
		e.Err = io.Discard
	}
	if e.Clock == nil {
		e.Clock = SystemClock{}
	}
	if e.PollInterval <= 0 {
		e.PollInterval = DefaultPollInterval
	}
	if e.StartWait <= 0 {
		e.StartWait = DefaultStartWait
	}
	if e.StatusEvery <= 0 {
		e.StatusEvery = DefaultStatusEvery
	}
	if e.StatusEvery > MaxStatusEvery {
		e.StatusEvery = MaxStatusEvery
	}
	if e.Logger == nil {
		e.Logger = logging.NewNop()
	}
}

// waitForStart polls until the task is running or done. It reports false
// when the task does not exist.
func (e *LocalEngine) waitForStart(ctx context.Context, id int) (bool, error) {
	for {
		t, err := e.Tasks.Task(ctx, id)
		if err != nil {
			return false, fmt.Errorf("query task %d: %w", id, err)
		}
		if t == nil {
			return false, nil
		}
		if t.IsRunning() || t.IsDone() {
			return true, nil
		}
		e.Logger.Debug("waiting for task to start",
			logging.Int(logging.FieldTaskID, id),
			logging.String("status", string(t.Status)))
		if err := e.Clock.Sleep(ctx, e.StartWait); err != nil {
			return false, err
		}
	}
}

func (s *tailState) loop(ctx context.Context, id int) (Outcome, error) {
	e := s.engine
	for tick := 0; ; tick++ {
		if !s.tail.Exists() {
			_ = s.flushCarry()
			fmt.Fprintln(e.Err, "Log file has gone away. Has the task been removed?")
			return Outcome{Reason: ReasonFileMissing, TaskID: id}, nil
		}

		if err := s.drain(); err != nil {
			_ = s.flushCarry()
			fmt.Fprintf(e.Err, "Failed to follow log file: %v\n", err)
			return Outcome{Reason: ReasonIOError, TaskID: id}, nil
		}

		if tick%e.StatusEvery == 0 {
			t, err := e.Tasks.Task(ctx, id)
			if err != nil {
				return Outcome{}, fmt.Errorf("query task %d: %w", id, err)
			}
			if t == nil {
				_ = s.flushCarry()
				fmt.Fprintln(e.Err, "The followed task has been removed.")
				return Outcome{Reason: ReasonTaskMissing, TaskID: id}, nil
			}
			if !t.IsRunning() {
				if err := s.drain(); err != nil {
					_ = s.flushCarry()
					fmt.Fprintf(e.Err, "Failed to follow log file: %v\n", err)
					return Outcome{Reason: ReasonIOError, TaskID: id}, nil
				}
				if err := s.flushCarry(); err != nil {
					fmt.Fprintf(e.Err, "Failed to follow log file: %v\n", err)
					return Outcome{Reason: ReasonIOError, TaskID: id}, nil
				}
				return Outcome{Reason: ReasonTaskFinished, TaskID: id}, nil
			}
		}

		if err := e.Clock.Sleep(ctx, e.PollInterval); err != nil {
			_ = s.flushCarry()
			return Outcome{}, err
		}
	}
}

// drain prints everything appended to the log since the previous read and
// flushes the output. Read, write and flush errors are returned.
func (s *tailState) drain() error {
	var buf bytes.Buffer
	if _, err := s.tail.ReadNew(&buf); err != nil {
		return err
	}
	if buf.Len() > 0 {
		if s.timestamps {
			var lines []string
			lines, s.carry = s.annotator.Annotate(buf.String(), s.carry)
			for _, line := range lines {
				if _, err := fmt.Fprintln(s.engine.Out, line); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}
		} else if _, err := s.engine.Out.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return s.flush()
}

// flushCarry prints a pending unterminated line without a line break.
func (s *tailState) flushCarry() error {
	if s.carry == "" {
		return nil
	}
	carry := s.carry
	s.carry = ""
	if _, err := fmt.Fprint(s.engine.Out, s.annotator.Stamp(carry)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return s.flush()
}

func (s *tailState) flush() error {
	if f, ok := s.engine.Out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush output: %w", err)
		}
	}
	return nil
}
