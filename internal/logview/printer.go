package logview

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"hopper/internal/ipc"
	"hopper/internal/logs"
	"hopper/internal/task"
)

// Printer writes task logs. Headers and notices go to Info, log text to Out.
type Printer struct {
	Out       io.Writer
	Info      io.Writer
	Root      string
	ReadLocal bool
	Annotator logs.Annotator
	Color     bool
}

func printable(t task.Task) bool {
	return t.IsDone() || t.IsRunning()
}

func sortedIDs(entries map[int]ipc.TaskLogEntry) []int {
	ids := make([]int, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// PrintLogs renders every printable task of entries ordered by id.
func (p *Printer) PrintLogs(sel task.Selection, entries map[int]ipc.TaskLogEntry, lines *int, timestamps bool) {
	if len(entries) == 0 {
		switch {
		case len(sel.TaskIDs) > 0:
			fmt.Fprintln(p.Info, "There are no finished tasks for your specified ids")
		case sel.Group != "":
			fmt.Fprintf(p.Info, "There are no finished tasks for group '%s'\n", sel.Group)
		default:
			fmt.Fprintln(p.Info, "There are no finished tasks")
		}
		return
	}

	ids := sortedIDs(entries)
	for i, id := range ids {
		entry := entries[id]
		if !printable(entry.Task) {
			continue
		}
		p.printEntry(entry, lines, timestamps)
		if i+1 < len(ids) && printable(entries[ids[i+1]].Task) {
			fmt.Fprintln(p.Out)
		}
	}
}

func (p *Printer) printEntry(entry ipc.TaskLogEntry, lines *int, timestamps bool) {
	fmt.Fprintln(p.Info, p.renderHeader(entry.Task))

	switch {
	case p.ReadLocal:
		p.printLocal(entry.Task.ID, lines, timestamps)
	case entry.Output != nil:
		p.printRemote(entry, lines, timestamps)
	default:
		fmt.Fprintln(p.Out, "Logs requested from hopper daemon, but none received. Please report this bug.")
	}
}

func (p *Printer) printLocal(id int, lines *int, timestamps bool) {
	file, err := logs.Open(p.Root, id)
	if err != nil {
		fmt.Fprintf(p.Info, "Failed to get log file handle: %v\n", err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.Size() == 0 {
		return
	}

	complete := true
	if lines != nil {
		complete, err = logs.SeekLastLines(file, *lines)
		if err != nil {
			fmt.Fprintf(p.Info, "Failed reading local log file: %v\n", err)
			return
		}
	}
	fmt.Fprintf(p.Info, "\n%s\n", p.outputMarker(complete, lines))
	p.copyBody(file, timestamps, func(err error) string {
		return fmt.Sprintf("Failed reading local log file: %v", err)
	})
}

func (p *Printer) printRemote(entry ipc.TaskLogEntry, lines *int, timestamps bool) {
	if len(entry.Output) == 0 {
		return
	}
	fmt.Fprintf(p.Info, "\n%s\n", p.outputMarker(entry.OutputComplete, lines))
	p.copyBody(logs.NewDecoder(entry.Output), timestamps, logs.DecodeFailure)
}

// copyBody streams r to Out. Failures are rendered inline through describe.
func (p *Printer) copyBody(r io.Reader, timestamps bool, describe func(error) string) {
	if timestamps {
		data, err := io.ReadAll(r)
		if err != nil {
			fmt.Fprintln(p.Out, describe(err))
			return
		}
		annotated := p.Annotator.AnnotateText(string(data))
		if annotated != "" && !strings.HasSuffix(annotated, "\n") {
			annotated += "\n"
		}
		fmt.Fprint(p.Out, annotated)
		return
	}
	if _, err := io.Copy(p.Out, r); err != nil {
		fmt.Fprintln(p.Out, describe(err))
	}
}

type jsonEntry struct {
	Task   task.Task `json:"task"`
	Output string    `json:"output"`
}

// PrintJSON writes a single JSON object mapping task ids to their metadata
// and log text. Task environments are left out.
func (p *Printer) PrintJSON(entries map[int]ipc.TaskLogEntry, lines *int, timestamps bool) error {
	out := make(map[int]jsonEntry, len(entries))
	for _, id := range sortedIDs(entries) {
		entry := entries[id]
		t := entry.Task
		t.Envs = nil

		var text string
		if p.ReadLocal {
			text = p.localText(id, lines)
		} else {
			text = remoteText(entry.Output)
		}
		if timestamps {
			text = p.Annotator.AnnotateText(text)
		}
		out[id] = jsonEntry{Task: t, Output: text}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode logs: %w", err)
	}
	_, err = fmt.Fprintln(p.Out, string(data))
	return err
}

func (p *Printer) localText(id int, lines *int) string {
	text, _, err := logs.ReadWindow(p.Root, id, lines)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Sprintf("(hopper error) Failed to get log file handle: %v", err)
		}
		return fmt.Sprintf("(hopper error) Failed to read local log output file: %v", err)
	}
	return text
}

func remoteText(payload []byte) string {
	text, err := logs.Decompress(payload)
	if err != nil {
		return logs.DecodeFailure(err)
	}
	return text
}
