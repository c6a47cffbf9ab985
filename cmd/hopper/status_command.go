package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"hopper/internal/daemonctl"
	"hopper/internal/task"
	"hopper/internal/taskstore"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var group string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List tasks and their state",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := task.SelectionFromParams(false, strings.TrimSpace(group), nil)
			tasks, err := ctx.listTasks(cmd.Context(), sel)
			if err != nil {
				return err
			}

			if jsonOut {
				if tasks == nil {
					tasks = []task.Task{}
				}
				return writeJSON(cmd, tasks)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
				return nil
			}
			rows := buildStatusRows(tasks, shouldColorize(cmd.OutOrStdout()))
			table := renderTable(statusColumns, rows)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOut, "json", "j", false, "Print the task list as JSON")
	cmd.Flags().StringVarP(&group, "group", "g", "", "Only list tasks of this group")
	return cmd
}

// listTasks asks the daemon for tasks and reads the task database directly
// when no daemon is running.
func (c *commandContext) listTasks(ctx context.Context, sel task.Selection) ([]task.Task, error) {
	client, err := c.dialClient(ctx)
	if err == nil {
		defer client.Close()
		all, err := client.Tasks(ctx)
		if err != nil {
			return nil, err
		}
		var tasks []task.Task
		for _, t := range all {
			if sel.Matches(t) {
				tasks = append(tasks, t)
			}
		}
		return tasks, nil
	}
	if !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		return nil, err
	}

	cfg, cfgErr := c.ensureConfig()
	if cfgErr != nil {
		return nil, cfgErr
	}
	store, openErr := taskstore.Open(cfg)
	if openErr != nil {
		return nil, fmt.Errorf("open task database: %w", openErr)
	}
	defer store.Close()
	return store.List(ctx, sel)
}

var statusColumns = []column{
	{Header: "ID", Right: true},
	{Header: "Status"},
	{Header: "Command", MaxWidth: 60},
	{Header: "Path", MaxWidth: 40},
	{Header: "Label"},
	{Header: "Start"},
	{Header: "End"},
}

func buildStatusRows(tasks []task.Task, colorize bool) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		start, end := t.StartAndEnd()
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			statusCell(t, colorize),
			t.Command,
			t.Path,
			t.Label,
			formatClock(start),
			formatClock(end),
		})
	}
	return rows
}

func statusCell(t task.Task, colorize bool) string {
	label := t.Describe()
	if !colorize {
		return label
	}
	switch {
	case t.IsRunning():
		return text.Colors{text.FgGreen}.Sprint(label)
	case t.IsDone() && t.Failed():
		return text.Colors{text.FgRed}.Sprint(label)
	case t.IsDone():
		return text.Colors{text.FgHiBlack}.Sprint(label)
	default:
		return text.Colors{text.FgYellow}.Sprint(label)
	}
}

func formatClock(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.Local().Format("15:04:05")
}
