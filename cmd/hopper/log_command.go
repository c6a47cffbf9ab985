package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hopper/internal/config"
	"hopper/internal/ipc"
	"hopper/internal/logging"
	"hopper/internal/logs"
	"hopper/internal/logview"
	"hopper/internal/task"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var group string
	var jsonOut bool
	var lines int
	var full bool
	var timestamps bool

	cmd := &cobra.Command{
		Use:   "log [task-id...]",
		Short: "Print the output of finished or running tasks",
		Long: `Print the output of tasks.

Without ids every task is printed. Several tasks are cut to the last lines of
their output; a single task is printed in full unless --lines is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			for _, arg := range args {
				id, err := parseTaskID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			sel := task.SelectionFromParams(all, strings.TrimSpace(group), ids)

			explicit, err := linesFlag(cmd, lines)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			window := effectiveLines(cfg, full, explicit, len(ids) == 1 && !jsonOut)

			return ctx.withClient(cmd.Context(), func(client *ipc.Client) error {
				resp, err := client.Call(cmd.Context(), ipc.LogRequest(sel, !cfg.Client.ReadLocalLogs, window))
				if err != nil {
					return err
				}
				if resp.Kind != ipc.ResponseLog {
					return handleResponse(cmd, ctx, resp)
				}

				printer := logview.Printer{
					Out:       cmd.OutOrStdout(),
					Info:      cmd.ErrOrStderr(),
					Root:      cfg.Paths.DataDir,
					ReadLocal: cfg.Client.ReadLocalLogs,
					Annotator: logs.Annotator{},
					Color:     shouldColorize(cmd.ErrOrStderr()),
				}
				if jsonOut {
					return printer.PrintJSON(resp.Logs, window, timestamps)
				}
				printer.PrintLogs(sel, resp.Logs, window, timestamps)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Print the logs of all tasks")
	cmd.Flags().StringVarP(&group, "group", "g", "", "Print the logs of all tasks in a group")
	cmd.Flags().BoolVarP(&jsonOut, "json", "j", false, "Print the logs as JSON")
	cmd.Flags().IntVarP(&lines, "lines", "l", 0, "Only print the last N lines of each task")
	cmd.Flags().BoolVarP(&full, "full", "f", false, "Print the whole log of each task")
	cmd.Flags().BoolVarP(&timestamps, "timestamps", "t", false, "Prefix every line with the time it was printed")
	cmd.MarkFlagsMutuallyExclusive("full", "lines")
	return cmd
}

// effectiveLines applies the configured per-task default to the fallback
// window chosen by logview.DetermineLines.
func effectiveLines(cfg *config.Config, full bool, explicit *int, single bool) *int {
	window := logview.DetermineLines(full, explicit, single)
	if window != nil && explicit == nil {
		n := cfg.Client.DefaultLogLines
		window = &n
	}
	return window
}

// handleResponse deals with responses a command did not ask for.
func handleResponse(cmd *cobra.Command, ctx *commandContext, resp ipc.Response) error {
	switch resp.Kind {
	case ipc.ResponseFailure:
		fmt.Fprintln(cmd.ErrOrStderr(), resp.Message)
		return exitCodeError{code: 1}
	case ipc.ResponseSuccess:
		fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
		return nil
	default:
		ctx.loggerValue().Warn("received unhandled response message",
			logging.String("kind", string(resp.Kind)),
			logging.String(logging.FieldEventType, "unexpected_response"))
		return nil
	}
}
