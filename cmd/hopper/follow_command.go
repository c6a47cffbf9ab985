package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hopper/internal/follow"
	"hopper/internal/ipc"
)

// runner is implemented by both follow engines.
type runner interface {
	Run(ctx context.Context, taskID *int, lines *int, timestamps bool) (follow.Outcome, error)
}

func newFollowCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var timestamps bool

	cmd := &cobra.Command{
		Use:   "follow [task-id]",
		Short: "Follow the output of a running task",
		Long: `Follow the output of a task as it is written.

Without a task id the only running task is followed. The command waits for a
queued task to start and returns once the task is no longer running.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var taskID *int
			if len(args) == 1 {
				id, err := parseTaskID(args[0])
				if err != nil {
					return err
				}
				taskID = &id
			}
			window, err := linesFlag(cmd, lines)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withClient(cmd.Context(), func(client *ipc.Client) error {
				var engine runner
				if cfg.Client.ReadLocalLogs {
					engine = &follow.LocalEngine{
						Tasks:        client,
						Root:         cfg.Paths.DataDir,
						Out:          cmd.OutOrStdout(),
						Err:          cmd.ErrOrStderr(),
						Clock:        follow.SystemClock{},
						PollInterval: cfg.PollInterval(),
						StartWait:    cfg.StartWait(),
						StatusEvery:  cfg.Follow.StatusCheckTicks,
						Logger:       ctx.loggerValue(),
					}
				} else {
					engine = &follow.StreamConsumer{
						Transport: client,
						Out:       cmd.OutOrStdout(),
						Err:       cmd.ErrOrStderr(),
						Logger:    ctx.loggerValue(),
					}
				}

				outcome, err := engine.Run(cmd.Context(), taskID, window, timestamps)
				if err != nil {
					return err
				}
				if code := outcome.ExitCode(); code != 0 {
					return exitCodeError{code: code}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Only print the last N lines of the log before following")
	cmd.Flags().BoolVarP(&timestamps, "timestamps", "t", false, "Prefix every line with the time it was read")
	return cmd
}

// linesFlag returns the --lines value when it was given on the command line.
func linesFlag(cmd *cobra.Command, lines int) (*int, error) {
	if !cmd.Flags().Changed("lines") {
		return nil, nil
	}
	if lines < 0 {
		return nil, fmt.Errorf("invalid --lines value %d: must not be negative", lines)
	}
	return &lines, nil
}

func parseTaskID(value string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid task id %q", value)
	}
	return id, nil
}
