package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"
)

type RetryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskIDs []string
}

// NewRetryCommand returns the retry command.
func NewRetryCommand(rootCmd *RootCommand, app *kingpin.Application) *RetryCommand {
	c := &RetryCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("retry", "Requeue failed or cancelled translation tasks.")
	c.Cmd.Arg("task-id", "Task ids to retry.").Required().StringsVar(&c.taskIDs)

	return c
}

func (c RetryCommand) Name() string { return c.Cmd.FullCommand() }

func (c RetryCommand) Run(ctx context.Context) error {
	p := c.rootCmd.Printer("table")

	controller, err := newTaskBoard(ctx, c.rootCmd, p)
	if err != nil {
		return err
	}
	defer func() { _ = controller.Close() }()

	return runTaskAction(ctx, c.taskIDs, controller.Retry)
}
