package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"
)

type CancelCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskIDs []string
}

// NewCancelCommand returns the cancel command.
func NewCancelCommand(rootCmd *RootCommand, app *kingpin.Application) *CancelCommand {
	c := &CancelCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("cancel", "Cancel pending or processing translation tasks.")
	c.Cmd.Arg("task-id", "Task ids to cancel.").Required().StringsVar(&c.taskIDs)

	return c
}

func (c CancelCommand) Name() string { return c.Cmd.FullCommand() }

func (c CancelCommand) Run(ctx context.Context) error {
	p := c.rootCmd.Printer("table")

	controller, err := newTaskBoard(ctx, c.rootCmd, p)
	if err != nil {
		return err
	}
	defer func() { _ = controller.Close() }()

	return runTaskAction(ctx, c.taskIDs, controller.Cancel)
}
