package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"
)

type RmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskIDs []string
}

// NewRmCommand returns the rm command.
func NewRmCommand(rootCmd *RootCommand, app *kingpin.Application) *RmCommand {
	c := &RmCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("rm", "Delete translation tasks and their artifacts.")
	c.Cmd.Arg("task-id", "Task ids to delete.").Required().StringsVar(&c.taskIDs)

	return c
}

func (c RmCommand) Name() string { return c.Cmd.FullCommand() }

func (c RmCommand) Run(ctx context.Context) error {
	p := c.rootCmd.Printer("table")

	controller, err := newTaskBoard(ctx, c.rootCmd, p)
	if err != nil {
		return err
	}
	defer func() { _ = controller.Close() }()

	// Deleting many tasks goes through the selection so the removals are
	// dispatched concurrently, each settled on its own.
	if len(c.taskIDs) > 1 {
		for _, id := range c.taskIDs {
			controller.ToggleSelect(id)
		}
		return controller.DeleteSelected(ctx)
	}

	return runTaskAction(ctx, c.taskIDs, controller.Delete)
}
