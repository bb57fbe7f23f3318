package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type AccessMoveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	from int
	to   int
}

// NewAccessMoveCommand returns the access move command.
func NewAccessMoveCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AccessMoveCommand {
	c := &AccessMoveCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("move", "Move a provider to a new priority position (0 is the highest).")
	c.Cmd.Arg("from", "Current position.").Required().IntVar(&c.from)
	c.Cmd.Arg("to", "Target position.").Required().IntVar(&c.to)

	return c
}

func (c AccessMoveCommand) Name() string { return c.Cmd.FullCommand() }

func (c AccessMoveCommand) Run(ctx context.Context) error {
	p := c.rootCmd.Printer("table")

	controller, err := newAccessList(ctx, c.rootCmd, p)
	if err != nil {
		return err
	}
	defer func() { _ = controller.Close() }()

	if err := controller.Move(ctx, c.from, c.to); err != nil {
		return fmt.Errorf("could not move provider: %w", err)
	}

	return p.PrintGrantList(controller.Grants())
}
