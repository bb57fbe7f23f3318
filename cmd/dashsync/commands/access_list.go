package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type AccessListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewAccessListCommand returns the access list command.
func NewAccessListCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AccessListCommand {
	c := &AccessListCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("list", "Show the group's provider access list in priority order.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c AccessListCommand) Name() string { return c.Cmd.FullCommand() }

func (c AccessListCommand) Run(ctx context.Context) error {
	p := c.rootCmd.Printer(c.format)

	controller, err := newAccessList(ctx, c.rootCmd, p)
	if err != nil {
		return err
	}
	defer func() { _ = controller.Close() }()

	if err := p.PrintGrantList(controller.Grants()); err != nil {
		return fmt.Errorf("could not print access list: %w", err)
	}

	return nil
}
