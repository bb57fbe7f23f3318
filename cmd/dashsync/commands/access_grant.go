package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type AccessGrantCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	providerID string
}

// NewAccessGrantCommand returns the access grant command.
func NewAccessGrantCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AccessGrantCommand {
	c := &AccessGrantCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("grant", "Grant the group access to a provider, appended at the lowest priority.")
	c.Cmd.Arg("provider-id", "Provider configuration id.").Required().StringVar(&c.providerID)

	return c
}

func (c AccessGrantCommand) Name() string { return c.Cmd.FullCommand() }

func (c AccessGrantCommand) Run(ctx context.Context) error {
	p := c.rootCmd.Printer("table")

	controller, err := newAccessList(ctx, c.rootCmd, p)
	if err != nil {
		return err
	}
	defer func() { _ = controller.Close() }()

	if err := controller.Grant(ctx, c.providerID); err != nil {
		return err
	}

	return p.PrintMessage(fmt.Sprintf("Granted access to provider %s", c.providerID))
}
