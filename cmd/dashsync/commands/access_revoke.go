package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"
)

type AccessRevokeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	providerIDs []string
}

// NewAccessRevokeCommand returns the access revoke command.
func NewAccessRevokeCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AccessRevokeCommand {
	c := &AccessRevokeCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("revoke", "Revoke the group's access to providers.")
	c.Cmd.Arg("provider-id", "Provider configuration ids.").Required().StringsVar(&c.providerIDs)

	return c
}

func (c AccessRevokeCommand) Name() string { return c.Cmd.FullCommand() }

func (c AccessRevokeCommand) Run(ctx context.Context) error {
	p := c.rootCmd.Printer("table")

	controller, err := newAccessList(ctx, c.rootCmd, p)
	if err != nil {
		return err
	}
	defer func() { _ = controller.Close() }()

	// Revoking many providers goes through the selection so the removals
	// are dispatched concurrently, each settled on its own.
	if len(c.providerIDs) > 1 {
		for _, id := range c.providerIDs {
			controller.ToggleSelect(id)
		}
		return controller.RevokeSelected(ctx)
	}

	return runTaskAction(ctx, c.providerIDs, controller.Revoke)
}
