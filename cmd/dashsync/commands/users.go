package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/traduct/dashsync/internal/gateway"
)

// NewUsersCommand returns the parent command grouping the user admin
// subcommands.
func NewUsersCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("users", "Manage dashboard user accounts.")
}

type UsersListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewUsersListCommand returns the users list command.
func NewUsersListCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *UsersListCommand {
	c := &UsersListCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("list", "List user accounts.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c UsersListCommand) Name() string { return c.Cmd.FullCommand() }

func (c UsersListCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.Settings(ctx)
	if err != nil {
		return err
	}

	client, err := c.rootCmd.APIClient(cfg)
	if err != nil {
		return err
	}

	users, err := client.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("could not list users: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintUserList(users); err != nil {
		return fmt.Errorf("could not print users: %w", err)
	}

	return nil
}

type UsersActivateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	userID string
	active bool
}

// NewUsersActivateCommand returns the users activate command.
func NewUsersActivateCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *UsersActivateCommand {
	c := &UsersActivateCommand{rootCmd: rootCmd, active: true}

	c.Cmd = parent.Command("activate", "Activate a user account.")
	c.Cmd.Arg("user-id", "User id.").Required().StringVar(&c.userID)

	return c
}

// NewUsersDeactivateCommand returns the users deactivate command.
func NewUsersDeactivateCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *UsersActivateCommand {
	c := &UsersActivateCommand{rootCmd: rootCmd, active: false}

	c.Cmd = parent.Command("deactivate", "Deactivate a user account.")
	c.Cmd.Arg("user-id", "User id.").Required().StringVar(&c.userID)

	return c
}

func (c UsersActivateCommand) Name() string { return c.Cmd.FullCommand() }

func (c UsersActivateCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.Settings(ctx)
	if err != nil {
		return err
	}

	client, err := c.rootCmd.APIClient(cfg)
	if err != nil {
		return err
	}

	verb := "deactivate"
	if c.active {
		verb = "activate"
	}

	if err := client.SetUserActive(ctx, c.userID, c.active); err != nil {
		// Policy refusals carry the server's own reason (e.g. deactivating
		// your own account or the last administrator), surface it verbatim.
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("could not %s user %s: %s", verb, c.userID, apiErr.Reason())
		}
		return fmt.Errorf("could not %s user %s: %w", verb, c.userID, err)
	}

	return c.rootCmd.Printer("table").PrintMessage(fmt.Sprintf("User %s %sd", c.userID, verb))
}
