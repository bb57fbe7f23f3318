package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type ProvidersCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewProvidersCommand returns the providers command.
func NewProvidersCommand(rootCmd *RootCommand, app *kingpin.Application) *ProvidersCommand {
	c := &ProvidersCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("providers", "List translation provider configurations.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c ProvidersCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProvidersCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.Settings(ctx)
	if err != nil {
		return err
	}

	client, err := c.rootCmd.APIClient(cfg)
	if err != nil {
		return err
	}

	providers, err := client.ListProviders(ctx)
	if err != nil {
		return fmt.Errorf("could not list providers: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintProviderList(providers); err != nil {
		return fmt.Errorf("could not print providers: %w", err)
	}

	return nil
}
