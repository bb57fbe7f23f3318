package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/traduct/dashsync/internal/app/accesslist"
	"github.com/traduct/dashsync/internal/printer"
)

// NewAccessCommand returns the parent command grouping the group access
// subcommands.
func NewAccessCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("access", "Manage a group's translation provider access list.")
}

// newAccessList builds an access list controller primed with a fresh
// baseline, ready to dispatch one-shot mutations (no live channel is run).
func newAccessList(ctx context.Context, rootCmd *RootCommand, p printer.Printer) (*accesslist.Controller, error) {
	cfg, err := rootCmd.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Group == "" {
		return nil, fmt.Errorf("a group is required (set --group or the config file)")
	}

	client, err := rootCmd.APIClient(cfg)
	if err != nil {
		return nil, err
	}

	controller, err := accesslist.NewController(accesslist.Config{
		Gateway:        client,
		GroupID:        cfg.Group,
		Notifier:       rootCmd.Notifier(p),
		ReconcileDelay: cfg.ReconcileDelay,
		Logger:         rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create access list: %w", err)
	}

	if err := controller.Refresh(ctx); err != nil {
		_ = controller.Close()
		return nil, err
	}

	return controller, nil
}
