package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/alecthomas/kingpin/v2"

	"github.com/traduct/dashsync/internal/app/taskboard"
	"github.com/traduct/dashsync/internal/gateway"
	"github.com/traduct/dashsync/internal/printer"
)

type WatchCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	status     string
	ownerEmail string
	limit      int

	renderMu sync.Mutex
}

// NewWatchCommand returns the watch command.
func NewWatchCommand(rootCmd *RootCommand, app *kingpin.Application) *WatchCommand {
	c := &WatchCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("watch", "Follow the translation task board live, updated from server pushes.")
	c.Cmd.Flag("status", "Filter by status.").StringVar(&c.status)
	c.Cmd.Flag("owner", "Filter by owner email.").StringVar(&c.ownerEmail)
	c.Cmd.Flag("limit", "Page size.").Default("50").IntVar(&c.limit)

	return c
}

func (c *WatchCommand) Name() string { return c.Cmd.FullCommand() }

func (c *WatchCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.Settings(ctx)
	if err != nil {
		return err
	}

	client, err := c.rootCmd.APIClient(cfg)
	if err != nil {
		return err
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)

	controller, err := taskboard.NewController(taskboard.Config{
		Gateway: client,
		Query: gateway.TaskQuery{
			OwnerEmail: c.ownerEmail,
			Status:     c.status,
			Limit:      c.limit,
		},
		Notifier:       c.rootCmd.Notifier(p),
		PollInterval:   cfg.PollInterval,
		ReconcileDelay: cfg.ReconcileDelay,
		Logger:         c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create task board: %w", err)
	}
	defer func() { _ = controller.Close() }()

	// Repaint on every cache change (baseline fetches, pushes, optimistic
	// writes and rollbacks all land here).
	controller.Store().Subscribe(func() { c.render(controller, p) })

	return controller.Run(ctx)
}

func (c *WatchCommand) render(controller *taskboard.Controller, p printer.Printer) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	status := "RECONNECTING"
	if controller.Live() {
		status = "LIVE"
	}

	fmt.Fprintf(c.rootCmd.Stdout, "\n[%s]\n", status)
	if err := p.PrintTaskList(controller.Tasks()); err != nil {
		c.rootCmd.Logger.Errorf("could not print task board: %v", err)
	}
}
