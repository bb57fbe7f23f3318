package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/traduct/dashsync/internal/app/taskboard"
	"github.com/traduct/dashsync/internal/printer"
)

// newTaskBoard builds a task board controller primed with a fresh baseline,
// ready to dispatch one-shot mutations (no live channel is run).
func newTaskBoard(ctx context.Context, rootCmd *RootCommand, p printer.Printer) (*taskboard.Controller, error) {
	cfg, err := rootCmd.Settings(ctx)
	if err != nil {
		return nil, err
	}

	client, err := rootCmd.APIClient(cfg)
	if err != nil {
		return nil, err
	}

	controller, err := taskboard.NewController(taskboard.Config{
		Gateway:        client,
		Notifier:       rootCmd.Notifier(p),
		ReconcileDelay: cfg.ReconcileDelay,
		Logger:         rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task board: %w", err)
	}

	if err := controller.Refresh(ctx); err != nil {
		_ = controller.Close()
		return nil, err
	}

	return controller, nil
}

// runTaskAction dispatches one mutation per task id and joins the failures.
// The notifier already reported each outcome, the joined error only drives
// the exit code.
func runTaskAction(ctx context.Context, ids []string, action func(ctx context.Context, id string) error) error {
	errs := make([]error, 0, len(ids))
	for _, id := range ids {
		if err := action(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}

	return errors.Join(errs...)
}
