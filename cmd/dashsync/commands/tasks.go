package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/traduct/dashsync/internal/gateway"
	"github.com/traduct/dashsync/internal/model"
)

type TasksCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	status     string
	ownerEmail string
	engine     string
	priority   string
	limit      int
	offset     int
	format     string
}

// NewTasksCommand returns the tasks command.
func NewTasksCommand(rootCmd *RootCommand, app *kingpin.Application) *TasksCommand {
	c := &TasksCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("tasks", "List translation tasks.")
	c.Cmd.Flag("status", "Filter by status (pending, processing, completed, failed, cancelled).").StringVar(&c.status)
	c.Cmd.Flag("owner", "Filter by owner email.").StringVar(&c.ownerEmail)
	c.Cmd.Flag("engine", "Filter by translation engine.").StringVar(&c.engine)
	c.Cmd.Flag("priority", "Filter by priority (normal, high).").StringVar(&c.priority)
	c.Cmd.Flag("limit", "Page size.").Default("50").IntVar(&c.limit)
	c.Cmd.Flag("offset", "Page offset.").Default("0").IntVar(&c.offset)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c TasksCommand) Name() string { return c.Cmd.FullCommand() }

func (c TasksCommand) Run(ctx context.Context) error {
	// Validate status filter if provided.
	if c.status != "" {
		switch model.TaskStatus(c.status) {
		case model.TaskStatusPending, model.TaskStatusProcessing, model.TaskStatusCompleted,
			model.TaskStatusFailed, model.TaskStatusCancelled:
		default:
			return fmt.Errorf("invalid status filter: %s (must be: pending, processing, completed, failed, cancelled)", c.status)
		}
	}

	cfg, err := c.rootCmd.Settings(ctx)
	if err != nil {
		return err
	}

	client, err := c.rootCmd.APIClient(cfg)
	if err != nil {
		return err
	}

	tasks, err := client.ListTasks(ctx, gateway.TaskQuery{
		OwnerEmail: c.ownerEmail,
		Status:     c.status,
		Engine:     c.engine,
		Priority:   c.priority,
		Limit:      c.limit,
		Offset:     c.offset,
	})
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintTaskList(tasks); err != nil {
		return fmt.Errorf("could not print tasks: %w", err)
	}

	return nil
}
