package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/traduct/dashsync/cmd/dashsync/commands"
	"github.com/traduct/dashsync/internal/log"
	loglogrus "github.com/traduct/dashsync/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("dashsync", "Admin CLI for the translation dashboard, synchronized live.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	watchCmd := commands.NewWatchCommand(rootCmd, app)
	tasksCmd := commands.NewTasksCommand(rootCmd, app)
	cancelCmd := commands.NewCancelCommand(rootCmd, app)
	retryCmd := commands.NewRetryCommand(rootCmd, app)
	rmCmd := commands.NewRmCommand(rootCmd, app)
	providersCmd := commands.NewProvidersCommand(rootCmd, app)

	// Access subcommands share a parent command.
	accessCmd := commands.NewAccessCommand(app)
	accessListCmd := commands.NewAccessListCommand(rootCmd, accessCmd)
	accessGrantCmd := commands.NewAccessGrantCommand(rootCmd, accessCmd)
	accessRevokeCmd := commands.NewAccessRevokeCommand(rootCmd, accessCmd)
	accessMoveCmd := commands.NewAccessMoveCommand(rootCmd, accessCmd)

	// User subcommands share a parent command.
	usersCmd := commands.NewUsersCommand(app)
	usersListCmd := commands.NewUsersListCommand(rootCmd, usersCmd)
	usersActivateCmd := commands.NewUsersActivateCommand(rootCmd, usersCmd)
	usersDeactivateCmd := commands.NewUsersDeactivateCommand(rootCmd, usersCmd)

	cmds := map[string]commands.Command{
		watchCmd.Name():           watchCmd,
		tasksCmd.Name():           tasksCmd,
		cancelCmd.Name():          cancelCmd,
		retryCmd.Name():           retryCmd,
		rmCmd.Name():              rmCmd,
		providersCmd.Name():       providersCmd,
		accessListCmd.Name():      accessListCmd,
		accessGrantCmd.Name():     accessGrantCmd,
		accessRevokeCmd.Name():    accessRevokeCmd,
		accessMoveCmd.Name():      accessMoveCmd,
		usersListCmd.Name():       usersListCmd,
		usersActivateCmd.Name():   usersActivateCmd,
		usersDeactivateCmd.Name(): usersDeactivateCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Auto-suppress logging for commands that produce structured output (table/JSON)
	// to prevent log noise from mixing with printer output in the terminal.
	// Users can still enable logging with --debug.
	printerCommands := map[string]bool{
		"tasks":       true,
		"providers":   true,
		"access list": true,
		"users list":  true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(ctx context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	// If logger not disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // By default logger goes to stderr (so it can split stdout prints).
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
