package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/traduct/dashsync/internal/config"
	"github.com/traduct/dashsync/internal/gateway"
	"github.com/traduct/dashsync/internal/log"
	"github.com/traduct/dashsync/internal/model"
	"github.com/traduct/dashsync/internal/mutate"
	"github.com/traduct/dashsync/internal/printer"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	ConfigPath string
	Server     string
	Token      string
	Group      string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger

	defaultConfigPath string
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	c.defaultConfigPath = filepath.Join(homedir.HomeDir(), ".dashsync", "config.yaml")
	app.Flag("config", "Path to the dashsync config file.").Envar("DASHSYNC_CONFIG").Default(c.defaultConfigPath).StringVar(&c.ConfigPath)
	app.Flag("server", "Dashboard server base URL (overrides the config file).").Envar("DASHSYNC_SERVER").StringVar(&c.Server)
	app.Flag("token", "Admin API bearer token (overrides the config file).").Envar("DASHSYNC_TOKEN").StringVar(&c.Token)
	app.Flag("group", "Default group for access operations (overrides the config file).").Envar("DASHSYNC_GROUP").StringVar(&c.Group)

	return c
}

// Settings merges the config file with the command line overrides. A missing
// file at the default location is fine, flags alone can carry the settings;
// an explicitly pointed file must exist.
func (c *RootCommand) Settings(ctx context.Context) (config.Config, error) {
	cfg, err := c.loadConfigFile(ctx)
	if err != nil {
		return config.Config{}, err
	}

	if c.Server != "" {
		cfg.Server = c.Server
	}
	if c.Token != "" {
		cfg.Token = c.Token
	}
	if c.Group != "" {
		cfg.Group = c.Group
	}

	if cfg.Server == "" {
		return config.Config{}, fmt.Errorf("dashboard server is required (set --server or the config file): %w", model.ErrNotValid)
	}

	return cfg, nil
}

func (c *RootCommand) loadConfigFile(ctx context.Context) (config.Config, error) {
	_, err := os.Stat(c.ConfigPath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && c.ConfigPath == c.defaultConfigPath:
		return config.Config{}, nil
	case err != nil:
		return config.Config{}, fmt.Errorf("could not read config file %q: %w", c.ConfigPath, err)
	}

	repo := config.NewYAMLRepository(os.DirFS(filepath.Dir(c.ConfigPath)))
	cfg, err := repo.GetConfig(ctx, filepath.Base(c.ConfigPath))
	if err != nil {
		return config.Config{}, fmt.Errorf("could not load config file %q: %w", c.ConfigPath, err)
	}

	return cfg, nil
}

// APIClient creates the dashboard API client from the merged settings.
func (c *RootCommand) APIClient(cfg config.Config) (*gateway.Client, error) {
	client, err := gateway.NewClient(gateway.ClientConfig{
		BaseURL:   cfg.Server,
		Token:     cfg.Token,
		RateLimit: cfg.RateLimit,
		Logger:    c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create API client: %w", err)
	}

	return client, nil
}

// Printer creates the output printer for the selected format.
func (c *RootCommand) Printer(format string) printer.Printer {
	switch format {
	case "json":
		return printer.NewJSONPrinter(c.Stdout)
	default: // table
		return printer.NewTablePrinter(c.Stdout)
	}
}

// Notifier returns a mutation notifier that prints every settled mutation.
func (c *RootCommand) Notifier(p printer.Printer) mutate.Notifier {
	return mutate.NotifierFunc(func(_ context.Context, n model.Notification) {
		if err := p.PrintNotification(n); err != nil {
			c.Logger.Errorf("could not print notification: %v", err)
		}
	})
}
