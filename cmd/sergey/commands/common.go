// Package commands defines the sergey command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sergey/internal/config"
	"git.home.luguber.info/inful/sergey/internal/foundation/errors"
	"git.home.luguber.info/inful/sergey/internal/logfields"
)

// Global is bound into every command's Run.
type Global struct {
	// Stderr receives log output; os.Stderr when nil.
	Stderr io.Writer
}

// CLI is the root of the command tree.
type CLI struct {
	Config    string           `short:"c" env:"SERGEY_CONFIG" help:"Configuration file (default sergey.yaml when present)."`
	Verbose   bool             `short:"v" help:"Enable debug logging."`
	LogLevel  string           `name:"log-level" env:"SERGEY_LOG_LEVEL" help:"Log level (debug|info|warn|error)."`
	LogFormat string           `name:"log-format" env:"SERGEY_LOG_FORMAT" help:"Log format (text|json)."`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit."`

	Build BuildCmd `cmd:"" default:"withargs" help:"Compile the site into the output folder (default)."`
	Serve ServeCmd `cmd:"" help:"Build, watch for changes and serve the output with live reload."`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file."`

	logOverride bool
}

// AfterApply configures the default logger from the global flags. A config
// file can still set the level and format when no flag did.
func (c *CLI) AfterApply(g *Global) error {
	format, err := config.ParseLogFormat(c.LogFormat)
	if err != nil {
		return errors.ValidationError("invalid --log-format").WithContext("value", c.LogFormat).Build()
	}
	c.logOverride = c.Verbose || c.LogLevel != "" || c.LogFormat != ""
	slog.SetDefault(newLogger(g.stderr(), c.level(config.LogLevelInfo), format))
	return nil
}

func (c *CLI) level(fallback config.LogLevel) slog.Level {
	switch {
	case c.Verbose:
		return slog.LevelDebug
	case c.LogLevel != "":
		return config.NormalizeLogLevel(c.LogLevel).Slog()
	default:
		return fallback.Slog()
	}
}

func (g *Global) stderr() io.Writer {
	if g == nil || g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SiteFlags are shared by build and serve.
type SiteFlags struct {
	Root        string   `short:"r" env:"SERGEY_ROOT" help:"Source folder."`
	Output      string   `short:"o" env:"SERGEY_OUTPUT" help:"Output folder, relative to root."`
	Imports     string   `env:"SERGEY_IMPORTS" help:"Imports folder, relative to root."`
	Content     string   `env:"SERGEY_CONTENT" help:"Content folder for markdown imports, relative to root."`
	ActiveClass string   `name:"active-class" env:"SERGEY_ACTIVE_CLASS" help:"Class added to links to the current page."`
	Exclude     []string `sep:"," env:"SERGEY_EXCLUDE" help:"Comma separated name prefixes to skip."`
	Concurrency int      `env:"SERGEY_CONCURRENCY" help:"Files processed in parallel."`
	MaxDepth    int      `name:"max-depth" help:"Maximum import nesting."`
	Port        int      `short:"p" env:"SERGEY_PORT" help:"Preview server port."`
}

func (f SiteFlags) overrides(root *CLI) config.Overrides {
	return config.Overrides{
		Root:        f.Root,
		Imports:     f.Imports,
		Content:     f.Content,
		Output:      f.Output,
		ActiveClass: f.ActiveClass,
		Exclude:     f.Exclude,
		Concurrency: f.Concurrency,
		MaxDepth:    f.MaxDepth,
		Port:        f.Port,
		LogLevel:    root.LogLevel,
	}
}

// loadConfig reads the config file, applies flags and environment, and
// reconfigures the logger from the file when no logging flag was given.
func loadConfig(g *Global, root *CLI, flags SiteFlags) (*config.Config, *slog.Logger, error) {
	path, required := root.Config, true
	if path == "" {
		path, required = config.DefaultFile, false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Apply(flags.overrides(root)); err != nil {
		return nil, nil, err
	}

	logger := slog.Default()
	if !root.logOverride {
		logger = newLogger(g.stderr(), cfg.Logging.Level.Slog(), cfg.Logging.Format)
		slog.SetDefault(logger)
	}
	logger.Debug("Configuration loaded",
		logfields.Path(cfg.Root),
		slog.String("output", cfg.Output),
		slog.String("imports", cfg.Imports),
		slog.String("content", cfg.Content))
	return cfg, logger, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
