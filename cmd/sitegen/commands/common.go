// Package commands implements the sitegen subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// CLI definition and global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (default: sitegen.yaml when present)"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log format (text|json); overrides logging.format"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Pages    PagesCmd    `cmd:"" help:"Build content pages from the template directory"`
	Index    IndexCmd    `cmd:"" help:"Build the paginated listing index"`
	Listings ListingsCmd `cmd:"" help:"Build one detail page per listing"`
	Master   MasterCmd   `cmd:"" help:"Fill the master template with site data"`
	All      AllCmd      `cmd:"" help:"Run master, pages, index and listings"`
	Watch    WatchCmd    `cmd:"" help:"Build, then rebuild on source changes"`
	Daemon   DaemonCmd   `cmd:"" help:"Rebuild on a fixed interval until interrupted"`
	History  HistoryCmd  `cmd:"" help:"Show recent builds from the history database"`

	cfg    *config.Config
	logger *slog.Logger
	// stdout receives command summaries.
	stdout io.Writer
}

// AfterApply runs after flag parsing: it loads the configuration and sets up
// logging once for all commands.
func (c *CLI) AfterApply() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := cfg.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	format := cfg.Logging.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	c.logger = slog.New(handler)
	slog.SetDefault(c.logger)
	return nil
}

// Logger returns the configured logger, or the default before AfterApply.
func (c *CLI) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

func (c *CLI) out() io.Writer {
	if c.stdout == nil {
		return os.Stdout
	}
	return c.stdout
}

// requireArgs prints usage and fails when a positional argument is missing
// and no configuration file supplies it.
func (c *CLI) requireArgs(kctx *kong.Context, args map[string]string) error {
	if c.cfg.Source != "" {
		return nil
	}
	var missing []string
	for _, name := range []string{"template-dir", "output-dir"} {
		if v, ok := args[name]; ok && v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	_ = kctx.PrintUsage(false)
	return ferrors.ValidationError("missing required arguments").
		WithContext("arguments", missing).
		WithContext("config", config.DefaultConfigFile).
		Build()
}

// runner creates a build runner with the configured sinks attached.
func (c *CLI) runner() (*build.Runner, func(), error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	r := build.NewRunner(c.cfg, c.Logger())
	closeSinks, err := r.OpenSinks()
	if err != nil {
		closeSinks()
		return nil, nil, err
	}
	return r, closeSinks, nil
}

// runPasses performs one build and prints its summary.
func (c *CLI) runPasses(ctx context.Context, passes ...build.Pass) error {
	r, closeSinks, err := c.runner()
	if err != nil {
		return err
	}
	defer closeSinks()

	rep, err := r.Run(ctx, passes...)
	if rep != nil {
		_, _ = fmt.Fprintln(c.out(), rep.Summary())
	}
	return err
}
