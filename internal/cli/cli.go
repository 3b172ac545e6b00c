// Package cli implements the viz command-line interface.
//
// This package provides commands for turning tabular data files into
// interactive charts and network graphs, comparing datasets, and serving the
// upload form. The CLI is built using cobra and supports verbose logging via
// the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - chart: Render a chart (bar, line, scatter, histogram, pie) from a data file
//   - network: Render a node-link graph from an edge list
//   - compare: Join two datasets on a key and show per-column differences
//   - inspect: Preview a data file's columns and rows in the terminal
//   - renderers: List available renderers and layout algorithms
//   - cache: Manage the artifact cache
//   - serve: Run the upload-and-render web server
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vizcli/viz/pkg/buildinfo"
	"github.com/vizcli/viz/pkg/cache"
	"github.com/vizcli/viz/pkg/config"
	"github.com/vizcli/viz/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config
}

// New creates a new CLI instance with a default logger and the file-backed
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	cfg, err := config.Load("")
	logger := newLogger(w, level)
	if err != nil {
		logger.Warn("config load failed, using defaults", "err", err)
		cfg = config.Default()
	}
	return &CLI{Logger: logger, Config: cfg}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "viz",
		Short:        "Viz renders data files as interactive charts and network graphs",
		Long:         `Viz is a CLI tool for turning CSV, JSON, and Parquet files into interactive charts and node-link network graphs, with reshaping transforms applied along the way.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.chartCommand())
	root.AddCommand(c.networkCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderersCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(nil, c.newCache(noCache), c.Logger)
}

func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(c.Config.CachePath())
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "err", err)
		return cache.NewNullCache()
	}
	return fc
}
