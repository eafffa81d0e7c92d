// Package cli implements the gedmd command-line interface.
//
// This package provides commands for converting GEDCOM files into an
// Obsidian vault: markdown notes, an alphabetical index, a family tree
// canvas, and Graphviz previews of the graph. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - convert: Generate notes, index, and canvas in one run
//   - canvas: Generate only the family tree canvas
//   - preview: Render a DOT or SVG preview of the family graph
//   - cache: Manage the local result cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/buildinfo"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/cache"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/canvas"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/config"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "gedmd"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "gedmd turns GEDCOM family trees into Obsidian vaults",
		Long:         `gedmd converts GEDCOM genealogy exports into an Obsidian vault: one markdown note per person, an alphabetical index, and a family tree canvas laid out by generation.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/gedmd/config.toml)")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.canvasCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the TOML config selected by --config, or defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newRunner creates a pipeline runner wired to the configured cache
// backend.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	backend, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Scope != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Scope+":")
	}
	return pipeline.NewRunner(backend, keyer, c.Logger), nil
}

func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Backend == config.CacheBackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == config.CacheBackendRedis {
		return cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/gedmd/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// layoutOptions converts the config layout section into canvas options.
func layoutOptions(cfg config.Config) canvas.Options {
	return canvas.Options{
		NodeWidth:         cfg.Layout.NodeWidth,
		NodeHeight:        cfg.Layout.NodeHeight,
		ImageHeight:       cfg.Layout.ImageHeight,
		GenerationSpacing: cfg.Layout.GenerationSpacing,
		SiblingSpacing:    cfg.Layout.SiblingSpacing,
		ClusterSpacing:    cfg.Layout.ClusterSpacing,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
