// Package cli implements the stainedglass command-line interface.
//
// Commands generate mosaics, re-render saved mosaics, run seed batches,
// serve mosaics over HTTP, preview them in the terminal, and manage the
// render cache. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - generate: Build a mosaic from a seed and write it in one or more formats
//   - render: Re-render a saved mosaic JSON file, optionally with a new palette
//   - batch: Generate many seeds concurrently, or follow a reseed chain
//   - serve: Serve mosaics over HTTP
//   - preview: Interactive terminal preview with reseed and save keys
//   - palettes: List the available palettes
//   - cache: Manage the render cache
//
// # Configuration
//
// Defaults come from pkg/pipeline and can be overridden by a TOML config
// file (--config, or config.toml in the user config directory) and then
// by flags.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stainedglass/pkg/buildinfo"
	"github.com/matzehuels/stainedglass/pkg/cache"
	"github.com/matzehuels/stainedglass/pkg/observability"
	"github.com/matzehuels/stainedglass/pkg/palette"
	"github.com/matzehuels/stainedglass/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName names the binary, the config and cache directories.
	appName = "stainedglass"

	// cacheTimeout bounds connecting to a remote cache.
	cacheTimeout = 5 * time.Second
)

// Levels selectable from main.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI
// =============================================================================

// CLI is the state every command shares: the logger and the loaded config.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New returns a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel changes the level after construction, e.g. for --verbose.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stainedglass generates stained-glass mosaics from a seed",
		Long: `Stainedglass tessellates a frame into Voronoi glass cells joined by lead lines.
The same seed and settings always produce the same mosaic, which can be written
as SVG, PNG, PDF, JSON, or a Graphviz view of its cell adjacency.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.installHooks()
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+displayConfigPath()+")")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.palettesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config, or the default file
// if it exists.
func (c *CLI) loadConfig() error {
	path := c.configPath
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return nil
		}
		path = p
	}
	cfg, err := LoadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.config = cfg
	if cfg.path != "" {
		c.Logger.Debug("loaded config", "path", cfg.path)
	}
	return nil
}

// installHooks routes pipeline, cache, and HTTP events to the debug log.
func (c *CLI) installHooks() {
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetAll(hooks)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A Redis URL selects the
// shared cache; otherwise entries live in the user cache directory.
func (c *CLI) newRunner(ctx context.Context, noCache bool, redisURL string) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache, redisURL)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	return pipeline.NewRunner(cache.Instrument(cc), keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool, redisURL string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisURL == "" {
		redisURL = c.config.Cache.RedisURL
	}
	if redisURL != "" {
		ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
		defer cancel()
		return cache.NewRedisCache(ctx, cache.RedisConfig{URL: redisURL, Prefix: c.config.Cache.Prefix})
	}
	dir, err := cacheDir(c.config.Cache.Dir)
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// palettes returns the built-in palettes plus any palette files named in
// the config.
func (c *CLI) palettes() (*palette.Set, error) {
	set := palette.NewSet()
	if err := set.LoadInto(c.config.PaletteFiles...); err != nil {
		return nil, err
	}
	return set, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns override if set, else the XDG cache directory
// (~/.cache/stainedglass/).
func cacheDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
