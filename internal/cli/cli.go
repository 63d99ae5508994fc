// Package cli implements the canonic command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/canonic/pkg/buildinfo"
	"github.com/matzehuels/canonic/pkg/cache"
	"github.com/matzehuels/canonic/pkg/catalog"
	"github.com/matzehuels/canonic/pkg/config"
	"github.com/matzehuels/canonic/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "canonic"

	// catalogDirName is the badger directory under the data dir.
	catalogDirName = "catalog"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Canonic computes canonical forms and automorphisms of graphs",
		Long: `Canonic refines vertex partitions to equitable form, computes canonical
labelings with an individualization-refinement search, and reports the
automorphism group found along the way.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/canonic/config.toml)")

	root.AddCommand(c.refineCommand())
	root.AddCommand(c.canonCommand())
	root.AddCommand(c.isoCommand())
	root.AddCommand(c.traceCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the loaded configuration.
// withCatalog opens the configured catalog; commands that never record or
// look up classes pass false to avoid locking the badger directory.
func (c *CLI) newRunner(ctx context.Context, noCache, withCatalog bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var cat catalog.Catalog
	if withCatalog {
		cat, err = c.openCatalog(ctx)
		if err != nil {
			cc.Close()
			return nil, err
		}
	}
	return pipeline.NewRunner(cc, c.config.Keyer(), cat, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.config.Cache
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		var opts []cache.RedisOption
		if cfg.TTL > 0 {
			opts = append(opts, cache.WithDefaultTTL(cfg.TTL))
		}
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		if err := rc.Ping(ctx); err != nil {
			c.Logger.Warn("redis unreachable, caching disabled", "addr", cfg.RedisAddr, "error", err)
			rc.Close()
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// openCatalog opens the configured catalog. A badger catalog without a path
// lives under the data directory. Returns nil when the backend is "none".
func (c *CLI) openCatalog(ctx context.Context) (catalog.Catalog, error) {
	opts := c.config.CatalogOptions()
	if opts.Backend == "badger" && opts.Path == "" {
		dir, err := dataDir()
		if err != nil {
			return nil, err
		}
		opts.Path = filepath.Join(dir, catalogDirName)
	}
	return catalog.Open(ctx, opts)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/canonic/).
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

// dataDir returns the data directory (~/.local/share/canonic/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults fills search options the user left unset from the
// [search] config section.
func (c *CLI) setCLIDefaults(cmd *cobra.Command, opts *pipeline.Options) {
	s := c.config.Search
	flags := cmd.Flags()
	if !flags.Changed("max-nodes") && s.MaxNodes > 0 {
		opts.MaxNodes = s.MaxNodes
	}
	if !flags.Changed("timeout") && s.Timeout > 0 {
		opts.Timeout = s.Timeout
	}
	if !flags.Changed("descending") && s.Descending {
		opts.Descending = true
	}
	if !flags.Changed("no-prune") && !s.Prune {
		opts.NoPrune = true
	}
	opts.Logger = loggerFromContext(cmd.Context())
}
