// Package cli implements the wrldbldr command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wrldbldr/pkg/buildinfo"
	"github.com/matzehuels/wrldbldr/pkg/cache"
	"github.com/matzehuels/wrldbldr/pkg/config"
	"github.com/matzehuels/wrldbldr/pkg/pipeline"
)

const (
	// appName is the application name used for directories and display.
	appName = "wrldbldr"

	// projectEnv names the environment variable holding a default project path.
	projectEnv = "WRLDBLDR_PROJECT"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "wrldbldr grows tile worlds from region blueprints",
		Long: `wrldbldr grows worlds of triangular sections from a tree of regions, each with
a section quota, then picks a tile for every section from its neighborhood.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.matchCommand())
	root.AddCommand(c.tilesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner backed by the local file cache.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newSharedCache connects to Redis when a URL is given and falls back to
// the local file cache otherwise.
func (c *CLI) newSharedCache(ctx context.Context, redisURL string) (cache.Cache, error) {
	if redisURL == "" {
		return newCache(false)
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{URL: redisURL})
	if err != nil {
		return nil, err
	}
	c.Logger.Info("using redis cache", "url", redisURL)
	return rc, nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/wrldbldr/).
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

// loadProject reads the project at path, or $WRLDBLDR_PROJECT when path is
// empty. With neither set the default project is used.
func loadProject(path string) (*config.Project, error) {
	if path == "" {
		path = os.Getenv(projectEnv)
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// projectFlag registers the shared --config flag.
func projectFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "config", "c", "", "project file (.toml, .yaml or .json); defaults to $"+projectEnv)
}
