package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/wrldbldr/internal/server"
	"github.com/matzehuels/wrldbldr/pkg/cache"
	"github.com/matzehuels/wrldbldr/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		project  string
		addr     string
		redisURL string
		prefix   string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation API over HTTP",
		Example: `  wrldbldr serve --addr :8080
  wrldbldr serve --redis redis://localhost:6379/0 -c world.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(project)
			if err != nil {
				return err
			}

			var cc cache.Cache = cache.NewNullCache()
			if !noCache {
				if cc, err = c.newSharedCache(cmd.Context(), redisURL); err != nil {
					return err
				}
			}
			var keyer cache.Keyer
			if prefix != "" {
				keyer = cache.NewScopedKeyer(nil, prefix)
			}
			runner := pipeline.NewRunner(cc, keyer, c.Logger)
			defer runner.Close()

			srv, err := server.New(runner, server.Config{Addr: addr, Project: p}, c.Logger)
			if err != nil {
				return err
			}
			printListening(addr)
			return srv.ListenAndServe(cmd.Context())
		},
	}

	projectFlag(cmd, &project)
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for the shared cache (default: local file cache)")
	cmd.Flags().StringVar(&prefix, "cache-prefix", "", "namespace for cache keys")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
