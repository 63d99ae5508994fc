package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/canonic/internal/server"
	"github.com/matzehuels/canonic/pkg/observability/prom"
)

// serveFlags holds flags for the serve command.
type serveFlags struct {
	addr      string
	maxNodes  int
	noMetrics bool
	noCache   bool
}

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	flags := serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve refinement, canonicalization, isomorphism and catalog endpoints
over HTTP, with Prometheus metrics on /metrics.

The cache and catalog come from the config file; the server shuts down
gracefully on SIGINT or SIGTERM.`,
		Example: `  canonic serve --addr :9090 --max-nodes 100000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default from [server] addr)")
	cmd.Flags().IntVar(&flags.maxNodes, "max-nodes", server.DefaultMaxNodes, "cap the search budget of every request; 0 for no cap, [search] max_nodes applies when unset")
	cmd.Flags().BoolVar(&flags.noMetrics, "no-metrics", false, "do not expose /metrics")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

// runServe executes the serve command.
func (c *CLI) runServe(cmd *cobra.Command, flags serveFlags) error {
	ctx := cmd.Context()
	addr := flags.addr
	if addr == "" {
		addr = c.config.Server.Addr
	}
	maxNodes := serveMaxNodes(cmd, c.config.Search.MaxNodes)

	runner, err := c.newRunner(ctx, flags.noCache, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := []server.Option{server.WithMaxNodes(maxNodes)}
	if !flags.noMetrics {
		m := prom.New(nil)
		m.Register()
		opts = append(opts, server.WithMetrics(m.Handler()))
	}

	c.Logger.Info("starting server",
		"addr", addr,
		"cache", c.config.Cache.Backend,
		"catalog", c.config.Catalog.Backend,
		"max_nodes", maxNodes)
	return server.New(runner, c.Logger, opts...).ListenAndServe(ctx, addr, c.config.Server.ShutdownTimeout)
}

// serveMaxNodes picks the request budget cap: an explicit --max-nodes, then
// a positive [search] max_nodes, then server.DefaultMaxNodes.
func serveMaxNodes(cmd *cobra.Command, configured int) int {
	if cmd.Flags().Changed("max-nodes") || configured <= 0 {
		n, _ := cmd.Flags().GetInt("max-nodes")
		return n
	}
	return configured
}
