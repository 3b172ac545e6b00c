package cli

import (
	"github.com/spf13/cobra"

	"github.com/vizcli/viz/internal/web"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload-and-render web server",
		Long: `Serve a small web UI for uploading a data file and rendering it as a
chart or network graph in the browser.

The server uses the same pipeline and cache as the CLI commands.`,
		Example: `  viz serve
  viz serve --listen 0.0.0.0:9000 --no-cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := firstNonEmpty(listen, c.Config.Web.Listen)
			runner := c.newRunner(noCache)

			printInfo("Serving on http://%s", addr)
			server := web.New(runner, c.Logger)
			return server.Listen(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable artifact caching")

	return cmd
}
