package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdkit/libmerge/internal/server"
)

// serveCommand creates the serve command for the preview HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve <library-dir>",
		Short: "Serve generated Liberty documents over HTTP",
		Long: `Start a read-only preview server for one library. Corners and cells are
listed as JSON under /api, and /lib/{corner} renders the merged Liberty
document on demand through the same cache the generate command uses.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, dir, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv, err := server.New(ctx, runner, server.Config{
		LibraryDir: dir,
		Addr:       addr,
		Logger:     c.Logger,
	})
	if err != nil {
		return err
	}

	printInfo("Serving %s on %s", dir, StyleLink.Render(displayURL(addr)))
	printDetail("corners: %s/api/corners", displayURL(addr))
	printDetail("preview: %s/lib/{corner}?variant=basic", displayURL(addr))

	return srv.Start(ctx)
}

// displayURL turns a listen address into something clickable.
func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
