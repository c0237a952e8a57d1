package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdkit/libmerge/pkg/corners"
	"github.com/pdkit/libmerge/pkg/manifest"
)

// cornersCommand creates the corners listing command.
func (c *CLI) cornersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "corners <library-dir>",
		Short: "List the corners characterized under a library",
		Long: `List every process corner discovered under a library directory along
with the characterization variants its fragments cover. Descriptions come
from the optional library.toml manifest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorners(cmd.Context(), args[0])
		},
	}
}

func runCorners(ctx context.Context, dir string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	lib, err := corners.Collect(dir)
	if err != nil {
		return err
	}

	man, err := manifest.Load(dir)
	if err != nil {
		printWarning("Ignoring corner manifest: %v", err)
		man = &manifest.Manifest{}
	}
	for _, name := range man.UnknownCorners(lib.SortedCorners()) {
		logger.Warn("manifest names a corner with no fragments", "corner", name)
	}

	prog.done(fmt.Sprintf("Discovered %d corners, %d cells", len(lib.Corners), len(lib.Cells)))
	fmt.Print(cornerListing(lib, man))
	return nil
}
