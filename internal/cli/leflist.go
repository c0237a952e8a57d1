package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/pdkit/libmerge/pkg/io"
)

// lefListFile is the make fragment written under the library's lef
// directory.
const lefListFile = "leflist.mk"

// leflistCommand creates the leflist command.
func (c *CLI) leflistCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "leflist <library-dir>",
		Short: "Write the CELL_LEFS make variable for a cell library",
		Long: `Collect the LEF files under <library-dir>/cells and write them as a
CELL_LEFS make variable to <library-dir>/lef/leflist.mk. Abstract views
derived by magic (*.magic.lef) are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeflist(cmd.Context(), args[0])
		},
	}
}

func runLeflist(ctx context.Context, dir string) error {
	logger := loggerFromContext(ctx)

	lefs, err := collectLefs(dir)
	if err != nil {
		return err
	}
	logger.Debugf("Collected %d LEF views under %s", len(lefs), dir)

	path := filepath.Join(dir, "lef", lefListFile)
	if err := pkgio.WriteFileAtomic(path, []byte(buildLefList(lefs)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Collected %d LEF files", len(lefs))
	printFile(path)
	return nil
}

// collectLefs globs the per-cell LEF views under dir, dropping the
// magic-derived ones. The glob is sorted, so the list is deterministic.
func collectLefs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "cells", "*", "*.lef"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}

	var lefs []string
	for _, m := range matches {
		if strings.HasSuffix(m, "magic.lef") {
			continue
		}
		lefs = append(lefs, filepath.ToSlash(m))
	}
	if len(lefs) == 0 {
		return nil, fmt.Errorf("no LEF files under %s", filepath.Join(dir, "cells"))
	}
	return lefs, nil
}

// buildLefList renders the CELL_LEFS make variable, one LEF per
// backslash-continued line aligned to the header width.
func buildLefList(lefs []string) string {
	const header = `export CELL_LEFS="`

	var b strings.Builder
	b.WriteString(header + lefs[0] + " \\\n")
	for i, lef := range lefs[1:] {
		b.WriteString(strings.Repeat(" ", len(header)) + lef)
		if i != len(lefs)-2 {
			b.WriteString(" \\\n")
		}
	}
	b.WriteString(`"`)
	return b.String()
}
