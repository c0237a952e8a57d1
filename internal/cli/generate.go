package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdkit/libmerge/pkg/corners"
	"github.com/pdkit/libmerge/pkg/liberty"
	"github.com/pdkit/libmerge/pkg/manifest"
	"github.com/pdkit/libmerge/pkg/pipeline"
)

// generateFlags holds the command-line flags for the generate command.
type generateFlags struct {
	ccsnoise bool   // generate the ccsnoise variant
	leakage  bool   // generate the power-leakage variant
	outDir   string // output directory (library dir if empty)
	jobs     int    // concurrent corner limit
	refresh  bool   // re-render even on cache hits
	noCache  bool   // disable the render cache
	noInput  bool   // never open the interactive picker
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	flags := generateFlags{
		outDir: c.cfg.OutputDir,
		jobs:   c.cfg.Jobs,
	}

	cmd := &cobra.Command{
		Use:   "generate <library-dir> [corner ...]",
		Short: "Merge fragments into Liberty timing files",
		Long: `Merge the JSON characterization fragments of a cell library into one
Liberty file per requested corner.

Without corner arguments the command lists what is available, or opens an
interactive picker when run on a terminal. The special corner name "all"
expands to every corner that supports the requested output variant.

Examples:
  libmerge generate sky130_fd_sc_hd                          # list corners
  libmerge generate sky130_fd_sc_hd all                      # every corner
  libmerge generate sky130_fd_sc_hd ff_100C_1v65 --ccsnoise  # one corner, ccsnoise
  libmerge generate sky130_fd_sc_hd all --leakage -o build/  # leakage files into build/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.ccsnoise && flags.leakage {
				return fmt.Errorf("--ccsnoise and --leakage are mutually exclusive")
			}
			return c.runGenerate(cmd.Context(), args[0], args[1:], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.ccsnoise, "ccsnoise", false, "generate the ccsnoise variant")
	cmd.Flags().BoolVar(&flags.leakage, "leakage", false, "generate the power-leakage variant")
	cmd.Flags().StringVarP(&flags.outDir, "output-dir", "o", flags.outDir, "output directory (library dir if empty)")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", flags.jobs, "corners generated concurrently (0 for default)")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&flags.noInput, "no-input", false, "never prompt; list corners instead")

	return cmd
}

// outputVariant maps the variant flags to a timing type. Both flags set
// is rejected before this is called.
func outputVariant(ccsnoise, leakage bool) liberty.TimingType {
	switch {
	case ccsnoise:
		return liberty.CCSNoise
	case leakage:
		return liberty.Leakage
	}
	return liberty.Basic
}

// runGenerate resolves the corner set and drives the pipeline.
func (c *CLI) runGenerate(ctx context.Context, dir string, cornerNames []string, flags generateFlags) error {
	output := outputVariant(flags.ccsnoise, flags.leakage)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if len(cornerNames) == 0 {
		cornerNames, err = c.chooseCorners(ctx, runner, dir, output, flags.noInput)
		if err != nil || len(cornerNames) == 0 {
			return err
		}
	}

	opts := pipeline.Options{
		LibraryDir: dir,
		Corners:    cornerNames,
		Output:     output,
		OutDir:     flags.outDir,
		Refresh:    flags.refresh,
		Jobs:       flags.jobs,
		Logger:     c.Logger,
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Merging %s fragments...", output))
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	return printResult(result)
}

// chooseCorners handles a generate call that named no corners: on a
// terminal the interactive picker runs, otherwise the availability
// listing is printed and the run ends.
func (c *CLI) chooseCorners(ctx context.Context, runner *pipeline.Runner, dir string, output liberty.TimingType, noInput bool) ([]string, error) {
	lib, err := runner.Discover(ctx, dir)
	if err != nil {
		return nil, err
	}
	man, err := manifest.Load(dir)
	if err != nil {
		printWarning("Ignoring corner manifest: %v", err)
		man = &manifest.Manifest{}
	}

	if noInput || !isInteractive() {
		fmt.Print(cornerListing(lib, man))
		printNewline()
		printNextStep("generate a corner", fmt.Sprintf("%s generate %s <corner>", appName, dir))
		return nil, nil
	}

	picked, err := pickCorners(lib, man, output)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		printDetail("No corners selected")
		return nil, nil
	}
	return picked, nil
}

// printResult reports the written documents and the per-corner failures.
// It returns a non-nil error when any requested corner failed, so the
// process exits non-zero.
func printResult(result *pipeline.Result) error {
	requested := len(result.Written) + len(result.Failures)
	if requested == 0 {
		printWarning("Nothing to generate (no corner supports the requested variant)")
		return nil
	}
	if len(result.Written) > 0 {
		printSuccess("Generated %d of %d corners", len(result.Written), requested)
		for _, out := range result.Written {
			printFile(out.Path)
			printDocStats(out.Cells, out.Size, out.CellHits, out.DocumentHit)
		}
	}

	for _, f := range result.Failures {
		printError("%s", f.Message)
		if len(f.Alternatives) > 0 {
			printDetail("available: %s", strings.Join(f.Alternatives, ", "))
		}
	}

	if len(result.Failures) > 0 {
		return fmt.Errorf("%d of %d corners failed", len(result.Failures), requested)
	}
	return nil
}

// cornerListing renders the availability listing shared by the corners
// command and a pickerless generate call.
func cornerListing(lib *corners.Library, man *manifest.Manifest) string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(lib.Name))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d corners · %d cells", len(lib.Corners), len(lib.Cells))))
	b.WriteString("\n\n")

	width := 0
	for name := range lib.Corners {
		if len(name) > width {
			width = len(name)
		}
	}

	for _, name := range lib.SortedCorners() {
		have := lib.Corners[name]
		b.WriteString("  " + StyleHighlight.Render(fmt.Sprintf("%-*s", width, name)))
		b.WriteString("  " + StyleValue.Render(fmt.Sprintf("%-25s", have.Names())))
		if a := have.Describe(); a != "" {
			b.WriteString("  " + StyleDim.Render(a))
		}
		if desc := man.Description(name); desc != "" {
			b.WriteString("  " + StyleDim.Render("· "+desc))
		}
		b.WriteString("\n")
	}

	return b.String()
}
