// Package pipeline drives the merge from characterization fragments to
// Liberty documents.
//
// # Architecture
//
// A run has three stages:
//
//  1. Collect: scan the library tree for corners and cells and verify
//     that every fragment the inventory implies is present on disk.
//  2. Resolve: expand the "all" request, record unknown corners and
//     unsupported variant requests as failures, and pick the input
//     variant whose files each surviving corner reads.
//  3. Generate: per corner, merge the common and top-level fragments,
//     render every cell group, assemble the document, and write it
//     atomically next to the timing fragments.
//
// Corners are independent of each other, so stage 3 runs them
// concurrently up to Options.Jobs. Failures in stage 2 do not abort the
// run: the remaining corners still generate and the failures are
// returned on the Result.
//
// # Usage
//
//	runner := pipeline.NewRunner(fileCache, nil, logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, pipeline.Options{
//		LibraryDir: "sky130_fd_sc_hd",
//		Corners:    []string{"ff_100C_1v65", "ss_100C_1v60"},
//		Output:     liberty.CCSNoise,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, out := range result.Written {
//		fmt.Println(out.Path)
//	}
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdkit/libmerge/pkg/corners"
	"github.com/pdkit/libmerge/pkg/errors"
	"github.com/pdkit/libmerge/pkg/liberty"
)

// ============================================================================
// Defaults
// ============================================================================

const (
	// DefaultOutput is the variant generated when none is requested.
	DefaultOutput = liberty.Basic

	// DefaultJobs is the number of corners generated concurrently.
	DefaultJobs = 4
)

// AllCorners requests every corner that supports the output variant. It
// only expands when it is the sole requested corner.
const AllCorners = "all"

// ValidOutputs enumerates the variants a run can generate.
var ValidOutputs = map[liberty.TimingType]bool{
	liberty.Basic:    true,
	liberty.CCSNoise: true,
	liberty.Leakage:  true,
}

// ValidateOutput checks that the requested output variant is one the
// pipeline can generate.
func ValidateOutput(tt liberty.TimingType) error {
	if !ValidOutputs[tt] {
		return fmt.Errorf("invalid output variant %q (must be one of: basic, ccsnoise, leakage)", tt.String())
	}
	return nil
}

// ============================================================================
// Options
// ============================================================================

// Options configures a pipeline run.
type Options struct {
	// Discovery options
	LibraryDir string `json:"library_dir"`

	// Generation options
	Corners []string           `json:"corners,omitempty"`
	Output  liberty.TimingType `json:"output,omitempty"`
	OutDir  string             `json:"out_dir,omitempty"`
	Refresh bool               `json:"refresh,omitempty"`
	Jobs    int                `json:"jobs,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. It
// is idempotent, so callers can validate early to surface errors before
// any work happens.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.LibraryDir == "" {
		return fmt.Errorf("library directory is required")
	}
	if o.Output == 0 {
		o.Output = DefaultOutput
	}
	if err := ValidateOutput(o.Output); err != nil {
		return err
	}
	if o.OutDir == "" {
		o.OutDir = o.LibraryDir
	}
	if o.Jobs == 0 {
		o.Jobs = DefaultJobs
	}
	if o.Jobs < 0 {
		return fmt.Errorf("jobs must be positive, got %d", o.Jobs)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// ============================================================================
// Results
// ============================================================================

// Result reports what a run produced.
type Result struct {
	// Library is the corner and cell inventory found under LibraryDir.
	Library *corners.Library `json:"library"`

	// Written lists the generated documents in request order.
	Written []CornerOutput `json:"written,omitempty"`

	// Failures lists requested corners that could not generate. They
	// are reported rather than fatal: the rest of the run completes.
	Failures []Failure `json:"failures,omitempty"`

	// Stats aggregates timing and cache counts across the run.
	Stats Stats `json:"stats"`
}

// CornerOutput describes one written document.
type CornerOutput struct {
	Corner   string             `json:"corner"`
	Input    liberty.TimingType `json:"input"`
	Output   liberty.TimingType `json:"output"`
	Path     string             `json:"path"`
	Cells    int                `json:"cells"`
	Size     int                `json:"size"`
	Duration time.Duration      `json:"duration"`

	// CellHits counts cell renders served from cache; DocumentHit is
	// set when the whole document came from cache and no cell was
	// touched at all.
	CellHits    int  `json:"cell_hits"`
	DocumentHit bool `json:"document_hit"`
}

// Failure describes one requested corner that was skipped.
type Failure struct {
	Corner       string      `json:"corner"`
	Code         errors.Code `json:"code"`
	Message      string      `json:"message"`
	Alternatives []string    `json:"alternatives,omitempty"`
}

// Stats aggregates run counters.
type Stats struct {
	CornersWritten int           `json:"corners_written"`
	CellsRendered  int           `json:"cells_rendered"`
	CellCacheHits  int           `json:"cell_cache_hits"`
	CollectTime    time.Duration `json:"collect_time"`
	GenerateTime   time.Duration `json:"generate_time"`
}
