package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/pdkit/libmerge/pkg/cache"
	"github.com/pdkit/libmerge/pkg/corners"
	"github.com/pdkit/libmerge/pkg/errors"
	"github.com/pdkit/libmerge/pkg/liberty"
	"github.com/pdkit/libmerge/pkg/observability"
)

// ============================================================================
// Runner
// ============================================================================

// Runner executes pipeline runs with caching. It holds no per-run
// state, so one Runner can serve concurrent runs against different
// libraries.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// falls back to the default key scheme, and a nil logger falls back to
// log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Close releases the cache backend.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// ============================================================================
// Execution
// ============================================================================

// Discover scans the library directory and returns its corner and cell
// inventory.
func (r *Runner) Discover(ctx context.Context, dir string) (*corners.Library, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnCollectStart(ctx, dir)

	lib, err := corners.Collect(dir)
	if err != nil {
		hooks.OnCollectComplete(ctx, dir, 0, 0, time.Since(start), err)
		return nil, err
	}

	hooks.OnCollectComplete(ctx, dir, len(lib.Corners), len(lib.Cells), time.Since(start), nil)
	return lib, nil
}

// Execute runs collect, resolve, and generate, and reports what
// happened. Problems with individual requested corners land in
// Result.Failures and do not stop the remaining corners; anything else
// returns an error.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	if len(opts.Corners) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no corners requested")
	}

	collectStart := time.Now()
	lib, err := r.Discover(ctx, opts.LibraryDir)
	if err != nil {
		return nil, err
	}

	result := &Result{Library: lib}
	result.Stats.CollectTime = time.Since(collectStart)

	opts.Logger.Info("collected library",
		"library", lib.Name,
		"corners", len(lib.Corners),
		"cells", len(lib.Cells),
		"duration", result.Stats.CollectTime)

	jobs := r.resolveCorners(lib, opts, result)
	for _, f := range result.Failures {
		opts.Logger.Warn("skipping corner", "corner", f.Corner, "reason", f.Message)
	}
	if len(jobs) == 0 {
		return result, nil
	}

	generateStart := time.Now()
	outputs := make([]*CornerOutput, len(jobs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Jobs)
	for i, job := range jobs {
		i, job := i, job // per-iteration copies: required under go <1.22 loop semantics
		eg.Go(func() error {
			out, err := r.generateCorner(egCtx, lib, job, opts)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, out := range outputs {
		result.Written = append(result.Written, *out)
		result.Stats.CellsRendered += out.Cells
		result.Stats.CellCacheHits += out.CellHits
	}
	result.Stats.CornersWritten = len(result.Written)
	result.Stats.GenerateTime = time.Since(generateStart)

	opts.Logger.Info("generation finished",
		"written", result.Stats.CornersWritten,
		"failed", len(result.Failures),
		"cache_hits", result.Stats.CellCacheHits,
		"duration", result.Stats.GenerateTime)

	return result, nil
}

// Document renders the merged document for one corner without writing
// it anywhere. The library must come from Discover on the directory
// named in opts.LibraryDir.
func (r *Runner) Document(ctx context.Context, lib *corners.Library, corner string, opts Options) (string, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}

	have, ok := lib.Corners[corner]
	if !ok {
		return "", errors.New(errors.ErrCodeUnknownCorner, "unknown corner %s", corner)
	}
	if !have.Contains(opts.Output) {
		return "", errors.New(errors.ErrCodeUnsupportedVariant,
			"corner %s does not support %s (only %s)", corner, opts.Output, have)
	}

	job := cornerJob{corner: corner, input: resolveInput(have, opts.Output)}
	doc, _, err := r.renderDocument(ctx, lib, job, opts)
	return doc, err
}

// ============================================================================
// Corner resolution
// ============================================================================

// resolveCorners turns the requested corner names into generation jobs,
// recording unknown corners and unsupported variant requests on the
// result. Job order follows request order; the "all" request expands in
// sorted order.
func (r *Runner) resolveCorners(lib *corners.Library, opts Options, result *Result) []cornerJob {
	requested := opts.Corners
	if len(requested) == 1 && requested[0] == AllCorners {
		requested = lib.Supporting(opts.Output)
	}

	var jobs []cornerJob
	for _, name := range requested {
		have, ok := lib.Corners[name]
		if !ok {
			result.Failures = append(result.Failures, Failure{
				Corner:       name,
				Code:         errors.ErrCodeUnknownCorner,
				Message:      fmt.Sprintf("unknown corner %s", name),
				Alternatives: lib.SortedCorners(),
			})
			continue
		}
		if !have.Contains(opts.Output) {
			result.Failures = append(result.Failures, Failure{
				Corner:       name,
				Code:         errors.ErrCodeUnsupportedVariant,
				Message:      fmt.Sprintf("corner %s does not support %s (only %s)", name, opts.Output, have),
				Alternatives: lib.Supporting(opts.Output),
			})
			continue
		}
		jobs = append(jobs, cornerJob{corner: name, input: resolveInput(have, opts.Output)})
	}
	return jobs
}

// resolveInput picks the variant whose files are read for a corner.
// Basic output reads the ccsnoise files when the corner has them: they
// carry the basic data as a subset and are the only files present once
// a corner's characterization collapsed to ccsnoise.
func resolveInput(have, output liberty.TimingType) liberty.TimingType {
	if output == liberty.Basic && have.Contains(liberty.CCSNoise) {
		return liberty.CCSNoise
	}
	return output
}
