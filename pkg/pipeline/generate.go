package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdkit/libmerge/pkg/buildinfo"
	"github.com/pdkit/libmerge/pkg/cache"
	"github.com/pdkit/libmerge/pkg/corners"
	"github.com/pdkit/libmerge/pkg/errors"
	pkgio "github.com/pdkit/libmerge/pkg/io"
	"github.com/pdkit/libmerge/pkg/liberty"
	"github.com/pdkit/libmerge/pkg/observability"
)

// cornerJob is one corner resolved for generation: the corner name and
// the variant whose fragment files are read.
type cornerJob struct {
	corner string
	input  liberty.TimingType
}

// renderStats counts the cache traffic of one document render.
type renderStats struct {
	cellHits    int
	documentHit bool
}

// generateCorner renders one corner's document and writes it.
func (r *Runner) generateCorner(ctx context.Context, lib *corners.Library, job cornerJob, opts Options) (*CornerOutput, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnCornerStart(ctx, job.corner)

	doc, stats, err := r.renderDocument(ctx, lib, job, opts)
	if err != nil {
		hooks.OnCornerComplete(ctx, job.corner, len(lib.Cells), time.Since(start), err)
		return nil, err
	}

	outPath := outputPath(opts.OutDir, lib.Name, job.corner, opts.Output)
	if err := pkgio.WriteFileAtomic(outPath, []byte(doc), 0o644); err != nil {
		err = errors.Wrap(errors.ErrCodeWriteFailed, err, "writing %s", outPath)
		hooks.OnCornerComplete(ctx, job.corner, len(lib.Cells), time.Since(start), err)
		return nil, err
	}
	hooks.OnEmit(ctx, outPath, len(doc))
	hooks.OnCornerComplete(ctx, job.corner, len(lib.Cells), time.Since(start), nil)

	duration := time.Since(start)
	opts.Logger.Info("wrote corner document",
		"corner", job.corner,
		"input", job.input,
		"path", outPath,
		"cells", len(lib.Cells),
		"size", len(doc),
		"cache_hits", stats.cellHits,
		"duration", duration)

	return &CornerOutput{
		Corner:      job.corner,
		Input:       job.input,
		Output:      opts.Output,
		Path:        outPath,
		Cells:       len(lib.Cells),
		Size:        len(doc),
		Duration:    duration,
		CellHits:    stats.cellHits,
		DocumentHit: stats.documentHit,
	}, nil
}

// outputPath places the corner document under dir, mirroring the
// timing/ layout of the library tree with a .lib extension.
func outputPath(dir, lib, corner string, output liberty.TimingType) string {
	rel := strings.TrimSuffix(corners.TopFile(lib, corner, output), ".lib.json") + ".lib"
	return filepath.Join(dir, filepath.FromSlash(rel))
}

// renderDocument loads, merges, and encodes one corner's document.
// Reads go through two cache levels: the assembled document, keyed by a
// fingerprint of every input fragment, and each rendered cell.
func (r *Runner) renderDocument(ctx context.Context, lib *corners.Library, job cornerJob, opts Options) (string, *renderStats, error) {
	stats := &renderStats{}
	cacheHooks := observability.Cache()

	commonRel := corners.CommonFile(lib.Name)
	commonBlob, err := r.loadFragment(opts.LibraryDir, commonRel)
	if err != nil {
		return "", nil, err
	}
	topRel := corners.TopFile(lib.Name, job.corner, job.input)
	topBlob, err := r.loadFragment(opts.LibraryDir, topRel)
	if err != nil {
		return "", nil, err
	}

	cellBlobs := make([][]byte, len(lib.Cells))
	hashes := make([]string, 0, len(lib.Cells)+2)
	hashes = append(hashes, cache.Hash(commonBlob), cache.Hash(topBlob))
	for i, cell := range lib.Cells {
		blob, err := r.loadFragment(opts.LibraryDir, corners.CellFile(lib.Name, cell, job.corner, job.input))
		if err != nil {
			return "", nil, err
		}
		cellBlobs[i] = blob
		hashes = append(hashes, cache.Hash(blob))
	}

	fingerprint := cache.Hash([]byte(strings.Join(hashes, "\n")))
	docKey := r.Keyer.DocumentKey(fingerprint, cache.DocumentKeyOpts{
		Library: lib.Name,
		Corner:  job.corner,
		Input:   job.input.String(),
		Output:  opts.Output.String(),
		Version: buildinfo.Version,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, docKey); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, "document")
			stats.documentHit = true
			return string(data), stats, nil
		}
		cacheHooks.OnCacheMiss(ctx, "document")
	}

	common, err := liberty.DecodeFragment(commonBlob)
	if err != nil {
		return "", nil, errors.Wrap(errors.GetCode(err), err, "fragment %s", commonRel)
	}
	top, err := liberty.DecodeFragment(topBlob)
	if err != nil {
		return "", nil, errors.Wrap(errors.GetCode(err), err, "fragment %s", topRel)
	}
	merged, err := liberty.MergeFragments(common, top)
	if err != nil {
		return "", nil, errors.Wrap(errors.GetCode(err), err, "merging %s into %s", topRel, commonRel)
	}
	if !opts.Output.Contains(liberty.CCSNoise) {
		liberty.StripNoise(merged)
	}

	libLines, err := liberty.EncodeGroup("library", lib.Name+"__"+job.corner, merged, 0)
	if err != nil {
		return "", nil, errors.Wrap(errors.GetCode(err), err, "corner %s", job.corner)
	}

	cellTexts := make([]string, len(lib.Cells))
	for i, cell := range lib.Cells {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		text, hit, err := r.renderCell(ctx, lib.Name, cell, cellBlobs[i], job, opts)
		if err != nil {
			return "", nil, err
		}
		if hit {
			stats.cellHits++
		}
		cellTexts[i] = text
	}

	doc, err := liberty.AssembleDocument(libLines, cellTexts)
	if err != nil {
		return "", nil, err
	}

	if !opts.Refresh {
		_ = r.Cache.Set(ctx, docKey, []byte(doc), cache.DefaultDocumentTTL)
		cacheHooks.OnCacheSet(ctx, "document", len(doc))
	}
	return doc, stats, nil
}

// renderCell renders one cell group at cell depth, consulting the cell
// cache first. The key covers the fragment bytes and the variant pair,
// so a ccsnoise fragment rendered for basic output caches separately
// from its ccsnoise render.
func (r *Runner) renderCell(ctx context.Context, libName, cell string, blob []byte, job cornerJob, opts Options) (string, bool, error) {
	cacheHooks := observability.Cache()
	key := r.Keyer.CellKey(cache.Hash(blob), cache.RenderKeyOpts{
		Input:   job.input.String(),
		Output:  opts.Output.String(),
		Version: buildinfo.Version,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, "cell")
			return string(data), true, nil
		}
		cacheHooks.OnCacheMiss(ctx, "cell")
	}

	group, err := liberty.DecodeFragment(blob)
	if err != nil {
		return "", false, errors.Wrap(errors.GetCode(err), err,
			"fragment %s", corners.CellFile(libName, cell, job.corner, job.input))
	}
	if !opts.Output.Contains(liberty.CCSNoise) {
		liberty.StripNoise(group)
	}

	lines, err := liberty.EncodeGroup("cell", libName+"__"+cell, group, 1)
	if err != nil {
		return "", false, errors.Wrap(errors.GetCode(err), err, "cell %s", cell)
	}
	text := strings.Join(lines, "\n")

	if !opts.Refresh {
		_ = r.Cache.Set(ctx, key, []byte(text), cache.DefaultCellTTL)
		cacheHooks.OnCacheSet(ctx, "cell", len(text))
	}
	return text, false, nil
}

// loadFragment reads one fragment file by its library-relative path.
func (r *Runner) loadFragment(dir, rel string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissingFile, err, "fragment %s", rel)
	}
	return data, nil
}
