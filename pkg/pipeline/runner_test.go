package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/pdkit/libmerge/pkg/cache"
	"github.com/pdkit/libmerge/pkg/errors"
	"github.com/pdkit/libmerge/pkg/liberty"
)

// writeFixtureLibrary lays out a two-cell library with a basic corner
// (ss_n40C_1v28) and a ccsnoise corner (ff_n40C_1v65).
func writeFixtureLibrary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"timing/sky130_fd_sc_hd__common.lib.json": `{
			"delay_model": "table_lookup",
			"time_unit": "1ns",
			"comp_attribute capacitive_load_unit": [1.0, "pf"]
		}`,
		"timing/sky130_fd_sc_hd__ss_n40C_1v28.lib.json": `{
			"default_max_transition": 7.5,
			"nom_voltage": 1.28
		}`,
		"timing/sky130_fd_sc_hd__ff_n40C_1v65_ccsnoise.lib.json": `{
			"default_max_transition": 7.5,
			"nom_voltage": 1.65,
			"ccsn_pullup_stage": "threepole"
		}`,
		"cells/buf/sky130_fd_sc_hd__buf_1__ss_n40C_1v28.lib.json": `{
			"area": 3.75,
			"cell_footprint": "buf"
		}`,
		"cells/buf/sky130_fd_sc_hd__buf_1__ff_n40C_1v65_ccsnoise.lib.json": `{
			"area": 3.75,
			"cell_footprint": "buf",
			"pin X": {
				"direction": "output",
				"timing": [
					{"related_pin": "A", "ccsn_first_stage": "stage_data"}
				]
			}
		}`,
		"cells/inv/sky130_fd_sc_hd__inv_2__ss_n40C_1v28.lib.json": `{
			"area": 1.25,
			"cell_footprint": "inv"
		}`,
		"cells/inv/sky130_fd_sc_hd__inv_2__ff_n40C_1v65_ccsnoise.lib.json": `{
			"area": 1.25,
			"cell_footprint": "inv",
			"pin A": {
				"direction": "input",
				"input_voltage": "default"
			}
		}`,
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const ssBasicDocument = `library ("sky130_fd_sc_hd__ss_n40C_1v28") {
    capacitive_load_unit(1.0000000000, "pf");
    default_max_transition : 7.5000000000;
    delay_model : "table_lookup";
    nom_voltage : 1.2800000000;
    time_unit : "1ns";

    cell ("sky130_fd_sc_hd__buf_1") {
        area : 3.7500000000;
        cell_footprint : "buf";
    }

    cell ("sky130_fd_sc_hd__inv_2") {
        area : 1.2500000000;
        cell_footprint : "inv";
    }

}
`

func testRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	r := NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func readDocument(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestExecuteWritesDocument(t *testing.T) {
	dir := writeFixtureLibrary(t)
	r := testRunner(t, nil)

	result, err := r.Execute(context.Background(), Options{
		LibraryDir: dir,
		Corners:    []string{"ss_n40C_1v28"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Failures)
	require.Len(t, result.Written, 1)

	out := result.Written[0]
	require.Equal(t, "ss_n40C_1v28", out.Corner)
	require.Equal(t, liberty.Basic, out.Input)
	require.Equal(t, liberty.Basic, out.Output)
	require.Equal(t, 2, out.Cells)
	require.False(t, out.DocumentHit)
	require.Equal(t, filepath.Join(dir, "timing", "sky130_fd_sc_hd__ss_n40C_1v28.lib"), out.Path)

	doc := readDocument(t, out.Path)
	require.Equal(t, ssBasicDocument, doc)
	require.Equal(t, len(doc), out.Size)

	require.Equal(t, 1, result.Stats.CornersWritten)
	require.Equal(t, 2, result.Stats.CellsRendered)
	require.Equal(t, "sky130_fd_sc_hd", result.Library.Name)
}

func TestExecuteAllCorners(t *testing.T) {
	dir := writeFixtureLibrary(t)
	r := testRunner(t, nil)

	result, err := r.Execute(context.Background(), Options{
		LibraryDir: dir,
		Corners:    []string{AllCorners},
	})
	require.NoError(t, err)
	require.Empty(t, result.Failures)
	require.Len(t, result.Written, 2)

	// Expansion is in sorted corner order.
	require.Equal(t, "ff_n40C_1v65", result.Written[0].Corner)
	require.Equal(t, "ss_n40C_1v28", result.Written[1].Corner)

	// The ccsnoise corner serves basic output from its ccsnoise files.
	require.Equal(t, liberty.CCSNoise, result.Written[0].Input)
	require.Equal(t, liberty.Basic, result.Written[0].Output)

	doc := readDocument(t, filepath.Join(dir, "timing", "sky130_fd_sc_hd__ff_n40C_1v65.lib"))
	require.Contains(t, doc, `library ("sky130_fd_sc_hd__ff_n40C_1v65") {`)
	require.Contains(t, doc, `pin ("X") {`)
	require.Contains(t, doc, "timing () {")
	require.NotContains(t, doc, "ccsn_")
	require.NotContains(t, doc, "input_voltage")
}

func TestExecuteCCSNoise(t *testing.T) {
	dir := writeFixtureLibrary(t)
	r := testRunner(t, nil)

	result, err := r.Execute(context.Background(), Options{
		LibraryDir: dir,
		Corners:    []string{AllCorners},
		Output:     liberty.CCSNoise,
	})
	require.NoError(t, err)
	require.Len(t, result.Written, 1)
	require.Equal(t, "ff_n40C_1v65", result.Written[0].Corner)

	doc := readDocument(t, filepath.Join(dir, "timing", "sky130_fd_sc_hd__ff_n40C_1v65_ccsnoise.lib"))
	require.Contains(t, doc, `ccsn_pullup_stage : "threepole";`)
	require.Contains(t, doc, `ccsn_first_stage : "stage_data";`)
	require.Contains(t, doc, `input_voltage : "default";`)
}

func TestExecuteUnknownCorner(t *testing.T) {
	dir := writeFixtureLibrary(t)
	r := testRunner(t, nil)

	result, err := r.Execute(context.Background(), Options{
		LibraryDir: dir,
		Corners:    []string{"tt_025C_1v80", "ss_n40C_1v28"},
	})
	require.NoError(t, err)
	require.Len(t, result.Written, 1)
	require.Equal(t, "ss_n40C_1v28", result.Written[0].Corner)

	require.Len(t, result.Failures, 1)
	f := result.Failures[0]
	require.Equal(t, "tt_025C_1v80", f.Corner)
	require.Equal(t, errors.ErrCodeUnknownCorner, f.Code)
	require.Equal(t, []string{"ff_n40C_1v65", "ss_n40C_1v28"}, f.Alternatives)
}

func TestExecuteUnsupportedVariant(t *testing.T) {
	dir := writeFixtureLibrary(t)
	r := testRunner(t, nil)

	result, err := r.Execute(context.Background(), Options{
		LibraryDir: dir,
		Corners:    []string{"ss_n40C_1v28"},
		Output:     liberty.Leakage,
	})
	require.NoError(t, err)
	require.Empty(t, result.Written)

	require.Len(t, result.Failures, 1)
	f := result.Failures[0]
	require.Equal(t, errors.ErrCodeUnsupportedVariant, f.Code)
	require.Contains(t, f.Message, "does not support leakage")
	require.Contains(t, f.Message, "only basic")
	require.Empty(t, f.Alternatives)
}

func TestExecuteNoCorners(t *testing.T) {
	dir := writeFixtureLibrary(t)
	r := testRunner(t, nil)

	_, err := r.Execute(context.Background(), Options{LibraryDir: dir})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestExecuteMissingLibrary(t *testing.T) {
	r := testRunner(t, nil)

	_, err := r.Execute(context.Background(), Options{
		LibraryDir: filepath.Join(t.TempDir(), "absent"),
		Corners:    []string{AllCorners},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidPath))
}

func TestExecuteOutDir(t *testing.T) {
	dir := writeFixtureLibrary(t)
	out := t.TempDir()
	r := testRunner(t, nil)

	result, err := r.Execute(context.Background(), Options{
		LibraryDir: dir,
		Corners:    []string{"ss_n40C_1v28"},
		OutDir:     out,
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "timing", "sky130_fd_sc_hd__ss_n40C_1v28.lib"), result.Written[0].Path)
	require.Equal(t, ssBasicDocument, readDocument(t, result.Written[0].Path))

	// The library tree itself stays untouched.
	entries, err := os.ReadDir(filepath.Join(dir, "timing"))
	require.NoError(t, err)
	for _, e := range entries {
		require.True(t, strings.HasSuffix(e.Name(), ".lib.json"), "unexpected file %s", e.Name())
	}
}

func TestExecuteLeavesNoTempFiles(t *testing.T) {
	dir := writeFixtureLibrary(t)
	r := testRunner(t, nil)

	_, err := r.Execute(context.Background(), Options{
		LibraryDir: dir,
		Corners:    []string{AllCorners},
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "timing"))
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestExecuteJobsDeterministic(t *testing.T) {
	dir := writeFixtureLibrary(t)
	serialOut := t.TempDir()
	parallelOut := t.TempDir()
	r := testRunner(t, nil)

	serial, err := r.Execute(context.Background(), Options{
		LibraryDir: dir,
		Corners:    []string{AllCorners},
		OutDir:     serialOut,
		Jobs:       1,
	})
	require.NoError(t, err)

	parallel, err := r.Execute(context.Background(), Options{
		LibraryDir: dir,
		Corners:    []string{AllCorners},
		OutDir:     parallelOut,
		Jobs:       4,
	})
	require.NoError(t, err)

	require.Len(t, parallel.Written, len(serial.Written))
	for i, s := range serial.Written {
		p := parallel.Written[i]
		require.Equal(t, s.Corner, p.Corner)
		require.Equal(t, readDocument(t, s.Path), readDocument(t, p.Path))
	}
}

func TestExecuteDocumentCache(t *testing.T) {
	dir := writeFixtureLibrary(t)
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := testRunner(t, c)

	opts := Options{
		LibraryDir: dir,
		Corners:    []string{"ss_n40C_1v28"},
	}

	first, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	require.False(t, first.Written[0].DocumentHit)

	second, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	require.True(t, second.Written[0].DocumentHit)
	require.Equal(t, ssBasicDocument, readDocument(t, second.Written[0].Path))

	refresh := opts
	refresh.Refresh = true
	third, err := r.Execute(context.Background(), refresh)
	require.NoError(t, err)
	require.False(t, third.Written[0].DocumentHit)
	require.Equal(t, ssBasicDocument, readDocument(t, third.Written[0].Path))
}

func TestExecuteCellCacheSurvivesTopChange(t *testing.T) {
	dir := writeFixtureLibrary(t)
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := testRunner(t, c)

	opts := Options{
		LibraryDir: dir,
		Corners:    []string{"ss_n40C_1v28"},
	}

	_, err = r.Execute(context.Background(), opts)
	require.NoError(t, err)

	// Changing the top-level fragment invalidates the document but not
	// the untouched cell renders.
	top := filepath.Join(dir, "timing", "sky130_fd_sc_hd__ss_n40C_1v28.lib.json")
	require.NoError(t, os.WriteFile(top, []byte(`{
		"default_max_transition": 7.5,
		"nom_voltage": 1.3
	}`), 0o644))

	result, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	require.False(t, result.Written[0].DocumentHit)
	require.Equal(t, 2, result.Written[0].CellHits)
	require.Equal(t, 2, result.Stats.CellCacheHits)

	doc := readDocument(t, result.Written[0].Path)
	require.Contains(t, doc, "nom_voltage : 1.3000000000;")
}

func TestDocument(t *testing.T) {
	dir := writeFixtureLibrary(t)
	r := testRunner(t, nil)

	lib, err := r.Discover(context.Background(), dir)
	require.NoError(t, err)

	doc, err := r.Document(context.Background(), lib, "ss_n40C_1v28", Options{LibraryDir: dir})
	require.NoError(t, err)
	require.Equal(t, ssBasicDocument, doc)

	// Rendering does not write anything.
	entries, err := os.ReadDir(filepath.Join(dir, "timing"))
	require.NoError(t, err)
	for _, e := range entries {
		require.True(t, strings.HasSuffix(e.Name(), ".lib.json"), "unexpected file %s", e.Name())
	}

	_, err = r.Document(context.Background(), lib, "tt_025C_1v80", Options{LibraryDir: dir})
	require.True(t, errors.Is(err, errors.ErrCodeUnknownCorner))

	_, err = r.Document(context.Background(), lib, "ss_n40C_1v28", Options{
		LibraryDir: dir,
		Output:     liberty.Leakage,
	})
	require.True(t, errors.Is(err, errors.ErrCodeUnsupportedVariant))
}
