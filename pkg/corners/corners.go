// Package corners discovers which process corners and cells are
// characterized under a library directory and verifies that the fragment
// layout is complete enough to merge.
package corners

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdkit/libmerge/pkg/errors"
	"github.com/pdkit/libmerge/pkg/liberty"
)

// Library is the result of scanning one library directory: the library
// name shared by every fragment, the characterization variants available
// per corner, and the sorted cell identifiers (drive-strength suffix
// included).
type Library struct {
	Name    string
	Corners map[string]liberty.TimingType
	Cells   []string
}

// SortedCorners returns the corner names in lexicographic order.
func (l *Library) SortedCorners() []string {
	names := make([]string, 0, len(l.Corners))
	for name := range l.Corners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Supports reports whether the corner exists and its recorded data covers
// the requested variant.
func (l *Library) Supports(corner string, tt liberty.TimingType) bool {
	have, ok := l.Corners[corner]
	return ok && have.Contains(tt)
}

// Supporting returns the corners whose data covers the requested variant,
// in sorted order.
func (l *Library) Supporting(tt liberty.TimingType) []string {
	var names []string
	for _, name := range l.SortedCorners() {
		if l.Corners[name].Contains(tt) {
			names = append(names, name)
		}
	}
	return names
}

// Collect scans the fragment files under dir and returns the discovered
// library. Every *.lib.json file outside a timing directory contributes
// one (cell, corner, variant) observation; the scan fails on the first
// fragment whose name does not follow the <library>__<cell>__<corner>
// convention or that names a different library than the rest. After the
// scan the layout is verified: a fragment per (cell, corner, variant),
// the timing directory, and a top-level fragment per (corner, variant)
// all have to exist on disk.
func Collect(dir string) (*Library, error) {
	c := collector{
		corners: make(map[string]liberty.TimingType),
		cells:   make(map[string]struct{}),
	}

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "scanning %s", p)
		}
		if p == dir {
			return nil
		}
		if d.IsDir() {
			if d.Name() == "timing" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".lib.json") {
			return nil
		}
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			rel = p
		}
		return c.record(rel)
	})
	if err != nil {
		return nil, err
	}

	lib, err := c.library(dir)
	if err != nil {
		return nil, err
	}
	if err := verifyLayout(dir, lib); err != nil {
		return nil, err
	}
	return lib, nil
}

type collector struct {
	name    string
	corners map[string]liberty.TimingType
	cells   map[string]struct{}
}

func (c *collector) record(rel string) error {
	stem, _, _ := strings.Cut(filepath.Base(rel), ".")
	parts := strings.Split(stem, "__")
	if len(parts) != 3 {
		return errors.New(errors.ErrCodeInvalidFilename,
			"fragment %s: name is not <library>__<cell>__<corner>.lib.json", rel)
	}

	if err := errors.ValidateLibraryName(parts[0]); err != nil {
		return err
	}
	if err := errors.ValidateCellName(parts[1]); err != nil {
		return err
	}
	corner, tt := liberty.ParseTimingType(parts[2])
	if err := errors.ValidateCornerName(corner); err != nil {
		return err
	}

	switch {
	case c.name == "":
		c.name = parts[0]
	case c.name != parts[0]:
		return errors.New(errors.ErrCodeInvalidLibrary,
			"fragment %s: library %s conflicts with %s", rel, parts[0], c.name)
	}

	c.corners[corner] |= tt
	c.cells[parts[1]] = struct{}{}
	return nil
}

func (c *collector) library(dir string) (*Library, error) {
	if c.name == "" || len(c.corners) == 0 || len(c.cells) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidLibrary, "no cell fragments under %s", dir)
	}

	cells := make([]string, 0, len(c.cells))
	for cell := range c.cells {
		cells = append(cells, cell)
	}
	sort.Strings(cells)

	return &Library{Name: c.name, Corners: c.corners, Cells: cells}, nil
}

// verifyLayout checks that the files implied by the scan actually exist,
// cell fragments first, then the per-corner top-level fragments.
func verifyLayout(dir string, lib *Library) error {
	sorted := lib.SortedCorners()

	for _, cell := range lib.Cells {
		for _, corner := range sorted {
			for _, tt := range lib.Corners[corner].Split() {
				if err := requireFile(dir, CellFile(lib.Name, cell, corner, tt)); err != nil {
					return err
				}
			}
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "timing")); err != nil {
		return errors.Wrap(errors.ErrCodeMissingFile, err, "timing directory under %s", dir)
	}
	for _, corner := range sorted {
		for _, tt := range lib.Corners[corner].Split() {
			if err := requireFile(dir, TopFile(lib.Name, corner, tt)); err != nil {
				return err
			}
		}
	}
	return nil
}

func requireFile(dir, rel string) error {
	if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
		return errors.Wrap(errors.ErrCodeMissingFile, err, "fragment %s", rel)
	}
	return nil
}
