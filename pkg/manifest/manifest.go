// Package manifest reads the optional library.toml file that maintainers
// can keep at the library root. Nothing in it is required to generate
// output; it only enriches corner listings.
package manifest

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/pdkit/libmerge/pkg/errors"
)

// Filename is the manifest looked up at the library root.
const Filename = "library.toml"

// Manifest is the decoded library.toml content.
type Manifest struct {
	Library LibraryInfo           `toml:"library"`
	Corners map[string]CornerInfo `toml:"corners"`
}

// LibraryInfo describes the library itself.
type LibraryInfo struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// CornerInfo describes one process corner.
type CornerInfo struct {
	Description string  `toml:"description"`
	Voltage     float64 `toml:"voltage"`
	Temperature float64 `toml:"temperature"`
	Process     string  `toml:"process"`
}

// Load reads the manifest from dir. A missing file is not an error; the
// zero manifest is returned instead so callers never branch on presence.
func Load(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, Filename))
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "reading %s", Filename)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decoding %s", Filename)
	}
	return &m, nil
}

// Description returns the manifest description for a corner, or the empty
// string when the corner is not described.
func (m *Manifest) Description(corner string) string {
	if m == nil {
		return ""
	}
	return m.Corners[corner].Description
}

// UnknownCorners returns the manifest corner names that discovery did not
// find, sorted. Callers warn about these rather than failing: stale
// metadata should never block generation.
func (m *Manifest) UnknownCorners(known []string) []string {
	if m == nil || len(m.Corners) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(known))
	for _, name := range known {
		set[name] = struct{}{}
	}

	var unknown []string
	for name := range m.Corners {
		if _, ok := set[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}
