package liberty

import "strings"

// TimingType is a bit set of characterization variants. A corner's value is
// the union of every variant discovered for it; a single file's value is
// always one named variant.
type TimingType uint8

const (
	// Basic files carry delay and transition tables.
	Basic TimingType = 1

	// CCSNoise files are basic files with extra 'ccsn_' values in the
	// timing data, so the bit set includes Basic.
	CCSNoise TimingType = 2 | Basic

	// Leakage files are separate from the basic files.
	Leakage TimingType = 4
)

// timingTypes lists the named variants in ascending bit order.
var timingTypes = []TimingType{Basic, CCSNoise, Leakage}

var timingTypeNames = map[TimingType]string{
	Basic:    "basic",
	CCSNoise: "ccsnoise",
	Leakage:  "leakage",
}

const (
	suffixCCSNoise = "_ccsnoise"
	suffixLeakage  = "_pwrlkg"
)

// ParseTimingType splits a corner identifier into its bare name and the
// variant indicated by its suffix. Unsuffixed names are the basic variant.
//
//	ParseTimingType("ff_100C_1v65")          // "ff_100C_1v65", Basic
//	ParseTimingType("ff_100C_1v65_ccsnoise") // "ff_100C_1v65", CCSNoise
//	ParseTimingType("ff_100C_1v65_pwrlkg")   // "ff_100C_1v65", Leakage
func ParseTimingType(name string) (string, TimingType) {
	switch {
	case strings.HasSuffix(name, suffixCCSNoise):
		return strings.TrimSuffix(name, suffixCCSNoise), CCSNoise
	case strings.HasSuffix(name, suffixLeakage):
		return strings.TrimSuffix(name, suffixLeakage), Leakage
	}
	return name, Basic
}

// TimingTypeByName resolves a bare variant name such as "basic" or
// "ccsnoise". The empty string is the basic variant.
func TimingTypeByName(name string) (TimingType, bool) {
	if name == "" {
		return Basic, true
	}
	for tt, n := range timingTypeNames {
		if n == name {
			return tt, true
		}
	}
	return 0, false
}

// Contains reports whether every bit of other is present in t.
// Basic is contained in CCSNoise.
func (t TimingType) Contains(other TimingType) bool {
	return t&other == other
}

// FileSuffix returns the file-name suffix for a single variant. Unions and
// the basic variant have no suffix.
func (t TimingType) FileSuffix() string {
	switch t {
	case CCSNoise:
		return suffixCCSNoise
	case Leakage:
		return suffixLeakage
	}
	return ""
}

// Describe returns a human-readable annotation for the extra data carried
// beyond basic, or the empty string.
//
//	Basic.Describe()                // ""
//	CCSNoise.Describe()             // "(with ccsnoise)"
//	(CCSNoise | Leakage).Describe() // "(with ccsnoise and power leakage)"
func (t TimingType) Describe() string {
	var o []string
	if t.Contains(CCSNoise) {
		o = append(o, "ccsnoise")
	}
	if t.Contains(Leakage) {
		o = append(o, "power leakage")
	}
	if len(o) == 0 {
		return ""
	}
	return "(with " + strings.Join(o, " and ") + ")"
}

// Names returns the comma-separated names of every contained variant.
// CCSNoise contains Basic, so CCSNoise.Names() is "basic, ccsnoise".
func (t TimingType) Names() string {
	var o []string
	for _, v := range timingTypes {
		if t.Contains(v) {
			o = append(o, timingTypeNames[v])
		}
	}
	return strings.Join(o, ", ")
}

// Split decomposes a bit set into the variants it provides data for. Basic
// is dropped when CCSNoise is present, since a ccsnoise file subsumes the
// basic one. The result is in ascending bit order.
func (t TimingType) Split() []TimingType {
	var o []TimingType
	for _, v := range timingTypes {
		if t.Contains(v) {
			o = append(o, v)
		}
	}
	if t.Contains(CCSNoise) && len(o) > 0 && o[0] == Basic {
		o = o[1:]
	}
	return o
}

// Singular reports whether t provides data for exactly one variant.
func (t TimingType) Singular() bool {
	return len(t.Split()) == 1
}

// String returns the variant name, or a pipe-joined list for unions.
func (t TimingType) String() string {
	if name, ok := timingTypeNames[t]; ok {
		return name
	}
	parts := t.Split()
	if len(parts) == 0 {
		return "none"
	}
	names := make([]string, len(parts))
	for i, v := range parts {
		names[i] = timingTypeNames[v]
	}
	return strings.Join(names, "|")
}
