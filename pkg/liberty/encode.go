package liberty

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdkit/libmerge/pkg/errors"
)

// indent is one level of group nesting.
const indent = "    "

// numberSuffixRE splits a trailing numeric suffix off an attribute name:
// index_1 becomes ("index", 1). The base may itself contain underscores,
// so the greedy prefix keeps everything up to the last suffix.
var numberSuffixRE = regexp.MustCompile(`(.*)_([0-9]+)`)

// tableBases are the attribute families rendered as quoted numeric tables.
var tableBases = map[string]bool{
	"variable": true,
	"index":    true,
	"values":   true,
}

// maxRank sorts entries without a numeric suffix after every suffixed one.
const maxRank = math.MaxInt

// entryKey is the sort key for one group entry. Entries order by numeric
// suffix first (unsuffixed last), then base name, then sub-group label.
// Ties keep the lexicographic order of the raw keys.
type entryKey struct {
	rank  int
	base  string
	label string
}

func (a entryKey) less(b entryKey) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	if a.base != b.base {
		return a.base < b.base
	}
	return a.label < b.label
}

// splitEntryName separates an entry key into its type and label at the
// first space: "pin A" is type "pin" with label "A". Composite attribute
// markers fold the marker away so the attribute sorts under its own name.
func splitEntryName(key string) (name, label string) {
	name, label, _ = strings.Cut(key, " ")
	if name == "comp_attribute" {
		return label, ""
	}
	return name, label
}

func splitNumberSuffix(name string) (string, int) {
	m := numberSuffixRE.FindStringSubmatch(name)
	if m == nil {
		return name, maxRank
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return name, maxRank
	}
	return m[1], n
}

func sortEntryKey(key string) entryKey {
	name, label := splitEntryName(key)
	base, rank := splitNumberSuffix(name)
	return entryKey{rank: rank, base: base, label: label}
}

// isTableKey reports whether key names a numeric table attribute
// (variable_N, index_N, or values).
func isTableKey(key string) bool {
	base, _ := splitNumberSuffix(key)
	return tableBases[base]
}

// EncodeGroup renders one group and everything beneath it as Liberty text
// lines at the given nesting depth. The layout is fully deterministic:
// defines come first in name order, then every entry in entryKey order.
func EncodeGroup(groupType, label string, g *Group, depth int) ([]string, error) {
	ind := strings.Repeat(indent, depth)

	quoted, err := quoteString(label)
	if err != nil {
		return nil, err
	}
	if label == "" {
		quoted = ""
	}

	out := []string{fmt.Sprintf("%s%s (%s) {", ind, groupType, quoted)}

	if dv, ok := g.Get("define"); ok {
		lines, err := encodeDefines(dv, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
		out = append(out, "")
	}

	keys := g.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return sortEntryKey(keys[i]).less(sortEntryKey(keys[j]))
	})

	for _, key := range keys {
		if key == "define" {
			continue
		}
		v, _ := g.Get(key)

		lines, err := encodeEntry(key, v, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}

	out = append(out, ind+"}")
	return out, nil
}

// encodeEntry renders a single group entry: a nested group, a repeated
// group list, a composite attribute, a numeric table, or a scalar.
func encodeEntry(key string, v Value, depth int) ([]string, error) {
	name, label, _ := strings.Cut(key, " ")

	if name == "comp_attribute" {
		if label == "" {
			return nil, errors.New(errors.ErrCodeInvalidValue, "composite attribute with no name")
		}
		list, ok := v.(List)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidValue, "composite attribute %s must be a list", label)
		}
		return encodeComposite(label, list, depth)
	}

	switch val := v.(type) {
	case *Group:
		return EncodeGroup(name, label, val, depth)

	case List:
		if len(val) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidValue, "empty list for %s", key)
		}
		if _, ok := val[0].(*Group); ok {
			return encodeGroupList(name, label, val, depth)
		}
		if isTableKey(key) {
			return encodeTable(key, val, depth)
		}
		return nil, errors.New(errors.ErrCodeInvalidListAttr, "unrecognized list attribute %s", key)

	default:
		s, err := encodeScalar(key, v)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("%s%s : %s;", strings.Repeat(indent, depth), key, s)}, nil
	}
}

func encodeScalar(key string, v Value) (string, error) {
	switch val := v.(type) {
	case String:
		return quoteString(string(val))
	case Int:
		return formatPaddedInt(int64(val)), nil
	case Float:
		return FormatFloat(float64(val))
	}
	return "", errors.New(errors.ErrCodeInvalidValue, "value for %s cannot be rendered", key)
}

// quoteString wraps s in double quotes. An embedded quote would silently
// corrupt the document, so it is fatal.
func quoteString(s string) (string, error) {
	if strings.Contains(s, `"`) {
		return "", errors.New(errors.ErrCodeInvalidString, "string value %q contains a double quote", s)
	}
	return `"` + s + `"`, nil
}

// encodeDefines renders the define block. Entries sort by group name, then
// attribute name, each a define(attribute,group,type); line.
func encodeDefines(v Value, depth int) ([]string, error) {
	list, ok := v.(List)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidValue, "define must be a list of definitions")
	}

	type define struct {
		attribute, group, atype string
	}

	defines := make([]define, 0, len(list))
	for _, el := range list {
		g, ok := el.(*Group)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidValue, "define entries must be objects")
		}
		d := define{}
		for _, f := range []struct {
			key  string
			dest *string
		}{
			{"attribute_name", &d.attribute},
			{"group_name", &d.group},
			{"attribute_type", &d.atype},
		} {
			fv, ok := g.Get(f.key)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidValue, "define entry missing %s", f.key)
			}
			s, ok := fv.(String)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidValue, "define %s must be a string", f.key)
			}
			*f.dest = string(s)
		}
		defines = append(defines, d)
	}

	sort.SliceStable(defines, func(i, j int) bool {
		return defines[i].group+"."+defines[i].attribute < defines[j].group+"."+defines[j].attribute
	})

	ind := strings.Repeat(indent, depth)
	out := make([]string, 0, len(defines))
	for _, d := range defines {
		out = append(out, fmt.Sprintf("%sdefine(%s,%s,%s);", ind, d.attribute, d.group, d.atype))
	}
	return out, nil
}

// encodeGroupList renders a repeated group (timing arcs, power tables).
// Elements are ordered by a signature over their entries so that repeated
// runs and merged fragments always produce the same sequence.
func encodeGroupList(name, label string, list List, depth int) ([]string, error) {
	groups := make([]*Group, len(list))
	for i, el := range list {
		g, ok := el.(*Group)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidValue, "mixed group list for %s", name)
		}
		groups[i] = g
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groupSignature(groups[i]) < groupSignature(groups[j])
	})

	var out []string
	for _, g := range groups {
		lines, err := EncodeGroup(name, label, g, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

// encodeTable renders a numeric table attribute. Multi-row tables open on
// the first row's line and continue with trailing backslashes:
//
//	values(    "1.0, 2.0", \
//	    "3.0, 4.0");
//
// Single-row tables render as one quoted call. If any element anywhere in
// the table is a float, every element renders in padded float form;
// all-integer tables render as plain decimals.
func encodeTable(key string, list List, depth int) ([]string, error) {
	ind := strings.Repeat(indent, depth)

	if rows, ok := tableRows(list); ok {
		asFloat, err := numericStrategy(rows, key)
		if err != nil {
			return nil, err
		}

		out := make([]string, 0, len(rows))
		for _, row := range rows {
			joined, err := joinNumeric(row, asFloat, key)
			if err != nil {
				return nil, err
			}
			out = append(out, fmt.Sprintf("%s\"%s\", \\", ind+indent, joined))
		}

		out[0] = fmt.Sprintf("%s%s(%s", ind, key, out[0])
		last := out[len(out)-1]
		out[len(out)-1] = last[:len(last)-3] + ");"
		return out, nil
	}

	asFloat, err := numericStrategy([]List{list}, key)
	if err != nil {
		return nil, err
	}
	joined, err := joinNumeric(list, asFloat, key)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s%s(\"%s\");", ind, key, joined)}, nil
}

// tableRows interprets list as a list of rows when its first element is
// itself a list.
func tableRows(list List) ([]List, bool) {
	if _, ok := list[0].(List); !ok {
		return nil, false
	}
	rows := make([]List, len(list))
	for i, el := range list {
		row, ok := el.(List)
		if !ok {
			return nil, false
		}
		rows[i] = row
	}
	return rows, true
}

// numericStrategy decides between float and integer rendering for a table
// and rejects non-numeric or empty content.
func numericStrategy(rows []List, key string) (bool, error) {
	floats, ints := 0, 0
	for _, row := range rows {
		for _, v := range row {
			switch v.(type) {
			case Float:
				floats++
			case Int:
				ints++
			default:
				return false, errors.New(errors.ErrCodeInvalidNumericList,
					"table %s contains a non-numeric element", key)
			}
		}
	}
	if floats+ints == 0 {
		return false, errors.New(errors.ErrCodeInvalidNumericList, "table %s is empty", key)
	}
	return floats > 0, nil
}

func joinNumeric(row List, asFloat bool, key string) (string, error) {
	parts := make([]string, 0, len(row))
	for _, v := range row {
		switch n := v.(type) {
		case Float:
			s, err := FormatFloat(float64(n))
			if err != nil {
				return "", errors.Wrap(errors.GetCode(err), err, "table %s", key)
			}
			parts = append(parts, s)
		case Int:
			if asFloat {
				parts = append(parts, formatPaddedInt(int64(n)))
			} else {
				parts = append(parts, FormatInt(int64(n)))
			}
		default:
			return "", errors.New(errors.ErrCodeInvalidNumericList,
				"table %s contains a non-numeric element", key)
		}
	}
	return strings.Join(parts, ", "), nil
}

// encodeComposite renders a composite attribute call. A list of lists
// renders one call per element list.
func encodeComposite(name string, list List, depth int) ([]string, error) {
	if len(list) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidValue, "empty composite attribute %s", name)
	}

	if _, ok := list[0].(List); ok {
		var out []string
		for _, el := range list {
			inner, ok := el.(List)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidValue, "mixed composite attribute %s", name)
			}
			lines, err := encodeComposite(name, inner, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, lines...)
		}
		return out, nil
	}

	parts := make([]string, 0, len(list))
	for _, v := range list {
		switch val := v.(type) {
		case Float:
			s, err := FormatFloat(float64(val))
			if err != nil {
				return nil, errors.Wrap(errors.GetCode(err), err, "composite attribute %s", name)
			}
			parts = append(parts, s)
		case Int:
			parts = append(parts, formatPaddedInt(int64(val)))
		case String:
			s, err := quoteString(string(val))
			if err != nil {
				return nil, err
			}
			parts = append(parts, s)
		default:
			return nil, errors.New(errors.ErrCodeInvalidValue,
				"composite attribute %s has an element that cannot be rendered", name)
		}
	}

	return []string{fmt.Sprintf("%s%s(%s);", strings.Repeat(indent, depth), name, strings.Join(parts, ", "))}, nil
}

// groupSignature builds a deterministic ordering key for repeated groups
// from their entries.
func groupSignature(g *Group) string {
	var b strings.Builder
	for _, k := range g.Keys() {
		v, _ := g.Get(k)
		b.WriteString(k)
		b.WriteByte('=')
		writeValueSignature(&b, v)
		b.WriteByte(';')
	}
	return b.String()
}

func writeValueSignature(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case String:
		b.WriteString("s:")
		b.WriteString(string(val))
	case Int:
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		b.WriteString("f:")
		b.WriteString(strconv.FormatFloat(float64(val), 'g', -1, 64))
	case List:
		b.WriteString("l:[")
		for _, el := range val {
			writeValueSignature(b, el)
			b.WriteByte(',')
		}
		b.WriteByte(']')
	case *Group:
		b.WriteString("g:{")
		b.WriteString(groupSignature(val))
		b.WriteByte('}')
	}
}

// AssembleDocument joins a rendered library group with rendered cell blocks
// into the final document text. The library group loses its closing brace;
// each cell block is preceded by a blank line; the document closes with a
// blank line and the library's brace, ending in a newline.
func AssembleDocument(library []string, cells []string) (string, error) {
	if len(library) == 0 || library[len(library)-1] != "}" {
		return "", errors.New(errors.ErrCodeInternal, "library group must end with a closing brace")
	}

	var b strings.Builder
	b.WriteString(strings.Join(library[:len(library)-1], "\n"))
	b.WriteByte('\n')
	for _, cell := range cells {
		b.WriteByte('\n')
		b.WriteString(cell)
		b.WriteByte('\n')
	}
	b.WriteString("\n}\n")
	return b.String(), nil
}
