// Package sizes parses the drive-strength suffix of cell names.
//
// Characterized cell names carry their drive strength as a trailing
// numeric suffix: a2111o_1 is the a2111o cell at strength 1. The suffix
// determines the cell's directory in the library tree, which is named
// after the bare cell.
package sizes

import "strconv"

// Size describes the drive-strength suffix of a cell name.
type Size struct {
	// Suffix is the trailing suffix including its underscore, e.g. "_4".
	Suffix string

	// Strength is the numeric drive strength.
	Strength int
}

// Parse recognizes a trailing _<digits> drive-strength suffix on a cell
// name. It returns nil when the name has none.
func Parse(cellWithSize string) *Size {
	i := lastUnderscore(cellWithSize)
	if i < 0 || i == len(cellWithSize)-1 {
		return nil
	}

	digits := cellWithSize[i+1:]
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return nil
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &Size{Suffix: cellWithSize[i:], Strength: n}
}

// BaseName strips the drive-strength suffix from a cell name, returning
// the name unchanged when it has none.
func BaseName(cellWithSize string) string {
	if sz := Parse(cellWithSize); sz != nil {
		return cellWithSize[:len(cellWithSize)-len(sz.Suffix)]
	}
	return cellWithSize
}

func lastUnderscore(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '_' {
			return i
		}
	}
	return -1
}
