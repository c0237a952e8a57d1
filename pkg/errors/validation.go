package errors

import (
	"regexp"
	"unicode"
)

// identifierRegex matches the library, cell, and corner identifiers that
// appear in characterization filenames: alphanumeric runs joined by single
// underscores, as in sky130_fd_sc_hd, a2bb2o_1, or ff_100C_1v65.
var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9]+(_[A-Za-z0-9]+)*$`)

// validateIdentifier applies the shared safety rules for name components
// that end up in file paths and URLs.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 128 characters
//   - Alphanumerics and single underscores only
func validateIdentifier(code Code, kind, name string) error {
	if name == "" {
		return New(code, "%s name cannot be empty", kind)
	}

	if len(name) > 128 {
		return New(code, "%s name too long (max 128 characters)", kind)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(code, "%s name contains invalid control characters", kind)
		}
	}

	if !identifierRegex.MatchString(name) {
		return New(code, "invalid %s name: %q", kind, name)
	}

	return nil
}

// ValidateLibraryName validates a library name such as sky130_fd_sc_hd.
func ValidateLibraryName(name string) error {
	return validateIdentifier(ErrCodeInvalidLibrary, "library", name)
}

// ValidateCellName validates a cell name, with or without a drive-strength
// suffix (a2bb2o or a2bb2o_1).
func ValidateCellName(name string) error {
	return validateIdentifier(ErrCodeInvalidCell, "cell", name)
}

// ValidateCornerName validates a process corner name such as ff_100C_1v65.
// Corner names arrive from command-line arguments and URL paths, so this
// also guards against path traversal into the library tree.
func ValidateCornerName(name string) error {
	return validateIdentifier(ErrCodeInvalidCorner, "corner", name)
}
