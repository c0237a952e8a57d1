package liberty

import (
	"math"
	"strconv"
	"strings"

	"github.com/pdkit/libmerge/pkg/errors"
)

// floatWidth is the minimum rendered width of a numeric attribute value,
// chosen so a zero-padded characterization value like 0.0083333333 keeps
// its full precision. Values are padded up to this width, never truncated.
const floatWidth = len("0.0083333333")

// FormatFloat renders f in fixed-width Liberty form: the shortest decimal
// string that round-trips to the same value, then zero-padded to twelve
// characters. Values outside [1e-4, 1e16) use exponential notation with the
// padding applied to the mantissa.
//
//	FormatFloat(1.9208818e-02) // "0.0192088180"
//	FormatFloat(1.5)           // "1.5000000000"
//	FormatFloat(1e20)          // "1.000000e+20"
//
// Non-finite values are an INVALID_VALUE error; characterization data has
// no use for them and the format cannot express them.
func FormatFloat(f float64) (string, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", errors.New(errors.ErrCodeInvalidValue, "non-finite value %v has no Liberty rendering", f)
	}
	return padNumeric(shortestFloat(f)), nil
}

// FormatInt renders i as a plain decimal, the form used inside
// integer-only tables.
func FormatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatPaddedInt renders an integer in the same padded width as floats,
// the form used for scalar and composite attribute values.
func formatPaddedInt(i int64) string {
	return padNumeric(strconv.FormatInt(i, 10))
}

// shortestFloat returns the shortest round-trip decimal form of f: fixed
// notation while the decimal point lands within the significant digits'
// neighborhood, exponential with a signed two-digit exponent otherwise.
// This matches the rendering the characterization flow produced, so
// regenerated documents stay byte-identical.
func shortestFloat(f float64) string {
	sci := strconv.FormatFloat(f, 'e', -1, 64)

	mant, exps, _ := strings.Cut(sci, "e")
	e10, _ := strconv.Atoi(exps)

	neg := strings.HasPrefix(mant, "-")
	digits := strings.TrimPrefix(mant, "-")
	digits = strings.Replace(digits, ".", "", 1)

	// decpt is where the decimal point falls in the digit string: the
	// value is 0.<digits> times 10^decpt.
	decpt := e10 + 1
	if decpt < -3 || decpt > 16 {
		return sci
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	switch {
	case decpt <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -decpt))
		b.WriteString(digits)
	case decpt >= len(digits):
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", decpt-len(digits)))
		b.WriteString(".0")
	default:
		b.WriteString(digits[:decpt])
		b.WriteByte('.')
		b.WriteString(digits[decpt:])
	}
	return b.String()
}

// padNumeric applies the width padding to a rendered number. Exponential
// forms pad the mantissa so mantissa, 'e', and exponent together reach the
// width. Decimal forms pad fractional zeros; bare integers gain a point
// first. Strings already at or beyond the width pass through unchanged.
func padNumeric(s string) string {
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		mant, exp := s[:i], s[i+1:]
		if !strings.Contains(mant, ".") {
			mant += "."
		}
		for len(mant)+len(exp)+1 < floatWidth {
			mant += "0"
		}
		return mant + "e" + exp
	}

	if !strings.Contains(s, ".") && len(s) < floatWidth {
		s += "."
	}
	for len(s) < floatWidth {
		s += "0"
	}
	return s
}
