package fpe

import (
	"strconv"
	"strings"
)

// maxFloatDigits bounds the significant decimal digits a float64 carries
// exactly. Fixed renderings longer than this do not round-trip through
// ParseFloat, so such values pass through the float transformer unchanged.
const maxFloatDigits = 15

// transformDigits applies the integer rule to a digit string: the leading
// digit stays in the clear so the result never gains a leading zero, and
// the remaining digits run through the cipher. Strings shorter than two
// digits pass through unchanged.
func transformDigits(digits string, op func([]byte) ([]byte, error)) (string, error) {
	if len(digits) < 2 {
		return digits, nil
	}
	rest, err := op([]byte(digits[1:]))
	if err != nil {
		return "", err
	}
	return digits[:1] + string(rest), nil
}

// transformIntString applies the integer rule to the decimal rendering of a
// signed integer, keeping the sign in the clear.
func transformIntString(s string, op func([]byte) ([]byte, error)) (string, error) {
	negative := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	out, err := transformDigits(digits, op)
	if err != nil {
		return "", err
	}
	if negative {
		out = "-" + out
	}
	return out, nil
}

// fixedRender renders the magnitude of a float at a fixed number of decimal
// places, when that rendering carries the value exactly. The second result
// reports whether it does: values that lose precision in rendering, and
// values whose rendering has more than maxFloatDigits significant digits,
// cannot be transformed reversibly and report false.
func fixedRender(abs float64, precision int) (string, bool) {
	render := strconv.FormatFloat(abs, 'f', precision, 64)
	back, err := strconv.ParseFloat(render, 64)
	if err != nil || back != abs {
		return "", false
	}
	intDigits := len(render)
	if i := strings.IndexByte(render, '.'); i >= 0 {
		intDigits = i
	}
	if intDigits+precision > maxFloatDigits {
		return "", false
	}
	return render, true
}
