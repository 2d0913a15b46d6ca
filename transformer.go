package fpe

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gretelai/gretel-fpe/subtle"
)

// FpeStringConfig configures an FpeString transformer.
type FpeStringConfig struct {
	// Radix selects the alphabet of characters to encrypt: 2 through 36,
	// or one of 62, 85, or 94.
	Radix int

	// Secret is the AES key as a hex string of 32, 48, or 64 characters.
	Secret string

	// Mode selects the AES mode of the FF1 round function. The zero
	// value is equivalent to ModeCBC, the standard round function.
	Mode subtle.Mode

	// Tweak is an optional public value bound into every ciphertext.
	Tweak []byte

	// Mask restricts the transformation to regions of the string. Masks
	// apply in reverse declaration order, each encrypting only the
	// region it selects. With no masks the whole value is transformed.
	Mask []StringMask
}

// FpeString deterministically encrypts strings and integers while keeping
// their format. Characters outside the radix alphabet stay in place, and
// integers keep their sign and leading digit so the result parses back to
// the same width. Masks narrow the transformation to substrings.
//
// Thread safety: an FpeString must not be used from multiple goroutines
// concurrently.
type FpeString struct {
	cipher *subtle.FF1
	radix  int
	masks  []StringMask
}

// NewFpeString builds the transformer. The secret must decode to a 16, 24,
// or 32 byte AES key.
func NewFpeString(config FpeStringConfig) (*FpeString, error) {
	key, err := hex.DecodeString(config.Secret)
	if err != nil {
		return nil, fmt.Errorf("secret must be a hex string: %w", err)
	}
	cipher, err := subtle.NewFF1(config.Radix, len(config.Tweak), key, config.Tweak, config.Mode)
	if err != nil {
		return nil, err
	}
	for _, m := range config.Mask {
		if err := m.validate(); err != nil {
			return nil, err
		}
	}
	return &FpeString{
		cipher: cipher,
		radix:  config.Radix,
		masks:  config.Mask,
	}, nil
}

// Transform encrypts value, preserving its format and native type.
func (t *FpeString) Transform(value Value) (Value, error) {
	return t.apply(value, t.cipher.Encrypt)
}

// Restore decrypts a transformed value.
func (t *FpeString) Restore(value Value) (Value, error) {
	return t.apply(value, t.cipher.Decrypt)
}

func (t *FpeString) apply(value Value, op func([]byte) ([]byte, error)) (Value, error) {
	if value.Kind == KindFloat {
		return Value{}, fmt.Errorf("float values require the FpeFloat transformer")
	}
	if value.Kind == KindString && value.Str == "" {
		return value, nil
	}

	if len(t.masks) > 0 {
		s := value.String()
		for i := len(t.masks) - 1; i >= 0; i-- {
			masked, start, stop, err := t.masks[i].slice(s)
			if err != nil {
				return Value{}, err
			}
			replaced, err := t.transformClean(masked, op)
			if err != nil {
				return Value{}, err
			}
			s = s[:start] + replaced + s[stop:]
		}
		return revertValue(value, s), nil
	}

	switch value.Kind {
	case KindInt:
		out, err := transformIntString(value.String(), op)
		if err != nil {
			return Value{}, err
		}
		return revertValue(value, out), nil
	default:
		out, err := t.transformClean(value.Str, op)
		if err != nil {
			return Value{}, err
		}
		return StringValue(out), nil
	}
}

// transformClean runs the eligible characters of s through the cipher and
// splices the result back around the untouched characters. Strings at or
// above maxStrLen pass through unchanged.
func (t *FpeString) transformClean(s string, op func([]byte) ([]byte, error)) (string, error) {
	if len(s) >= maxStrLen {
		return s, nil
	}
	clean, dirty, err := CleanValue(s, t.radix)
	if err != nil {
		return "", err
	}
	out, err := op([]byte(clean))
	if err != nil {
		return "", err
	}
	return DirtyValue(string(out), dirty)
}

// FpeFloatConfig configures an FpeFloat transformer.
type FpeFloatConfig struct {
	// Radix selects the alphabet used to clean string inputs before they
	// are parsed as floats. Radix 85 keeps the sign; radix 94 keeps the
	// sign and the decimal point.
	Radix int

	// Secret is the AES key as a hex string of 32, 48, or 64 characters.
	Secret string

	// Mode selects the AES mode of the FF1 round function. The zero
	// value is equivalent to ModeCBC, the standard round function.
	Mode subtle.Mode

	// Tweak is an optional public value bound into every ciphertext.
	Tweak []byte

	// FloatPrecision is the number of decimal places the transformer
	// carries, from 0 to 15. Values that do not render exactly at this
	// precision pass through unchanged.
	FloatPrecision int
}

// FpeFloat deterministically encrypts floating point values. A value is
// rendered at the configured decimal precision and its digits encrypted
// with the leading digit kept in the clear, so magnitude and sign survive.
// Values the fixed-precision rendering cannot carry exactly, and NaN and
// the infinities, pass through unchanged.
//
// Thread safety: an FpeFloat must not be used from multiple goroutines
// concurrently.
type FpeFloat struct {
	cipher    *subtle.FF1
	radix     int
	precision int
}

// NewFpeFloat builds the transformer. The secret must decode to a 16, 24,
// or 32 byte AES key. The digit cipher always runs at radix 10; the
// configured radix only governs string cleaning.
func NewFpeFloat(config FpeFloatConfig) (*FpeFloat, error) {
	if config.FloatPrecision < 0 || config.FloatPrecision > maxFloatDigits {
		return nil, fmt.Errorf("float precision must be between 0 and %d, got %d", maxFloatDigits, config.FloatPrecision)
	}
	if _, err := subtle.AlphabetForRadix(config.Radix); err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(config.Secret)
	if err != nil {
		return nil, fmt.Errorf("secret must be a hex string: %w", err)
	}
	cipher, err := subtle.NewFF1(10, len(config.Tweak), key, config.Tweak, config.Mode)
	if err != nil {
		return nil, err
	}
	return &FpeFloat{
		cipher:    cipher,
		radix:     config.Radix,
		precision: config.FloatPrecision,
	}, nil
}

// Transform encrypts value, preserving its format and native type.
func (t *FpeFloat) Transform(value Value) (Value, error) {
	return t.apply(value, t.cipher.Encrypt)
}

// Restore decrypts a transformed value.
func (t *FpeFloat) Restore(value Value) (Value, error) {
	return t.apply(value, t.cipher.Decrypt)
}

func (t *FpeFloat) apply(value Value, op func([]byte) ([]byte, error)) (Value, error) {
	switch value.Kind {
	case KindFloat:
		out, err := t.applyFloat(value.Float, op)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(out), nil
	case KindString:
		if value.Str == "" {
			return value, nil
		}
		clean, _, err := CleanValue(value.Str, t.radix)
		if err != nil {
			return Value{}, err
		}
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return Value{}, fmt.Errorf("value %q does not parse as a float", value.Str)
		}
		out, err := t.applyFloat(f, op)
		if err != nil {
			return Value{}, err
		}
		// A value the fixed-precision rendering cannot carry keeps its
		// original formatting instead of being rewritten.
		if math.IsNaN(out) || (out == f && math.Signbit(out) == math.Signbit(f)) {
			return value, nil
		}
		return StringValue(strconv.FormatFloat(out, 'f', t.precision, 64)), nil
	default:
		return Value{}, fmt.Errorf("integer values require the FpeString transformer")
	}
}

// applyFloat runs the fixed-precision digit transformation. Values the
// rendering cannot carry exactly come back unchanged, which keeps the
// transformation a total function: Restore applies the same test and
// leaves them alone too.
func (t *FpeFloat) applyFloat(f float64, op func([]byte) ([]byte, error)) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f, nil
	}
	render, ok := fixedRender(math.Abs(f), t.precision)
	if !ok {
		return f, nil
	}

	dot := strings.IndexByte(render, '.')
	digits := strings.Replace(render, ".", "", 1)
	// The cipher needs at least two digits after the clear leading one.
	if len(digits) < 3 {
		return f, nil
	}
	out, err := transformDigits(digits, op)
	if err != nil {
		return 0, err
	}
	if dot >= 0 {
		out = out[:dot] + "." + out[dot:]
	}

	result, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, err
	}
	if math.Signbit(f) {
		result = -result
	}
	return result, nil
}
