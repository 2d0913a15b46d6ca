package subtle

import (
	"fmt"
	"strings"
)

// Numeral alphabets for the supported radixes. A radix between 2 and 36 uses
// a prefix of the lowercase alphanumeric alphabet, matching the digit set of
// strconv.FormatInt. Radixes 62, 85, and 94 use fixed wide alphabets whose
// uppercase letters order before lowercase.
const (
	alphanumAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	base62Alphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	base85Alphabet   = base62Alphabet + "!#$%&()*+-;<=>?@^_`{|}~"
	base94Alphabet   = base85Alphabet + "\"',./:[]\\"
)

// AlphabetForRadix returns the numeral alphabet for the given radix, ordered
// by numeral value.
func AlphabetForRadix(radix int) (string, error) {
	switch {
	case radix >= 2 && radix <= 36:
		return alphanumAlphabet[:radix], nil
	case radix == 62:
		return base62Alphabet, nil
	case radix == 85:
		return base85Alphabet, nil
	case radix == 94:
		return base94Alphabet, nil
	}
	return "", fmt.Errorf("radix must be between 2 and 36, inclusive, or one of either 62, 85, or 94: got %d", radix)
}

// A Codec maps strings over a radix alphabet to numeral values and back.
// Decoding is case-insensitive for radixes up to 36, mirroring integer
// parsing, while encoding always produces the canonical lowercase form.
type Codec struct {
	radix    int
	alphabet []rune
	values   map[rune]uint16
}

// CodecForRadix builds the Codec for one of the supported radixes.
func CodecForRadix(radix int) (*Codec, error) {
	alphabet, err := AlphabetForRadix(radix)
	if err != nil {
		return nil, err
	}
	c := &Codec{
		radix:    radix,
		alphabet: []rune(alphabet),
		values:   make(map[rune]uint16, len(alphabet)),
	}
	for i, r := range c.alphabet {
		c.values[r] = uint16(i)
		if radix <= 36 && r >= 'a' && r <= 'z' {
			c.values[r-'a'+'A'] = uint16(i)
		}
	}
	return c, nil
}

// Radix returns the codec radix.
func (c *Codec) Radix() int { return c.radix }

// Alphabet returns the canonical alphabet ordered by numeral value.
func (c *Codec) Alphabet() string { return string(c.alphabet) }

// Decode converts s into its numeral values.
func (c *Codec) Decode(s string) ([]uint16, error) {
	numerals := make([]uint16, 0, len(s))
	for _, r := range s {
		v, ok := c.values[r]
		if !ok {
			return nil, fmt.Errorf("input %q invalid for radix %d", s, c.radix)
		}
		numerals = append(numerals, v)
	}
	return numerals, nil
}

// Encode converts numeral values back into their canonical string form.
// It panics if a numeral is out of range for the radix.
func (c *Codec) Encode(numerals []uint16) string {
	var sb strings.Builder
	sb.Grow(len(numerals))
	for _, v := range numerals {
		sb.WriteRune(c.alphabet[v])
	}
	return sb.String()
}
