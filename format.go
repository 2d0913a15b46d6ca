package fpe

import (
	"fmt"
	"strings"

	"github.com/gretelai/gretel-fpe/subtle"
)

// dirtyMarker marks, inside a dirty mask, the positions where clean
// characters were removed.
const dirtyMarker = '\x00'

// cleanRunes returns the set of characters eligible for encryption at the
// given radix. The set is the canonical alphabet of the radix, extended
// with the uppercase hex digits for radix 16 so that values like
// "DEADBEEF" clean fully.
func cleanRunes(radix int) (map[rune]bool, error) {
	alphabet, err := subtle.AlphabetForRadix(radix)
	if err != nil {
		return nil, err
	}
	eligible := make(map[rune]bool, len(alphabet)+6)
	for _, r := range alphabet {
		eligible[r] = true
	}
	if radix == 16 {
		for r := 'A'; r <= 'F'; r++ {
			eligible[r] = true
		}
	}
	return eligible, nil
}

// CleanValue splits s into the characters the cipher operates on and a
// dirty mask holding everything else. The clean string concatenates the
// eligible characters in order; the dirty mask is s with each eligible
// character replaced by a marker, so DirtyValue can splice a transformed
// clean string back into the original shape.
func CleanValue(s string, radix int) (clean, dirty string, err error) {
	eligible, err := cleanRunes(radix)
	if err != nil {
		return "", "", err
	}
	var cleanB, dirtyB strings.Builder
	for _, r := range s {
		if eligible[r] {
			cleanB.WriteRune(r)
			dirtyB.WriteRune(dirtyMarker)
		} else {
			dirtyB.WriteRune(r)
		}
	}
	return cleanB.String(), dirtyB.String(), nil
}

// DirtyValue is the inverse of CleanValue: it fills the marked positions of
// the dirty mask with the characters of clean, in order. The clean string
// must supply exactly one character per marker.
func DirtyValue(clean, dirty string) (string, error) {
	cleanRest := []rune(clean)
	if need := strings.Count(dirty, string(dirtyMarker)); need != len(cleanRest) {
		return "", fmt.Errorf("clean value has %d characters, mask needs %d", len(cleanRest), need)
	}
	var out strings.Builder
	out.Grow(len(dirty))
	for _, r := range dirty {
		if r == dirtyMarker {
			out.WriteRune(cleanRest[0])
			cleanRest = cleanRest[1:]
		} else {
			out.WriteRune(r)
		}
	}
	return out.String(), nil
}
