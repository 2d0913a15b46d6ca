package fpe

import (
	"fmt"
	"strings"
)

// A StringMask selects the region of a string that a transformer encrypts.
// The region starts at StartPos, or after an occurrence of MaskAfter, and
// stops before EndPos, or at an occurrence of MaskUntil. Delimiter scans
// run left to right; Greedy scans for the last occurrence instead of the
// first, and a greedy MaskAfter keeps the delimiter itself inside the
// region.
//
// The zero value selects the whole string.
type StringMask struct {
	// StartPos is the byte index the region starts at.
	StartPos int

	// EndPos is the byte index the region stops before. Zero means the
	// end of the string.
	EndPos int

	// MaskAfter starts the region after the first occurrence of this
	// delimiter, or at the last occurrence when Greedy is set. Mutually
	// exclusive with StartPos.
	MaskAfter string

	// MaskUntil stops the region at the next occurrence of this
	// delimiter, or at the last occurrence when Greedy is set. Mutually
	// exclusive with EndPos.
	MaskUntil string

	// Greedy switches the delimiter scans from the first occurrence to
	// the last.
	Greedy bool
}

// validate rejects masks that pin the same edge twice.
func (m StringMask) validate() error {
	if m.StartPos != 0 && m.MaskAfter != "" {
		return fmt.Errorf("string mask takes StartPos or MaskAfter, not both")
	}
	if m.EndPos != 0 && m.MaskUntil != "" {
		return fmt.Errorf("string mask takes EndPos or MaskUntil, not both")
	}
	if m.StartPos < 0 || m.EndPos < 0 {
		return fmt.Errorf("string mask positions must not be negative")
	}
	return nil
}

// slice resolves the mask against s, returning the selected region and its
// byte bounds. Position bounds are clamped to the string; a delimiter that
// does not occur in the string is an error.
func (m StringMask) slice(s string) (masked string, start, stop int, err error) {
	start = m.StartPos
	if m.MaskAfter != "" {
		if m.Greedy {
			start = strings.LastIndex(s, m.MaskAfter)
		} else {
			start = strings.Index(s, m.MaskAfter)
			if start >= 0 {
				start += len(m.MaskAfter)
			}
		}
		if start < 0 {
			return "", 0, 0, fmt.Errorf("mask delimiter %q not found in value", m.MaskAfter)
		}
	}
	if start > len(s) {
		start = len(s)
	}

	stop = len(s)
	if m.EndPos != 0 {
		stop = m.EndPos
	}
	if m.MaskUntil != "" {
		i := strings.Index(s[start:], m.MaskUntil)
		if m.Greedy {
			i = strings.LastIndex(s[start:], m.MaskUntil)
		}
		if i < 0 {
			return "", 0, 0, fmt.Errorf("mask delimiter %q not found in value", m.MaskUntil)
		}
		stop = start + i
	}
	if stop > len(s) {
		stop = len(s)
	}
	if stop < start {
		stop = start
	}
	return s[start:stop], start, stop, nil
}
