package subtle

import (
	"bytes"
	"crypto/aes"
	"encoding/binary"
	"fmt"
	"sort"
)

// A PrefixCipher is a keyed bijection on a small integer range. Every index
// of the range is ranked by the AES encryption of a block encoding it, and
// the rank order is the permutation. Both the permutation and its inverse
// are materialized at construction, so Encrypt and Decrypt are table
// lookups.
//
// Construction cost and memory grow linearly with the range, so this is only
// suitable for small domains such as day, month, or ordinal fields.
type PrefixCipher struct {
	min int
	max int
	enc []int
	dec []int
}

// NewPrefixCipher builds the permutation for the half-open range [min, max).
// The key must be 16, 24, or 32 bytes.
func NewPrefixCipher(min, max int, key []byte) (*PrefixCipher, error) {
	if max <= min {
		return nil, fmt.Errorf("invalid range (%d...%d)", min, max)
	}
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("key must be 16, 24, or 32 bytes, got %d", len(key))
	}
	cipher, err := NewAESCipher(key, ModeECB)
	if err != nil {
		return nil, err
	}

	// Each index is ranked by the encryption of its own block. AES maps
	// distinct blocks to distinct values, so the ranks never tie.
	size := max - min
	type weight struct {
		rank [aes.BlockSize]byte
		idx  int
	}
	weights := make([]weight, size)
	var block [aes.BlockSize]byte
	for i := 0; i < size; i++ {
		binary.BigEndian.PutUint64(block[halfBlockSize:], uint64(i))
		if err := cipher.Encrypt(weights[i].rank[:], block[:]); err != nil {
			return nil, err
		}
		weights[i].idx = i
	}
	sort.Slice(weights, func(a, b int) bool {
		return bytes.Compare(weights[a].rank[:], weights[b].rank[:]) < 0
	})

	p := &PrefixCipher{
		min: min,
		max: max,
		enc: make([]int, size),
		dec: make([]int, size),
	}
	for rank, w := range weights {
		p.enc[w.idx] = rank
		p.dec[rank] = w.idx
	}
	return p, nil
}

// Encrypt maps value to its image under the permutation.
func (p *PrefixCipher) Encrypt(value int) (int, error) {
	if value < p.min || value >= p.max {
		return 0, fmt.Errorf("input value out of range (%d...%d)", p.min, p.max)
	}
	return p.enc[value-p.min] + p.min, nil
}

// Decrypt maps value back to its preimage under the permutation.
func (p *PrefixCipher) Decrypt(value int) (int, error) {
	if value < p.min || value >= p.max {
		return 0, fmt.Errorf("input value out of range (%d...%d)", p.min, p.max)
	}
	return p.dec[value-p.min] + p.min, nil
}
