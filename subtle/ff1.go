// Package subtle provides low-level cryptographic primitives for Format-Preserving Encryption.
// This package contains the NIST SP 800-38G FF1 algorithm, the AES block modes backing its
// round function, the radix alphabets, and a small-domain integer cipher, all working with
// raw keys. It should not be used directly by most users; instead use the high-level APIs
// in the parent package.
package subtle

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"crypto/aes"
)

const (
	numRounds     = 10
	halfBlockSize = aes.BlockSize / 2
)

// FF1 implements the NIST SP 800-38G FF1 algorithm over a radix alphabet
// using raw keys. This is the low-level implementation that performs the
// actual cryptographic operations.
//
// An FF1 instance is bound to one radix, one key, and one default tweak.
// The tweak is a public, non-secret value that ensures different ciphertexts
// for the same plaintext when the tweak changes.
type FF1 struct {
	codec   *Codec
	cipher  *AESCipher
	tweak   []byte
	radix   int
	minLen  int
	maxLen  int64
	maxTLen int
}

// NewFF1 creates an FF1 cipher for the given radix with a raw AES key.
// The key must be 16, 24, or 32 bytes (AES-128, AES-192, or AES-256).
// maxTweakLen caps the length of the default tweak and of any per-call
// tweak passed later. ModeCBC is the standard round function; ModeECB
// reduces the round function to the last block of its input.
func NewFF1(radix, maxTweakLen int, key, tweak []byte, mode Mode) (*FF1, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("key length must be 128, 192, or 256 bits, got %d", len(key)*8)
	}

	codec, err := CodecForRadix(radix)
	if err != nil {
		return nil, err
	}

	if len(tweak) > maxTweakLen {
		return nil, fmt.Errorf("tweak size must be no greater than %d bytes in length", maxTweakLen)
	}

	// Chained CBC state cannot serve the Feistel rounds; use the one-shot form.
	if mode == ModeCBCFast {
		mode = ModeCBC
	}
	cipher, err := NewAESCipher(key, mode)
	if err != nil {
		return nil, err
	}

	f := &FF1{
		codec:   codec,
		cipher:  cipher,
		tweak:   tweak,
		radix:   radix,
		minLen:  int(math.Ceil(math.Log(100) / math.Log(float64(radix)))),
		maxLen:  int64(math.MaxUint32),
		maxTLen: maxTweakLen,
	}
	if f.minLen < 2 || f.maxLen < int64(f.minLen) {
		return nil, fmt.Errorf("minLen or maxLen invalid, adjust your radix")
	}
	return f, nil
}

// Radix returns the radix the cipher operates over.
func (f *FF1) Radix() int { return f.radix }

// Encrypt performs FF1 format-preserving encryption on input under the
// default tweak. The input must consist of characters from the radix
// alphabet; for radixes up to 36 letters may be given in either case, and
// the output is always in the canonical lowercase form.
//
// Thread safety: Encrypt is safe for concurrent use by multiple goroutines,
// as it does not modify the FF1 instance state.
func (f *FF1) Encrypt(input []byte) ([]byte, error) {
	return f.EncryptWithTweak(input, f.tweak)
}

// EncryptWithTweak is Encrypt with a per-call tweak in place of the default.
func (f *FF1) EncryptWithTweak(input, tweak []byte) ([]byte, error) {
	numerals, u, v, err := f.split(input, tweak)
	if err != nil {
		return nil, err
	}

	numA := numradixEncode(numerals[:u], f.radix)
	numB := numradixEncode(numerals[u:], f.radix)
	modU := radixPow(f.radix, u)
	modV := radixPow(f.radix, v)

	st := f.newFeistelState(len(numerals), u, v, tweak)
	for i := 0; i < numRounds; i++ {
		y, err := st.round(i, numB)
		if err != nil {
			return nil, err
		}
		c := new(big.Int).Add(numA, y)
		if i%2 == 0 {
			c.Mod(c, modU)
		} else {
			c.Mod(c, modV)
		}
		numA, numB = numB, c
	}

	return f.join(numA, numB, u, v), nil
}

// Decrypt reverses Encrypt under the default tweak.
//
// Thread safety: Decrypt is safe for concurrent use by multiple goroutines,
// as it does not modify the FF1 instance state.
func (f *FF1) Decrypt(input []byte) ([]byte, error) {
	return f.DecryptWithTweak(input, f.tweak)
}

// DecryptWithTweak is Decrypt with a per-call tweak in place of the default.
func (f *FF1) DecryptWithTweak(input, tweak []byte) ([]byte, error) {
	numerals, u, v, err := f.split(input, tweak)
	if err != nil {
		return nil, err
	}

	numA := numradixEncode(numerals[:u], f.radix)
	numB := numradixEncode(numerals[u:], f.radix)
	modU := radixPow(f.radix, u)
	modV := radixPow(f.radix, v)

	st := f.newFeistelState(len(numerals), u, v, tweak)
	for i := numRounds - 1; i >= 0; i-- {
		y, err := st.round(i, numA)
		if err != nil {
			return nil, err
		}
		c := new(big.Int).Sub(numB, y)
		if i%2 == 0 {
			c.Mod(c, modU)
		} else {
			c.Mod(c, modV)
		}
		numB = numA
		numA = c
	}

	return f.join(numA, numB, u, v), nil
}

// split validates one call and decodes the input into numerals. The length
// bounds are checked on the byte length; the alphabets are ASCII, so after a
// successful decode the numeral count equals the byte length.
func (f *FF1) split(input, tweak []byte) (numerals []uint16, u, v int, err error) {
	n := len(input)
	if n < f.minLen || int64(n) >= f.maxLen {
		return nil, 0, 0, fmt.Errorf("message length is not within min and max bounds")
	}
	if len(tweak) > f.maxTLen {
		return nil, 0, 0, fmt.Errorf("tweak size must be no greater than %d bytes in length", f.maxTLen)
	}
	numerals, err = f.codec.Decode(string(input))
	if err != nil {
		return nil, 0, 0, err
	}
	u = n / 2
	return numerals, u, n - u, nil
}

// join materializes the two final halves at their fixed widths.
func (f *FF1) join(numA, numB *big.Int, u, v int) []byte {
	out := make([]uint16, 0, u+v)
	out = append(out, numradixDecode(numA, f.radix, u)...)
	out = append(out, numradixDecode(numB, f.radix, v)...)
	return []byte(f.codec.Encode(out))
}

// feistelState holds the per-call scratch buffers of the SP 800-38G round
// function: the constant block P, the block Q rebuilt every round, their
// concatenation PQ which is encrypted in place, and S, the round value R
// followed by its counter-expansion blocks.
type feistelState struct {
	cipher *AESCipher
	p      [aes.BlockSize]byte
	q      []byte
	pq     []byte
	s      []byte
	t      int
	numPad int
	d      int
	maxJ   int
}

func (f *FF1) newFeistelState(n, u, v int, tweak []byte) *feistelState {
	t := len(tweak)

	// Step 3: b is the byte length of a numeral string of length v, and d
	// the byte length of the round value drawn from S.
	b := int(math.Ceil(math.Ceil(float64(v)*math.Log2(float64(f.radix))) / 8))
	d := 4*((b+3)/4) + 4
	maxJ := (d + aes.BlockSize - 1) / aes.BlockSize

	// Q is padded out to a whole number of blocks.
	numPad := (-t - b - 1) % aes.BlockSize
	if numPad < 0 {
		numPad += aes.BlockSize
	}
	lenQ := t + numPad + 1 + b

	st := &feistelState{
		cipher: f.cipher,
		q:      make([]byte, lenQ),
		pq:     make([]byte, aes.BlockSize+lenQ),
		s:      make([]byte, maxJ*aes.BlockSize),
		t:      t,
		numPad: numPad,
		d:      d,
		maxJ:   maxJ,
	}
	copy(st.q[:t], tweak)

	// Step 5: the constant block P. The radix occupies three bytes, so the
	// high byte at P[3] stays zero.
	st.p[0] = 0x01
	st.p[1] = 0x02
	st.p[2] = 0x01
	binary.BigEndian.PutUint16(st.p[4:6], uint16(f.radix))
	st.p[6] = 0x0a
	st.p[7] = byte(u)
	binary.BigEndian.PutUint32(st.p[8:12], uint32(n))
	binary.BigEndian.PutUint32(st.p[12:16], uint32(t))
	return st
}

// round computes the round value y of SP 800-38G step 6 for one Feistel
// round. num is the half fed through the round function: B when encrypting,
// A when decrypting.
func (st *feistelState) round(roundByte int, num *big.Int) (*big.Int, error) {
	// Step 6i: Q is the tweak, the zero padding, the round byte, and the
	// trimmed big-endian bytes of num right-aligned in a b-byte tail.
	q := st.q
	q[st.t+st.numPad] = byte(roundByte)
	tail := q[st.t+st.numPad+1:]
	for i := range tail {
		tail[i] = 0
	}
	numBytes := num.Bytes()
	copy(tail[len(tail)-len(numBytes):], numBytes)

	// Step 6ii: R is the last block of the encrypted P ‖ Q.
	copy(st.pq[:aes.BlockSize], st.p[:])
	copy(st.pq[aes.BlockSize:], q)
	if err := st.cipher.Encrypt(st.pq, st.pq); err != nil {
		return nil, err
	}
	r := st.s[:aes.BlockSize]
	copy(r, st.pq[len(st.pq)-aes.BlockSize:])

	// Step 6iii: S extends R one block per counter j until d bytes are
	// available.
	for j := 1; j < st.maxJ; j++ {
		block := st.s[j*aes.BlockSize : (j+1)*aes.BlockSize]
		copy(block, r[:halfBlockSize])
		binary.BigEndian.PutUint64(block[halfBlockSize:], uint64(j))
		for x := halfBlockSize; x < aes.BlockSize; x++ {
			block[x] ^= r[x]
		}
		if err := st.cipher.Encrypt(block, block); err != nil {
			return nil, err
		}
	}

	// Step 6vi: y is the integer value of the first d bytes of S.
	return new(big.Int).SetBytes(st.s[:st.d]), nil
}
