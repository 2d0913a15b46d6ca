package subtle

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// Mode selects the AES block mode used by an AESCipher.
type Mode int

const (
	// ModeCBCFast chains CBC state across calls, starting from a zero IV.
	// Sequential Encrypt calls behave as one continuous CBC stream; each
	// output block depends on every block encrypted since the last Reset.
	ModeCBCFast Mode = iota

	// ModeECB encrypts every block independently.
	ModeECB

	// ModeCBC runs a one-shot CBC pass with a zero IV on every call. The
	// FF1 round function uses this mode as its PRF.
	ModeCBC
)

// An AESCipher encrypts and decrypts block-aligned data in one of three
// modes. ModeECB and ModeCBC are stateless between calls; ModeCBCFast
// carries chaining state forward until Reset.
//
// Thread safety: an AESCipher is not safe for concurrent use by multiple
// goroutines. Use one cipher per goroutine or serialize access externally.
type AESCipher struct {
	mode  Mode
	block cipher.Block
	enc   cipher.BlockMode
	dec   cipher.BlockMode
}

// NewAESCipher creates an AESCipher for the given raw AES key. The key must
// be 16, 24, or 32 bytes.
func NewAESCipher(key []byte, mode Mode) (*AESCipher, error) {
	switch mode {
	case ModeCBCFast, ModeECB, ModeCBC:
	default:
		return nil, fmt.Errorf("unsupported cipher mode %d", mode)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AES: %w", err)
	}
	return &AESCipher{mode: mode, block: block}, nil
}

var zeroIV [aes.BlockSize]byte

// Encrypt encrypts src into dst. Src must be a whole number of AES blocks
// and dst must be at least as long as src. Dst and src may be the same
// slice.
func (a *AESCipher) Encrypt(dst, src []byte) error {
	if err := checkBlocks(dst, src); err != nil {
		return err
	}
	switch a.mode {
	case ModeECB:
		for i := 0; i < len(src); i += aes.BlockSize {
			a.block.Encrypt(dst[i:i+aes.BlockSize], src[i:i+aes.BlockSize])
		}
	case ModeCBC:
		cipher.NewCBCEncrypter(a.block, zeroIV[:]).CryptBlocks(dst[:len(src)], src)
	case ModeCBCFast:
		if a.enc == nil {
			a.enc = cipher.NewCBCEncrypter(a.block, zeroIV[:])
		}
		a.enc.CryptBlocks(dst[:len(src)], src)
	}
	return nil
}

// Decrypt decrypts src into dst under the same length rules as Encrypt.
func (a *AESCipher) Decrypt(dst, src []byte) error {
	if err := checkBlocks(dst, src); err != nil {
		return err
	}
	switch a.mode {
	case ModeECB:
		for i := 0; i < len(src); i += aes.BlockSize {
			a.block.Decrypt(dst[i:i+aes.BlockSize], src[i:i+aes.BlockSize])
		}
	case ModeCBC:
		cipher.NewCBCDecrypter(a.block, zeroIV[:]).CryptBlocks(dst[:len(src)], src)
	case ModeCBCFast:
		if a.dec == nil {
			a.dec = cipher.NewCBCDecrypter(a.block, zeroIV[:])
		}
		a.dec.CryptBlocks(dst[:len(src)], src)
	}
	return nil
}

// Reset discards any accumulated chaining state, returning the cipher to
// its initial zero-IV state. Only ModeCBCFast accumulates state between
// calls.
func (a *AESCipher) Reset() {
	a.enc = nil
	a.dec = nil
}

func checkBlocks(dst, src []byte) error {
	if len(src)%aes.BlockSize != 0 {
		return fmt.Errorf("input not full blocks: %d bytes", len(src))
	}
	if len(dst) < len(src) {
		return fmt.Errorf("output smaller than input: %d < %d", len(dst), len(src))
	}
	return nil
}
