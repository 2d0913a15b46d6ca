// This file defines the FPE primitive interface for Tink integration.
// The keyset-backed implementation lives in the tinkfpe package.

package fpe

// FPE is a Tink-compatible interface for Format-Preserving Encryption
// operations. This follows Tink's primitive pattern, similar to
// tink.DeterministicAEAD. FPE is deterministic: same plaintext + tweak +
// key = same ciphertext.
type FPE interface {
	// Tokenize encrypts plaintext using format-preserving encryption.
	// Characters outside the configured alphabet keep their positions;
	// only alphabet characters are encrypted. Deterministic: the same
	// input always produces the same output.
	Tokenize(plaintext string) (string, error)

	// Detokenize decrypts a tokenized value. It is the inverse of
	// Tokenize under the same key and configuration.
	Detokenize(tokenized string) (string, error)
}
