// Package fpe implements Format-Preserving Encryption (FPE) using the FF1
// algorithm. FF1 is a NIST-standardized format-preserving encryption mode
// (NIST SP 800-38G) built on AES.
//
// Format-preserving encryption produces ciphertext with the same format as
// the plaintext: a 16-digit number encrypts to a 16-digit number, a
// lowercase identifier encrypts to a lowercase identifier. Encryption is
// deterministic, so the same value under the same secret always tokenizes
// to the same result, and it is exactly reversible.
//
// The package provides record-oriented transformers on top of the core
// cipher. A transformer encrypts only the characters of a value that belong
// to its radix alphabet and leaves every other character in place, so
// formatted data keeps its shape:
//
//	"4123 5678 9123 4567"  ->  "5931 4687 6966 2449"
//	"169/61*009 38-34"     ->  "747/52*232 83-19"
//
// Two transformers are provided. FpeString handles strings and integers,
// with optional masks restricting encryption to a substring (everything
// after the first space, the characters between two delimiters, and so on).
// FpeFloat handles floating point values, carried at a fixed decimal
// precision.
//
// Example usage:
//
//	xf, err := fpe.NewFpeString(fpe.FpeStringConfig{
//		Radix:  10,
//		Secret: "2B7E151628AED2A6ABF7158809CF4F3CEF4359D8D580AA4F7F036D6F04FC6A94",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	out, err := xf.Transform(fpe.StringValue("4123 5678 9123 4567"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	// out holds the tokenized number: digits encrypted, spaces kept.
//
//	back, err := xf.Restore(out)
//	// back is the original value again.
//
// The low-level FF1 and prefix ciphers live in the subtle package. Tink
// keyset integration lives in the tinkfpe package.
package fpe

// maxStrLen caps the string length the transformers will touch. String
// values at or above the cap pass through unchanged in both directions.
const maxStrLen = 512

// A Transformer encrypts field values in place of their plaintext, and
// restores them. Implementations are deterministic, and Restore is the
// exact inverse of Transform for any value Transform accepted.
type Transformer interface {
	// Transform encrypts value, preserving its format and native type.
	Transform(value Value) (Value, error)

	// Restore decrypts a transformed value.
	Restore(value Value) (Value, error)
}
