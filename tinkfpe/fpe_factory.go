// This file contains the factory that builds FPE primitives from Tink
// keyset handles.

package tinkfpe

import (
	"fmt"

	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/proto/tink_go_proto"
	fpe "github.com/gretelai/gretel-fpe"
	"github.com/gretelai/gretel-fpe/subtle"
)

// New creates an FPE primitive from a Tink keyset handle. The primitive
// encrypts the characters of the radix alphabet and leaves every other
// character of the input in place. The tweak is public but is bound into
// every operation; radix and tweak must match between Tokenize and
// Detokenize.
//
// The FPE key manager must be registered with Tink's registry before the
// handle can produce primitives.
//
// Example:
//
//	handle, err := keyset.NewHandle(tinkfpe.KeyTemplate())
//	if err != nil {
//	    return err
//	}
//	primitive, err := tinkfpe.New(handle, 10, []byte("customer-records"))
//	if err != nil {
//	    return err
//	}
//	tokenized, err := primitive.Tokenize("123-45-6789")
func New(handle *keyset.Handle, radix int, tweak []byte) (fpe.FPE, error) {
	if handle == nil {
		return nil, fmt.Errorf("keyset handle cannot be nil")
	}

	primitives, err := handle.Primitives()
	if err != nil {
		return nil, fmt.Errorf("failed to get primitives from handle: %w", err)
	}
	primary := primitives.Primary
	if primary == nil {
		return nil, fmt.Errorf("no primary key found in keyset")
	}
	if primary.KeyID == 0 {
		return nil, fmt.Errorf("invalid key ID in primary entry")
	}

	keyBytes, err := primaryKeyMaterial(handle, primary.KeyID)
	if err != nil {
		return nil, err
	}

	ff1, err := subtle.NewFF1(radix, len(tweak), keyBytes, tweak, subtle.ModeCBC)
	if err != nil {
		return nil, fmt.Errorf("failed to create FF1 instance: %w", err)
	}
	return &fpeImpl{ff1: ff1}, nil
}

// primaryKeyMaterial extracts the raw key bytes of the primary key from a
// cleartext keyset. Keys whose material lives in a KMS arrive as remote
// references and carry no bytes to extract.
func primaryKeyMaterial(handle *keyset.Handle, keyID uint32) ([]byte, error) {
	ks := insecurecleartextkeyset.KeysetMaterial(handle)
	for _, key := range ks.Key {
		if key.KeyId != keyID || key.KeyData == nil {
			continue
		}
		switch key.KeyData.GetKeyMaterialType() {
		case tink_go_proto.KeyData_SYMMETRIC:
			return key.KeyData.Value, nil
		case tink_go_proto.KeyData_REMOTE:
			return nil, fmt.Errorf("KMS-held keys are not supported, use symmetric key material")
		}
	}
	return nil, fmt.Errorf("key with ID %d not found or unsupported key type", keyID)
}

// fpeImpl implements the fpe.FPE interface on top of subtle.FF1.
type fpeImpl struct {
	ff1 *subtle.FF1
}

// Tokenize encrypts the alphabet characters of plaintext, leaving all other
// characters in their positions.
func (f *fpeImpl) Tokenize(plaintext string) (string, error) {
	out, err := f.crypt(plaintext, f.ff1.Encrypt)
	if err != nil {
		return "", fmt.Errorf("failed to tokenize: %w", err)
	}
	return out, nil
}

// Detokenize decrypts a tokenized value, restoring the original plaintext.
func (f *fpeImpl) Detokenize(tokenized string) (string, error) {
	out, err := f.crypt(tokenized, f.ff1.Decrypt)
	if err != nil {
		return "", fmt.Errorf("failed to detokenize: %w", err)
	}
	return out, nil
}

// crypt applies op to the clean portion of s and splices the result back
// among the format characters.
func (f *fpeImpl) crypt(s string, op func([]byte) ([]byte, error)) (string, error) {
	clean, dirty, err := fpe.CleanValue(s, f.ff1.Radix())
	if err != nil {
		return "", err
	}
	out, err := op([]byte(clean))
	if err != nil {
		return "", err
	}
	return fpe.DirtyValue(string(out), dirty)
}

var _ fpe.FPE = (*fpeImpl)(nil)
