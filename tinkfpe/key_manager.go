// Package tinkfpe integrates Format-Preserving Encryption with Tink key
// management. It provides a registry.KeyManager for FF1 keys, key templates
// for the supported AES key sizes, and a factory that builds FPE primitives
// from keyset handles, so FPE keys can be generated, serialized, and rotated
// like any other Tink key material.
package tinkfpe

import (
	"fmt"

	"github.com/google/tink/go/core/registry"
	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/proto/tink_go_proto"
	"github.com/google/tink/go/subtle/random"
	"github.com/gretelai/gretel-fpe/subtle"
	"google.golang.org/protobuf/proto"
)

// FPEKeyTypeURL is the type URL for FPE FF1 keys in Tink's registry.
const FPEKeyTypeURL = "type.googleapis.com/google.crypto.tink.FpeFf1Key"

// defaultRadix is the radix of primitives built straight from the registry.
// The registry carries only key material; callers pick their radix and tweak
// through New.
const defaultRadix = 10

// KeyManager implements registry.KeyManager for FPE FF1 keys. Registering it
// lets keyset handles generate and load FPE keys.
type KeyManager struct {
	typeURL string
}

// NewKeyManager creates a key manager for FPE FF1 keys.
func NewKeyManager() *KeyManager {
	return &KeyManager{typeURL: FPEKeyTypeURL}
}

// Primitive creates an FF1 primitive from serialized key material. The key
// material is the raw AES key; the primitive operates at the default radix
// with no tweak. Use New to bind a radix and tweak.
func (km *KeyManager) Primitive(serializedKey []byte) (interface{}, error) {
	switch len(serializedKey) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("invalid key size: %d bytes (must be 16, 24, or 32)", len(serializedKey))
	}
	ff1, err := subtle.NewFF1(defaultRadix, 0, serializedKey, nil, subtle.ModeCBC)
	if err != nil {
		return nil, fmt.Errorf("failed to create FF1: %w", err)
	}
	return ff1, nil
}

// DoesSupport returns true if this KeyManager supports the given key type URL.
func (km *KeyManager) DoesSupport(typeURL string) bool {
	return typeURL == km.typeURL
}

// TypeURL returns the type URL of the keys managed by this KeyManager.
func (km *KeyManager) TypeURL() string {
	return km.typeURL
}

// NewKey generates a new key according to the given key template. FF1 keys
// carry their material as raw bytes rather than a proto message, so key
// generation goes through NewKeyData.
func (km *KeyManager) NewKey(serializedKeyTemplate []byte) (proto.Message, error) {
	return nil, fmt.Errorf("FPE keys have no proto form, use NewKeyData")
}

// NewKeyData generates fresh key material for the given serialized template.
// The template value holds the key size as a single byte; an empty template
// defaults to AES-256.
func (km *KeyManager) NewKeyData(serializedKeyTemplate []byte) (*tink_go_proto.KeyData, error) {
	keySize := 32
	if len(serializedKeyTemplate) > 0 {
		keySize = int(serializedKeyTemplate[0])
		if keySize != 16 && keySize != 24 && keySize != 32 {
			return nil, fmt.Errorf("invalid key size in template: %d bytes (must be 16, 24, or 32)", keySize)
		}
	}
	return &tink_go_proto.KeyData{
		TypeUrl:         km.typeURL,
		Value:           random.GetRandomBytes(uint32(keySize)),
		KeyMaterialType: tink_go_proto.KeyData_SYMMETRIC,
	}, nil
}

var _ registry.KeyManager = (*KeyManager)(nil)

// KeyTemplate creates a key template for FPE FF1 keys. It generates AES-256
// keys; for other sizes use KeyTemplateAES128 or KeyTemplateAES192.
//
//	handle, err := keyset.NewHandle(tinkfpe.KeyTemplate())
func KeyTemplate() *tink_go_proto.KeyTemplate {
	return KeyTemplateAES256()
}

// KeyTemplateAES128 creates a key template for FPE FF1 with AES-128 keys.
func KeyTemplateAES128() *tink_go_proto.KeyTemplate {
	return fpeKeyTemplate(16)
}

// KeyTemplateAES192 creates a key template for FPE FF1 with AES-192 keys.
func KeyTemplateAES192() *tink_go_proto.KeyTemplate {
	return fpeKeyTemplate(24)
}

// KeyTemplateAES256 creates a key template for FPE FF1 with AES-256 keys.
func KeyTemplateAES256() *tink_go_proto.KeyTemplate {
	return fpeKeyTemplate(32)
}

func fpeKeyTemplate(keySize byte) *tink_go_proto.KeyTemplate {
	return &tink_go_proto.KeyTemplate{
		TypeUrl:          FPEKeyTypeURL,
		Value:            []byte{keySize},
		OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
	}
}

// NewKeysetHandleFromKey creates a keyset handle from a raw AES key, for keys
// that come from an HSM or a key management system outside Tink. The key must
// be 16, 24, or 32 bytes.
//
//	hsmKey := []byte{...} // 32-byte key from your HSM
//	handle, err := tinkfpe.NewKeysetHandleFromKey(hsmKey)
//	if err != nil {
//		log.Fatal(err)
//	}
//	primitive, err := tinkfpe.New(handle, 10, []byte("tweak"))
//
// The handle wraps an unencrypted keyset. Before storing it anywhere, wrap it
// with keyset.Write and an AEAD.
func NewKeysetHandleFromKey(key []byte) (*keyset.Handle, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("invalid key size: %d bytes (must be 16, 24, or 32)", len(key))
	}

	keyID := random.GetRandomUint32()
	ks := &tink_go_proto.Keyset{
		PrimaryKeyId: keyID,
		Key: []*tink_go_proto.Keyset_Key{{
			KeyData: &tink_go_proto.KeyData{
				TypeUrl:         FPEKeyTypeURL,
				Value:           key,
				KeyMaterialType: tink_go_proto.KeyData_SYMMETRIC,
			},
			KeyId:            keyID,
			Status:           tink_go_proto.KeyStatusType_ENABLED,
			OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
		}},
	}
	return insecurecleartextkeyset.Read(&keyset.MemReaderWriter{Keyset: ks})
}
