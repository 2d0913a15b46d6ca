package tinkfpe

import (
	"github.com/google/tink/go/core/registry"
)

// getOrRegisterKeyManager returns a KeyManager, registering one with Tink's
// registry on first use. Registration is process-global, so tests and
// benchmarks across files share a single registration.
func getOrRegisterKeyManager() (*KeyManager, error) {
	keyManager := NewKeyManager()
	if _, err := registry.GetKeyManager(FPEKeyTypeURL); err == nil {
		// Already registered. KeyManagers are stateless, so a fresh
		// instance serves equally well.
		return keyManager, nil
	}
	if err := registry.RegisterKeyManager(keyManager); err != nil {
		return nil, err
	}
	return keyManager, nil
}
