// Package crypto provides phase-selectable authenticated encryption for
// tenant secret envelopes. Each migration phase maps to a concrete AEAD
// construction so algorithm rollover never changes call sites.
package crypto

import "errors"

// Phase tags the algorithm migration phase a tenant's secrets are sealed
// under. The set is extensible; callers treat the tag as opaque.
type Phase string

const (
	PhaseRSA    Phase = "rsa"
	PhaseHybrid Phase = "hybrid"
	PhasePQC    Phase = "pqc"
)

var (
	ErrInvalidKeySize = errors.New("crypto: key must be exactly 32 bytes")
	ErrUnknownPhase   = errors.New("crypto: unknown migration phase")
	ErrDecrypt        = errors.New("crypto: decryption failed")
	ErrShortCipher    = errors.New("crypto: ciphertext shorter than nonce")
)

// Provider is an authenticated-encryption primitive. Decrypt fails loudly
// when the ciphertext or AAD has been tampered with or mismatched.
type Provider interface {
	// Encrypt seals plaintext under the provider's AEAD, binding aad. The
	// returned blob carries the nonce prefix and can be stored opaquely.
	Encrypt(plaintext, aad []byte) ([]byte, error)

	// Decrypt opens a blob produced by Encrypt. The same aad must be
	// supplied or authentication fails.
	Decrypt(ciphertext, aad []byte) ([]byte, error)

	// Algorithm returns a human-readable name of the underlying scheme.
	Algorithm() string
}

// ForPhase returns the AEAD provider for a migration phase. The key must be
// 32 bytes regardless of phase.
func ForPhase(phase Phase, key []byte) (Provider, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKeySize
	}
	switch phase {
	case PhaseRSA:
		return newAESGCM(key)
	case PhaseHybrid:
		return newChaCha20Poly1305(key)
	case PhasePQC:
		return newXChaCha20Poly1305(key)
	default:
		return nil, ErrUnknownPhase
	}
}
