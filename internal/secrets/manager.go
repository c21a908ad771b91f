// Package secrets seals and reveals named secret values for individual
// tenants. The tenant id and key name are bound into the ciphertext as AAD,
// so an envelope relabeled to another tenant fails integrity verification.
package secrets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/brightsites/leadflow/internal/crypto"
)

var (
	ErrMissingTenantID = errors.New("secrets: tenant id required")
	ErrMissingKey      = errors.New("secrets: key required")
	ErrIntegrity       = errors.New("secrets: envelope failed integrity verification")
	ErrNotFound        = errors.New("secrets: envelope not found")
)

// Envelope is a sealed secret value plus the metadata needed to verify and
// decrypt it in its original context. Suitable for storage as an opaque
// JSON blob.
type Envelope struct {
	TenantID        string `json:"tenant_id"`
	Key             string `json:"key"`
	CipherText      string `json:"cipher_text"`
	Algorithm       string `json:"algorithm"`
	RotationVersion int    `json:"rotation_version"`
}

// SealInput names the secret being sealed. RotationVersion defaults to 1.
type SealInput struct {
	TenantID        string
	Key             string
	Value           string
	RotationVersion int
}

// Manager seals and reveals tenant secret envelopes. It performs no network
// or disk I/O; key material comes from process configuration.
type Manager struct {
	provider crypto.Provider
}

// NewManager builds a Manager over the given migration phase and master key.
func NewManager(phase crypto.Phase, masterKey []byte) (*Manager, error) {
	provider, err := crypto.ForPhase(phase, masterKey)
	if err != nil {
		return nil, fmt.Errorf("secrets: init provider: %w", err)
	}
	return &Manager{provider: provider}, nil
}

// Seal encrypts the value under the current phase's provider, binding
// tenant id and key as AAD.
func (m *Manager) Seal(in SealInput) (Envelope, error) {
	if strings.TrimSpace(in.TenantID) == "" {
		return Envelope{}, ErrMissingTenantID
	}
	if strings.TrimSpace(in.Key) == "" {
		return Envelope{}, ErrMissingKey
	}

	version := in.RotationVersion
	if version <= 0 {
		version = 1
	}

	blob, err := m.provider.Encrypt([]byte(in.Value), aad(in.TenantID, in.Key))
	if err != nil {
		return Envelope{}, fmt.Errorf("secrets: seal %s/%s: %w", in.TenantID, in.Key, err)
	}

	return Envelope{
		TenantID:        in.TenantID,
		Key:             in.Key,
		CipherText:      base64.StdEncoding.EncodeToString(blob),
		Algorithm:       m.provider.Algorithm(),
		RotationVersion: version,
	}, nil
}

// Reveal decrypts an envelope, reconstructing the AAD from the envelope's
// own fields. A tampered envelope, including one whose TenantID was swapped,
// returns ErrIntegrity; callers must treat that as "secret unavailable",
// never as an empty value.
func (m *Manager) Reveal(env Envelope) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(env.CipherText)
	if err != nil {
		return "", ErrIntegrity
	}

	plaintext, err := m.provider.Decrypt(blob, aad(env.TenantID, env.Key))
	if err != nil {
		return "", ErrIntegrity
	}
	return string(plaintext), nil
}

func aad(tenantID, key string) []byte {
	return []byte(tenantID + ":" + key)
}
