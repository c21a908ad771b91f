package secrets

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightsites/leadflow/internal/crypto"
)

func newTestManager(t *testing.T, phase crypto.Phase) *Manager {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	m, err := NewManager(phase, key)
	require.NoError(t, err)
	return m
}

func TestSealReveal_RoundTrip(t *testing.T) {
	for _, phase := range []crypto.Phase{crypto.PhaseRSA, crypto.PhaseHybrid, crypto.PhasePQC} {
		t.Run(string(phase), func(t *testing.T) {
			m := newTestManager(t, phase)

			env, err := m.Seal(SealInput{
				TenantID: "tenant-1",
				Key:      "hubspot_token",
				Value:    "pat-na1-secret",
			})
			require.NoError(t, err)
			assert.Equal(t, "tenant-1", env.TenantID)
			assert.Equal(t, "hubspot_token", env.Key)
			assert.Equal(t, 1, env.RotationVersion)
			assert.NotEmpty(t, env.Algorithm)

			value, err := m.Reveal(env)
			require.NoError(t, err)
			assert.Equal(t, "pat-na1-secret", value)
		})
	}
}

func TestSeal_RotationVersionPreserved(t *testing.T) {
	m := newTestManager(t, crypto.PhaseRSA)

	env, err := m.Seal(SealInput{TenantID: "t", Key: "k", Value: "v", RotationVersion: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, env.RotationVersion)
}

func TestSeal_MissingFields(t *testing.T) {
	m := newTestManager(t, crypto.PhaseRSA)

	_, err := m.Seal(SealInput{Key: "k", Value: "v"})
	assert.ErrorIs(t, err, ErrMissingTenantID)

	_, err = m.Seal(SealInput{TenantID: "t", Value: "v"})
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestReveal_TenantSwapFailsIntegrity(t *testing.T) {
	m := newTestManager(t, crypto.PhaseRSA)

	env, err := m.Seal(SealInput{TenantID: "tenant-1", Key: "hubspot_token", Value: "v"})
	require.NoError(t, err)

	// Relabeling an envelope to another tenant must break the AAD binding.
	env.TenantID = "tenant-2"
	_, err = m.Reveal(env)
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestReveal_KeySwapFailsIntegrity(t *testing.T) {
	m := newTestManager(t, crypto.PhaseHybrid)

	env, err := m.Seal(SealInput{TenantID: "tenant-1", Key: "hubspot_token", Value: "v"})
	require.NoError(t, err)

	env.Key = "booking_token"
	_, err = m.Reveal(env)
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestReveal_GarbageCipherText(t *testing.T) {
	m := newTestManager(t, crypto.PhaseRSA)

	_, err := m.Reveal(Envelope{TenantID: "t", Key: "k", CipherText: "not base64!!"})
	assert.ErrorIs(t, err, ErrIntegrity)
}
