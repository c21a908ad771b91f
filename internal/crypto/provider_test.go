package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestForPhase_RoundTripAllPhases(t *testing.T) {
	key := testKey(t)

	cases := []struct {
		phase     Phase
		algorithm string
	}{
		{PhaseRSA, "aes-256-gcm"},
		{PhaseHybrid, "chacha20-poly1305"},
		{PhasePQC, "xchacha20-poly1305"},
	}

	for _, tc := range cases {
		t.Run(string(tc.phase), func(t *testing.T) {
			provider, err := ForPhase(tc.phase, key)
			require.NoError(t, err)
			assert.Equal(t, tc.algorithm, provider.Algorithm())

			aad := []byte("tenant-1:hubspot_token")
			blob, err := provider.Encrypt([]byte("super-secret-value"), aad)
			require.NoError(t, err)

			plaintext, err := provider.Decrypt(blob, aad)
			require.NoError(t, err)
			assert.Equal(t, "super-secret-value", string(plaintext))
		})
	}
}

func TestForPhase_InvalidKeySize(t *testing.T) {
	_, err := ForPhase(PhaseRSA, make([]byte, 16))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestForPhase_UnknownPhase(t *testing.T) {
	_, err := ForPhase(Phase("rot13"), testKey(t))
	assert.ErrorIs(t, err, ErrUnknownPhase)
}

func TestDecrypt_FailsOnAADMismatch(t *testing.T) {
	provider, err := ForPhase(PhaseRSA, testKey(t))
	require.NoError(t, err)

	blob, err := provider.Encrypt([]byte("value"), []byte("tenant-a:key"))
	require.NoError(t, err)

	_, err = provider.Decrypt(blob, []byte("tenant-b:key"))
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecrypt_FailsOnTamperedCiphertext(t *testing.T) {
	provider, err := ForPhase(PhaseHybrid, testKey(t))
	require.NoError(t, err)

	aad := []byte("tenant-a:key")
	blob, err := provider.Encrypt([]byte("value"), aad)
	require.NoError(t, err)

	blob[len(blob)-1] ^= 0x01
	_, err = provider.Decrypt(blob, aad)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecrypt_FailsOnShortCiphertext(t *testing.T) {
	provider, err := ForPhase(PhaseRSA, testKey(t))
	require.NoError(t, err)

	_, err = provider.Decrypt([]byte{0x01, 0x02}, nil)
	assert.ErrorIs(t, err, ErrShortCipher)
}

func TestEncrypt_NoncesAreUnique(t *testing.T) {
	provider, err := ForPhase(PhasePQC, testKey(t))
	require.NoError(t, err)

	a, err := provider.Encrypt([]byte("same"), nil)
	require.NoError(t, err)
	b, err := provider.Encrypt([]byte("same"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
