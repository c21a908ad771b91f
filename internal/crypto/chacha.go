package crypto

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// chaCha implements Provider over ChaCha20-Poly1305 variants. The hybrid
// phase uses the 12-byte-nonce construction; the pqc phase uses XChaCha20
// with its extended 24-byte nonce.
type chaCha struct {
	aead cipher.AEAD
	name string
}

func newChaCha20Poly1305(key []byte) (*chaCha, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: create chacha20-poly1305: %w", err)
	}
	return &chaCha{aead: aead, name: "chacha20-poly1305"}, nil
}

func newXChaCha20Poly1305(key []byte) (*chaCha, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: create xchacha20-poly1305: %w", err)
	}
	return &chaCha{aead: aead, name: "xchacha20-poly1305"}, nil
}

func (p *chaCha) Encrypt(plaintext, aad []byte) ([]byte, error) {
	return sealWithNonce(p.aead, plaintext, aad)
}

func (p *chaCha) Decrypt(ciphertext, aad []byte) ([]byte, error) {
	return openWithNonce(p.aead, ciphertext, aad)
}

func (p *chaCha) Algorithm() string {
	return p.name
}
