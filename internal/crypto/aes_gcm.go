package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// aesGCM implements Provider using AES-256-GCM. The 12-byte nonce is
// generated per encryption and prepended to the returned blob.
type aesGCM struct {
	aead cipher.AEAD
}

func newAESGCM(key []byte) (*aesGCM, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: create aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: create gcm: %w", err)
	}
	return &aesGCM{aead: aead}, nil
}

func (p *aesGCM) Encrypt(plaintext, aad []byte) ([]byte, error) {
	return sealWithNonce(p.aead, plaintext, aad)
}

func (p *aesGCM) Decrypt(ciphertext, aad []byte) ([]byte, error) {
	return openWithNonce(p.aead, ciphertext, aad)
}

func (p *aesGCM) Algorithm() string {
	return "aes-256-gcm"
}

// sealWithNonce encrypts plaintext and returns nonce||ciphertext.
func sealWithNonce(aead cipher.AEAD, plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, aad), nil
}

// openWithNonce splits the nonce prefix and decrypts. Authentication
// failure surfaces as ErrDecrypt so callers never see garbage plaintext.
func openWithNonce(aead cipher.AEAD, blob, aad []byte) ([]byte, error) {
	if len(blob) < aead.NonceSize() {
		return nil, ErrShortCipher
	}
	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
