package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// AESGCMCipher wraps AES-GCM with a 12-byte nonce and 16-byte tag.
//
// The VAU channel uses AES-128 (16-byte keys) for both the envelope content key and the
// response key; 32-byte keys are accepted as well. The cipher holds no nonce state, so
// callers supply a fresh nonce per Seal. Safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates an AES-GCM cipher for a 16 or 32 byte key.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != 16 && len(key) != 32 {
		return nil, fmt.Errorf("%w: aes key must be 16 or 32 bytes, got %d", vauDomain.ErrCrypto, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create AES cipher: %v", vauDomain.ErrCrypto, err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GCM: %v", vauDomain.ErrCrypto, err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// NonceSize returns the nonce length expected by Seal and Open.
func (a *AESGCMCipher) NonceSize() int {
	return a.aead.NonceSize()
}

// Seal encrypts plaintext under nonce and returns ciphertext || tag.
func (a *AESGCMCipher) Seal(nonce, plaintext []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", vauDomain.ErrCrypto, a.aead.NonceSize())
	}
	return a.aead.Seal(nil, nonce, plaintext, nil), nil
}

// Open verifies and decrypts ciphertext || tag.
func (a *AESGCMCipher) Open(nonce, sealed []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() || len(sealed) < a.aead.Overhead() {
		return nil, fmt.Errorf("%w: malformed sealed box", vauDomain.ErrCrypto)
	}

	plaintext, err := a.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decrypt: %v", vauDomain.ErrCrypto, err)
	}
	return plaintext, nil
}

// SealCombined encrypts plaintext under a nonce drawn from random and returns the
// combined form nonce || ciphertext || tag.
func (a *AESGCMCipher) SealCombined(random RandomSource, plaintext []byte) ([]byte, error) {
	nonce, err := random.Generate(a.aead.NonceSize())
	if err != nil {
		return nil, err
	}

	sealed, err := a.Seal(nonce, plaintext)
	if err != nil {
		return nil, err
	}
	return append(nonce, sealed...), nil
}

// OpenCombined decrypts the combined form nonce || ciphertext || tag.
func (a *AESGCMCipher) OpenCombined(combined []byte) ([]byte, error) {
	nonceSize := a.aead.NonceSize()
	if len(combined) < nonceSize+a.aead.Overhead() {
		return nil, fmt.Errorf("%w: combined box too short", vauDomain.ErrCrypto)
	}
	return a.Open(combined[:nonceSize], combined[nonceSize:])
}
