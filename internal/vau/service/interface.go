// Package service implements the cryptographic building blocks of the VAU channel:
// randomness, BrainpoolP256r1 key agreement, HKDF key derivation, AES-GCM, the ECIES
// envelope, the per-message crypto session and the raw HTTP codec.
package service

import (
	"context"
	"crypto/ecdsa"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// RandomSource produces cryptographically secure random bytes.
type RandomSource interface {
	// Generate returns length random bytes or an error wrapping domain.ErrRandomGeneration.
	Generate(length int) ([]byte, error)
}

// KeyPairGenerator creates ephemeral BrainpoolP256r1 key pairs for the ECIES envelope.
type KeyPairGenerator interface {
	GenerateKeyPair() (*KeyPair, error)
}

// KeyDeriver turns an ECDH shared secret into a content-encryption key.
type KeyDeriver interface {
	DeriveKey(sharedSecret []byte, info string, length int) ([]byte, error)
}

// KeyMaterialGenerator mints the per-session request id and symmetric response key.
type KeyMaterialGenerator interface {
	RequestID() (vauDomain.RequestID, error)
	SymmetricKey() ([]byte, error)
}

// CertificateDecoder extracts the VAU key-exchange certificate from PEM or DER input.
type CertificateDecoder interface {
	Decode(data []byte) (*vauDomain.Certificate, error)
}

// Sealer encrypts a request payload for a recipient public key.
type Sealer interface {
	Encrypt(payload []byte, recipient *ecdsa.PublicKey, spec vauDomain.EciesSpec) ([]byte, error)
}

// KMSKeeper encrypts and decrypts small values with a key held by a KMS provider.
// *secrets.Keeper from gocloud.dev satisfies it.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
