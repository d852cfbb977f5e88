package service

import (
	"crypto/ecdsa"
	"fmt"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// EciesEnvelope seals request payloads for the VAU server.
//
// Each Encrypt call uses a fresh ephemeral key pair and nonce. The envelope is outbound
// only: responses are sealed by the server with the symmetric key carried in the payload.
type EciesEnvelope struct {
	random  RandomSource
	keys    KeyPairGenerator
	deriver KeyDeriver
}

// NewEciesEnvelope creates an envelope sealer.
func NewEciesEnvelope(random RandomSource, keys KeyPairGenerator, deriver KeyDeriver) *EciesEnvelope {
	return &EciesEnvelope{random: random, keys: keys, deriver: deriver}
}

// NewDefaultEciesEnvelope wires the envelope to crypto/rand, brainpoolP256r1 and HKDF-SHA256.
func NewDefaultEciesEnvelope() *EciesEnvelope {
	random := NewRandomSource()
	return NewEciesEnvelope(random, NewKeyPairGenerator(random), NewKeyDeriver())
}

// Encrypt returns version || ephemeral X||Y || nonce || ciphertext || tag.
func (e *EciesEnvelope) Encrypt(payload []byte, recipient *ecdsa.PublicKey, spec vauDomain.EciesSpec) ([]byte, error) {
	ephemeral, err := e.keys.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	defer ephemeral.Zero()

	shared, err := SharedSecret(ephemeral.D, recipient)
	if err != nil {
		return nil, err
	}
	defer vauDomain.Zero(shared)

	contentKey, err := e.deriver.DeriveKey(shared, spec.Info, spec.HKDFOutputCount)
	if err != nil {
		return nil, err
	}
	defer vauDomain.Zero(contentKey)

	nonce, err := e.random.Generate(spec.IVSize)
	if err != nil {
		return nil, err
	}

	aead, err := NewAESGCM(contentKey)
	if err != nil {
		return nil, err
	}
	if aead.NonceSize() != spec.IVSize {
		return nil, fmt.Errorf("%w: unsupported nonce size %d", vauDomain.ErrCrypto, spec.IVSize)
	}

	sealed, err := aead.Seal(nonce, payload)
	if err != nil {
		return nil, err
	}

	tagStart := len(sealed) - vauDomain.TagSize
	envelope := vauDomain.Envelope{
		Version:            spec.Version,
		EphemeralPublicKey: vauDomain.MarshalPublicKey(ephemeral.PublicKey),
		Nonce:              nonce,
		Ciphertext:         sealed[:tagStart],
		Tag:                sealed[tagStart:],
	}
	return envelope.Bytes(), nil
}

// OpenEnvelope is the server side of Encrypt: it recovers the payload with the VAU
// private scalar. Used by the test VAU server and diagnostics.
func OpenEnvelope(raw []byte, recipientD []byte, spec vauDomain.EciesSpec, deriver KeyDeriver) ([]byte, error) {
	envelope, err := vauDomain.ParseEnvelope(raw, spec)
	if err != nil {
		return nil, err
	}

	ephemeral, err := vauDomain.UnmarshalPublicKey(envelope.EphemeralPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ephemeral key", vauDomain.ErrCrypto)
	}

	shared, err := SharedSecret(recipientD, ephemeral)
	if err != nil {
		return nil, err
	}
	defer vauDomain.Zero(shared)

	contentKey, err := deriver.DeriveKey(shared, spec.Info, spec.HKDFOutputCount)
	if err != nil {
		return nil, err
	}
	defer vauDomain.Zero(contentKey)

	aead, err := NewAESGCM(contentKey)
	if err != nil {
		return nil, err
	}
	return aead.Open(envelope.Nonce, envelope.Sealed())
}
