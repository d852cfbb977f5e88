package domain

import (
	"fmt"
)

// Envelope is the binary frame of an ECIES encrypted VAU request.
//
//	| offset | length | field                                   |
//	|--------|--------|-----------------------------------------|
//	| 0      | 1      | version tag                             |
//	| 1      | 64     | ephemeral public key X||Y               |
//	| 65     | IVSize | AES-GCM nonce                           |
//	| 77     | N      | ciphertext                              |
//	| 77+N   | 16     | AES-GCM authentication tag              |
type Envelope struct {
	Version            byte
	EphemeralPublicKey []byte
	Nonce              []byte
	Ciphertext         []byte
	Tag                []byte
}

// Bytes serializes the envelope in wire order.
func (e Envelope) Bytes() []byte {
	out := make([]byte, 0, 1+len(e.EphemeralPublicKey)+len(e.Nonce)+len(e.Ciphertext)+len(e.Tag))
	out = append(out, e.Version)
	out = append(out, e.EphemeralPublicKey...)
	out = append(out, e.Nonce...)
	out = append(out, e.Ciphertext...)
	out = append(out, e.Tag...)
	return out
}

// Sealed returns ciphertext || tag, the form expected by cipher.AEAD.Open.
func (e Envelope) Sealed() []byte {
	out := make([]byte, 0, len(e.Ciphertext)+len(e.Tag))
	out = append(out, e.Ciphertext...)
	return append(out, e.Tag...)
}

// ParseEnvelope splits a wire envelope according to the given spec.
func ParseEnvelope(raw []byte, spec EciesSpec) (Envelope, error) {
	minLength := 1 + PublicKeySize + spec.IVSize + TagSize
	if len(raw) < minLength {
		return Envelope{}, fmt.Errorf("%w: envelope too short: %d bytes", ErrCrypto, len(raw))
	}
	if raw[0] != spec.Version {
		return Envelope{}, fmt.Errorf("%w: unexpected envelope version 0x%02x", ErrCrypto, raw[0])
	}

	keyEnd := 1 + PublicKeySize
	nonceEnd := keyEnd + spec.IVSize
	tagStart := len(raw) - TagSize

	return Envelope{
		Version:            raw[0],
		EphemeralPublicKey: raw[1:keyEnd],
		Nonce:              raw[keyEnd:nonceEnd],
		Ciphertext:         raw[nonceEnd:tagStart],
		Tag:                raw[tagStart:],
	}, nil
}
