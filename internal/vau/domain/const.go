package domain

import (
	"fmt"
)

// SpecVersion identifies a version of the ECIES envelope parameters.
//
// The version byte is the first byte of every envelope. Add new versions here and
// extend Spec; call sites only ever pass a SpecVersion around.
type SpecVersion byte

const (
	// SpecV1 is the current envelope version (0x01).
	SpecV1 SpecVersion = 0x01
)

// EciesSpec holds the protocol parameters of one envelope version.
type EciesSpec struct {
	Version         byte   // Envelope version tag (first envelope byte)
	IVSize          int    // AES-GCM nonce size in bytes
	Info            string // HKDF domain separation string
	HKDFOutputCount int    // Derived content-encryption key length in bytes
}

// Spec returns the parameters for the version.
func (v SpecVersion) Spec() (EciesSpec, error) {
	switch v {
	case SpecV1:
		return EciesSpec{
			Version:         byte(SpecV1),
			IVSize:          12,
			Info:            "ecies-vau-transport",
			HKDFOutputCount: 16,
		}, nil
	default:
		return EciesSpec{}, fmt.Errorf("%w: unsupported envelope version 0x%02x", ErrInternal, byte(v))
	}
}

const (
	// CoordinateSize is the byte length of one BrainpoolP256r1 coordinate.
	CoordinateSize = 32
	// PublicKeySize is the raw X||Y public key length used in envelopes (no 0x04 prefix).
	PublicKeySize = 2 * CoordinateSize
	// TagSize is the AES-GCM authentication tag size.
	TagSize = 16
	// SymmetricKeySize is the size of the per-session AES-128 response key.
	SymmetricKeySize = 16
	// RequestIDSize is the number of random bytes behind a request id.
	RequestIDSize = 16

	// PayloadVersion is the version token leading every request and response payload.
	PayloadVersion = "1"

	// DefaultUserPseudonym is used in the VAU path when no pseudonym has been assigned yet.
	DefaultUserPseudonym = "0"
	// UserPseudonymHeader carries a new pseudonym on VAU responses (matched case-insensitively).
	UserPseudonymHeader = "userpseudonym"

	// EnvelopeContentType is the content type of the outer VAU request.
	EnvelopeContentType = "application/octet-stream"
)
