// Package domain defines the VAU secure transport domain model: the envelope wire format,
// the request/response payload grammar, protocol parameters and the error taxonomy.
//
// The envelope sent to the trusted execution environment is
//
//	version (1) || ephemeral X||Y (64) || nonce (12) || ciphertext (N) || tag (16)
//
// and carries the UTF-8 payload "1 {bearer} {requestId} {symmetricKeyHex} {rawRequest}".
// The server answers with AES-GCM(nonce || ciphertext || tag) over "1 {requestId} {rawResponse}"
// sealed with the symmetric key the client shipped inside the request.
package domain

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ProtonMail/go-crypto/brainpool"
)

// Curve returns the BrainpoolP256r1 curve used for the VAU key exchange.
func Curve() elliptic.Curve {
	return brainpool.P256r1()
}

// Certificate holds the key-exchange public key of a VAU instance.
//
// The certificate is obtained from an external trust store that has already validated
// it; only the BrainpoolP256r1 public key is retained. Instances are immutable.
type Certificate struct {
	PublicKey *ecdsa.PublicKey
}

// NewCertificate wraps a public key after checking it is a valid BrainpoolP256r1 point.
func NewCertificate(publicKey *ecdsa.PublicKey) (*Certificate, error) {
	if publicKey == nil || publicKey.X == nil || publicKey.Y == nil {
		return nil, fmt.Errorf("%w: missing public key", ErrCertificateDecoding)
	}
	if publicKey.Curve == nil || publicKey.Curve.Params().Name != Curve().Params().Name {
		return nil, fmt.Errorf("%w: public key is not on brainpoolP256r1", ErrCertificateDecoding)
	}
	if !publicKey.Curve.IsOnCurve(publicKey.X, publicKey.Y) {
		return nil, fmt.Errorf("%w: point is not on curve", ErrCertificateDecoding)
	}
	return &Certificate{PublicKey: publicKey}, nil
}

// Fingerprint returns the lowercase hex SHA-256 of the raw X||Y public key.
func (c *Certificate) Fingerprint() string {
	sum := sha256.Sum256(MarshalPublicKey(c.PublicKey))
	return hex.EncodeToString(sum[:])
}

// MarshalPublicKey encodes a public key as raw X||Y (uncompressed form without the 0x04 prefix).
func MarshalPublicKey(publicKey *ecdsa.PublicKey) []byte {
	raw := make([]byte, PublicKeySize)
	publicKey.X.FillBytes(raw[:CoordinateSize])
	publicKey.Y.FillBytes(raw[CoordinateSize:])
	return raw
}

// UnmarshalPublicKey decodes a BrainpoolP256r1 point given as raw X||Y (64 bytes)
// or in uncompressed X9.62 form (0x04 || X || Y).
func UnmarshalPublicKey(raw []byte) (*ecdsa.PublicKey, error) {
	switch {
	case len(raw) == PublicKeySize:
	case len(raw) == PublicKeySize+1 && raw[0] == 0x04:
		raw = raw[1:]
	default:
		return nil, fmt.Errorf("%w: unexpected public key length %d", ErrCertificateDecoding, len(raw))
	}

	curve := Curve()
	x := new(big.Int).SetBytes(raw[:CoordinateSize])
	y := new(big.Int).SetBytes(raw[CoordinateSize:])
	if !curve.IsOnCurve(x, y) {
		return nil, fmt.Errorf("%w: point is not on curve", ErrCertificateDecoding)
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}
