package service

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"fmt"
	"math/big"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// KeyPair is an ephemeral BrainpoolP256r1 key pair. D is the private scalar.
type KeyPair struct {
	D         []byte
	PublicKey *ecdsa.PublicKey
}

// Zero clears the private scalar.
func (k *KeyPair) Zero() {
	vauDomain.Zero(k.D)
}

type brainpoolKeyPairGenerator struct {
	random RandomSource
}

// NewKeyPairGenerator returns a KeyPairGenerator drawing entropy from random.
func NewKeyPairGenerator(random RandomSource) KeyPairGenerator {
	return &brainpoolKeyPairGenerator{random: random}
}

// GenerateKeyPair creates a fresh key pair on brainpoolP256r1.
func (g *brainpoolKeyPairGenerator) GenerateKeyPair() (*KeyPair, error) {
	curve := vauDomain.Curve()

	d, x, y, err := elliptic.GenerateKey(curve, Reader(g.random))
	if err != nil {
		if errors.Is(err, vauDomain.ErrRandomGeneration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: ephemeral key generation: %v", vauDomain.ErrCrypto, err)
	}

	return &KeyPair{D: d, PublicKey: &ecdsa.PublicKey{Curve: curve, X: x, Y: y}}, nil
}

// SharedSecret performs ECDH between a private scalar and a peer public key and returns
// the x-coordinate of the shared point as a fixed 32-byte value.
func SharedSecret(d []byte, peer *ecdsa.PublicKey) ([]byte, error) {
	curve := vauDomain.Curve()

	if peer == nil || peer.X == nil || peer.Y == nil || !curve.IsOnCurve(peer.X, peer.Y) {
		return nil, fmt.Errorf("%w: peer public key is not on brainpoolP256r1", vauDomain.ErrCrypto)
	}
	if len(d) == 0 || new(big.Int).SetBytes(d).Sign() == 0 {
		return nil, fmt.Errorf("%w: empty private key", vauDomain.ErrCrypto)
	}

	x, y := curve.ScalarMult(peer.X, peer.Y, d)
	if x.Sign() == 0 && y.Sign() == 0 {
		return nil, fmt.Errorf("%w: shared point at infinity", vauDomain.ErrCrypto)
	}

	secret := make([]byte, vauDomain.CoordinateSize)
	x.FillBytes(secret)
	return secret, nil
}
