package domain

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/vau/internal/errors"
)

func generateBrainpoolKey(t *testing.T) *ecdsa.PublicKey {
	t.Helper()
	_, x, y, err := elliptic.GenerateKey(Curve(), rand.Reader)
	require.NoError(t, err)
	return &ecdsa.PublicKey{Curve: Curve(), X: x, Y: y}
}

func TestNewCertificate(t *testing.T) {
	t.Run("Success_ValidBrainpoolKey", func(t *testing.T) {
		pub := generateBrainpoolKey(t)

		cert, err := NewCertificate(pub)
		require.NoError(t, err)
		assert.Equal(t, pub, cert.PublicKey)
		assert.Len(t, cert.Fingerprint(), 64)
	})

	t.Run("Error_NilKey", func(t *testing.T) {
		_, err := NewCertificate(nil)
		assert.ErrorIs(t, err, ErrCertificateDecoding)
		assert.ErrorIs(t, err, errors.ErrSecureChannel)
	})

	t.Run("Error_KeyOnDifferentCurve", func(t *testing.T) {
		_, x, y, err := elliptic.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)

		_, err = NewCertificate(&ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y})
		assert.ErrorIs(t, err, ErrCertificateDecoding)
	})

	t.Run("Error_PointNotOnCurve", func(t *testing.T) {
		pub := generateBrainpoolKey(t)
		pub.Y = new(big.Int).Add(pub.Y, big.NewInt(1))

		_, err := NewCertificate(pub)
		assert.ErrorIs(t, err, ErrCertificateDecoding)
	})
}

func TestMarshalPublicKey(t *testing.T) {
	t.Run("Success_FixedWidthCoordinates", func(t *testing.T) {
		pub := &ecdsa.PublicKey{Curve: Curve(), X: big.NewInt(1), Y: big.NewInt(2)}

		raw := MarshalPublicKey(pub)
		require.Len(t, raw, PublicKeySize)
		assert.Equal(t, byte(1), raw[CoordinateSize-1])
		assert.Equal(t, byte(2), raw[PublicKeySize-1])
		assert.Equal(t, make([]byte, CoordinateSize-1), raw[:CoordinateSize-1])
	})

	t.Run("Success_RawAndUncompressedForms", func(t *testing.T) {
		pub := generateBrainpoolKey(t)
		raw := MarshalPublicKey(pub)

		decoded, err := UnmarshalPublicKey(raw)
		require.NoError(t, err)
		assert.Equal(t, 0, pub.X.Cmp(decoded.X))
		assert.Equal(t, 0, pub.Y.Cmp(decoded.Y))

		decoded, err = UnmarshalPublicKey(append([]byte{0x04}, raw...))
		require.NoError(t, err)
		assert.Equal(t, 0, pub.X.Cmp(decoded.X))
	})

	t.Run("Error_InvalidPoints", func(t *testing.T) {
		_, err := UnmarshalPublicKey(make([]byte, 10))
		assert.ErrorIs(t, err, ErrCertificateDecoding)

		raw := MarshalPublicKey(generateBrainpoolKey(t))
		raw[PublicKeySize-1] ^= 0x01
		_, err = UnmarshalPublicKey(raw)
		assert.ErrorIs(t, err, ErrCertificateDecoding)
	})
}
