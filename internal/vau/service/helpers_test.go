package service

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

var errEntropy = errors.New("entropy exhausted")

// failingRandomSource fails every Generate call.
type failingRandomSource struct{}

func (f *failingRandomSource) Generate(length int) ([]byte, error) {
	return nil, errors.Join(vauDomain.ErrRandomGeneration, errEntropy)
}

// fixedKeyMaterial hands out a predetermined request id and key.
type fixedKeyMaterial struct {
	requestID vauDomain.RequestID
	key       []byte
}

func (f *fixedKeyMaterial) RequestID() (vauDomain.RequestID, error) {
	return f.requestID, nil
}

func (f *fixedKeyMaterial) SymmetricKey() ([]byte, error) {
	return append([]byte(nil), f.key...), nil
}

// vauKeyPair generates the long-term key pair of a test VAU server.
func vauKeyPair(t *testing.T) ([]byte, *vauDomain.Certificate) {
	t.Helper()

	d, x, y, err := elliptic.GenerateKey(vauDomain.Curve(), rand.Reader)
	require.NoError(t, err)

	cert, err := vauDomain.NewCertificate(&ecdsa.PublicKey{Curve: vauDomain.Curve(), X: x, Y: y})
	require.NoError(t, err)
	return d, cert
}

// sealResponse encrypts a response payload the way the VAU server does.
func sealResponse(t *testing.T, key []byte, requestID vauDomain.RequestID, message string) []byte {
	t.Helper()

	aead, err := NewAESGCM(key)
	require.NoError(t, err)

	payload := vauDomain.ResponsePayload{RequestID: requestID, Message: message}.Encode()
	sealed, err := aead.SealCombined(NewRandomSource(), payload)
	require.NoError(t, err)
	return sealed
}
