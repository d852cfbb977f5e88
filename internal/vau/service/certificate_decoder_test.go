package service

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	encoding_asn1 "encoding/asn1"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// wrapInCertificate builds a structurally valid X.509 certificate around spki.
// The signature is not meaningful; chain validation happens elsewhere.
func wrapInCertificate(t *testing.T, spki []byte) []byte {
	t.Helper()

	ecdsaWithSHA256 := encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(cert *cryptobyte.Builder) {
		cert.AddASN1(asn1.SEQUENCE, func(tbs *cryptobyte.Builder) {
			tbs.AddASN1(asn1.Tag(0).Constructed().ContextSpecific(), func(version *cryptobyte.Builder) {
				version.AddASN1Int64(2)
			})
			tbs.AddASN1Int64(42)
			tbs.AddASN1(asn1.SEQUENCE, func(alg *cryptobyte.Builder) {
				alg.AddASN1ObjectIdentifier(ecdsaWithSHA256)
			})
			tbs.AddASN1(asn1.SEQUENCE, func(issuer *cryptobyte.Builder) {})
			tbs.AddASN1(asn1.SEQUENCE, func(validity *cryptobyte.Builder) {})
			tbs.AddASN1(asn1.SEQUENCE, func(subject *cryptobyte.Builder) {})
			tbs.AddBytes(spki)
		})
		cert.AddASN1(asn1.SEQUENCE, func(alg *cryptobyte.Builder) {
			alg.AddASN1ObjectIdentifier(ecdsaWithSHA256)
		})
		cert.AddASN1BitString([]byte{0x00})
	})

	der, err := b.Bytes()
	require.NoError(t, err)
	return der
}

func TestCertificateDecoder_Decode(t *testing.T) {
	decoder := NewCertificateDecoder()
	_, cert := vauKeyPair(t)

	spki, err := MarshalSPKI(cert.PublicKey)
	require.NoError(t, err)
	certDER := wrapInCertificate(t, spki)

	assertSameKey := func(t *testing.T, decoded *vauDomain.Certificate) {
		t.Helper()
		assert.Equal(t, 0, cert.PublicKey.X.Cmp(decoded.PublicKey.X))
		assert.Equal(t, 0, cert.PublicKey.Y.Cmp(decoded.PublicKey.Y))
		assert.Equal(t, cert.Fingerprint(), decoded.Fingerprint())
	}

	t.Run("Success_PEMCertificate", func(t *testing.T) {
		data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

		decoded, err := decoder.Decode(data)
		require.NoError(t, err)
		assertSameKey(t, decoded)
	})

	t.Run("Success_DERCertificate", func(t *testing.T) {
		decoded, err := decoder.Decode(certDER)
		require.NoError(t, err)
		assertSameKey(t, decoded)
	})

	t.Run("Success_PEMPublicKey", func(t *testing.T) {
		data, err := EncodePublicKeyPEM(cert.PublicKey)
		require.NoError(t, err)

		decoded, err := decoder.Decode(data)
		require.NoError(t, err)
		assertSameKey(t, decoded)
	})

	t.Run("Success_DERPublicKey", func(t *testing.T) {
		decoded, err := decoder.Decode(spki)
		require.NoError(t, err)
		assertSameKey(t, decoded)
	})

	t.Run("Error_P256Key", func(t *testing.T) {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		require.NoError(t, err)

		_, err = decoder.Decode(der)
		assert.ErrorIs(t, err, vauDomain.ErrCertificateDecoding)
	})

	t.Run("Error_UnexpectedPEMBlock", func(t *testing.T) {
		data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: spki})

		_, err := decoder.Decode(data)
		assert.ErrorIs(t, err, vauDomain.ErrCertificateDecoding)
	})

	t.Run("Error_Garbage", func(t *testing.T) {
		_, err := decoder.Decode([]byte("not a certificate"))
		assert.ErrorIs(t, err, vauDomain.ErrCertificateDecoding)
	})

	t.Run("Error_TamperedPoint", func(t *testing.T) {
		tampered := append([]byte(nil), spki...)
		tampered[len(tampered)-1] ^= 0x01

		_, err := decoder.Decode(tampered)
		assert.ErrorIs(t, err, vauDomain.ErrCertificateDecoding)
	})
}
