package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

func TestCryptoSession(t *testing.T) {
	spec, err := vauDomain.SpecV1.Spec()
	require.NoError(t, err)

	vauD, cert := vauKeyPair(t)
	random := NewRandomSource()
	keys := NewKeyMaterialGenerator(random)
	envelope := NewDefaultEciesEnvelope()

	message := "GET /Task HTTP/1.1\r\nHost: erp.example.com\r\n\r\n"

	t.Run("Success_ServerReceivesPayloadFields", func(t *testing.T) {
		// Arrange
		session, err := NewCryptoSession(message, "bearer-token", cert, keys, envelope)
		require.NoError(t, err)

		// Act
		raw, err := session.Encrypt()
		require.NoError(t, err)

		// Assert
		plaintext, err := OpenEnvelope(raw, vauD, spec, NewKeyDeriver())
		require.NoError(t, err)

		payload, err := vauDomain.ParseRequestPayload(plaintext)
		require.NoError(t, err)
		assert.Equal(t, "bearer-token", payload.BearerToken)
		assert.Equal(t, session.RequestID(), payload.RequestID)
		assert.Equal(t, message, payload.Message)
		assert.Len(t, payload.SymmetricKey, vauDomain.SymmetricKeySize)
	})

	t.Run("Success_DecryptsResponseSealedWithShippedKey", func(t *testing.T) {
		session, err := NewCryptoSession(message, "bearer-token", cert, keys, envelope)
		require.NoError(t, err)

		raw, err := session.Encrypt()
		require.NoError(t, err)
		plaintext, err := OpenEnvelope(raw, vauD, spec, NewKeyDeriver())
		require.NoError(t, err)
		request, err := vauDomain.ParseRequestPayload(plaintext)
		require.NoError(t, err)

		response := "HTTP/1.1 200 OK\r\nContent-Type: application/fhir+json\r\n\r\n{}"
		sealed := sealResponse(t, request.SymmetricKey, request.RequestID, response)

		decrypted, err := session.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, response, decrypted)

		again, err := session.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, decrypted, again)
	})

	t.Run("Success_RequestIDAndKeyFixedAtConstruction", func(t *testing.T) {
		session, err := NewCryptoSession(message, "bearer-token", cert, keys, envelope)
		require.NoError(t, err)

		id := session.RequestID()
		_, err = session.Encrypt()
		require.NoError(t, err)

		assert.Equal(t, id, session.RequestID())
		assert.Regexp(t, "^[0-9a-f]{32}$", id.String())
	})

	t.Run("Error_EncryptsAtMostOnce", func(t *testing.T) {
		session, err := NewCryptoSession(message, "bearer-token", cert, keys, envelope)
		require.NoError(t, err)

		_, err = session.Encrypt()
		require.NoError(t, err)

		_, err = session.Encrypt()
		assert.ErrorIs(t, err, vauDomain.ErrInternalCrypto)
	})

	t.Run("Error_InvalidUTF8Message", func(t *testing.T) {
		session, err := NewCryptoSession("\xff\xfe", "bearer-token", cert, keys, envelope)
		require.NoError(t, err)

		_, err = session.Encrypt()
		assert.ErrorIs(t, err, vauDomain.ErrInternalCrypto)
	})

	t.Run("Error_ResponseBoundToAnotherSession", func(t *testing.T) {
		// Arrange: two sessions sharing the same symmetric key but different request ids
		sharedKey := bytes.Repeat([]byte{0x07}, vauDomain.SymmetricKeySize)
		first, err := NewCryptoSession(message, "bearer-token", cert,
			&fixedKeyMaterial{requestID: vauDomain.RequestID(strings.Repeat("a", 32)), key: sharedKey}, envelope)
		require.NoError(t, err)
		second, err := NewCryptoSession(message, "bearer-token", cert,
			&fixedKeyMaterial{requestID: vauDomain.RequestID(strings.Repeat("b", 32)), key: sharedKey}, envelope)
		require.NoError(t, err)

		sealedForFirst := sealResponse(t, sharedKey, first.RequestID(), "HTTP/1.1 204 No Content\r\n\r\n")

		// Act
		_, errFirst := first.Decrypt(sealedForFirst)
		_, errSecond := second.Decrypt(sealedForFirst)

		// Assert
		assert.NoError(t, errFirst)
		assert.ErrorIs(t, errSecond, vauDomain.ErrResponseValidation)
	})

	t.Run("Error_TamperedTagFailsEveryTime", func(t *testing.T) {
		key := bytes.Repeat([]byte{0x09}, vauDomain.SymmetricKeySize)
		session, err := NewCryptoSession(message, "bearer-token", cert,
			&fixedKeyMaterial{requestID: vauDomain.RequestID(strings.Repeat("c", 32)), key: key}, envelope)
		require.NoError(t, err)

		sealed := sealResponse(t, key, session.RequestID(), "HTTP/1.1 200 OK\r\n\r\n")
		sealed[len(sealed)-1] ^= 0x01

		for range 2 {
			decrypted, err := session.Decrypt(sealed)
			assert.ErrorIs(t, err, vauDomain.ErrResponseValidation)
			assert.Empty(t, decrypted)
		}
	})

	t.Run("Error_MalformedPlaintext", func(t *testing.T) {
		key := bytes.Repeat([]byte{0x0a}, vauDomain.SymmetricKeySize)
		session, err := NewCryptoSession(message, "bearer-token", cert,
			&fixedKeyMaterial{requestID: vauDomain.RequestID(strings.Repeat("d", 32)), key: key}, envelope)
		require.NoError(t, err)

		aead, err := NewAESGCM(key)
		require.NoError(t, err)

		for _, plaintext := range []string{"2 " + strings.Repeat("d", 32) + " x", "1 only-two", ""} {
			sealed, err := aead.SealCombined(random, []byte(plaintext))
			require.NoError(t, err)

			_, err = session.Decrypt(sealed)
			assert.ErrorIs(t, err, vauDomain.ErrResponseValidation)
		}
	})

	t.Run("Error_TruncatedResponse", func(t *testing.T) {
		session, err := NewCryptoSession(message, "bearer-token", cert, keys, envelope)
		require.NoError(t, err)

		_, err = session.Decrypt([]byte{0x01, 0x02})
		assert.ErrorIs(t, err, vauDomain.ErrResponseValidation)
	})

	t.Run("Error_DecryptAfterClose", func(t *testing.T) {
		key := bytes.Repeat([]byte{0x0b}, vauDomain.SymmetricKeySize)
		session, err := NewCryptoSession(message, "bearer-token", cert,
			&fixedKeyMaterial{requestID: vauDomain.RequestID(strings.Repeat("e", 32)), key: key}, envelope)
		require.NoError(t, err)

		sealed := sealResponse(t, key, session.RequestID(), "HTTP/1.1 200 OK\r\n\r\n")
		session.Close()

		_, err = session.Decrypt(sealed)
		assert.ErrorIs(t, err, vauDomain.ErrResponseValidation)
	})

	t.Run("Error_MissingCertificate", func(t *testing.T) {
		_, err := NewCryptoSession(message, "bearer-token", nil, keys, envelope)
		assert.ErrorIs(t, err, vauDomain.ErrCertificateDecoding)
	})

	t.Run("Error_RandomFailureAtConstruction", func(t *testing.T) {
		_, err := NewCryptoSession(message, "bearer-token", cert, NewKeyMaterialGenerator(&failingRandomSource{}), envelope)
		assert.ErrorIs(t, err, vauDomain.ErrRandomGeneration)
	})
}
