package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	spec, err := SpecV1.Spec()
	require.NoError(t, err)

	envelope := Envelope{
		Version:            spec.Version,
		EphemeralPublicKey: bytes.Repeat([]byte{0xaa}, PublicKeySize),
		Nonce:              bytes.Repeat([]byte{0xbb}, spec.IVSize),
		Ciphertext:         []byte("ciphertext"),
		Tag:                bytes.Repeat([]byte{0xcc}, TagSize),
	}

	t.Run("Success_WireLayout", func(t *testing.T) {
		raw := envelope.Bytes()

		require.Len(t, raw, 1+64+12+len("ciphertext")+16)
		assert.Equal(t, byte(0x01), raw[0])
		assert.Equal(t, envelope.EphemeralPublicKey, raw[1:65])
		assert.Equal(t, envelope.Nonce, raw[65:77])
		assert.Equal(t, []byte("ciphertext"), raw[77:87])
		assert.Equal(t, envelope.Tag, raw[87:])
	})

	t.Run("Success_ParseSplitsFields", func(t *testing.T) {
		parsed, err := ParseEnvelope(envelope.Bytes(), spec)
		require.NoError(t, err)

		assert.Equal(t, envelope, parsed)
		assert.Equal(t, append([]byte("ciphertext"), envelope.Tag...), parsed.Sealed())
	})

	t.Run("Success_ParseEmptyCiphertext", func(t *testing.T) {
		empty := envelope
		empty.Ciphertext = []byte{}

		parsed, err := ParseEnvelope(empty.Bytes(), spec)
		require.NoError(t, err)
		assert.Empty(t, parsed.Ciphertext)
	})

	t.Run("Error_ParseShortInput", func(t *testing.T) {
		_, err := ParseEnvelope(make([]byte, 92), spec)
		assert.ErrorIs(t, err, ErrCrypto)
	})

	t.Run("Error_ParseUnknownVersion", func(t *testing.T) {
		raw := envelope.Bytes()
		raw[0] = 0x02

		_, err := ParseEnvelope(raw, spec)
		assert.ErrorIs(t, err, ErrCrypto)
	})
}
