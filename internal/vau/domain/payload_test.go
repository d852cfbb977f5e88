package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestPayload_Encode(t *testing.T) {
	key := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}

	t.Run("Success_SpaceSeparatedFields", func(t *testing.T) {
		payload := RequestPayload{
			BearerToken:  "token",
			RequestID:    RequestID("0123456789abcdef0123456789abcdef"),
			SymmetricKey: key,
			Message:      "GET /Task HTTP/1.1\r\nHost: erp\r\n\r\n",
		}

		encoded, err := payload.Encode()
		require.NoError(t, err)

		assert.Equal(t,
			"1 token 0123456789abcdef0123456789abcdef 000102030405060708090a0b0c0d0e0f GET /Task HTTP/1.1\r\nHost: erp\r\n\r\n",
			string(encoded),
		)
	})

	t.Run("Success_RoundTripThroughServerParser", func(t *testing.T) {
		payload := RequestPayload{
			BearerToken:  "eyJhbGciOi.payload.sig",
			RequestID:    RequestID("ffffffffffffffffffffffffffffffff"),
			SymmetricKey: key,
			Message:      "POST /Communication HTTP/1.1\r\nHost: erp\r\n\r\n{\"a\": 1}",
		}

		encoded, err := payload.Encode()
		require.NoError(t, err)

		parsed, err := ParseRequestPayload(encoded)
		require.NoError(t, err)
		assert.Equal(t, payload, parsed)
	})

	t.Run("Error_BearerTokenWithSpace", func(t *testing.T) {
		_, err := RequestPayload{BearerToken: "Bearer abc", SymmetricKey: key}.Encode()
		assert.ErrorIs(t, err, ErrInternalCrypto)
	})

	t.Run("Error_InvalidUTF8Message", func(t *testing.T) {
		_, err := RequestPayload{BearerToken: "token", SymmetricKey: key, Message: "\xff\xfe"}.Encode()
		assert.ErrorIs(t, err, ErrInternalCrypto)
	})

	t.Run("Error_WrongKeySize", func(t *testing.T) {
		_, err := RequestPayload{BearerToken: "token", SymmetricKey: key[:8]}.Encode()
		assert.ErrorIs(t, err, ErrInternalCrypto)
	})
}

func TestParseResponsePayload(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
		wantID    RequestID
		wantMsg   string
		wantErr   error
	}{
		{
			name:      "valid response",
			plaintext: "1 abc HTTP/1.1 200 OK\r\n\r\n",
			wantID:    "abc",
			wantMsg:   "HTTP/1.1 200 OK\r\n\r\n",
		},
		{
			name:      "empty message",
			plaintext: "1 abc ",
			wantID:    "abc",
			wantMsg:   "",
		},
		{
			name:      "only two tokens",
			plaintext: "1 abc",
			wantErr:   ErrResponseValidation,
		},
		{
			name:      "wrong version",
			plaintext: "2 abc HTTP/1.1 200 OK",
			wantErr:   ErrResponseValidation,
		},
		{
			name:      "invalid utf-8",
			plaintext: "1 abc \xff",
			wantErr:   ErrResponseValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ParseResponsePayload([]byte(tt.plaintext))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, payload.RequestID)
			assert.Equal(t, tt.wantMsg, payload.Message)
		})
	}
}

func FuzzParseResponsePayload(f *testing.F) {
	f.Add([]byte("1 abc HTTP/1.1 200 OK\r\n\r\n"))
	f.Add([]byte("1 abc"))
	f.Add([]byte(""))
	f.Add([]byte("\xff\xfe"))

	f.Fuzz(func(t *testing.T, plaintext []byte) {
		payload, err := ParseResponsePayload(plaintext)
		if err != nil {
			assert.ErrorIs(t, err, ErrResponseValidation)
			return
		}

		rebuilt := ResponsePayload{RequestID: payload.RequestID, Message: payload.Message}.Encode()
		assert.Equal(t, plaintext, rebuilt)
		assert.False(t, strings.Contains(payload.RequestID.String(), " "))
	})
}
