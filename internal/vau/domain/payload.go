package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// RequestPayload is the plaintext sealed inside a request envelope.
type RequestPayload struct {
	BearerToken  string
	RequestID    RequestID
	SymmetricKey []byte
	Message      string
}

// Encode renders "1 {bearerToken} {requestId} {hex(symmetricKey)} {message}" as UTF-8.
//
// The first four fields are space delimited, so the bearer token must not contain
// spaces; the message is the remainder and may contain anything valid in UTF-8.
func (p RequestPayload) Encode() ([]byte, error) {
	if p.BearerToken == "" || strings.ContainsAny(p.BearerToken, " \r\n") {
		return nil, fmt.Errorf("%w: bearer token must be a single non-empty token", ErrInternalCrypto)
	}
	if len(p.SymmetricKey) != SymmetricKeySize {
		return nil, fmt.Errorf("%w: symmetric key must be %d bytes", ErrInternalCrypto, SymmetricKeySize)
	}
	if !utf8.ValidString(p.BearerToken) || !utf8.ValidString(p.Message) {
		return nil, fmt.Errorf("%w: payload is not valid UTF-8", ErrInternalCrypto)
	}

	payload := strings.Join([]string{
		PayloadVersion,
		p.BearerToken,
		p.RequestID.String(),
		hex.EncodeToString(p.SymmetricKey),
		p.Message,
	}, " ")
	return []byte(payload), nil
}

// ParseRequestPayload is the server side counterpart of RequestPayload.Encode.
func ParseRequestPayload(plaintext []byte) (RequestPayload, error) {
	if !utf8.Valid(plaintext) {
		return RequestPayload{}, fmt.Errorf("%w: request payload is not valid UTF-8", ErrResponseValidation)
	}

	parts := strings.SplitN(string(plaintext), " ", 5)
	if len(parts) != 5 {
		return RequestPayload{}, fmt.Errorf("%w: expected 5 request payload fields, got %d", ErrResponseValidation, len(parts))
	}
	if parts[0] != PayloadVersion {
		return RequestPayload{}, fmt.Errorf("%w: unexpected payload version", ErrResponseValidation)
	}

	key, err := hex.DecodeString(parts[3])
	if err != nil || len(key) != SymmetricKeySize {
		return RequestPayload{}, fmt.Errorf("%w: invalid symmetric key field", ErrResponseValidation)
	}

	return RequestPayload{
		BearerToken:  parts[1],
		RequestID:    RequestID(parts[2]),
		SymmetricKey: key,
		Message:      parts[4],
	}, nil
}

// ResponsePayload is the plaintext sealed inside a response: "1 {requestId} {rawResponse}".
type ResponsePayload struct {
	RequestID RequestID
	Message   string
}

// Encode renders the response payload.
func (p ResponsePayload) Encode() []byte {
	return []byte(PayloadVersion + " " + p.RequestID.String() + " " + p.Message)
}

// ParseResponsePayload splits a decrypted response into its three fields.
//
// The plaintext must be UTF-8 and split on the first two spaces into exactly three
// tokens, the first of which is the payload version. Matching the echoed request id
// against the expected one is left to the caller.
func ParseResponsePayload(plaintext []byte) (ResponsePayload, error) {
	if !utf8.Valid(plaintext) {
		return ResponsePayload{}, fmt.Errorf("%w: response payload is not valid UTF-8", ErrResponseValidation)
	}

	parts := strings.SplitN(string(plaintext), " ", 3)
	if len(parts) != 3 {
		return ResponsePayload{}, fmt.Errorf(
			"%w: expected 3 response payload fields, got %d",
			ErrResponseValidation,
			len(parts),
		)
	}
	if parts[0] != PayloadVersion {
		return ResponsePayload{}, fmt.Errorf("%w: unexpected payload version", ErrResponseValidation)
	}

	return ResponsePayload{RequestID: RequestID(parts[1]), Message: parts[2]}, nil
}
