package service

import (
	"fmt"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// CryptoSession encrypts one outbound message and decrypts its response.
//
// The request id and symmetric key are fixed at construction. A session encrypts at
// most once; retries must build a new session so no key material is reused. Decrypt can
// be called any number of times. A session belongs to a single caller and is not safe
// for concurrent use.
type CryptoSession struct {
	message      string
	bearerToken  string
	certificate  *vauDomain.Certificate
	envelope     Sealer
	spec         vauDomain.EciesSpec
	requestID    vauDomain.RequestID
	symmetricKey []byte
	encrypted    bool
}

// NewCryptoSession mints the request id and symmetric key for message.
func NewCryptoSession(
	message string,
	bearerToken string,
	certificate *vauDomain.Certificate,
	keys KeyMaterialGenerator,
	envelope Sealer,
) (*CryptoSession, error) {
	if certificate == nil || certificate.PublicKey == nil {
		return nil, fmt.Errorf("%w: missing vau certificate", vauDomain.ErrCertificateDecoding)
	}

	spec, err := vauDomain.SpecV1.Spec()
	if err != nil {
		return nil, err
	}

	requestID, err := keys.RequestID()
	if err != nil {
		return nil, err
	}

	symmetricKey, err := keys.SymmetricKey()
	if err != nil {
		return nil, err
	}
	if len(symmetricKey) != vauDomain.SymmetricKeySize {
		return nil, fmt.Errorf("%w: symmetric key must be %d bytes", vauDomain.ErrInternal, vauDomain.SymmetricKeySize)
	}

	return &CryptoSession{
		message:      message,
		bearerToken:  bearerToken,
		certificate:  certificate,
		envelope:     envelope,
		spec:         spec,
		requestID:    requestID,
		symmetricKey: symmetricKey,
	}, nil
}

// RequestID returns the id the response must echo.
func (s *CryptoSession) RequestID() vauDomain.RequestID {
	return s.requestID
}

// Encrypt builds the request payload and seals it in an ECIES envelope.
func (s *CryptoSession) Encrypt() ([]byte, error) {
	if s.encrypted {
		return nil, fmt.Errorf("%w: session already encrypted a message", vauDomain.ErrInternalCrypto)
	}
	s.encrypted = true

	payload, err := vauDomain.RequestPayload{
		BearerToken:  s.bearerToken,
		RequestID:    s.requestID,
		SymmetricKey: s.symmetricKey,
		Message:      s.message,
	}.Encode()
	if err != nil {
		return nil, err
	}
	defer vauDomain.Zero(payload)

	return s.envelope.Encrypt(payload, s.certificate.PublicKey, s.spec)
}

// Decrypt opens nonce || ciphertext || tag with the session key, checks the echoed
// request id and returns the raw HTTP response.
func (s *CryptoSession) Decrypt(response []byte) (string, error) {
	aead, err := NewAESGCM(s.symmetricKey)
	if err != nil {
		return "", fmt.Errorf("%w: session key unavailable", vauDomain.ErrResponseValidation)
	}

	plaintext, err := aead.OpenCombined(response)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", vauDomain.ErrResponseValidation)
	}

	payload, err := vauDomain.ParseResponsePayload(plaintext)
	if err != nil {
		return "", err
	}
	if payload.RequestID != s.requestID {
		return "", fmt.Errorf("%w: request id mismatch", vauDomain.ErrResponseValidation)
	}

	return payload.Message, nil
}

// Close zeroes the symmetric key. Decrypt fails afterwards.
func (s *CryptoSession) Close() {
	vauDomain.Zero(s.symmetricKey)
	s.symmetricKey = nil
}
