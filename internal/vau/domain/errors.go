package domain

import (
	"github.com/allisson/vau/internal/errors"
)

// VAU secure channel error taxonomy.
//
// Every error wraps errors.ErrSecureChannel, so callers can detect any VAU failure with
// errors.Is(err, errors.ErrSecureChannel) and then narrow it down with the specific
// sentinel. Error messages never contain key material, bearer tokens or payloads.
var (
	// ErrCertificateDecoding indicates the recipient public key could not be extracted
	// from the supplied certificate. Callers must refresh their trust material.
	ErrCertificateDecoding = errors.Wrap(errors.ErrSecureChannel, "certificate decoding failed")

	// ErrRandomGeneration indicates the CSPRNG reported a failure. There is no fallback
	// to non-secure randomness.
	ErrRandomGeneration = errors.Wrap(errors.ErrSecureChannel, "random generation failed")

	// ErrInternalCrypto indicates the request payload could not be constructed.
	// This is a programming error (invalid UTF-8 payload, reused session).
	ErrInternalCrypto = errors.Wrap(errors.ErrSecureChannel, "internal crypto error")

	// ErrCrypto indicates key generation, ECDH, HKDF or AEAD sealing failed.
	ErrCrypto = errors.Wrap(errors.ErrSecureChannel, "crypto error")

	// ErrEncoding indicates the outbound HTTP request cannot be serialized.
	ErrEncoding = errors.Wrap(errors.ErrSecureChannel, "encoding error")

	// ErrResponseValidation indicates a malformed decrypted response, a request id
	// mismatch, a disallowed content type or an AEAD authentication failure.
	//
	// This error is security relevant: an id mismatch may indicate tampering or session
	// confusion and must abort the request instead of being retried transparently.
	ErrResponseValidation = errors.Wrap(errors.ErrSecureChannel, "response validation failed")

	// ErrUnknownStatusCode indicates the decrypted response carries a status code
	// outside the recognized set.
	ErrUnknownStatusCode = errors.Wrap(errors.ErrSecureChannel, "unknown status code")

	// ErrInternal is the catch-all for unexpected invariant violations.
	ErrInternal = errors.Wrap(errors.ErrSecureChannel, "internal error")

	// ErrTransport indicates the encrypted request could not be delivered to the VAU server.
	ErrTransport = errors.Wrap(errors.ErrSecureChannel, "vau transport failed")
)

// ErrPseudonymNotFound indicates no user pseudonym has been stored for a key yet.
var ErrPseudonymNotFound = errors.Wrap(errors.ErrNotFound, "user pseudonym not found")
