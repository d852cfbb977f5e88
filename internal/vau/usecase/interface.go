// Package usecase orchestrates one VAU round trip: serialize, encrypt, send, decrypt,
// deserialize and persist the user pseudonym.
package usecase

import (
	"context"
	"net/http"
	"net/url"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// PseudonymRepository persists user pseudonyms keyed by VAU endpoint.
type PseudonymRepository interface {
	// Get returns vauDomain.ErrPseudonymNotFound when nothing is stored for key.
	Get(ctx context.Context, key string) (*vauDomain.UserPseudonym, error)
	Upsert(ctx context.Context, pseudonym *vauDomain.UserPseudonym) error
	Delete(ctx context.Context, key string) error
}

// Doer sends the outer, encrypted request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CertificateProvider supplies the validated VAU encryption certificate.
type CertificateProvider interface {
	Certificate(ctx context.Context) (*vauDomain.Certificate, error)
}

// CertificateInvalidator is implemented by certificate providers that cache.
type CertificateInvalidator interface {
	Invalidate()
}

// TokenSource resolves the bearer token placed inside the encrypted payload.
type TokenSource interface {
	Token(ctx context.Context, req *http.Request) (string, error)
}

// HTTPCodec converts between net/http values and raw HTTP text.
type HTTPCodec interface {
	Serialize(req *http.Request) (string, error)
	Deserialize(raw string, originalURL *url.URL) (*http.Response, error)
}

// TransportUseCase sends plaintext HTTP requests through the VAU secure channel.
type TransportUseCase interface {
	// Do encrypts req, sends it to the VAU endpoint and returns the decrypted response.
	// Non-2xx outer responses are returned unprocessed.
	Do(ctx context.Context, req *http.Request) (*http.Response, error)

	// Pseudonym returns the stored user pseudonym or "0" when none is known.
	Pseudonym(ctx context.Context) (string, error)

	// ResetPseudonym forgets the stored user pseudonym.
	ResetPseudonym(ctx context.Context) error
}
