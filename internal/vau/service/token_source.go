package service

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/allisson/vau/internal/errors"
)

// ErrMissingBearerToken indicates neither the request nor the configuration supplied a token.
var ErrMissingBearerToken = apperrors.Wrap(apperrors.ErrUnauthorized, "missing bearer token")

// BearerTokenSource takes the bearer token from the request Authorization header and
// falls back to a configured static token.
type BearerTokenSource struct {
	fallback string
}

// NewBearerTokenSource creates a token source; fallback may be empty.
func NewBearerTokenSource(fallback string) *BearerTokenSource {
	return &BearerTokenSource{fallback: fallback}
}

// Token resolves the bearer token for req.
func (b *BearerTokenSource) Token(ctx context.Context, req *http.Request) (string, error) {
	if req != nil {
		if token, ok := parseBearer(req.Header.Get("Authorization")); ok {
			return token, nil
		}
	}
	if b.fallback != "" {
		return b.fallback, nil
	}
	return "", ErrMissingBearerToken
}

func parseBearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
