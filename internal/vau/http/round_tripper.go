package http

import (
	"net/http"

	vauUseCase "github.com/allisson/vau/internal/vau/usecase"
)

// RoundTripper sends every request through the VAU secure channel.
type RoundTripper struct {
	transport vauUseCase.TransportUseCase
}

// NewRoundTripper wraps transport as an http.RoundTripper.
func NewRoundTripper(transport vauUseCase.TransportUseCase) *RoundTripper {
	return &RoundTripper{transport: transport}
}

// RoundTrip implements http.RoundTripper. Non-2xx answers of the VAU endpoint itself are
// returned as they are, so callers see them as ordinary responses.
func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrip must not modify req; the use case replaces the body of the clone.
	resp, err := r.transport.Do(req.Context(), req.Clone(req.Context()))
	if err != nil && req.Body != nil {
		_ = req.Body.Close()
	}
	return resp, err
}

// NewClient returns an *http.Client whose requests travel through transport.
func NewClient(transport vauUseCase.TransportUseCase) *http.Client {
	return &http.Client{Transport: NewRoundTripper(transport)}
}
