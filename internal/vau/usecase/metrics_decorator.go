package usecase

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/allisson/vau/internal/errors"
	"github.com/allisson/vau/internal/metrics"
	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// Failure kinds in the order they are matched; the first sentinel in the chain wins.
var failureKinds = []struct {
	err  error
	kind string
}{
	{vauDomain.ErrCertificateDecoding, "certificate_decoding"},
	{vauDomain.ErrRandomGeneration, "random_generation"},
	{vauDomain.ErrInternalCrypto, "internal_crypto"},
	{vauDomain.ErrCrypto, "crypto"},
	{vauDomain.ErrEncoding, "encoding"},
	{vauDomain.ErrResponseValidation, "response_validation"},
	{vauDomain.ErrUnknownStatusCode, "unknown_status_code"},
	{vauDomain.ErrTransport, "transport"},
	{vauDomain.ErrInternal, "internal"},
	{apperrors.ErrUnauthorized, "unauthorized"},
}

// FailureKind names the VAU error kind of err for metric labels.
func FailureKind(err error) string {
	for _, fk := range failureKinds {
		if apperrors.Is(err, fk.err) {
			return fk.kind
		}
	}
	return "other"
}

// transportUseCaseWithMetrics decorates TransportUseCase with metrics instrumentation.
type transportUseCaseWithMetrics struct {
	next    TransportUseCase
	metrics metrics.BusinessMetrics
}

// NewTransportUseCaseWithMetrics wraps a TransportUseCase with metrics recording.
func NewTransportUseCaseWithMetrics(useCase TransportUseCase, m metrics.BusinessMetrics) TransportUseCase {
	return &transportUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Do records metrics for VAU round trips. Pass-through (non-2xx) responses count as "rejected".
func (t *transportUseCaseWithMetrics) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.Do(ctx, req)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		status = "rejected"
	}

	t.metrics.RecordOperation(ctx, "vau", "vau_request", status)
	t.metrics.RecordDuration(ctx, "vau", "vau_request", time.Since(start), status)
	if err != nil {
		t.metrics.RecordFailure(ctx, "vau", "vau_request", FailureKind(err))
	}

	return resp, err
}

// Pseudonym delegates without instrumentation.
func (t *transportUseCaseWithMetrics) Pseudonym(ctx context.Context) (string, error) {
	return t.next.Pseudonym(ctx)
}

// ResetPseudonym records metrics for pseudonym resets.
func (t *transportUseCaseWithMetrics) ResetPseudonym(ctx context.Context) error {
	start := time.Now()
	err := t.next.ResetPseudonym(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "vau", "pseudonym_reset", status)
	t.metrics.RecordDuration(ctx, "vau", "pseudonym_reset", time.Since(start), status)

	return err
}
