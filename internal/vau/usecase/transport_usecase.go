package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/vau/internal/errors"
	vauDomain "github.com/allisson/vau/internal/vau/domain"
	vauService "github.com/allisson/vau/internal/vau/service"
)

// Config holds the VAU endpoint settings of the transport use case.
type Config struct {
	// ServerURL is the VAU base URL; requests go to {ServerURL}/VAU/{pseudonym}.
	ServerURL *url.URL
	// PseudonymKey namespaces the stored pseudonym.
	PseudonymKey string
}

type transportUseCase struct {
	config       Config
	doer         Doer
	certificates CertificateProvider
	tokens       TokenSource
	pseudonyms   PseudonymRepository
	codec        HTTPCodec
	keys         vauService.KeyMaterialGenerator
	envelope     vauService.Sealer
	logger       *slog.Logger
}

// NewTransportUseCase creates the VAU transport step.
func NewTransportUseCase(
	config Config,
	doer Doer,
	certificates CertificateProvider,
	tokens TokenSource,
	pseudonyms PseudonymRepository,
	codec HTTPCodec,
	keys vauService.KeyMaterialGenerator,
	envelope vauService.Sealer,
	logger *slog.Logger,
) TransportUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &transportUseCase{
		config:       config,
		doer:         doer,
		certificates: certificates,
		tokens:       tokens,
		pseudonyms:   pseudonyms,
		codec:        codec,
		keys:         keys,
		envelope:     envelope,
		logger:       logger,
	}
}

// Do performs one encrypted round trip. Nothing is retried; callers that retry get a
// fresh request id, symmetric key and ephemeral key pair.
func (t *transportUseCase) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req == nil || req.URL == nil {
		return nil, fmt.Errorf("%w: missing request", vauDomain.ErrEncoding)
	}

	pseudonym, err := t.Pseudonym(ctx)
	if err != nil {
		return nil, err
	}
	if err := vauDomain.ValidatePseudonymValue(pseudonym); err != nil {
		return nil, fmt.Errorf("%w: stored user pseudonym: %w", vauDomain.ErrInternal, err)
	}
	target := t.config.ServerURL.JoinPath("VAU", pseudonym)

	message, err := t.codec.Serialize(req)
	if err != nil {
		return nil, err
	}

	certificate, err := t.certificates.Certificate(ctx)
	if err != nil {
		t.dropCertificate(err)
		return nil, err
	}

	token, err := t.tokens.Token(ctx, req)
	if err != nil {
		return nil, err
	}

	session, err := vauService.NewCryptoSession(message, token, certificate, t.keys, t.envelope)
	if err != nil {
		t.dropCertificate(err)
		return nil, err
	}
	defer session.Close()

	envelope, err := session.Encrypt()
	if err != nil {
		t.dropCertificate(err)
		return nil, err
	}

	outer, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vauDomain.ErrInternal, err)
	}
	outer.Header.Set("Content-Type", vauDomain.EnvelopeContentType)

	start := time.Now()
	resp, err := t.doer.Do(outer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vauDomain.ErrTransport, err)
	}

	t.logger.Debug("vau round trip",
		slog.String("request_id", session.RequestID().String()),
		slog.String("method", req.Method),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read vau response: %w", vauDomain.ErrTransport, err)
	}

	raw, err := session.Decrypt(body)
	if err != nil {
		return nil, err
	}

	inner, err := t.codec.Deserialize(raw, req.URL)
	if err != nil {
		return nil, err
	}
	inner.Request = req

	t.storePseudonym(ctx, resp.Header, inner.Header)

	return inner, nil
}

// storePseudonym persists a new pseudonym from the outer response header, falling back to
// the decrypted inner header. Failures are logged; the response already succeeded.
func (t *transportUseCase) storePseudonym(ctx context.Context, outer, inner http.Header) {
	value := outer.Get(vauDomain.UserPseudonymHeader)
	if value == "" {
		value = inner.Get(vauDomain.UserPseudonymHeader)
	}
	if value == "" {
		return
	}
	if err := vauDomain.ValidatePseudonymValue(value); err != nil {
		t.logger.Warn("ignoring unusable user pseudonym",
			slog.String("key", t.config.PseudonymKey),
			slog.Any("error", err),
		)
		return
	}

	now := time.Now().UTC()
	pseudonym := &vauDomain.UserPseudonym{
		ID:        uuid.Must(uuid.NewV7()),
		Key:       t.config.PseudonymKey,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.pseudonyms.Upsert(ctx, pseudonym); err != nil {
		t.logger.Warn("failed to store user pseudonym",
			slog.String("key", t.config.PseudonymKey),
			slog.Any("error", err),
		)
	}
}

// dropCertificate forgets a cached certificate after a key extraction or ECIES failure so
// the next request starts from fresh trust material.
func (t *transportUseCase) dropCertificate(err error) {
	if !apperrors.Is(err, vauDomain.ErrCertificateDecoding) && !apperrors.Is(err, vauDomain.ErrCrypto) {
		return
	}
	if invalidator, ok := t.certificates.(CertificateInvalidator); ok {
		invalidator.Invalidate()
		t.logger.Warn("vau certificate dropped from cache", slog.Any("error", err))
	}
}

// Pseudonym returns the stored pseudonym for the configured key, or "0".
func (t *transportUseCase) Pseudonym(ctx context.Context) (string, error) {
	pseudonym, err := t.pseudonyms.Get(ctx, t.config.PseudonymKey)
	if err != nil {
		if apperrors.Is(err, vauDomain.ErrPseudonymNotFound) {
			return vauDomain.DefaultUserPseudonym, nil
		}
		return "", fmt.Errorf("%w: failed to load user pseudonym: %w", vauDomain.ErrInternal, err)
	}
	if pseudonym.Value == "" {
		return vauDomain.DefaultUserPseudonym, nil
	}
	return pseudonym.Value, nil
}

// ResetPseudonym deletes the stored pseudonym so the next request uses "0".
func (t *transportUseCase) ResetPseudonym(ctx context.Context) error {
	err := t.pseudonyms.Delete(ctx, t.config.PseudonymKey)
	if err != nil && !apperrors.Is(err, vauDomain.ErrPseudonymNotFound) {
		return err
	}
	return nil
}
