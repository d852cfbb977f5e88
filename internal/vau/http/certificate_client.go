// Package http exposes the VAU secure channel to HTTP callers: a certificate client that
// fetches the VAU encryption certificate, an http.RoundTripper routing any *http.Client
// through the channel, and gin handlers for the local proxy.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
	vauService "github.com/allisson/vau/internal/vau/service"
	vauUseCase "github.com/allisson/vau/internal/vau/usecase"
)

var _ vauUseCase.CertificateInvalidator = (*CertificateClient)(nil)

const (
	maxCertificateSize = 64 << 10
	fetchTimeout       = 30 * time.Second
)

// CertificateClient fetches the VAU encryption certificate from {baseURL}/VAUCertificate
// and caches it for a fixed TTL. Concurrent fetches are collapsed into one request.
type CertificateClient struct {
	endpoint string
	doer     vauUseCase.Doer
	decoder  vauService.CertificateDecoder
	ttl      time.Duration
	now      func() time.Time

	mu          sync.Mutex
	certificate *vauDomain.Certificate
	expiresAt   time.Time
	group       singleflight.Group
}

// NewCertificateClient creates a certificate client. A zero ttl disables caching.
func NewCertificateClient(
	baseURL *url.URL,
	doer vauUseCase.Doer,
	decoder vauService.CertificateDecoder,
	ttl time.Duration,
) *CertificateClient {
	return &CertificateClient{
		endpoint: baseURL.JoinPath("VAUCertificate").String(),
		doer:     doer,
		decoder:  decoder,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Certificate returns the cached certificate or fetches a fresh one.
// The shared fetch is detached from the caller that started it; every caller only
// stops waiting when its own ctx is done.
func (c *CertificateClient) Certificate(ctx context.Context) (*vauDomain.Certificate, error) {
	if certificate := c.cached(); certificate != nil {
		return certificate, nil
	}

	results := c.group.DoChan("certificate", func() (any, error) {
		if certificate := c.cached(); certificate != nil {
			return certificate, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		certificate, err := c.fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.store(certificate)
		return certificate, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: fetch certificate: %w", vauDomain.ErrTransport, ctx.Err())
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*vauDomain.Certificate), nil
	}
}

// Invalidate drops the cached certificate so the next call fetches again.
func (c *CertificateClient) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.certificate = nil
	c.expiresAt = time.Time{}
}

func (c *CertificateClient) cached() *vauDomain.Certificate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.certificate != nil && c.now().Before(c.expiresAt) {
		return c.certificate
	}
	return nil
}

func (c *CertificateClient) store(certificate *vauDomain.Certificate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.certificate = certificate
	c.expiresAt = c.now().Add(c.ttl)
}

func (c *CertificateClient) fetch(ctx context.Context) (*vauDomain.Certificate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vauDomain.ErrInternal, err)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch certificate: %w", vauDomain.ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: certificate endpoint returned %d", vauDomain.ErrTransport, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCertificateSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read certificate: %w", vauDomain.ErrTransport, err)
	}

	return c.decoder.Decode(data)
}
