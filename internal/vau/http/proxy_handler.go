package http

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/vau/internal/errors"
	"github.com/allisson/vau/internal/httputil"
	vauUseCase "github.com/allisson/vau/internal/vau/usecase"
)

const maxProxyBodySize = 10 << 20

// Headers that describe a single hop and must not be forwarded.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// ProxyHandler forwards plaintext requests through the VAU secure channel.
type ProxyHandler struct {
	transport vauUseCase.TransportUseCase
	upstream  *url.URL
	logger    *slog.Logger
}

// PseudonymResponse is the JSON view of the stored user pseudonym.
type PseudonymResponse struct {
	Pseudonym string `json:"pseudonym"`
}

// NewProxyHandler creates a proxy handler; inner requests target {upstream}{path}.
func NewProxyHandler(
	transport vauUseCase.TransportUseCase,
	upstream *url.URL,
	logger *slog.Logger,
) *ProxyHandler {
	return &ProxyHandler{
		transport: transport,
		upstream:  upstream,
		logger:    logger,
	}
}

// ProxyHandler forwards the request to the upstream path through the VAU channel.
// ANY /v1/vau/*path
func (h *ProxyHandler) ProxyHandler(c *gin.Context) {
	path := c.Param("path")
	if strings.TrimPrefix(path, "/") == "" {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrInvalidInput, "path cannot be empty"), h.logger)
		return
	}

	inner, err := h.innerRequest(c, path)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	resp, err := h.transport.Do(c.Request.Context(), inner)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	header := c.Writer.Header()
	for key, values := range resp.Header {
		for _, value := range values {
			header.Add(key, value)
		}
	}
	removeHopByHop(header)

	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		h.logger.Warn("failed to copy vau response body", slog.Any("error", err))
	}
}

// GetPseudonymHandler returns the stored user pseudonym.
// GET /v1/pseudonym
func (h *ProxyHandler) GetPseudonymHandler(c *gin.Context) {
	pseudonym, err := h.transport.Pseudonym(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, PseudonymResponse{Pseudonym: pseudonym})
}

// ResetPseudonymHandler forgets the stored user pseudonym.
// DELETE /v1/pseudonym
func (h *ProxyHandler) ResetPseudonymHandler(c *gin.Context) {
	if err := h.transport.ResetPseudonym(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProxyHandler) innerRequest(c *gin.Context, path string) (*http.Request, error) {
	target := h.upstream.JoinPath(path)
	target.RawQuery = c.Request.URL.RawQuery

	var body io.Reader = http.NoBody
	if c.Request.Body != nil {
		data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxProxyBodySize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		if len(data) > maxProxyBodySize {
			return nil, fmt.Errorf("request body exceeds %d bytes", maxProxyBodySize)
		}
		if len(data) > 0 {
			body = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	req.Header = c.Request.Header.Clone()
	removeHopByHop(req.Header)
	req.Header.Del("X-Request-Id")

	return req, nil
}

func removeHopByHop(header http.Header) {
	for _, key := range hopByHopHeaders {
		header.Del(key)
	}
}
