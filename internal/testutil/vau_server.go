package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
	vauService "github.com/allisson/vau/internal/vau/service"
)

// ReceivedRequest is one decrypted request seen by a VAUServer.
type ReceivedRequest struct {
	Pseudonym   string
	BearerToken string
	RequestID   vauDomain.RequestID
	Method      string
	Target      string
	Raw         string
}

// InnerResponse is the plaintext response a VAUServer encrypts back to the client.
type InnerResponse struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// VAUHandler produces the inner response for a decrypted request.
type VAUHandler func(req ReceivedRequest) InnerResponse

// VAUServer is a fake trusted execution environment. It serves its public key at
// /VAUCertificate, decrypts envelopes posted to /VAU/{pseudonym} and answers with
// responses sealed under the request's symmetric key.
type VAUServer struct {
	*httptest.Server

	privateKey []byte
	publicKey  *ecdsa.PublicKey

	mu        sync.Mutex
	handler   VAUHandler
	pseudonym string
	reject    int
	echoID    func(vauDomain.RequestID) vauDomain.RequestID
	requests  []ReceivedRequest
}

// NewVAUServer starts a fake VAU server that is closed when the test ends. The default
// handler answers 200 with an empty JSON object.
func NewVAUServer(t *testing.T) *VAUServer {
	t.Helper()

	d, x, y, err := elliptic.GenerateKey(vauDomain.Curve(), rand.Reader)
	require.NoError(t, err)

	s := &VAUServer{
		privateKey: d,
		publicKey:  &ecdsa.PublicKey{Curve: vauDomain.Curve(), X: x, Y: y},
		handler: func(ReceivedRequest) InnerResponse {
			return InnerResponse{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       "{}",
			}
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /VAUCertificate", s.serveCertificate)
	mux.HandleFunc("POST /VAU/{pseudonym}", s.serveVAU)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// BaseURL returns the server URL.
func (s *VAUServer) BaseURL(t *testing.T) *url.URL {
	t.Helper()

	u, err := url.Parse(s.URL)
	require.NoError(t, err)
	return u
}

// PublicKey returns the server's BrainpoolP256r1 encryption key.
func (s *VAUServer) PublicKey() *ecdsa.PublicKey {
	return s.publicKey
}

// SetHandler replaces the inner response handler.
func (s *VAUServer) SetHandler(handler VAUHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// AssignPseudonym makes subsequent responses carry a userpseudonym header.
func (s *VAUServer) AssignPseudonym(pseudonym string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pseudonym = pseudonym
}

// Reject makes subsequent outer responses fail with status, unencrypted. Zero disables it.
func (s *VAUServer) Reject(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject = status
}

// EchoRequestID overrides the request id echoed in responses, for tampering tests.
func (s *VAUServer) EchoRequestID(fn func(vauDomain.RequestID) vauDomain.RequestID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.echoID = fn
}

// Requests returns the decrypted requests received so far.
func (s *VAUServer) Requests() []ReceivedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ReceivedRequest(nil), s.requests...)
}

func (s *VAUServer) serveCertificate(w http.ResponseWriter, r *http.Request) {
	pemData, err := vauService.EncodePublicKeyPEM(s.publicKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-pem-file")
	_, _ = w.Write(pemData)
}

func (s *VAUServer) serveVAU(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	handler, pseudonym, reject, echoID := s.handler, s.pseudonym, s.reject, s.echoID
	s.mu.Unlock()

	if reject != 0 {
		http.Error(w, http.StatusText(reject), reject)
		return
	}
	if r.Header.Get("Content-Type") != vauDomain.EnvelopeContentType {
		http.Error(w, "unexpected content type", http.StatusUnsupportedMediaType)
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	spec, err := vauDomain.SpecV1.Spec()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	plaintext, err := vauService.OpenEnvelope(raw, s.privateKey, spec, vauService.NewKeyDeriver())
	if err != nil {
		http.Error(w, "cannot open envelope", http.StatusBadRequest)
		return
	}
	payload, err := vauDomain.ParseRequestPayload(plaintext)
	if err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	received := ReceivedRequest{
		Pseudonym:   r.PathValue("pseudonym"),
		BearerToken: payload.BearerToken,
		RequestID:   payload.RequestID,
		Raw:         payload.Message,
	}
	requestLine, _, _ := strings.Cut(payload.Message, "\r\n")
	if fields := strings.SplitN(requestLine, " ", 3); len(fields) == 3 {
		received.Method, received.Target = fields[0], fields[1]
	}

	s.mu.Lock()
	s.requests = append(s.requests, received)
	s.mu.Unlock()

	requestID := payload.RequestID
	if echoID != nil {
		requestID = echoID(requestID)
	}

	aead, err := vauService.NewAESGCM(payload.SymmetricKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	response := vauDomain.ResponsePayload{
		RequestID: requestID,
		Message:   renderResponse(handler(received)),
	}.Encode()
	sealed, err := aead.SealCombined(vauService.NewRandomSource(), response)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", vauDomain.EnvelopeContentType)
	if pseudonym != "" {
		w.Header().Set(vauDomain.UserPseudonymHeader, pseudonym)
	}
	_, _ = w.Write(sealed)
}

// renderResponse writes resp as raw HTTP/1.1 text with sorted header keys.
func renderResponse(resp InnerResponse) string {
	var sb strings.Builder
	sb.WriteString("HTTP/1.1 " + strconv.Itoa(resp.StatusCode) + " " + http.StatusText(resp.StatusCode) + "\r\n")

	keys := make([]string, 0, len(resp.Header))
	for key := range resp.Header {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sb.WriteString(key + ": " + strings.Join(resp.Header[key], ", ") + "\r\n")
	}
	sb.WriteString("\r\n")
	sb.WriteString(resp.Body)
	return sb.String()
}
