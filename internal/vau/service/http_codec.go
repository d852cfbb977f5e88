package service

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

const (
	crlf          = "\r\n"
	headBodySplit = "\r\n\r\n"
	headerSplit   = ": "
	httpVersion   = "HTTP/1.1"
)

// acceptedBodyContentTypes lists the content types whose bodies are returned to callers.
var acceptedBodyContentTypes = []string{
	"text/html",
	"application/json",
	"application/xml",
	"application/fhir+json",
	"application/fhir+xml",
}

// HTTPCodec converts between net/http values and the raw HTTP/1.1 text carried inside
// VAU payloads. It is stateless.
type HTTPCodec struct{}

// NewHTTPCodec creates a codec.
func NewHTTPCodec() *HTTPCodec {
	return &HTTPCodec{}
}

// Serialize renders req as
//
//	"{METHOD} {PATH}[?{QUERY}] HTTP/1.1\r\nHost: {HOST}\r\n{Key: Value\r\n...}\r\n{BODY}"
//
// Header keys are written in sorted order with multiple values joined by ", ". The body is
// included only when it is valid UTF-8. The request body is consumed and replaced with an
// equivalent reader.
func (c *HTTPCodec) Serialize(req *http.Request) (string, error) {
	if req == nil || req.URL == nil {
		return "", fmt.Errorf("%w: missing request url", vauDomain.ErrEncoding)
	}
	if strings.TrimSpace(req.Method) == "" {
		return "", fmt.Errorf("%w: missing request method", vauDomain.ErrEncoding)
	}

	host := req.URL.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: missing request host", vauDomain.ErrEncoding)
	}

	target := req.URL.EscapedPath()
	if target == "" {
		target = "/"
	}
	if req.URL.RawQuery != "" {
		target += "?" + req.URL.RawQuery
	}

	var sb strings.Builder
	sb.WriteString(req.Method + " " + target + " " + httpVersion + crlf)
	sb.WriteString("Host: " + host + crlf)

	keys := make([]string, 0, len(req.Header))
	for key := range req.Header {
		if strings.EqualFold(key, "Host") {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sb.WriteString(key + headerSplit + strings.Join(req.Header[key], ", ") + crlf)
	}
	sb.WriteString(crlf)

	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return "", fmt.Errorf("%w: failed to read request body: %v", vauDomain.ErrEncoding, err)
		}
		req.Body = io.NopCloser(bytes.NewReader(body))

		if utf8.Valid(body) {
			sb.Write(body)
		}
	}

	return sb.String(), nil
}

// Deserialize parses a raw HTTP response. The returned response's Request points at
// originalURL, the URL the caller asked for rather than the VAU endpoint.
func (c *HTTPCodec) Deserialize(raw string, originalURL *url.URL) (*http.Response, error) {
	head, body, _ := strings.Cut(raw, headBodySplit)
	lines := strings.Split(head, crlf)

	statusLine := strings.SplitN(lines[0], " ", 3)
	if len(statusLine) < 2 {
		return nil, fmt.Errorf("%w: malformed status line", vauDomain.ErrResponseValidation)
	}

	statusCode, err := strconv.Atoi(statusLine[1])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid status code", vauDomain.ErrResponseValidation)
	}
	statusText := http.StatusText(statusCode)
	if statusText == "" {
		return nil, fmt.Errorf("%w: %d", vauDomain.ErrUnknownStatusCode, statusCode)
	}
	if len(statusLine) == 3 && statusLine[2] != "" {
		statusText = statusLine[2]
	}

	header := make(http.Header, len(lines)-1)
	for _, line := range lines[1:] {
		parts := strings.SplitN(line, headerSplit, 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: malformed header line", vauDomain.ErrResponseValidation)
		}
		header.Add(parts[0], parts[1])
	}

	if body != "" {
		if !acceptsBody(header.Get("Content-Type")) {
			return nil, fmt.Errorf("%w: content type not allowed for response body", vauDomain.ErrResponseValidation)
		}
		if !utf8.ValidString(body) {
			return nil, fmt.Errorf("%w: response body is not valid UTF-8", vauDomain.ErrResponseValidation)
		}
	}

	proto := statusLine[0]
	major, minor, ok := http.ParseHTTPVersion(proto)
	if !ok {
		major, minor = 1, 1
	}

	return &http.Response{
		Status:        strconv.Itoa(statusCode) + " " + statusText,
		StatusCode:    statusCode,
		Proto:         proto,
		ProtoMajor:    major,
		ProtoMinor:    minor,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       &http.Request{Method: http.MethodGet, URL: originalURL, Header: make(http.Header)},
	}, nil
}

func acceptsBody(contentType string) bool {
	contentType = strings.ToLower(contentType)
	for _, accepted := range acceptedBodyContentTypes {
		if strings.Contains(contentType, accepted) {
			return true
		}
	}
	return false
}
