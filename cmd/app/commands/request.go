package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/vau/internal/validation"
	vauUseCase "github.com/allisson/vau/internal/vau/usecase"
)

// RequestOptions describes the inner request sent by RunRequest.
type RequestOptions struct {
	// UpstreamURL is the base the path is resolved against.
	UpstreamURL string
	Method      string
	// Path holds the path and optional query, e.g. "/Task?status=ready".
	Path string
	// Headers are "Name: value" pairs.
	Headers []string
	Body    string
}

// Validate checks the options before anything is sent. An empty method means GET.
func (o *RequestOptions) Validate() error {
	err := validation.ValidateStruct(o,
		validation.Field(&o.UpstreamURL, validation.Required, customValidation.NoWhitespace),
		validation.Field(&o.Method, customValidation.HTTPMethod),
		validation.Field(&o.Path, validation.Required, customValidation.PathOnly),
		validation.Field(&o.Headers, validation.Each(customValidation.HeaderLine)),
	)
	return customValidation.WrapValidationError(err)
}

type requestOutput struct {
	StatusCode int                 `json:"status_code"`
	Status     string              `json:"status"`
	Headers    map[string][]string `json:"headers"`
	Body       string              `json:"body"`
}

// RunRequest sends one request through the VAU channel and prints the decrypted response.
func RunRequest(
	ctx context.Context,
	transport vauUseCase.TransportUseCase,
	logger *slog.Logger,
	out io.Writer,
	opts RequestOptions,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if err := opts.Validate(); err != nil {
		return err
	}

	req, err := buildRequest(ctx, opts)
	if err != nil {
		return err
	}

	logger.Info("sending vau request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
	)

	resp, err := transport.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send vau request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read vau response: %w", err)
	}

	if format == "json" {
		return writeJSON(out, requestOutput{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Headers:    resp.Header,
			Body:       string(body),
		})
	}

	_, _ = fmt.Fprintf(out, "%d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
	keys := make([]string, 0, len(resp.Header))
	for key := range resp.Header {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, value := range resp.Header[key] {
			_, _ = fmt.Fprintf(out, "%s: %s\n", key, value)
		}
	}
	_, _ = fmt.Fprintf(out, "\n%s\n", body)

	return nil
}

func buildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	base, err := url.Parse(opts.UpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	ref, err := url.Parse(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	target := base.JoinPath(ref.Path)
	target.RawQuery = ref.RawQuery

	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != "" {
		body = strings.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for _, header := range opts.Headers {
		name, value, _ := strings.Cut(header, ":")
		req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	return req, nil
}
