package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/vau/internal/errors"
	vauDomain "github.com/allisson/vau/internal/vau/domain"
	"github.com/allisson/vau/internal/vau/usecase/mocks"
)

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/fhir+json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestRunRequest(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	opts := RequestOptions{
		UpstreamURL: "https://erp.example.com",
		Method:      "post",
		Path:        "/Task/$create?draft=true",
		Headers:     []string{"Content-Type: application/fhir+json", "X-Api-Key: abc"},
		Body:        `{"resourceType":"Parameters"}`,
	}

	t.Run("Success_TextOutput", func(t *testing.T) {
		transport := &mocks.MockTransportUseCase{}
		transport.On("Do", ctx, mock.MatchedBy(func(req *http.Request) bool {
			body, _ := io.ReadAll(req.Body)
			return req.Method == http.MethodPost &&
				req.URL.String() == "https://erp.example.com/Task/$create?draft=true" &&
				req.Header.Get("X-Api-Key") == "abc" &&
				string(body) == `{"resourceType":"Parameters"}`
		})).Return(newResponse(http.StatusCreated, `{"id":"1"}`), nil)

		var out bytes.Buffer
		err := RunRequest(ctx, transport, logger, &out, opts, "text")

		require.NoError(t, err)
		assert.Equal(t, "201 Created\nContent-Type: application/fhir+json\n\n{\"id\":\"1\"}\n", out.String())
		transport.AssertExpectations(t)
	})

	t.Run("Success_JSONOutput", func(t *testing.T) {
		transport := &mocks.MockTransportUseCase{}
		transport.On("Do", ctx, mock.Anything).Return(newResponse(http.StatusOK, "ok"), nil)

		var out bytes.Buffer
		err := RunRequest(ctx, transport, logger, &out, opts, "json")

		require.NoError(t, err)
		assert.Contains(t, out.String(), `"status_code": 200`)
		assert.Contains(t, out.String(), `"body": "ok"`)
	})

	t.Run("Error_Transport", func(t *testing.T) {
		transport := &mocks.MockTransportUseCase{}
		transport.On("Do", ctx, mock.Anything).Return(nil, vauDomain.ErrResponseValidation)

		err := RunRequest(ctx, transport, logger, &bytes.Buffer{}, opts, "text")

		assert.ErrorIs(t, err, vauDomain.ErrResponseValidation)
	})

	t.Run("Error_InvalidHeader", func(t *testing.T) {
		transport := &mocks.MockTransportUseCase{}
		bad := opts
		bad.Headers = []string{"no-colon"}

		err := RunRequest(ctx, transport, logger, &bytes.Buffer{}, bad, "text")

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		transport.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidPath", func(t *testing.T) {
		transport := &mocks.MockTransportUseCase{}
		bad := opts
		bad.Path = "https://evil.example.com/Task"

		err := RunRequest(ctx, transport, logger, &bytes.Buffer{}, bad, "text")

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		transport.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidMethod", func(t *testing.T) {
		bad := opts
		bad.Method = "GET ME"

		err := RunRequest(ctx, &mocks.MockTransportUseCase{}, logger, &bytes.Buffer{}, bad, "text")

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_InvalidFormat", func(t *testing.T) {
		err := RunRequest(ctx, &mocks.MockTransportUseCase{}, logger, &bytes.Buffer{}, opts, "xml")

		assert.ErrorContains(t, err, "invalid format")
	})

	t.Run("Success_DefaultMethod", func(t *testing.T) {
		transport := &mocks.MockTransportUseCase{}
		transport.On("Do", ctx, mock.MatchedBy(func(req *http.Request) bool {
			return req.Method == http.MethodGet && req.URL.String() == "https://erp.example.com/metadata"
		})).Return(newResponse(http.StatusOK, ""), nil)

		err := RunRequest(ctx, transport, logger, &bytes.Buffer{}, RequestOptions{
			UpstreamURL: "https://erp.example.com",
			Path:        "/metadata",
		}, "text")

		require.NoError(t, err)
		transport.AssertExpectations(t)
	})

	t.Run("Success_UpstreamErrorPassThrough", func(t *testing.T) {
		transport := &mocks.MockTransportUseCase{}
		transport.On("Do", ctx, mock.Anything).Return(newResponse(http.StatusForbidden, "denied"), nil)

		var out bytes.Buffer
		err := RunRequest(ctx, transport, logger, &out, opts, "text")

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out.String(), "403 Forbidden\n"))
	})

}
