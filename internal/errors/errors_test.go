package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusError struct {
	StatusCode int
}

func (e statusError) Error() string { return fmt.Sprintf("status %d", e.StatusCode) }

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "secure channel", err: Wrap(ErrSecureChannel, "response validation failed"), want: CodeSecureChannel},
		{name: "not found", err: Wrap(ErrNotFound, "user pseudonym not found"), want: CodeNotFound},
		{name: "invalid input", err: Wrapf(ErrInvalidInput, "invalid header %q", "X"), want: CodeInvalidInput},
		{name: "unauthorized", err: Wrap(ErrUnauthorized, "missing bearer token"), want: CodeUnauthorized},
		{name: "secure channel wins over not found", err: fmt.Errorf("%w: %w", ErrNotFound, ErrSecureChannel), want: CodeSecureChannel},
		{name: "plain error", err: errors.New("connection reset"), want: CodeInternal},
		{name: "nil", err: nil, want: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("Success_KeepsChain", func(t *testing.T) {
		wrapped := Wrap(ErrSecureChannel, "crypto error")

		assert.EqualError(t, wrapped, "crypto error: secure channel error")
		assert.True(t, Is(wrapped, ErrSecureChannel))
		assert.False(t, Is(wrapped, ErrInvalidInput))
	})

	t.Run("Success_NilStaysNil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "ignored"))
		assert.NoError(t, Wrapf(nil, "ignored %d", 1))
	})

	t.Run("Success_Formatted", func(t *testing.T) {
		wrapped := Wrapf(ErrNotFound, "pseudonym for %s", "https://erp.example.com")

		assert.EqualError(t, wrapped, "pseudonym for https://erp.example.com: not found")
		assert.ErrorIs(t, wrapped, ErrNotFound)
	})
}

func TestAs(t *testing.T) {
	err := Wrap(statusError{StatusCode: 403}, "outer request")

	var target statusError
	assert.True(t, As(err, &target))
	assert.Equal(t, 403, target.StatusCode)
}
