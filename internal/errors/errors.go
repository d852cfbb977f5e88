// Package errors holds the sentinel errors shared by the VAU client layers.
// Domain packages wrap them; the proxy and the CLI classify failures with Code.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSecureChannel is the umbrella for every failure of the VAU secure channel.
	// Callers outside the client only ever see it as a generic "secure channel error".
	ErrSecureChannel = errors.New("secure channel error")
)

// Stable machine readable codes, in match order.
const (
	CodeSecureChannel = "secure_channel_error"
	CodeNotFound      = "not_found"
	CodeInvalidInput  = "invalid_input"
	CodeUnauthorized  = "unauthorized"
	CodeInternal      = "internal_error"
)

var codes = []struct {
	sentinel error
	code     string
}{
	{ErrSecureChannel, CodeSecureChannel},
	{ErrNotFound, CodeNotFound},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrUnauthorized, CodeUnauthorized},
}

// Code returns the code of the first sentinel found in err's chain, or CodeInternal.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return CodeInternal
}

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
