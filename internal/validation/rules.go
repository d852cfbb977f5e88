// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/vau/internal/errors"
)

var (
	// methodRegex matches an RFC 7230 token used as HTTP method.
	methodRegex = regexp.MustCompile("^[!#$%&'*+.^_`|~0-9A-Za-z-]+$")
	// headerNameRegex matches an RFC 7230 header field name.
	headerNameRegex = regexp.MustCompile("^[!#$%&'*+.^_`|~0-9A-Za-z-]+$")
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// HTTPMethod validates that a string is a syntactically valid HTTP method token.
var HTTPMethod = validation.NewStringRuleWithError(
	func(s string) bool {
		return methodRegex.MatchString(s)
	},
	validation.NewError("validation_http_method", "must be a valid HTTP method"),
)

// HeaderLine validates a "Name: value" header line as accepted on the command line.
var HeaderLine = validation.NewStringRuleWithError(
	func(s string) bool {
		name, _, ok := strings.Cut(s, ":")
		return ok && headerNameRegex.MatchString(strings.TrimSpace(name))
	},
	validation.NewError("validation_header_line", "must be in 'Name: value' format"),
)

// PathOnly validates that a string is an absolute request path without scheme or host.
var PathOnly = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//")
	},
	validation.NewError("validation_path", "must be an absolute path starting with '/'"),
)
