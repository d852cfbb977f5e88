package domain

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// UserPseudonym is the server-issued session correlator stored between requests.
//
// Key namespaces the value, normally by VAU server URL, so one store can serve several
// VAU endpoints. The VAU server is the only source of new values; the last write wins.
type UserPseudonym struct {
	ID        uuid.UUID
	Key       string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidatePseudonymValue accepts only values that stay a single segment of the
// {server}/VAU/{pseudonym} path: no separators, no dot segments, nothing to escape.
func ValidatePseudonymValue(value string) error {
	if value == "" || value == "." || value == ".." || url.PathEscape(value) != value {
		return fmt.Errorf("%w: user pseudonym is not a plain path segment", ErrResponseValidation)
	}
	return nil
}
