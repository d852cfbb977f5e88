package domain

import (
	"encoding/hex"
	"fmt"
)

// RequestID correlates one encrypted request with its encrypted response.
// It is the lowercase hex encoding of 16 random bytes (32 characters).
type RequestID string

// NewRequestID encodes 16 random bytes as a RequestID.
func NewRequestID(raw []byte) (RequestID, error) {
	if len(raw) != RequestIDSize {
		return "", fmt.Errorf("%w: request id needs %d bytes, got %d", ErrInternal, RequestIDSize, len(raw))
	}
	return RequestID(hex.EncodeToString(raw)), nil
}

// String returns the hex representation.
func (r RequestID) String() string {
	return string(r)
}
