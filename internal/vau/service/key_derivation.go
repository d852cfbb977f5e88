package service

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

type hkdfKeyDeriver struct{}

// NewKeyDeriver returns a KeyDeriver using HKDF-SHA256 with an empty salt.
func NewKeyDeriver() KeyDeriver {
	return &hkdfKeyDeriver{}
}

// DeriveKey expands sharedSecret into length bytes bound to info.
func (h *hkdfKeyDeriver) DeriveKey(sharedSecret []byte, info string, length int) ([]byte, error) {
	if len(sharedSecret) == 0 {
		return nil, fmt.Errorf("%w: empty shared secret", vauDomain.ErrCrypto)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: invalid derived key length %d", vauDomain.ErrCrypto, length)
	}

	reader := hkdf.New(sha256.New, sharedSecret, nil, []byte(info))

	key := make([]byte, length)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("%w: hkdf: %v", vauDomain.ErrCrypto, err)
	}
	return key, nil
}
