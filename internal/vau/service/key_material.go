package service

import (
	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

type randomKeyMaterial struct {
	random RandomSource
}

// NewKeyMaterialGenerator returns a KeyMaterialGenerator backed by random.
func NewKeyMaterialGenerator(random RandomSource) KeyMaterialGenerator {
	return &randomKeyMaterial{random: random}
}

// RequestID returns 16 random bytes as lowercase hex.
func (r *randomKeyMaterial) RequestID() (vauDomain.RequestID, error) {
	raw, err := r.random.Generate(vauDomain.RequestIDSize)
	if err != nil {
		return "", err
	}
	return vauDomain.NewRequestID(raw)
}

// SymmetricKey returns a fresh AES-128 key.
func (r *randomKeyMaterial) SymmetricKey() ([]byte, error) {
	return r.random.Generate(vauDomain.SymmetricKeySize)
}
