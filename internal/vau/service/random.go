package service

import (
	"crypto/rand"
	"fmt"
	"io"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

type cryptoRandomSource struct{}

// NewRandomSource returns a RandomSource backed by the platform CSPRNG (crypto/rand).
func NewRandomSource() RandomSource {
	return &cryptoRandomSource{}
}

// Generate reads length bytes from crypto/rand.
func (c *cryptoRandomSource) Generate(length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", vauDomain.ErrRandomGeneration, length)
	}

	b := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("%w: %v", vauDomain.ErrRandomGeneration, err)
	}
	return b, nil
}

type randomReader struct {
	source RandomSource
}

// Reader adapts a RandomSource to io.Reader so it can feed key generation.
func Reader(source RandomSource) io.Reader {
	return &randomReader{source: source}
}

func (r *randomReader) Read(p []byte) (int, error) {
	b, err := r.source.Generate(len(p))
	if err != nil {
		return 0, err
	}
	if len(b) != len(p) {
		return 0, fmt.Errorf("%w: short read", vauDomain.ErrRandomGeneration)
	}
	return copy(p, b), nil
}
