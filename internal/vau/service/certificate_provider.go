package service

import (
	"context"
	"fmt"
	"os"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// FileCertificateProvider serves a VAU certificate loaded once from disk.
type FileCertificateProvider struct {
	certificate *vauDomain.Certificate
}

// NewFileCertificateProvider reads and decodes the PEM or DER file at path.
func NewFileCertificateProvider(path string, decoder CertificateDecoder) (*FileCertificateProvider, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("%w: read certificate file: %v", vauDomain.ErrCertificateDecoding, err)
	}

	certificate, err := decoder.Decode(data)
	if err != nil {
		return nil, err
	}

	return &FileCertificateProvider{certificate: certificate}, nil
}

// Certificate returns the decoded certificate.
func (f *FileCertificateProvider) Certificate(ctx context.Context) (*vauDomain.Certificate, error) {
	return f.certificate, nil
}
