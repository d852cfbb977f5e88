package commands

import (
	"context"
	"fmt"
	"io"

	vauUseCase "github.com/allisson/vau/internal/vau/usecase"
)

// RunShowCertificate prints the fingerprint of the VAU encryption certificate.
func RunShowCertificate(
	ctx context.Context,
	provider vauUseCase.CertificateProvider,
	out io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	certificate, err := provider.Certificate(ctx)
	if err != nil {
		return fmt.Errorf("failed to load vau certificate: %w", err)
	}

	curve := certificate.PublicKey.Curve.Params().Name

	if format == "json" {
		return writeJSON(out, map[string]string{
			"curve":       curve,
			"fingerprint": certificate.Fingerprint(),
		})
	}

	_, _ = fmt.Fprintf(out, "Curve: %s\nFingerprint: %s\n", curve, certificate.Fingerprint())
	return nil
}
