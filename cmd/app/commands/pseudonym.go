package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	vauUseCase "github.com/allisson/vau/internal/vau/usecase"
)

// RunShowPseudonym prints the user pseudonym the next request will be routed with.
func RunShowPseudonym(
	ctx context.Context,
	transport vauUseCase.TransportUseCase,
	out io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	pseudonym, err := transport.Pseudonym(ctx)
	if err != nil {
		return fmt.Errorf("failed to load user pseudonym: %w", err)
	}

	if format == "json" {
		return writeJSON(out, map[string]string{"pseudonym": pseudonym})
	}

	_, _ = fmt.Fprintln(out, pseudonym)
	return nil
}

// RunResetPseudonym forgets the stored pseudonym so the next request is routed with "0".
func RunResetPseudonym(
	ctx context.Context,
	transport vauUseCase.TransportUseCase,
	logger *slog.Logger,
	out io.Writer,
) error {
	if err := transport.ResetPseudonym(ctx); err != nil {
		return fmt.Errorf("failed to reset user pseudonym: %w", err)
	}

	logger.Info("user pseudonym reset")
	_, _ = fmt.Fprintln(out, "User pseudonym reset")
	return nil
}
