package repository

import (
	"context"
	"encoding/base64"

	apperrors "github.com/allisson/vau/internal/errors"
	vauDomain "github.com/allisson/vau/internal/vau/domain"
	vauService "github.com/allisson/vau/internal/vau/service"
	"github.com/allisson/vau/internal/vau/usecase"
)

// EncryptedPseudonymRepository encrypts pseudonym values with a KMS keeper before they
// reach the underlying store. Stored values are base64 encoded ciphertext.
type EncryptedPseudonymRepository struct {
	next   usecase.PseudonymRepository
	keeper vauService.KMSKeeper
}

// NewEncryptedPseudonymRepository wraps next with at-rest encryption.
func NewEncryptedPseudonymRepository(
	next usecase.PseudonymRepository,
	keeper vauService.KMSKeeper,
) *EncryptedPseudonymRepository {
	return &EncryptedPseudonymRepository{next: next, keeper: keeper}
}

// Get loads and decrypts the pseudonym stored for key.
func (e *EncryptedPseudonymRepository) Get(ctx context.Context, key string) (*vauDomain.UserPseudonym, error) {
	pseudonym, err := e.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(pseudonym.Value)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decode encrypted user pseudonym")
	}

	plaintext, err := e.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt user pseudonym")
	}

	pseudonym.Value = string(plaintext)
	return pseudonym, nil
}

// Upsert encrypts the pseudonym value and stores it.
func (e *EncryptedPseudonymRepository) Upsert(ctx context.Context, pseudonym *vauDomain.UserPseudonym) error {
	ciphertext, err := e.keeper.Encrypt(ctx, []byte(pseudonym.Value))
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt user pseudonym")
	}

	encrypted := *pseudonym
	encrypted.Value = base64.StdEncoding.EncodeToString(ciphertext)
	return e.next.Upsert(ctx, &encrypted)
}

// Delete removes the pseudonym stored for key.
func (e *EncryptedPseudonymRepository) Delete(ctx context.Context, key string) error {
	return e.next.Delete(ctx, key)
}
