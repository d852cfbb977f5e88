package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/allisson/vau/internal/errors"
	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// MySQLPseudonymRepository implements pseudonym persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLPseudonymRepository struct {
	db *sql.DB
}

// NewMySQLPseudonymRepository creates a new MySQL pseudonym repository.
func NewMySQLPseudonymRepository(db *sql.DB) *MySQLPseudonymRepository {
	return &MySQLPseudonymRepository{db: db}
}

// Get retrieves the pseudonym stored for key.
func (m *MySQLPseudonymRepository) Get(ctx context.Context, key string) (*vauDomain.UserPseudonym, error) {
	query := `SELECT id, pseudonym_key, value, created_at, updated_at
			  FROM user_pseudonyms
			  WHERE pseudonym_key = ?`

	var id []byte
	var pseudonym vauDomain.UserPseudonym
	err := m.db.QueryRowContext(ctx, query, key).Scan(
		&id,
		&pseudonym.Key,
		&pseudonym.Value,
		&pseudonym.CreatedAt,
		&pseudonym.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vauDomain.ErrPseudonymNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user pseudonym")
	}

	if err := pseudonym.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user pseudonym id")
	}

	return &pseudonym, nil
}

// Upsert inserts the pseudonym or replaces the value stored for its key.
func (m *MySQLPseudonymRepository) Upsert(ctx context.Context, pseudonym *vauDomain.UserPseudonym) error {
	query := `INSERT INTO user_pseudonyms (id, pseudonym_key, value, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`

	id, err := marshalID(pseudonym.ID)
	if err != nil {
		return err
	}

	_, err = m.db.ExecContext(
		ctx,
		query,
		id,
		pseudonym.Key,
		pseudonym.Value,
		pseudonym.CreatedAt,
		pseudonym.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert user pseudonym")
	}
	return nil
}

// Delete removes the pseudonym stored for key.
func (m *MySQLPseudonymRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM user_pseudonyms WHERE pseudonym_key = ?`

	result, err := m.db.ExecContext(ctx, query, key)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user pseudonym")
	}
	return checkDeleted(result)
}

func marshalID(id uuid.UUID) ([]byte, error) {
	b, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user pseudonym id")
	}
	return b, nil
}
