package repository

import (
	"context"
	"database/sql"
	"errors"

	apperrors "github.com/allisson/vau/internal/errors"
	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// SQLitePseudonymRepository implements pseudonym persistence for an embedded SQLite file,
// the default durable store for single-host deployments.
type SQLitePseudonymRepository struct {
	db *sql.DB
}

// NewSQLitePseudonymRepository creates a new SQLite pseudonym repository.
func NewSQLitePseudonymRepository(db *sql.DB) *SQLitePseudonymRepository {
	return &SQLitePseudonymRepository{db: db}
}

// Get retrieves the pseudonym stored for key.
func (s *SQLitePseudonymRepository) Get(ctx context.Context, key string) (*vauDomain.UserPseudonym, error) {
	query := `SELECT id, pseudonym_key, value, created_at, updated_at
			  FROM user_pseudonyms
			  WHERE pseudonym_key = ?`

	var pseudonym vauDomain.UserPseudonym
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&pseudonym.ID,
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

	return &pseudonym, nil
}

// Upsert inserts the pseudonym or replaces the value stored for its key.
func (s *SQLitePseudonymRepository) Upsert(ctx context.Context, pseudonym *vauDomain.UserPseudonym) error {
	query := `INSERT INTO user_pseudonyms (id, pseudonym_key, value, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON CONFLICT (pseudonym_key)
			  DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(
		ctx,
		query,
		pseudonym.ID.String(),
		pseudonym.Key,
		pseudonym.Value,
		pseudonym.CreatedAt.UTC(),
		pseudonym.UpdatedAt.UTC(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert user pseudonym")
	}
	return nil
}

// Delete removes the pseudonym stored for key.
func (s *SQLitePseudonymRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM user_pseudonyms WHERE pseudonym_key = ?`

	result, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user pseudonym")
	}
	return checkDeleted(result)
}
