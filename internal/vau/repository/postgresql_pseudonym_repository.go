package repository

import (
	"context"
	"database/sql"
	"errors"

	apperrors "github.com/allisson/vau/internal/errors"
	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// PostgreSQLPseudonymRepository implements pseudonym persistence for PostgreSQL.
type PostgreSQLPseudonymRepository struct {
	db *sql.DB
}

// NewPostgreSQLPseudonymRepository creates a new PostgreSQL pseudonym repository.
func NewPostgreSQLPseudonymRepository(db *sql.DB) *PostgreSQLPseudonymRepository {
	return &PostgreSQLPseudonymRepository{db: db}
}

// Get retrieves the pseudonym stored for key.
func (p *PostgreSQLPseudonymRepository) Get(ctx context.Context, key string) (*vauDomain.UserPseudonym, error) {
	query := `SELECT id, pseudonym_key, value, created_at, updated_at
			  FROM user_pseudonyms
			  WHERE pseudonym_key = $1`

	var pseudonym vauDomain.UserPseudonym
	err := p.db.QueryRowContext(ctx, query, key).Scan(
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
func (p *PostgreSQLPseudonymRepository) Upsert(ctx context.Context, pseudonym *vauDomain.UserPseudonym) error {
	query := `INSERT INTO user_pseudonyms (id, pseudonym_key, value, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (pseudonym_key)
			  DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	_, err := p.db.ExecContext(
		ctx,
		query,
		pseudonym.ID,
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
func (p *PostgreSQLPseudonymRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM user_pseudonyms WHERE pseudonym_key = $1`

	result, err := p.db.ExecContext(ctx, query, key)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user pseudonym")
	}
	return checkDeleted(result)
}

func checkDeleted(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return vauDomain.ErrPseudonymNotFound
	}
	return nil
}
