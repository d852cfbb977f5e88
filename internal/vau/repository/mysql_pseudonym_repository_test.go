package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

func TestMySQLPseudonymRepository_Get(t *testing.T) {
	ctx := context.Background()
	selectQuery := regexp.QuoteMeta("FROM user_pseudonyms")

	t.Run("Success_Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLPseudonymRepository(db)
		expected := newPseudonym("https://erp.example.com", "abc")
		id, err := expected.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectQuery(selectQuery).
			WithArgs(expected.Key).
			WillReturnRows(sqlmock.NewRows(pseudonymColumns).AddRow(
				id, expected.Key, expected.Value, expected.CreatedAt, expected.UpdatedAt,
			))

		pseudonym, err := repo.Get(ctx, expected.Key)
		require.NoError(t, err)
		assert.Equal(t, expected, pseudonym)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLPseudonymRepository(db)

		mock.ExpectQuery(selectQuery).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(pseudonymColumns))

		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, vauDomain.ErrPseudonymNotFound)
	})

	t.Run("Error_MalformedID", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLPseudonymRepository(db)
		expected := newPseudonym("key", "abc")

		mock.ExpectQuery(selectQuery).
			WithArgs(expected.Key).
			WillReturnRows(sqlmock.NewRows(pseudonymColumns).AddRow(
				[]byte{0x01, 0x02}, expected.Key, expected.Value, expected.CreatedAt, expected.UpdatedAt,
			))

		_, err := repo.Get(ctx, expected.Key)
		assert.ErrorContains(t, err, "failed to unmarshal user pseudonym id")
	})
}

func TestMySQLPseudonymRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	upsertQuery := regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLPseudonymRepository(db)
		pseudonym := newPseudonym("key", "abc")
		id, err := pseudonym.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectExec(upsertQuery).
			WithArgs(id, pseudonym.Key, pseudonym.Value, pseudonym.CreatedAt, pseudonym.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Upsert(ctx, pseudonym))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_Exec", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLPseudonymRepository(db)

		mock.ExpectExec(upsertQuery).WillReturnError(errors.New("deadlock"))

		assert.Error(t, repo.Upsert(ctx, newPseudonym("key", "abc")))
	})
}

func TestMySQLPseudonymRepository_Delete(t *testing.T) {
	ctx := context.Background()
	deleteQuery := regexp.QuoteMeta("DELETE FROM user_pseudonyms WHERE pseudonym_key = ?")

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLPseudonymRepository(db)

		mock.ExpectExec(deleteQuery).WithArgs("key").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(ctx, "key"))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLPseudonymRepository(db)

		mock.ExpectExec(deleteQuery).WithArgs("key").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, "key"), vauDomain.ErrPseudonymNotFound)
	})
}
