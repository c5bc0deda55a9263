package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		expectIs error
	}{
		{name: "no rows", err: sql.ErrNoRows, expectIs: store.ErrNotFound},
		{
			name:     "username taken",
			err:      &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersUsernameKey},
			expectIs: store.ErrUsernameExists,
		},
		{
			name:     "email taken",
			err:      &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersEmailKey},
			expectIs: store.ErrEmailExists,
		},
		{
			name:     "other unique constraint",
			err:      &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "backing_tracks_link_key"},
			expectIs: store.ErrDuplicate,
		},
		{
			name:     "foreign key",
			err:      &pgconn.PgError{Code: foreignKeyViolationCode},
			expectIs: store.ErrInvalidEntity,
		},
		{
			name:     "check constraint",
			err:      &pgconn.PgError{Code: checkViolationCode},
			expectIs: store.ErrInvalidEntity,
		},
		{
			name:     "not null",
			err:      &pgconn.PgError{Code: notNullViolationCode, ColumnName: "band"},
			expectIs: store.ErrInvalidEntity,
		},
		{name: "unmapped", err: plain, expectIs: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err)
			require.Error(t, mapped)
			assert.ErrorIs(t, mapped, tt.expectIs)
		})
	}

	assert.NoError(t, MapError(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestCheckRowsAffected(t *testing.T) {
	notFound := errors.New("gone")

	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), notFound))
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), notFound), notFound)
	assert.Error(t, CheckRowsAffected(sqlmock.NewErrorResult(errors.New("driver")), notFound))
	assert.Error(t, CheckRowsAffected(nil, notFound))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `metal`, escapeLike("metal"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}
