package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return newPostgresStoreWithPool(mock), mock
}

func TestPostgresCreateWork(t *testing.T) {
	s, mock := newMockStore(t)
	work := sampleWork("Folio")

	mock.ExpectExec(`INSERT INTO works`).
		WithArgs(
			pgxmock.AnyArg(), "Folio", "Web App", "A description", "Design\nBuild",
			work.Image, "image/png", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.CreateWork(context.Background(), work))
	assert.NotEqual(t, uuid.Nil, work.ID)
	assert.False(t, work.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetWorkNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM works WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	work, err := s.GetWork(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, work)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteWork(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM works WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM works WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, s.DeleteWork(context.Background(), id))
	assert.ErrorIs(t, s.DeleteWork(context.Background(), id), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateWorkPropagatesError(t *testing.T) {
	s, mock := newMockStore(t)
	work := sampleWork("Folio")
	work.ID = uuid.New()
	boom := errors.New("connection lost")

	mock.ExpectExec(`UPDATE works`).WithAnyArgs().WillReturnError(boom)

	assert.ErrorIs(t, s.UpdateWork(context.Background(), work), boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCountWorks(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM works`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4)))

	count, err := s.CountWorks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetAdmin(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, password_hash, created_at FROM admins WHERE id = \$1`).
		WithArgs("admin").
		WillReturnRows(pgxmock.NewRows([]string{"id", "password_hash", "created_at"}).
			AddRow("admin", "hash", created))

	admin, err := s.GetAdmin(context.Background(), "admin")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, "hash", admin.PasswordHash)
	assert.Equal(t, created, admin.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateAdminPasswordMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE admins SET password_hash`).
		WithArgs("nobody", "hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, s.UpdateAdminPassword(context.Background(), "nobody", "hash"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
