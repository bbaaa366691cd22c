package dbx

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (sqlmock.Sqlmock, func(fn func(ctx context.Context, tx DBTX) error) error) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, func(fn func(ctx context.Context, tx DBTX) error) error {
		return WithTx(context.Background(), db, nil, fn)
	}
}

func TestWithTx_ErrorTriggersRollbackNotCommit(t *testing.T) {
	mock, run := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO kv`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	err := run(func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO kv(k, v) VALUES ('a', '1')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_CommitFailureIsReturned(t *testing.T) {
	mock, run := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	err := run(func(ctx context.Context, tx DBTX) error { return nil })
	require.EqualError(t, err, "commit failed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackErrorDoesNotMaskCause(t *testing.T) {
	mock, run := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("rollback failed"))

	err := run(func(ctx context.Context, tx DBTX) error { return errors.New("boom") })
	require.EqualError(t, err, "boom")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_PanicRollsBack(t *testing.T) {
	mock, run := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	require.PanicsWithValue(t, "kaput", func() {
		_ = run(func(ctx context.Context, tx DBTX) error { panic("kaput") })
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginFailure(t *testing.T) {
	mock, run := newMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	called := false
	err := run(func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.EqualError(t, err, "no connection")
	require.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}
