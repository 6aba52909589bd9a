package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNCarriesLockWaitTimeout(t *testing.T) {
	dsn := Options{User: "app", Pass: "p@ss", Host: "db", Port: "3306", Name: "tickets", LockWaitSec: 5}.DSN()
	assert.Contains(t, dsn, "app:p@ss@tcp(db:3306)/tickets?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "innodb_lock_wait_timeout=5")

	dsn = Options{User: "app", Host: "db", Port: "3306", Name: "tickets"}.DSN()
	assert.NotContains(t, dsn, "innodb_lock_wait_timeout")
}

func TestInTxCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_classes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewTransactor(db).InTx(context.Background(), func(tx DBTX) error {
		_, err := tx.ExecContext(context.Background(), "UPDATE seat_classes SET remaining_quantity = 1")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = NewTransactor(db).InTx(context.Background(), func(DBTX) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxCommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("gone"))

	err = NewTransactor(db).InTx(context.Background(), func(DBTX) error { return nil })
	assert.ErrorContains(t, err, "commit")
}
