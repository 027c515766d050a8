package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"syscall"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"000002_create_orders.up.sql":     {Data: []byte("CREATE TABLE orders (id UUID)")},
		"000001_create_products.up.sql":   {Data: []byte("CREATE TABLE products (id UUID)")},
		"000001_create_products.down.sql": {Data: []byte("DROP TABLE products")},
		"README.md":                       {Data: []byte("notes")},
	}
}

func TestRunMigrations_AppliesPendingInOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("000001_create_products.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("000002_create_orders.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE orders").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("000002_create_orders.up.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = RunMigrations(context.Background(), mock, testMigrations(), discardLogger())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_RollsBackOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("000001_create_products.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE products").
		WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = RunMigrations(context.Background(), mock, testMigrations(), discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000001_create_products.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_TrackingTableFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnError(errors.New("permission denied for schema public"))

	err = RunMigrations(context.Background(), mock, testMigrations(), discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema_migrations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetryable(t *testing.T) {
	assert.False(t, retryable(nil))
	assert.False(t, retryable(errors.New("syntax error at or near")))
	assert.False(t, retryable(&pgconn.PgError{Code: "42601"}))
	assert.True(t, retryable(fmt.Errorf("check migration: %w", io.ErrUnexpectedEOF)))
	assert.True(t, retryable(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}))
}
