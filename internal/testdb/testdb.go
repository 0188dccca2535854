// Package testdb opens migrated databases for tests.
//
// By default each call gets a private SQLite file under t.TempDir(). When
// TUTOR_TEST_DATABASE_URL is set the tests run against that Postgres
// database instead; tests sharing it must isolate themselves by using
// fresh user and document IDs.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/scry-tutor/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds opening and migrating a test database.
const TestTimeout = 10 * time.Second

// PostgresURLEnv names the variable that switches tests to Postgres.
const PostgresURLEnv = "TUTOR_TEST_DATABASE_URL"

// PostgresURL returns the configured Postgres test database, or "".
func PostgresURL() string {
	return os.Getenv(PostgresURLEnv)
}

// Open returns a migrated database and its dialect. The database is closed
// when the test finishes.
func Open(t *testing.T) (*sql.DB, sqlstore.Dialect) {
	t.Helper()

	dialect, dsn := sqlstore.DialectSQLite, filepath.Join(t.TempDir(), "tutor.db")
	if url := PostgresURL(); url != "" {
		dialect, dsn = sqlstore.DialectPostgres, url
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlstore.Open(ctx, dialect, dsn)
	require.NoError(t, err, "failed to open %s test database", dialect)
	t.Cleanup(func() { _ = db.Close() })

	_, err = sqlstore.Migrate(ctx, db, dialect, nil)
	require.NoError(t, err, "failed to migrate test database")
	return db, dialect
}

// WithTx runs fn inside a transaction that is always rolled back, so the
// test leaves no rows behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
