package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/spezi-dev/spezi/pkg/auth"
	"github.com/spezi-dev/spezi/pkg/storage"
)

// setupTestDB opens a migrated SQLite database in a temp dir
func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filepath.Join(t.TempDir(), "repo.db"))
	db, err := storage.Open(context.Background(), storage.Config{Driver: "sqlite3", DSN: dsn, Timeout: 5 * time.Second})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

// setupMockDB returns a postgres-dialect DB backed by sqlmock
func setupMockDB(t *testing.T) (*storage.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return storage.New(sqlDB, storage.Postgres), mock
}

// fixedClock returns a clock that yields the given instants in order and
// then keeps returning the last one
func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func mustCreateAPIUser(t *testing.T, r *APIUsers, isAdmin bool) *APIUser {
	t.Helper()
	u, err := r.Create(context.Background(), NewAPIUser{Key: auth.GenerateKey(), IsAdmin: isAdmin})
	require.NoError(t, err)
	return u
}
