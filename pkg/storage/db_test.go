package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filepath.Join(t.TempDir(), "spezi.db"))
	db, err := Open(context.Background(), Config{Driver: "sqlite3", DSN: dsn, Timeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	assert.Equal(t, SQLite, db.Dialect())
	require.NoError(t, db.Migrate(ctx))
	// Migrations are idempotent
	require.NoError(t, db.Migrate(ctx))

	for _, table := range []string{"api_users", "users", "products", "orders"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, Config{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)

	_, err = Open(ctx, Config{Driver: "sqlite3"})
	assert.EqualError(t, err, "database DSN is required")
}

func TestIsConstraintViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"pq unique violation", &pq.Error{Code: "23505"}, true},
		{"pq foreign key violation", &pq.Error{Code: "23503"}, true},
		{"pq wrapped", fmt.Errorf("insert: %w", &pq.Error{Code: "23503"}), true},
		{"pq syntax error", &pq.Error{Code: "42601"}, false},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, true},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsConstraintViolation(tt.err))
		})
	}
}

func TestIsConstraintViolation_RealSQLite(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))

	// Order referencing rows that do not exist
	_, err := db.ExecContext(ctx,
		"INSERT INTO orders (product_id, user_id, created_at) VALUES (?, ?, ?)", 99, 99, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))

	// Duplicate key
	insert := "INSERT INTO api_users (api_key, is_admin, description, created_at) VALUES (?, ?, ?, ?)"
	_, err = db.ExecContext(ctx, insert, "k", true, "", time.Now().UTC())
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, "k", false, "", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))
}

func TestHealthCheck(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db := New(sqlDB, Postgres)

	mock.ExpectPing()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM api_users`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	assert.NoError(t, db.HealthCheck(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = db.HealthCheck(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database unhealthy")

	mock.ExpectPing()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM api_users`).WillReturnError(errors.New(`relation "api_users" does not exist`))
	err = db.HealthCheck(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "schema not migrated")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_SQLite(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	assert.Error(t, db.HealthCheck(ctx), "tables are missing before Migrate")
	require.NoError(t, db.Migrate(ctx))
	assert.NoError(t, db.HealthCheck(ctx))
}
