package storage

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS api_users (
		id            BIGSERIAL PRIMARY KEY,
		api_key       TEXT NOT NULL UNIQUE,
		is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
		description   TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		last_login_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id    BIGSERIAL PRIMARY KEY,
		name  TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id         BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL REFERENCES products(id),
		user_id    BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_api_users_is_admin ON api_users(is_admin)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_product_id ON orders(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,
}

// SQLite only enforces the REFERENCES clauses when the connection was
// opened with _foreign_keys=on.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS api_users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		api_key       TEXT NOT NULL UNIQUE,
		is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
		description   TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMP NOT NULL,
		last_login_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id    INTEGER PRIMARY KEY AUTOINCREMENT,
		name  TEXT NOT NULL,
		price REAL NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL REFERENCES products(id),
		user_id    INTEGER NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_api_users_is_admin ON api_users(is_admin)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_product_id ON orders(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,
}

// Schema returns the DDL statements for the dialect
func Schema(d Dialect) []string {
	if d == SQLite {
		return sqliteSchema
	}
	return postgresSchema
}

// Migrate creates the tables and indexes if they do not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range Schema(db.dialect) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
