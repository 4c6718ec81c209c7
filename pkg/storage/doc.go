// Package storage opens the relational datastore behind the spezi API.
//
// # Overview
//
// Two database/sql drivers are supported: PostgreSQL (github.com/lib/pq) for
// deployments and SQLite (github.com/mattn/go-sqlite3) for local runs and
// tests. Queries are written once with '?' placeholders and rebound per
// dialect:
//
//	db, err := storage.Open(ctx, storage.Config{
//		Driver: "sqlite3",
//		DSN:    "file:spezi.db?_foreign_keys=on&_busy_timeout=5000",
//	})
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx); err != nil {
//		return err
//	}
//	row := db.QueryRowContext(ctx, db.Rebind("SELECT name FROM users WHERE id = ?"), id)
//
// # Errors
//
// IsConstraintViolation recognises unique and foreign key violations from
// either driver so repositories can report them uniformly.
//
// # Related Packages
//
//   - pkg/repository: entity repositories on top of DB
//   - pkg/filter: WHERE clause construction
package storage
