package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/spezi-dev/spezi/pkg/storage"
)

// Repositories bundles the entity repositories sharing one pool
type Repositories struct {
	APIUsers *APIUsers
	Users    *Users
	Products *Products
	Orders   *Orders
}

// New creates all repositories on db
func New(db *storage.DB) *Repositories {
	return &Repositories{
		APIUsers: NewAPIUsers(db),
		Users:    NewUsers(db),
		Products: NewProducts(db),
		Orders:   NewOrders(db),
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// execAffecting runs a write and reports ErrNotFound when it touched no row.
func execAffecting(ctx context.Context, db *storage.DB, op, query string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return wrapErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
