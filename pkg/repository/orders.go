package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spezi-dev/spezi/pkg/storage"
)

const orderColumns = "id, product_id, user_id, created_at"

// Orders stores orders
type Orders struct {
	db  *storage.DB
	now func() time.Time
}

// NewOrders creates an order repository
func NewOrders(db *storage.DB) *Orders {
	return &Orders{db: db, now: utcNow}
}

// List returns the orders matching f, ordered by id
func (r *Orders) List(ctx context.Context, f OrderFilter) ([]*Order, error) {
	where, args := f.Predicate().SQL()
	query := "SELECT " + orderColumns + " FROM orders" + where + " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, wrapErr("list orders", err)
	}
	defer rows.Close()

	orders := make([]*Order, 0)
	for rows.Next() {
		o := &Order{}
		if err := rows.Scan(&o.ID, &o.ProductID, &o.UserID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get returns the order with the given id
func (r *Orders) Get(ctx context.Context, id int64) (*Order, error) {
	if err := validateID("order", id); err != nil {
		return nil, err
	}

	o := &Order{}
	err := r.db.QueryRowContext(ctx, r.db.Rebind("SELECT "+orderColumns+" FROM orders WHERE id = ?"), id).
		Scan(&o.ID, &o.ProductID, &o.UserID, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr("get order", err)
	}
	return o, nil
}

// Create places an order. Existence of the product and user is checked by
// the datastore's foreign keys; a violation is returned as ErrConflict.
func (r *Orders) Create(ctx context.Context, productID, userID int64) (*Order, error) {
	if err := validateID("product", productID); err != nil {
		return nil, err
	}
	if err := validateID("user", userID); err != nil {
		return nil, err
	}

	o := &Order{ProductID: productID, UserID: userID, CreatedAt: r.now()}
	query := `INSERT INTO orders (product_id, user_id, created_at)
		VALUES (?, ?, ?)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), o.ProductID, o.UserID, o.CreatedAt).Scan(&o.ID)
	if err != nil {
		return nil, wrapErr("create order", err)
	}
	return o, nil
}

// Delete removes an order
func (r *Orders) Delete(ctx context.Context, id int64) error {
	if err := validateID("order", id); err != nil {
		return err
	}
	return execAffecting(ctx, r.db, "delete order", "DELETE FROM orders WHERE id = ?", id)
}
