package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spezi-dev/spezi/pkg/storage"
)

// Products stores the catalogue
type Products struct {
	db *storage.DB
}

// NewProducts creates a product repository
func NewProducts(db *storage.DB) *Products {
	return &Products{db: db}
}

// List returns all products ordered by id
func (r *Products) List(ctx context.Context) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, price FROM products ORDER BY id")
	if err != nil {
		return nil, wrapErr("list products", err)
	}
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		p := &Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get returns the product with the given id
func (r *Products) Get(ctx context.Context, id int64) (*Product, error) {
	if err := validateID("product", id); err != nil {
		return nil, err
	}

	p := &Product{}
	err := r.db.QueryRowContext(ctx, r.db.Rebind("SELECT id, name, price FROM products WHERE id = ?"), id).
		Scan(&p.ID, &p.Name, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr("get product", err)
	}
	return p, nil
}

// Create adds a product. The price is stored as given; only NaN and
// infinities are refused.
func (r *Products) Create(ctx context.Context, name string, price float64) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("product name is required")
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, invalidArgument("product price must be a finite number")
	}

	p := &Product{Name: name, Price: price}
	err := r.db.QueryRowContext(ctx,
		r.db.Rebind("INSERT INTO products (name, price) VALUES (?, ?) RETURNING id"), name, price).
		Scan(&p.ID)
	if err != nil {
		return nil, wrapErr("create product", err)
	}
	return p, nil
}

// Delete removes a product
func (r *Products) Delete(ctx context.Context, id int64) error {
	if err := validateID("product", id); err != nil {
		return err
	}
	return execAffecting(ctx, r.db, "delete product", "DELETE FROM products WHERE id = ?", id)
}
