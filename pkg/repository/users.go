package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spezi-dev/spezi/pkg/storage"
)

// Users stores customers
type Users struct {
	db *storage.DB
}

// NewUsers creates a user repository
func NewUsers(db *storage.DB) *Users {
	return &Users{db: db}
}

// List returns all users ordered by id
func (r *Users) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM users ORDER BY id")
	if err != nil {
		return nil, wrapErr("list users", err)
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns the user with the given id
func (r *Users) Get(ctx context.Context, id int64) (*User, error) {
	if err := validateID("user", id); err != nil {
		return nil, err
	}

	u := &User{}
	err := r.db.QueryRowContext(ctx, r.db.Rebind("SELECT id, name FROM users WHERE id = ?"), id).
		Scan(&u.ID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr("get user", err)
	}
	return u, nil
}

// Create adds a user. The name is trimmed and must not be blank.
func (r *Users) Create(ctx context.Context, name string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("user name is required")
	}

	u := &User{Name: name}
	err := r.db.QueryRowContext(ctx, r.db.Rebind("INSERT INTO users (name) VALUES (?) RETURNING id"), name).
		Scan(&u.ID)
	if err != nil {
		return nil, wrapErr("create user", err)
	}
	return u, nil
}

// Delete removes a user. Orders referencing the user are not touched; the
// datastore refuses the delete while they exist.
func (r *Users) Delete(ctx context.Context, id int64) error {
	if err := validateID("user", id); err != nil {
		return err
	}
	return execAffecting(ctx, r.db, "delete user", "DELETE FROM users WHERE id = ?", id)
}
