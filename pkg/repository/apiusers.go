package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spezi-dev/spezi/pkg/auth"
	"github.com/spezi-dev/spezi/pkg/storage"
)

const apiUserColumns = "id, api_key, is_admin, description, created_at, last_login_at"

// APIUsers stores registered API keys
type APIUsers struct {
	db  *storage.DB
	now func() time.Time
}

// NewAPIUsers creates an API user repository
func NewAPIUsers(db *storage.DB) *APIUsers {
	return &APIUsers{db: db, now: utcNow}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAPIUser(row rowScanner) (*APIUser, error) {
	u := &APIUser{}
	var lastLogin sql.NullTime
	if err := row.Scan(&u.ID, &u.Key, &u.IsAdmin, &u.Description, &u.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

// List returns the API users matching f, ordered by id
func (r *APIUsers) List(ctx context.Context, f APIUserFilter) ([]*APIUser, error) {
	where, args := f.Predicate().SQL()
	query := "SELECT " + apiUserColumns + " FROM api_users" + where + " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, wrapErr("list api users", err)
	}
	defer rows.Close()

	users := make([]*APIUser, 0)
	for rows.Next() {
		u, err := scanAPIUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list api users: %w", err)
	}
	return users, nil
}

// Get returns the API user owning key
func (r *APIUsers) Get(ctx context.Context, key string) (*APIUser, error) {
	if key == "" {
		return nil, invalidArgument("api key is required")
	}

	query := "SELECT " + apiUserColumns + " FROM api_users WHERE api_key = ?"
	u, err := scanAPIUser(r.db.QueryRowContext(ctx, r.db.Rebind(query), key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get api user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr("get api user", err)
	}
	return u, nil
}

// Create registers a new API key
func (r *APIUsers) Create(ctx context.Context, in NewAPIUser) (*APIUser, error) {
	if !auth.ValidateKey(in.Key) {
		return nil, invalidArgument("malformed api key")
	}

	u := &APIUser{
		Key:         in.Key,
		IsAdmin:     in.IsAdmin,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   r.now(),
	}

	query := `INSERT INTO api_users (api_key, is_admin, description, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), u.Key, u.IsAdmin, u.Description, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return nil, wrapErr("create api user", err)
	}
	return u, nil
}

// Update changes the admin flag and/or description of key. Fields left
// unset in upd keep their stored value.
func (r *APIUsers) Update(ctx context.Context, key string, upd APIUserUpdate) (*APIUser, error) {
	if key == "" {
		return nil, invalidArgument("api key is required")
	}
	if upd.IsEmpty() {
		return r.Get(ctx, key)
	}

	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if isAdmin, ok := upd.IsAdmin.Get(); ok {
		sets = append(sets, "is_admin = ?")
		args = append(args, isAdmin)
	}
	if desc, ok := upd.Description.Get(); ok {
		sets = append(sets, "description = ?")
		args = append(args, strings.TrimSpace(desc))
	}
	args = append(args, key)

	query := "UPDATE api_users SET " + strings.Join(sets, ", ") + " WHERE api_key = ?"
	if err := execAffecting(ctx, r.db, "update api user", query, args...); err != nil {
		return nil, err
	}
	return r.Get(ctx, key)
}

// Delete removes key
func (r *APIUsers) Delete(ctx context.Context, key string) error {
	if key == "" {
		return invalidArgument("api key is required")
	}
	return execAffecting(ctx, r.db, "delete api user", "DELETE FROM api_users WHERE api_key = ?", key)
}

// TouchLastLogin records a successful authentication of key at the given
// time. Concurrent touches of the same key are last-write-wins.
func (r *APIUsers) TouchLastLogin(ctx context.Context, key string, at time.Time) error {
	return execAffecting(ctx, r.db, "update last login",
		"UPDATE api_users SET last_login_at = ? WHERE api_key = ?", at.UTC(), key)
}

// IsRegistered reports whether key exists
func (r *APIUsers) IsRegistered(ctx context.Context, key string) (bool, error) {
	_, err := r.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsAdmin reports whether key exists and carries the admin flag
func (r *APIUsers) IsAdmin(ctx context.Context, key string) (bool, error) {
	u, err := r.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsAdmin, nil
}
