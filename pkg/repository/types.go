package repository

import (
	"time"

	"github.com/spezi-dev/spezi/pkg/filter"
)

// APIUser is a registered API key
type APIUser struct {
	ID          int64      `json:"id"`
	Key         string     `json:"key"`
	IsAdmin     bool       `json:"isAdmin"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

// User is a customer placing orders
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is something that can be ordered
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Order links a user to a product
type Order struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewAPIUser holds the fields of a key to register
type NewAPIUser struct {
	Key         string
	IsAdmin     bool
	Description string
}

// APIUserUpdate holds the fields to change; unset fields are left alone
type APIUserUpdate struct {
	IsAdmin     filter.Optional[bool]
	Description filter.Optional[string]
}

// IsEmpty reports whether the update changes nothing
func (u APIUserUpdate) IsEmpty() bool {
	return !u.IsAdmin.IsSet() && !u.Description.IsSet()
}

// APIUserFilter narrows an API user listing
type APIUserFilter struct {
	IsAdmin         filter.Optional[bool]
	CreatedBefore   filter.Optional[time.Time]
	CreatedAfter    filter.Optional[time.Time]
	LastLoginBefore filter.Optional[time.Time]
	LastLoginAfter  filter.Optional[time.Time]
}

// Predicate translates the filter into a WHERE predicate
func (f APIUserFilter) Predicate() filter.Predicate {
	return filter.Where(
		filter.Equal("is_admin", f.IsAdmin),
		filter.AtOrBefore("created_at", f.CreatedBefore),
		filter.AtOrAfter("created_at", f.CreatedAfter),
		filter.AtOrBefore("last_login_at", f.LastLoginBefore),
		filter.AtOrAfter("last_login_at", f.LastLoginAfter),
	)
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	UserID    filter.Optional[int64]
	ProductID filter.Optional[int64]
	Before    filter.Optional[time.Time]
	After     filter.Optional[time.Time]
}

// Predicate translates the filter into a WHERE predicate
func (f OrderFilter) Predicate() filter.Predicate {
	return filter.Where(
		filter.Equal("user_id", f.UserID),
		filter.Equal("product_id", f.ProductID),
		filter.AtOrBefore("created_at", f.Before),
		filter.AtOrAfter("created_at", f.After),
	)
}
