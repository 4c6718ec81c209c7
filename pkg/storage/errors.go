package storage

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// integrityViolationClass is the SQLSTATE class for integrity constraint
// violations (unique, foreign key, not null, check).
const integrityViolationClass pq.ErrorClass = "23"

// IsConstraintViolation reports whether err is the driver rejecting a write
// because it would break a schema constraint, e.g. a duplicate api_key or an
// order pointing at a missing product.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == integrityViolationClass
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}

	return false
}
