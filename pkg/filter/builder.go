// Package filter translates optional listing predicates into SQL WHERE
// fragments.
//
// Every predicate is built from an Optional; an unset Optional contributes
// nothing, so an empty filter matches every row. Timestamp bounds are
// inclusive and independent of each other:
//
//	pred := filter.Where(
//		filter.Equal("user_id", f.UserID),
//		filter.AtOrAfter("created_at", f.After),
//		filter.AtOrBefore("created_at", f.Before),
//	)
//	where, args := pred.SQL()
//	rows, err := db.QueryContext(ctx, "SELECT ... FROM orders"+where, args...)
//
// The builder does not validate values. A lower bound after the upper bound
// is not an error; the query simply returns no rows.
//
// Placeholders are rendered as '?'; callers targeting PostgreSQL rebind
// them with storage.Dialect.
package filter

import (
	"strings"
	"time"
)

// Op is a comparison operator.
type Op string

const (
	OpEqual      Op = "="
	OpAtOrBefore Op = "<="
	OpAtOrAfter  Op = ">="
)

// Clause is a single column comparison. The zero Clause is empty and is
// skipped by Where.
type Clause struct {
	Column string
	Op     Op
	Value  interface{}
}

// IsEmpty reports whether the clause constrains nothing.
func (c Clause) IsEmpty() bool {
	return c.Column == ""
}

// Equal constrains column to equal v when v is set.
func Equal[T any](column string, v Optional[T]) Clause {
	val, ok := v.Get()
	if !ok {
		return Clause{}
	}
	return Clause{Column: column, Op: OpEqual, Value: val}
}

// AtOrBefore constrains column to be at or before t when t is set.
func AtOrBefore(column string, t Optional[time.Time]) Clause {
	val, ok := t.Get()
	if !ok {
		return Clause{}
	}
	return Clause{Column: column, Op: OpAtOrBefore, Value: val.UTC()}
}

// AtOrAfter constrains column to be at or after t when t is set.
func AtOrAfter(column string, t Optional[time.Time]) Clause {
	val, ok := t.Get()
	if !ok {
		return Clause{}
	}
	return Clause{Column: column, Op: OpAtOrAfter, Value: val.UTC()}
}

// Predicate is the conjunction of its clauses.
type Predicate struct {
	clauses []Clause
}

// Where combines clauses with AND, dropping empty ones.
func Where(clauses ...Clause) Predicate {
	p := Predicate{}
	for _, c := range clauses {
		if !c.IsEmpty() {
			p.clauses = append(p.clauses, c)
		}
	}
	return p
}

// Clauses returns the non-empty clauses in order.
func (p Predicate) Clauses() []Clause {
	out := make([]Clause, len(p.clauses))
	copy(out, p.clauses)
	return out
}

// IsEmpty reports whether the predicate matches every row.
func (p Predicate) IsEmpty() bool {
	return len(p.clauses) == 0
}

// SQL renders the predicate as " WHERE a = ? AND b >= ?" plus its arguments.
// An empty predicate renders as "" with no arguments.
func (p Predicate) SQL() (string, []interface{}) {
	if p.IsEmpty() {
		return "", nil
	}

	parts := make([]string, 0, len(p.clauses))
	args := make([]interface{}, 0, len(p.clauses))
	for _, c := range p.clauses {
		parts = append(parts, c.Column+" "+string(c.Op)+" ?")
		args = append(args, c.Value)
	}

	return " WHERE " + strings.Join(parts, " AND "), args
}
