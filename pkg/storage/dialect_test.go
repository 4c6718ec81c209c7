package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input       string
		expected    Dialect
		expectError bool
	}{
		{"postgres", Postgres, false},
		{"PostgreSQL", Postgres, false},
		{"pq", Postgres, false},
		{"sqlite3", SQLite, false},
		{" sqlite ", SQLite, false},
		{"mysql", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDialect(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestRebind(t *testing.T) {
	query := "SELECT id FROM orders WHERE user_id = ? AND created_at >= ? AND created_at <= ?"

	assert.Equal(t,
		"SELECT id FROM orders WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3",
		Postgres.Rebind(query))
	assert.Equal(t, query, SQLite.Rebind(query))
	assert.Equal(t, "SELECT 1", Postgres.Rebind("SELECT 1"))
}

func TestSchema(t *testing.T) {
	assert.Len(t, Schema(Postgres), len(Schema(SQLite)))
	assert.Contains(t, Schema(Postgres)[0], "BIGSERIAL")
	assert.Contains(t, Schema(SQLite)[0], "AUTOINCREMENT")
}
