package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/spezi-dev/spezi/pkg/async"
	"github.com/spezi-dev/spezi/pkg/auth"
	"github.com/spezi-dev/spezi/pkg/middleware"
	"github.com/spezi-dev/spezi/pkg/observability"
	"github.com/spezi-dev/spezi/pkg/repository"
	"github.com/spezi-dev/spezi/pkg/storage"
)

type testEnv struct {
	db     *storage.DB
	server *Server
	repos  *repository.Repositories
	runner *async.Runner
	admin  *repository.APIUser
	member *repository.APIUser
}

// newTestServer wires a Server the way cmd/spezi does, minus the outer
// logging and tracing middleware
func newTestServer(db *storage.DB) (*Server, *repository.Repositories, *async.Runner) {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	runner := async.NewRunner(logger, metrics, time.Second)
	repos := repository.New(db)
	authMW := middleware.NewAuthMiddleware(repos.APIUsers, runner, logger, metrics)
	return NewServer(repos, authMW, logger, metrics), repos, runner
}

// setupServer returns a server on a fresh SQLite database holding one admin
// and one non-admin key
func setupServer(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filepath.Join(t.TempDir(), "api.db"))
	db, err := storage.Open(ctx, storage.Config{Driver: "sqlite3", DSN: dsn, Timeout: 5 * time.Second})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))

	server, repos, runner := newTestServer(db)
	t.Cleanup(func() {
		runner.Close(context.Background())
		db.Close()
	})

	admin, err := repos.APIUsers.Create(ctx, repository.NewAPIUser{Key: auth.GenerateKey(), IsAdmin: true, Description: "admin"})
	require.NoError(t, err)
	member, err := repos.APIUsers.Create(ctx, repository.NewAPIUser{Key: auth.GenerateKey(), Description: "member"})
	require.NoError(t, err)

	return &testEnv{db: db, server: server, repos: repos, runner: runner, admin: admin, member: member}
}

// setupMockServer returns a server on a postgres-dialect sqlmock. Request
// queries and the background last-login refresh interleave, so
// expectations are matched in any order.
func setupMockServer(t *testing.T) (*Server, sqlmock.Sqlmock, *async.Runner) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)

	server, _, runner := newTestServer(storage.New(sqlDB, storage.Postgres))
	t.Cleanup(func() {
		runner.Close(context.Background())
		sqlDB.Close()
	})
	return server, mock, runner
}

// expectAuth registers the lookup and last-login refresh Authenticate
// performs for key
func expectAuth(mock sqlmock.Sqlmock, key string, isAdmin bool) {
	rows := sqlmock.NewRows([]string{"id", "api_key", "is_admin", "description", "created_at", "last_login_at"}).
		AddRow(1, key, isAdmin, "", time.Now().UTC(), nil)
	mock.ExpectQuery(`SELECT (.+) FROM api_users WHERE api_key = \$1`).WithArgs(key).WillReturnRows(rows)
	mock.ExpectExec(`UPDATE api_users SET last_login_at = \$1 WHERE api_key = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

// do sends a request with key in the X-Api-Key header
func do(t *testing.T, h http.Handler, method, path, key, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(auth.Header, key)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json", "body: %s", rec.Body.String())
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v))
	return v
}

func text(rec *httptest.ResponseRecorder) string {
	return strings.TrimSpace(rec.Body.String())
}
