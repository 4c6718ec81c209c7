//go:build integration

package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/spezi-dev/spezi/pkg/storage"
)

// TestContainerCleanupOption configures container cleanup behavior
type TestContainerCleanupOption func(*testContainerCleanupConfig)

type testContainerCleanupConfig struct {
	cleanupTimeout time.Duration
}

// WithCleanupTimeout sets the timeout for cleanup operations (default: 30s)
func WithCleanupTimeout(timeout time.Duration) TestContainerCleanupOption {
	return func(c *testContainerCleanupConfig) {
		c.cleanupTimeout = timeout
	}
}

// SetupPostgresContainer starts PostgreSQL in a container and returns a
// migrated storage.DB on it. The test is skipped when no container runtime
// is available.
//
//	db, cleanup := SetupPostgresContainer(t)
//	defer cleanup()
func SetupPostgresContainer(t *testing.T, opts ...TestContainerCleanupOption) (*storage.DB, func()) {
	t.Helper()

	config := &testContainerCleanupConfig{cleanupTimeout: 30 * time.Second}
	for _, opt := range opts {
		opt(config)
	}

	ctx := context.Background()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		t.Skip("Docker/Podman not available, skipping integration tests")
	}
	defer provider.Close()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("spezi_test"),
		postgres.WithUsername("spezi"),
		postgres.WithPassword("spezi_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("Failed to start PostgreSQL container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := storage.Open(ctx, storage.Config{Driver: "postgres", DSN: dsn, MaxConns: 5, Timeout: 10 * time.Second})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx), "Failed to run migrations")

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close database: %v", err)
		}

		// Fresh context: the test's may already be cancelled.
		cleanupCtx, cancel := context.WithTimeout(context.Background(), config.cleanupTimeout)
		defer cancel()

		if err := container.Terminate(cleanupCtx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}
