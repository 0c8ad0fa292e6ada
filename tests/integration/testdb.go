//go:build integration

// Package integration runs the CRM against a real PostgreSQL started with
// testcontainers. The schema comes from migrations/ through the migrate CLI
// code path.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/migration"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
)

var (
	sharedMu        sync.Mutex
	sharedContainer *tcpostgres.PostgresContainer
	sharedDSN       string
)

func TestMain(m *testing.M) {
	code := m.Run()
	terminateShared()
	os.Exit(code)
}

// NewTestDB returns a connection to the shared, migrated container. Tests
// isolate themselves by using fresh tenant ids rather than truncating.
func NewTestDB(t *testing.T) *persistence.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}

	dsn := sharedDatabase(t)
	cfg := &config.DatabaseConfig{Driver: config.DriverPostgres, MaxOpenConns: 5, MaxIdleConns: 2}
	db, err := persistence.Open(context.Background(), gormpostgres.Open(dsn), cfg)
	require.NoError(t, err, "connect to test database")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sharedDatabase(t *testing.T) string {
	t.Helper()
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedContainer != nil {
		return sharedDSN
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("crm_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := migration.NewFromURL(dsn, migrationsPath(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up(), "apply migrations")
	require.NoError(t, migrator.Close())

	sharedContainer, sharedDSN = container, dsn
	return dsn
}

func terminateShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedContainer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sharedContainer.Terminate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "terminate postgres container:", err)
	}
	sharedContainer = nil
}

// migrationsPath walks up from this file to the repository's migrations/
func migrationsPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	dir := filepath.Dir(file)
	for i := 0; i < 4; i++ {
		candidate := filepath.Join(dir, "migrations")
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatal("migrations directory not found")
	return ""
}
