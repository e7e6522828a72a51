// Package testenv provides a Postgres testcontainers-go fixture and a
// thin HTTP test harness for integration tests, adapted from the
// teacher's test/integration/testenv package.
package testenv

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	storepg "txledger/internal/store/postgres"
)

var (
	sharedContainer     *postgres.PostgresContainer
	sharedContainerOnce sync.Once
	sharedContainerErr  error
	sharedConnString    string
)

// PostgresContainerConfig configures the test container.
type PostgresContainerConfig struct {
	Database string
	Username string
	Password string
	Image    string
}

func defaultPostgresConfig() PostgresContainerConfig {
	return PostgresContainerConfig{
		Database: "txledger_test",
		Username: "txledger",
		Password: "txledger_test_pass",
		Image:    "postgres:16-alpine",
	}
}

// migrationsInitScript is the schema applied when the container boots,
// so every test starts from a clean, migrated database.
const migrationsInitScript = "../../../internal/store/postgres/migrations/000001_create_ledger_schema.up.sql"

// SetupPostgresContainer starts (once per test binary) a shared
// PostgreSQL testcontainer pre-loaded with the ledger schema, and
// returns a ready *storepg.Store for the calling test.
func SetupPostgresContainer(t *testing.T) *storepg.Store {
	ctx := context.Background()

	sharedContainerOnce.Do(func() {
		cfg := defaultPostgresConfig()

		container, err := postgres.Run(ctx,
			cfg.Image,
			postgres.WithDatabase(cfg.Database),
			postgres.WithUsername(cfg.Username),
			postgres.WithPassword(cfg.Password),
			postgres.WithInitScripts(migrationsInitScript),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			sharedContainerErr = fmt.Errorf("failed to start postgres testcontainer: %w", err)
			return
		}
		sharedContainer = container

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedContainerErr = fmt.Errorf("failed to get connection string: %w", err)
			return
		}
		sharedConnString = connStr
	})

	require.NoError(t, sharedContainerErr, "failed to initialize shared postgres testcontainer")

	store, err := storepg.New(ctx, &storepg.Config{
		ConnString:      sharedConnString,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		LockTimeout:     4 * time.Second,
	})
	require.NoError(t, err, "failed to connect to test database")

	t.Cleanup(store.Close)

	return store
}
