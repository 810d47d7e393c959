// Package storetest provides a migrated PostgreSQL database for integration
// tests. DATABASE_URL points the tests at an existing server; otherwise a
// throwaway container is started once per test binary.
package storetest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"music-platform/internal/store"
)

const image = "postgres:16-alpine"

var (
	once   sync.Once
	dsn    string
	dsnErr error
)

func startContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, image,
		postgres.WithDatabase("music"),
		postgres.WithUsername("music"),
		postgres.WithPassword("music"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return "", err
	}
	return ctr.ConnectionString(ctx, "sslmode=disable")
}

// NewPool returns a pool on an empty, migrated schema. The tables are
// truncated again when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		once.Do(func() { dsn, dsnErr = startContainer() })
		if dsnErr != nil {
			t.Fatalf("start postgres container: %v", dsnErr)
		}
		url = dsn
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := store.Open(ctx, url, 10)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := store.AutoMigrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	if err := store.Truncate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("truncate: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Truncate(context.Background(), pool); err != nil {
			t.Errorf("truncate: %v", err)
		}
		pool.Close()
	})
	return pool
}
