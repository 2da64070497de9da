// Package testmongo provisions disposable MongoDB backends for store tests.
package testmongo

import (
	"context"
	"testing"
	"time"

	"github.com/chirino/data-gateway/internal/config"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

// Start runs a throwaway MongoDB container and returns a gateway Config
// pointed at it, with schema migration enabled and a database name unique to
// the test. The container is terminated when the test finishes.
func Start(tb testing.TB) *config.Config {
	tb.Helper()

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		tb.Fatalf("start mongodb container: %v", err)
	}
	tb.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			tb.Errorf("terminate mongodb container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		tb.Fatalf("resolve mongodb connection string: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.DBURL = uri
	cfg.DBName = "gateway_test_" + uuid.New().String()[:8]
	cfg.MigrateAtStart = true
	return &cfg
}
