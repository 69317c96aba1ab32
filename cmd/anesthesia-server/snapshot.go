package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/anesthesia/internal/config"
	"github.com/ehr/anesthesia/internal/platform/snapshot"
)

// newSnapshotBackend opens the backend named by SNAPSHOT_BACKEND. The returned
// func releases whatever the backend holds open.
func newSnapshotBackend(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (snapshot.Backend, func(), error) {
	switch cfg.SnapshotBackend {
	case config.SnapshotMemory:
		return snapshot.NewMemoryBackend(), func() {}, nil
	case config.SnapshotRedis:
		client, err := snapshot.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return snapshot.NewRedisBackend(client, cfg.SnapshotPrefix), func() { _ = client.Close() }, nil
	case config.SnapshotPostgres:
		if pool == nil {
			return nil, nil, fmt.Errorf("postgres snapshot backend needs a database pool")
		}
		return snapshot.NewPGBackend(pool), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}
}
