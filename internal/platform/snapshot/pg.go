package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/anesthesia/internal/platform/db"
)

// PGBackend stores slots in the snapshot_kv table.
type PGBackend struct {
	pool *pgxpool.Pool
}

func NewPGBackend(pool *pgxpool.Pool) *PGBackend {
	return &PGBackend{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// conn prefers the request connection so a request never holds two pooled
// connections. A record transaction in ctx is ignored; slot writes are not
// part of it.
func (p *PGBackend) conn(ctx context.Context) querier {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return p.pool
}

func (p *PGBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.conn(ctx).QueryRow(ctx, `SELECT value FROM snapshot_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot %s: %w", key, err)
	}
	return value, nil
}

func (p *PGBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.conn(ctx).Exec(ctx, `
		INSERT INTO snapshot_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, json.RawMessage(value),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", key, err)
	}
	return nil
}

func (p *PGBackend) Remove(ctx context.Context, key string) error {
	if _, err := p.conn(ctx).Exec(ctx, `DELETE FROM snapshot_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", key, err)
	}
	return nil
}
