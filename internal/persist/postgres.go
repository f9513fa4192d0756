package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/threeplay/backend/internal/db"
)

// PostgresBackend persists slices to the persisted_state table.
type PostgresBackend struct {
	pool db.Pool
}

// NewPostgresBackend constructs a backend on top of a pgx pool.
func NewPostgresBackend(pool db.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

// Get loads the value stored for key.
func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var value []byte
	err = conn.QueryRow(ctx, `
        SELECT value
        FROM persisted_state
        WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select persisted state: %w", err)
	}

	return value, nil
}

// Set stores or replaces the value for key.
func (b *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO persisted_state (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key)
        DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
    `, key, value)
	if err != nil {
		return fmt.Errorf("upsert persisted state: %w", err)
	}

	return nil
}

// Delete removes the value for key.
func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM persisted_state
        WHERE key = $1
    `, key)
	if err != nil {
		return fmt.Errorf("delete persisted state: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ Backend = (*PostgresBackend)(nil)
