//go:build integration

package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/jackc/pgx/v5/pgxpool"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresBackend_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	backend := NewPostgresBackend(testPool)

	if _, err := backend.Get(ctx, "3play:auth-storage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}

	if err := backend.Set(ctx, "3play:auth-storage", []byte(`{"version":1,"state":{}}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := backend.Set(ctx, "3play:auth-storage", []byte(`{"version":1,"state":{"isAuthenticated":false}}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := backend.Get(ctx, "3play:auth-storage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"version":1,"state":{"isAuthenticated":false}}` {
		t.Fatalf("unexpected value %s", got)
	}

	if err := backend.Delete(ctx, "3play:auth-storage"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := backend.Delete(ctx, "3play:auth-storage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete got %v", err)
	}
}

func TestPostgresBackend_Slice(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	slice := newCounterSlice(NewPostgresBackend(testPool))
	if err := slice.Save(ctx, counterV1{Count: 9, Label: "pg"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := slice.Load(ctx)
	if got.Count != 9 || got.Label != "pg" {
		t.Fatalf("unexpected state %+v", got)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE persisted_state"); err != nil {
		t.Fatalf("truncate persisted_state: %v", err)
	}
}
