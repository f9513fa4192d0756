package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestRunRejectsUnknownCommands(t *testing.T) {
	if err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected error without a command")
	}
	if err := Run(context.Background(), []string{"launch"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
	if err := Run(context.Background(), []string{"seed"}); err == nil {
		t.Fatal("expected error without a seed name")
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := listMigrations(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0] != "001_a.sql" || got[1] != "002_b.sql" {
		t.Fatalf("unexpected migrations %v", got)
	}

	shipped, err := listMigrations(filepath.Join("..", "..", "migrations"))
	if err != nil || len(shipped) == 0 {
		t.Fatalf("expected shipped migrations, got %v %v", shipped, err)
	}
}

func TestShouldRetryMigration(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, want: true},
		{name: "syntax", err: &pgconn.PgError{Code: "42601"}, want: false},
		{name: "tx closed", err: pgx.ErrTxClosed, want: true},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldRetryMigration(tc.err); got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}
