package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileBackendRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	ctx := context.Background()

	if _, err := backend.Get(ctx, "3play:video-storage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}

	if err := backend.Set(ctx, "3play:video-storage", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := backend.Get(ctx, "3play:video-storage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"version":1}` {
		t.Fatalf("unexpected value %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file, got %d", len(entries))
	}

	if err := backend.Delete(ctx, "3play:video-storage"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := backend.Delete(ctx, "3play:video-storage"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if _, err := backend.Get(ctx, "3play:video-storage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete got %v", err)
	}
}

func TestFileBackendSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	slice := newCounterSlice(first)
	if err := slice.Save(ctx, counterV1{Count: 42, Label: "kept"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	second, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := newCounterSlice(second).Load(ctx)
	if got.Count != 42 || got.Label != "kept" {
		t.Fatalf("unexpected state after reopen %+v", got)
	}
}

func TestNewFileBackendRequiresDir(t *testing.T) {
	if _, err := NewFileBackend("  "); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
