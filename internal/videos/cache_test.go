package videos

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubProvider struct {
	metadata Metadata
	err      error
	calls    int
}

func (s *stubProvider) Lookup(context.Context, string) (Metadata, error) {
	s.calls++
	if s.err != nil {
		return Metadata{}, s.err
	}
	return s.metadata, nil
}

func TestCachingProviderLookup(t *testing.T) {
	base := &stubProvider{metadata: Metadata{Title: "Test"}}
	cache := NewCachingProvider(base, time.Minute)

	ctx := context.Background()

	meta, err := cache.Lookup(ctx, "https://example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if meta.Title != "Test" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	if _, err := cache.Lookup(ctx, "https://example.com"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected cached result got %d calls", base.calls)
	}
}

func TestCachingProviderLookupErrors(t *testing.T) {
	var nilCache *CachingProvider
	if _, err := nilCache.Lookup(context.Background(), "https://example.com"); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable got %v", err)
	}

	cache := NewCachingProvider(nil, time.Minute)
	if _, err := cache.Lookup(context.Background(), "https://example.com"); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable got %v", err)
	}

	base := &stubProvider{err: ErrEmptyMetadata}
	cache = NewCachingProvider(base, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := cache.Lookup(context.Background(), "https://example.com"); !errors.Is(err, ErrEmptyMetadata) {
			t.Fatalf("expected empty metadata got %v", err)
		}
	}
	if base.calls != 2 {
		t.Fatalf("failures must not be cached, got %d calls", base.calls)
	}
}

func TestCachingProviderExpiry(t *testing.T) {
	base := &stubProvider{metadata: Metadata{Title: "Test"}}
	cache := NewCachingProvider(base, time.Minute)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if _, err := cache.Lookup(context.Background(), "https://example.com/a"); err != nil {
		t.Fatalf("lookup: %v", err)
	}

	now = now.Add(2 * time.Minute)

	if _, err := cache.Lookup(context.Background(), "https://example.com/b"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected expired entry to be evicted, have %d entries", cache.Len())
	}
	if _, err := cache.Lookup(context.Background(), "https://example.com/a"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if base.calls != 3 {
		t.Fatalf("expected cache miss after expiry got %d calls", base.calls)
	}
}

func TestCachingProviderDefaultTTL(t *testing.T) {
	cache := NewCachingProvider(&stubProvider{}, 0)
	if cache.ttl <= 0 {
		t.Fatalf("expected ttl to default positive got %v", cache.ttl)
	}
}
