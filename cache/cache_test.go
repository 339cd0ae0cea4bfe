package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetOrFetchWithinTTL(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewMemory(5*time.Minute, func() time.Time { return now })

	calls := 0
	fetch := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte(`{"ok":true}`), nil
	}

	ctx := context.Background()
	first, err := c.GetOrFetch(ctx, "doc-1:leads:/patients", 0, fetch)
	if err != nil {
		t.Fatalf("first GetOrFetch: %v", err)
	}
	second, err := c.GetOrFetch(ctx, "doc-1:leads:/patients", 0, fetch)
	if err != nil {
		t.Fatalf("second GetOrFetch: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected exactly one fetch within TTL, got %d", calls)
	}
	if string(first) != string(second) {
		t.Fatalf("cached payload differs: %q vs %q", first, second)
	}
}

func TestGetOrFetchTTLBoundary(t *testing.T) {
	base := time.Unix(1700000000, 0)
	now := base
	c := NewMemory(5*time.Minute, func() time.Time { return now })

	calls := 0
	fetch := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("payload"), nil
	}

	ctx := context.Background()
	if _, err := c.GetOrFetch(ctx, "k", 0, fetch); err != nil {
		t.Fatal(err)
	}

	// Just under five minutes: still served from the cache.
	now = base.Add(299999 * time.Millisecond)
	if _, err := c.GetOrFetch(ctx, "k", 0, fetch); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("entry expired early: %d fetches", calls)
	}

	// Just past: whole entry is invalid, refetch happens.
	now = base.Add(300001 * time.Millisecond)
	if _, err := c.GetOrFetch(ctx, "k", 0, fetch); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("expected a refetch after TTL, got %d fetches", calls)
	}
}

func TestGetOrFetchFailureCachesNothing(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewMemory(5*time.Minute, func() time.Time { return now })

	calls := 0
	failing := func(ctx context.Context) ([]byte, error) {
		calls++
		return nil, errors.New("upstream down")
	}

	ctx := context.Background()
	if _, err := c.GetOrFetch(ctx, "k", 0, failing); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if _, err := c.GetOrFetch(ctx, "k", 0, failing); err == nil {
		t.Fatal("expected second fetch error to propagate")
	}
	if calls != 2 {
		t.Fatalf("failure must not be cached: %d fetches", calls)
	}
}

func TestInvalidate(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewMemory(5*time.Minute, func() time.Time { return now })

	calls := 0
	fetch := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("v"), nil
	}

	ctx := context.Background()
	c.GetOrFetch(ctx, "k", 0, fetch)
	c.Invalidate(ctx, "k")
	c.GetOrFetch(ctx, "k", 0, fetch)

	if calls != 2 {
		t.Fatalf("invalidate did not drop the entry: %d fetches", calls)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewMemory(5*time.Minute, func() time.Time { return now })

	ctx := context.Background()
	fetchCount := make(map[string]int)
	fetchFor := func(key string) func(ctx context.Context) ([]byte, error) {
		return func(ctx context.Context) ([]byte, error) {
			fetchCount[key]++
			return []byte(key), nil
		}
	}

	// Two query variants of the same list, one entry of another area.
	c.GetOrFetch(ctx, "doc-1:leads:/patients", 0, fetchFor("a"))
	c.GetOrFetch(ctx, "doc-1:leads:/patients?page=2", 0, fetchFor("b"))
	c.GetOrFetch(ctx, "doc-1:appts:/today", 0, fetchFor("c"))

	c.InvalidatePrefix(ctx, "doc-1:leads:")

	c.GetOrFetch(ctx, "doc-1:leads:/patients", 0, fetchFor("a"))
	c.GetOrFetch(ctx, "doc-1:leads:/patients?page=2", 0, fetchFor("b"))
	c.GetOrFetch(ctx, "doc-1:appts:/today", 0, fetchFor("c"))

	if fetchCount["a"] != 2 || fetchCount["b"] != 2 {
		t.Fatalf("leads entries survived prefix invalidation: %v", fetchCount)
	}
	if fetchCount["c"] != 1 {
		t.Fatalf("unrelated area was invalidated: %v", fetchCount)
	}
}
