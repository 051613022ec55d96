package storage

import (
	"context"
	"testing"
	"time"

	"lens/internal/blame"
	"lens/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

func openTestCache(t *testing.T, ttl time.Duration) *BlameCache {
	t.Helper()

	db, err := Open(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cache, err := NewBlameCache(db, ttl, testLogger())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(cache.Close)
	return cache
}

func testMap(path string) *blame.Map {
	c := &blame.Commit{
		ID:         "abc1234567890abc1234567890abc1234567890a",
		Author:     "Alice",
		AuthoredAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		Summary:    "Initial commit",
	}
	return &blame.Map{
		Path:     path,
		Revision: "HEAD",
		Lines: []blame.Line{
			{Index: 0, OriginalIndex: 0, CommitID: c.ID},
			{Index: 1, OriginalIndex: 1, CommitID: c.ID},
		},
		Commits: map[string]*blame.Commit{c.ID: c},
	}
}

func TestCachePutGet(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "main.go", "head1"); ok {
		t.Fatal("Expected miss on empty cache")
	}

	if err := cache.Put(ctx, "main.go", "head1", testMap("main.go")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	m, ok := cache.Get(ctx, "main.go", "head1")
	if !ok {
		t.Fatal("Expected hit after Put")
	}
	if m.LineCount() != 2 || m.Path != "main.go" {
		t.Errorf("Unexpected snapshot: %+v", m)
	}
	c, ok := m.CommitForLine(0)
	if !ok || c.Author != "Alice" {
		t.Errorf("Expected commit round trip, got %+v", c)
	}

	// A different head commit is a different key.
	if _, ok := cache.Get(ctx, "main.go", "head2"); ok {
		t.Error("Expected miss for a different head commit")
	}
}

func TestCacheReplace(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	ctx := context.Background()

	if err := cache.Put(ctx, "main.go", "head1", testMap("main.go")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	replacement := testMap("main.go")
	replacement.Lines = replacement.Lines[:1]
	if err := cache.Put(ctx, "main.go", "head1", replacement); err != nil {
		t.Fatalf("Replacing Put failed: %v", err)
	}

	m, ok := cache.Get(ctx, "main.go", "head1")
	if !ok || m.LineCount() != 1 {
		t.Errorf("Expected replaced snapshot with 1 line, got %+v", m)
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	ctx := context.Background()

	for _, head := range []string{"head1", "head2"} {
		if err := cache.Put(ctx, "main.go", head, testMap("main.go")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if err := cache.Put(ctx, "other.go", "head1", testMap("other.go")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := cache.Invalidate(ctx, "main.go"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	if _, ok := cache.Get(ctx, "main.go", "head1"); ok {
		t.Error("Expected main.go snapshots removed")
	}
	if _, ok := cache.Get(ctx, "main.go", "head2"); ok {
		t.Error("Expected main.go snapshots removed for all heads")
	}
	if _, ok := cache.Get(ctx, "other.go", "head1"); !ok {
		t.Error("Expected other.go snapshot untouched")
	}
}

type countingFetcher struct {
	m     *blame.Map
	err   error
	calls int
}

func (f *countingFetcher) Blame(ctx context.Context, path string) (*blame.Map, error) {
	f.calls++
	return f.m, f.err
}

func TestCachedFetcher(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	inner := &countingFetcher{m: testMap("main.go")}

	head := func() (string, error) { return "head1", nil }
	clean := func(path string) (bool, error) { return false, nil }

	fetcher := NewCachedFetcher(inner, cache, head, clean, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m, err := fetcher.Blame(ctx, "main.go")
		if err != nil {
			t.Fatalf("Blame failed: %v", err)
		}
		if m.LineCount() != 2 {
			t.Fatalf("Unexpected map: %+v", m)
		}
	}
	if inner.calls != 1 {
		t.Errorf("Expected a single live fetch, got %d", inner.calls)
	}
}

func TestCachedFetcherDirtyBypass(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	inner := &countingFetcher{m: testMap("main.go")}

	head := func() (string, error) { return "head1", nil }
	dirty := func(path string) (bool, error) { return true, nil }

	fetcher := NewCachedFetcher(inner, cache, head, dirty, testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := fetcher.Blame(ctx, "main.go"); err != nil {
			t.Fatalf("Blame failed: %v", err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("Expected every call to bypass the cache, got %d live fetches", inner.calls)
	}

	// Nothing was stored for the dirty file.
	if _, ok := cache.Get(ctx, "main.go", "head1"); ok {
		t.Error("Expected no snapshot stored for a dirty file")
	}
}

func TestCachedFetcherInvalidateFile(t *testing.T) {
	cache := openTestCache(t, time.Hour)
	inner := &countingFetcher{m: testMap("main.go")}

	head := func() (string, error) { return "head1", nil }
	clean := func(path string) (bool, error) { return false, nil }

	fetcher := NewCachedFetcher(inner, cache, head, clean, testLogger())
	ctx := context.Background()

	if _, err := fetcher.Blame(ctx, "main.go"); err != nil {
		t.Fatalf("Blame failed: %v", err)
	}
	fetcher.InvalidateFile(ctx, "main.go")
	if _, err := fetcher.Blame(ctx, "main.go"); err != nil {
		t.Fatalf("Blame failed: %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("Expected a live fetch after invalidation, got %d", inner.calls)
	}
}
