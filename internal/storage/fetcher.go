package storage

import (
	"context"

	"lens/internal/blame"
	"lens/internal/logging"
)

// Fetcher produces blame maps, typically a blame.Fetcher.
type Fetcher interface {
	Blame(ctx context.Context, path string) (*blame.Map, error)
}

// CachedFetcher layers the snapshot cache in front of a live fetcher. Dirty
// files bypass the cache entirely: their blame reflects the working tree and
// changes with every edit.
type CachedFetcher struct {
	inner  Fetcher
	cache  *BlameCache
	head   func() (string, error)
	dirty  func(path string) (bool, error)
	logger *logging.Logger
}

// NewCachedFetcher builds a caching fetcher. head supplies the current HEAD
// commit for cache keys; dirty reports per-file working tree modifications
// and may be nil to disable the bypass.
func NewCachedFetcher(inner Fetcher, cache *BlameCache, head func() (string, error), dirty func(path string) (bool, error), logger *logging.Logger) *CachedFetcher {
	return &CachedFetcher{
		inner:  inner,
		cache:  cache,
		head:   head,
		dirty:  dirty,
		logger: logger.WithComponent("cache"),
	}
}

// Blame returns the cached snapshot when one exists for the file at the
// current HEAD, fetching and storing it otherwise. Cache failures degrade to
// a live fetch rather than failing the pass.
func (f *CachedFetcher) Blame(ctx context.Context, path string) (*blame.Map, error) {
	if f.dirty != nil {
		if isDirty, err := f.dirty(path); err == nil && isDirty {
			return f.inner.Blame(ctx, path)
		}
	}

	headCommit, err := f.head()
	if err != nil {
		f.logger.Warn("HEAD lookup failed, bypassing cache", map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		})
		return f.inner.Blame(ctx, path)
	}

	if m, ok := f.cache.Get(ctx, path, headCommit); ok {
		f.logger.Debug("Snapshot hit", map[string]interface{}{
			"file": path,
			"head": headCommit,
		})
		return m, nil
	}

	m, err := f.inner.Blame(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Put(ctx, path, headCommit, m); err != nil {
		f.logger.Warn("Snapshot write failed", map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		})
	}
	return m, nil
}

// InvalidateFile drops any snapshots for the given path.
func (f *CachedFetcher) InvalidateFile(ctx context.Context, path string) {
	if err := f.cache.Invalidate(ctx, path); err != nil {
		f.logger.Warn("Snapshot invalidation failed", map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		})
	}
}
