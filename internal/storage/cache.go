package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/klauspost/compress/zstd"

	"lens/internal/blame"
	"lens/internal/errors"
	"lens/internal/logging"
)

// BlameCache stores blame snapshots keyed by (path, head commit). Payloads
// are JSON compressed with zstd; large files blame to maps in the hundreds
// of kilobytes and the snapshots are written far more often than read back.
type BlameCache struct {
	db     *DB
	ttl    time.Duration
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	logger *logging.Logger
}

// NewBlameCache wraps a database in a snapshot cache. A ttl of zero means
// entries never expire by age.
func NewBlameCache(db *DB, ttl time.Duration, logger *logging.Logger) (*BlameCache, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, errors.New(errors.CacheError, "Failed to create compressor", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.New(errors.CacheError, "Failed to create decompressor", err)
	}

	return &BlameCache{
		db:     db,
		ttl:    ttl,
		enc:    enc,
		dec:    dec,
		logger: logger.WithComponent("cache"),
	}, nil
}

// Get returns the cached blame map for (path, headCommit), or false when no
// live entry exists. Decode failures are treated as misses, not errors: a
// corrupt entry is overwritten by the next Put.
func (c *BlameCache) Get(ctx context.Context, path, headCommit string) (*blame.Map, bool) {
	var payload []byte
	var createdAt string

	row := c.db.conn.QueryRowContext(ctx,
		"SELECT payload, created_at FROM blame_snapshots WHERE path = ? AND head_commit = ?",
		path, headCommit)
	if err := row.Scan(&payload, &createdAt); err != nil {
		if err != sql.ErrNoRows {
			c.logger.Warn("Snapshot read failed", map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			})
		}
		return nil, false
	}

	if c.ttl > 0 {
		created, err := time.Parse(time.RFC3339, createdAt)
		if err != nil || time.Since(created) > c.ttl {
			return nil, false
		}
	}

	raw, err := c.dec.DecodeAll(payload, nil)
	if err != nil {
		c.logger.Warn("Snapshot decompression failed", map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		})
		return nil, false
	}

	var m blame.Map
	if err := json.Unmarshal(raw, &m); err != nil {
		c.logger.Warn("Snapshot decode failed", map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		})
		return nil, false
	}
	return &m, true
}

// Put stores a blame map for (path, headCommit), replacing any previous
// snapshot for the same key.
func (c *BlameCache) Put(ctx context.Context, path, headCommit string, m *blame.Map) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return errors.New(errors.CacheError, "Failed to encode snapshot", err)
	}
	payload := c.enc.EncodeAll(raw, nil)

	_, err = c.db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO blame_snapshots (path, head_commit, created_at, payload) VALUES (?, ?, ?, ?)",
		path, headCommit, time.Now().UTC().Format(time.RFC3339), payload)
	if err != nil {
		return errors.New(errors.CacheError, "Failed to write snapshot", err)
	}
	return nil
}

// Invalidate removes every snapshot for a path, across all head commits.
func (c *BlameCache) Invalidate(ctx context.Context, path string) error {
	_, err := c.db.conn.ExecContext(ctx,
		"DELETE FROM blame_snapshots WHERE path = ?", path)
	if err != nil {
		return errors.New(errors.CacheError, "Failed to invalidate snapshots", err)
	}
	return nil
}

// PruneExpired removes entries older than the cache ttl. A no-op when the
// ttl is zero.
func (c *BlameCache) PruneExpired(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-c.ttl).Format(time.RFC3339)

	res, err := c.db.conn.ExecContext(ctx,
		"DELETE FROM blame_snapshots WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, errors.New(errors.CacheError, "Failed to prune snapshots", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close releases the cache's codec resources. The underlying database is
// owned by the caller.
func (c *BlameCache) Close() {
	c.enc.Close()
	c.dec.Close()
}
