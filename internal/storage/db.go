// Package storage persists blame snapshots across sessions in a SQLite
// database under the repository's .lens directory. Entries are keyed by file
// path and HEAD commit, so advancing HEAD invalidates them naturally.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"lens/internal/logging"
)

// DB wraps the lens database connection.
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the database at <lensDir>/lens.db.
func Open(lensDir string, logger *logging.Logger) (*DB, error) {
	if err := os.MkdirAll(lensDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lens directory: %w", err)
	}

	dbPath := filepath.Join(lensDir, "lens.db")
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set pragmas for performance
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-16000", // 16MB cache
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	db := &DB{
		conn:   conn,
		logger: logger.WithComponent("storage"),
		dbPath: dbPath,
	}

	if !dbExists {
		db.logger.Info("Creating lens database", map[string]interface{}{
			"path": dbPath,
		})
	}
	if err := db.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// initializeSchema creates the snapshot tables.
func (d *DB) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS blame_snapshots (
			path TEXT NOT NULL,
			head_commit TEXT NOT NULL,
			created_at TEXT NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (path, head_commit)
		);
		CREATE INDEX IF NOT EXISTS idx_blame_snapshots_created_at ON blame_snapshots(created_at);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`

	_, err := d.conn.Exec(schema)
	return err
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.dbPath
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}
