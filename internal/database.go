package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS exports (
	batch_id      TEXT PRIMARY KEY,
	path          TEXT NOT NULL UNIQUE,
	mod_time      INTEGER NOT NULL,
	size          INTEGER NOT NULL,
	source        TEXT NOT NULL,
	cache_version TEXT NOT NULL,
	cached_at     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS conversations (
	batch_id      TEXT NOT NULL,
	position      INTEGER NOT NULL,
	id            TEXT NOT NULL,
	title         TEXT NOT NULL,
	message_count INTEGER NOT NULL,
	create_time   INTEGER NOT NULL,
	update_time   INTEGER NOT NULL,
	messages      TEXT NOT NULL,
	PRIMARY KEY (batch_id, position)
);
CREATE INDEX IF NOT EXISTS idx_conversations_id ON conversations(batch_id, id);
`

// OpenDatabase opens a SQLite database in read-only mode
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// OpenCacheDatabase opens (creating if needed) the parse cache database
func OpenCacheDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return db, nil
}
