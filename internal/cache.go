package internal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// CacheVersion is bumped whenever the normalized model changes shape
const CacheVersion = "1.0"

// CacheManager caches parsed exports so repeated list/show/convert runs over
// the same file skip JSON decoding and reconstruction.
type CacheManager struct {
	cacheDir string
	db       *sql.DB
}

// CacheMetadata describes one cached export
type CacheMetadata struct {
	BatchID      string    `json:"batch_id"`
	ExportPath   string    `json:"export_path"`
	ExportMod    time.Time `json:"export_mod_time"`
	ExportSize   int64     `json:"export_size"`
	Source       Source    `json:"source"`
	CacheVersion string    `json:"cache_version"`
	CachedAt     time.Time `json:"cached_at"`
}

// ConversationIndexEntry is a conversation summary that does not need the messages decoded
type ConversationIndexEntry struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count"`
	CreateTime   int64  `json:"create_time,omitempty"`
	UpdateTime   int64  `json:"update_time,omitempty"`
}

// ConversationIndex lists the conversations of one cached export
type ConversationIndex struct {
	Conversations []ConversationIndexEntry `json:"conversations"`
	Metadata      CacheMetadata            `json:"metadata"`
}

// NewCacheManager creates a new cache manager. The database is opened lazily.
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
	}
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetDatabasePath returns the path to the cache database
func (cm *CacheManager) GetDatabasePath() string {
	return filepath.Join(cm.cacheDir, "cache.db")
}

func (cm *CacheManager) open() (*sql.DB, error) {
	if cm.db != nil {
		return cm.db, nil
	}
	if err := os.MkdirAll(cm.cacheDir, 0755); err != nil {
		return nil, &StorageError{Path: cm.cacheDir, Op: "create", Err: err}
	}
	db, err := OpenCacheDatabase(cm.GetDatabasePath())
	if err != nil {
		return nil, &StorageError{Path: cm.GetDatabasePath(), Op: "open", Err: err}
	}
	cm.db = db
	return db, nil
}

// Close releases the database handle
func (cm *CacheManager) Close() error {
	if cm.db == nil {
		return nil
	}
	err := cm.db.Close()
	cm.db = nil
	return err
}

// statExport returns the absolute path and file info used as cache key
func statExport(exportPath string) (string, os.FileInfo, error) {
	abs, err := filepath.Abs(exportPath)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", nil, err
	}
	return abs, info, nil
}

// lookupMetadata returns the metadata for an export if the cached copy is
// still current. A nil result means a cache miss.
func (cm *CacheManager) lookupMetadata(exportPath string) (*CacheMetadata, error) {
	abs, info, err := statExport(exportPath)
	if err != nil {
		return nil, nil
	}

	db, err := cm.open()
	if err != nil {
		return nil, err
	}

	var meta CacheMetadata
	var modNanos, cachedAt int64
	var source string
	row := db.QueryRow(`SELECT batch_id, path, mod_time, size, source, cache_version, cached_at
		FROM exports WHERE path = ?`, abs)
	err = row.Scan(&meta.BatchID, &meta.ExportPath, &modNanos, &meta.ExportSize, &source, &meta.CacheVersion, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	meta.ExportMod = time.Unix(0, modNanos)
	meta.CachedAt = time.Unix(0, cachedAt)
	meta.Source = Source(source)

	if meta.CacheVersion != CacheVersion || meta.ExportSize != info.Size() || !meta.ExportMod.Equal(info.ModTime()) {
		LogDebug("Cache entry for %s is stale", abs)
		return nil, nil
	}
	return &meta, nil
}

// IsCacheValid checks if the cache holds a current copy of the export
func (cm *CacheManager) IsCacheValid(exportPath string) (bool, error) {
	meta, err := cm.lookupMetadata(exportPath)
	if err != nil {
		return false, err
	}
	return meta != nil, nil
}

// LoadIndex loads the conversation summaries of a cached export
func (cm *CacheManager) LoadIndex(exportPath string) (*ConversationIndex, error) {
	meta, err := cm.lookupMetadata(exportPath)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("no cache entry for %s", exportPath)
	}

	rows, err := cm.db.Query(`SELECT id, title, message_count, create_time, update_time
		FROM conversations WHERE batch_id = ? ORDER BY position`, meta.BatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	index := &ConversationIndex{Metadata: *meta, Conversations: make([]ConversationIndexEntry, 0)}
	for rows.Next() {
		var entry ConversationIndexEntry
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.MessageCount, &entry.CreateTime, &entry.UpdateTime); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		index.Conversations = append(index.Conversations, entry)
	}
	return index, rows.Err()
}

// LoadConversations loads every conversation of a cached export, in export order
func (cm *CacheManager) LoadConversations(exportPath string) (Source, []*Conversation, error) {
	meta, err := cm.lookupMetadata(exportPath)
	if err != nil {
		return SourceUnknown, nil, err
	}
	if meta == nil {
		return SourceUnknown, nil, fmt.Errorf("no cache entry for %s", exportPath)
	}

	rows, err := cm.db.Query(`SELECT id, title, create_time, update_time, messages
		FROM conversations WHERE batch_id = ? ORDER BY position`, meta.BatchID)
	if err != nil {
		return SourceUnknown, nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]*Conversation, 0)
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return SourceUnknown, nil, err
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return SourceUnknown, nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return meta.Source, conversations, nil
}

// LoadConversation loads a single cached conversation by id
func (cm *CacheManager) LoadConversation(exportPath, id string) (*Conversation, error) {
	meta, err := cm.lookupMetadata(exportPath)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("no cache entry for %s", exportPath)
	}

	rows, err := cm.db.Query(`SELECT id, title, create_time, update_time, messages
		FROM conversations WHERE batch_id = ? AND id = ? ORDER BY position DESC LIMIT 1`, meta.BatchID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("conversation not found: %s", id)
	}
	return scanConversation(rows)
}

func scanConversation(rows *sql.Rows) (*Conversation, error) {
	var conv Conversation
	var messages string
	if err := rows.Scan(&conv.ID, &conv.Title, &conv.CreateTime, &conv.UpdateTime, &messages); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if err := json.Unmarshal([]byte(messages), &conv.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages for %s: %w", conv.ID, err)
	}
	return &conv, nil
}

// SaveConversations replaces the cached copy of an export, keyed by the
// export's current size and modification time
func (cm *CacheManager) SaveConversations(exportPath string, source Source, conversations []*Conversation) error {
	_, info, err := statExport(exportPath)
	if err != nil {
		return &StorageError{Path: exportPath, Op: "stat", Err: err}
	}
	return cm.SaveConversationsAt(exportPath, info, source, conversations)
}

// SaveConversationsAt replaces the cached copy of an export, keyed by info.
// Callers pass the file info taken before reading the export, so a rewrite
// during parsing leaves the entry stale instead of caching old content under
// the new key.
func (cm *CacheManager) SaveConversationsAt(exportPath string, info os.FileInfo, source Source, conversations []*Conversation) error {
	abs, err := filepath.Abs(exportPath)
	if err != nil {
		return &StorageError{Path: exportPath, Op: "resolve", Err: err}
	}

	db, err := cm.open()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteExport(tx, abs); err != nil {
		return err
	}

	batchID := uuid.New().String()
	if _, err := tx.Exec(`INSERT INTO exports (batch_id, path, mod_time, size, source, cache_version, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		batchID, abs, info.ModTime().UnixNano(), info.Size(), string(source), CacheVersion, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO conversations
		(batch_id, position, id, title, message_count, create_time, update_time, messages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, conv := range conversations {
		if conv == nil {
			continue
		}
		messages, err := json.Marshal(conv.Messages)
		if err != nil {
			return fmt.Errorf("failed to marshal messages for %s: %w", conv.ID, err)
		}
		if _, err := stmt.Exec(batchID, i, conv.ID, conv.Title, len(conv.Messages), conv.CreateTime, conv.UpdateTime, string(messages)); err != nil {
			return fmt.Errorf("failed to insert conversation %s: %w", conv.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache: %w", err)
	}
	LogDebug("Cached %d conversation(s) from %s as batch %s", len(conversations), abs, batchID)
	return nil
}

func deleteExport(tx *sql.Tx, abs string) error {
	if _, err := tx.Exec(`DELETE FROM conversations WHERE batch_id IN (SELECT batch_id FROM exports WHERE path = ?)`, abs); err != nil {
		return fmt.Errorf("failed to delete cached conversations: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM exports WHERE path = ?`, abs); err != nil {
		return fmt.Errorf("failed to delete cached export: %w", err)
	}
	return nil
}

// ListExports returns metadata for every cached export
func (cm *CacheManager) ListExports() ([]CacheMetadata, error) {
	db, err := cm.open()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT batch_id, path, mod_time, size, source, cache_version, cached_at
		FROM exports ORDER BY cached_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var exports []CacheMetadata
	for rows.Next() {
		var meta CacheMetadata
		var modNanos, cachedAt int64
		var source string
		if err := rows.Scan(&meta.BatchID, &meta.ExportPath, &modNanos, &meta.ExportSize, &source, &meta.CacheVersion, &cachedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		meta.ExportMod = time.Unix(0, modNanos)
		meta.CachedAt = time.Unix(0, cachedAt)
		meta.Source = Source(source)
		exports = append(exports, meta)
	}
	return exports, rows.Err()
}

// ClearCache removes every cached export
func (cm *CacheManager) ClearCache() error {
	db, err := cm.open()
	if err != nil {
		return err
	}
	if _, err := db.Exec(`DELETE FROM conversations`); err != nil {
		return fmt.Errorf("failed to clear conversations: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM exports`); err != nil {
		return fmt.Errorf("failed to clear exports: %w", err)
	}
	return nil
}
