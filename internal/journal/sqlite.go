package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db      *sql.DB
	closed  bool
	writeMu sync.Mutex
}

// NewSQLiteStore creates a new SQLite journal at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=60000", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS uploads (
		key TEXT NOT NULL PRIMARY KEY,
		local_path TEXT NOT NULL,
		size INTEGER NOT NULL,
		status TEXT NOT NULL,
		detail TEXT,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_status ON uploads(status);
	`

	_, err := s.db.Exec(query)
	return err
}

// SaveRecord inserts or replaces one file's outcome
func (s *SQLiteStore) SaveRecord(record *Record) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return fmt.Errorf("journal is closed")
	}

	query := `
	INSERT INTO uploads (key, local_path, size, status, detail, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		local_path = excluded.local_path,
		size = excluded.size,
		status = excluded.status,
		detail = excluded.detail,
		updated_at = excluded.updated_at
	`

	_, err := s.db.Exec(query,
		record.Key, record.LocalPath, record.Size,
		string(record.Status), record.Detail,
		time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// GetRecord returns the outcome stored for key, or nil when absent
func (s *SQLiteStore) GetRecord(key string) (*Record, error) {
	row := s.db.QueryRow(
		`SELECT key, local_path, size, status, detail, updated_at FROM uploads WHERE key = ?`, key)

	record, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return record, err
}

// ListFailed returns all records with failed status
func (s *SQLiteStore) ListFailed() ([]*Record, error) {
	rows, err := s.db.Query(
		`SELECT key, local_path, size, status, detail, updated_at FROM uploads WHERE status = ?`,
		string(StatusFailed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func scanRecord(scan func(dest ...any) error) (*Record, error) {
	var record Record
	var status, updatedAt string
	var detail sql.NullString

	if err := scan(&record.Key, &record.LocalPath, &record.Size, &status, &detail, &updatedAt); err != nil {
		return nil, err
	}

	record.Status = Status(status)
	record.Detail = detail.String
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		record.UpdatedAt = ts
	}
	return &record, nil
}
