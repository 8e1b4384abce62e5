package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/winlog/internal/domain"
	"github.com/ashureev/winlog/internal/shared"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	entropyMu sync.Mutex
	entropy   io.Reader
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		physical_achievement TEXT NOT NULL,
		social_win TEXT NOT NULL,
		committed_at INTEGER NOT NULL,
		updated_range TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_committed ON entries(committed_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordEntry persists a committed entry.
// Retries with exponential backoff on SQLITE_BUSY.
func (s *SQLiteStore) RecordEntry(ctx context.Context, entry *domain.Entry) error {
	now := time.Now()
	if entry.ID == "" {
		entry.ID = s.newID(now)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}

	maxRetries := 3
	baseDelay := 50 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.insertEntry(ctx, entry)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || i == maxRetries-1 {
			break
		}
		delay := baseDelay * time.Duration(1<<i) // 50ms, 100ms
		slog.Debug("RecordEntry failed with SQLITE_BUSY, retrying",
			"entry_id", entry.ID,
			"attempt", i+1,
			"delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("record entry: %w", ctx.Err())
		}
	}
	return err
}

func (s *SQLiteStore) insertEntry(ctx context.Context, entry *domain.Entry) error {
	query := `
	INSERT INTO entries (id, session_id, physical_achievement, social_win, committed_at, updated_range, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	var updatedRange interface{}
	if entry.UpdatedRange != "" {
		updatedRange = entry.UpdatedRange
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.SessionID, entry.PhysicalAchievement, entry.SocialWin,
		entry.CommittedAt.Unix(), updatedRange, entry.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// ListEntries returns the most recent entries, newest first.
func (s *SQLiteStore) ListEntries(ctx context.Context, limit int) ([]*domain.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, session_id, physical_achievement, social_win,
		       committed_at, updated_range, created_at
		FROM entries ORDER BY committed_at DESC, id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close entries rows", "error", closeErr)
		}
	}()

	var entries []*domain.Entry
	for rows.Next() {
		var e domain.Entry
		var updatedRange sql.NullString
		var committedAt, createdAt int64

		if err := rows.Scan(
			&e.ID, &e.SessionID, &e.PhysicalAchievement, &e.SocialWin,
			&committedAt, &updatedRange, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}

		e.UpdatedRange = updatedRange.String
		e.CommittedAt = time.Unix(committedAt, 0)
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
