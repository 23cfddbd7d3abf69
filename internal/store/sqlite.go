package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lethe-board/lethe/internal/model"
)

// timeLayout is a fixed-width UTC layout so stored timestamps sort
// lexicographically in creation order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	capacity int
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
// capacity is the maximum number of memories the board holds.
func NewSQLiteStore(dbPath string, capacity int) (*SQLiteStore, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", capacity)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db, capacity: capacity}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	// AUTOINCREMENT keeps ids monotonic and never reused, even after the
	// row they belonged to has been evicted.
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		text       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		thumbnail  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at, id);
	CREATE INDEX IF NOT EXISTS idx_memories_text ON memories(text);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count memories: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, text string, thumbnail *string) (*model.Memory, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (text, created_at, thumbnail) VALUES (?, ?, ?)`,
		text, now.Format(timeLayout), thumbnail)
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert memory id: %w", err)
	}

	return &model.Memory{
		ID:        id,
		Text:      text,
		CreatedAt: now,
		Thumbnail: thumbnail,
	}, nil
}

func (s *SQLiteStore) EvictOldestIfFull(ctx context.Context) error {
	// One oldest row per pass; loops until under capacity so a store that
	// somehow over-filled still converges.
	for {
		n, err := s.Count(ctx)
		if err != nil {
			return err
		}
		if n < s.capacity {
			return nil
		}
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM memories WHERE id =
			   (SELECT id FROM memories ORDER BY created_at ASC, id ASC LIMIT 1)`)
		if err != nil {
			return fmt.Errorf("evict oldest: %w", err)
		}
	}
}

func (s *SQLiteStore) ListOrderedByTime(ctx context.Context) ([]model.Memory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, created_at, thumbnail FROM memories
		 ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

func (s *SQLiteStore) ExistsWithText(ctx context.Context, text string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE text = ?`, text).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteByID(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete memory %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var createdAt string
	var thumbnail sql.NullString

	if err := row.Scan(&m.ID, &m.Text, &createdAt, &thumbnail); err != nil {
		return m, err
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return m, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	m.CreatedAt = t

	if thumbnail.Valid {
		m.Thumbnail = &thumbnail.String
	}
	return m, nil
}
