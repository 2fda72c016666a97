// Package store persists a local history of submitted feedback results
// using SQLite. Recording is best effort: the server logs and ignores
// storage failures rather than failing an interaction over them.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/airsulG/interactive-feedback-magic/internal/feedback"
)

// HistoryStore records one row per completed feedback interaction.
type HistoryStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// HistoryEntry is one recorded interaction.
type HistoryEntry struct {
	ID             string
	Prompt         string
	Feedback       string
	SessionControl string
	ImageCount     int
	CreatedAt      time.Time
}

// NewHistoryStore opens (and initializes) the SQLite database at path.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &HistoryStore{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *HistoryStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS feedback_history (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		feedback TEXT NOT NULL,
		session_control TEXT NOT NULL,
		image_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_history_created ON feedback_history(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Record stores one completed interaction and returns its id.
func (s *HistoryStore) Record(prompt string, result feedback.FeedbackResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO feedback_history (id, prompt, feedback, session_control, image_count)
		 VALUES (?, ?, ?, ?, ?)`,
		id, prompt, result.InteractiveFeedback, string(result.SessionControl), len(result.Images),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record feedback: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (s *HistoryStore) Recent(limit int) ([]HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, prompt, feedback, session_control, image_count, created_at
		 FROM feedback_history
		 ORDER BY created_at DESC, id
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Prompt, &e.Feedback, &e.SessionControl, &e.ImageCount, &e.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
