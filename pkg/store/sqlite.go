package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xinguang/stockdeck/pkg/model"
)

// SQLiteStore persists the profile in a one-row sqlite table. The record is
// still a whole-object overwrite, same contract as FileStore; sqlite just
// makes the write durable without a rename dance.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at dbPath and runs
// migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS profile (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		payload    TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	return err
}

// Load implements Store.
func (s *SQLiteStore) Load() (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM profile WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile row: %w", err)
	}

	profile, err := model.UnmarshalProfile([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return profile, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(profile *model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := profile.Marshal()
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO profile (id, payload, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(data), time.Now().Unix(),
	)
	return err
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
