package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/remindd/internal/model"
)

const (
	tasksSlot        = "tasks"
	sqliteTimeLayout = time.RFC3339Nano
)

// Store persists the whole task collection as one JSON payload in a
// named slot. Load never fails its caller: a missing slot, an unreadable
// database, or a corrupt payload all degrade to an empty collection.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS slots (
			name TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("create slots table: %w", err)
	}
	return &Store{db: db}, nil
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the persisted collection.
func (s *Store) Load() []model.Task {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM slots WHERE name = ?`, tasksSlot).Scan(&payload)
	if err != nil {
		return []model.Task{}
	}
	var tasks []model.Task
	if err := json.Unmarshal([]byte(payload), &tasks); err != nil {
		return []model.Task{}
	}
	if tasks == nil {
		return []model.Task{}
	}
	return tasks
}

// Save overwrites the slot with the full collection in a single upsert.
func (s *Store) Save(tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO slots (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		tasksSlot, string(payload), time.Now().UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("write slot: %w", err)
	}
	return nil
}

// Wipe persists the empty collection.
func (s *Store) Wipe() error {
	return s.Save([]model.Task{})
}
