// Package guest persists storefront state that lives on the user's machine:
// the guest cart and the session cookie.
package guest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Slot names.
const (
	CartSlot    = "guestCart"
	SessionSlot = "session"
)

// Slots is a named-slot key/value store.
type Slots interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, value []byte) error
	Remove(ctx context.Context, name string) error
}

// SQLiteStore keeps slots in a single SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the store at path. ":memory:" is accepted.
func Open(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open guest store: %w", err)
	}
	// one connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, dbPath: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Get returns nil, nil for a missing slot.
func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", name, err)
	}
	return value, nil
}

func (s *SQLiteStore) Put(ctx context.Context, name string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", name, err)
	}
	return nil
}

// Slot returns a handle bound to one slot name.
func (s *SQLiteStore) Slot(name string) *Slot {
	return &Slot{slots: s, name: name}
}

// MemoryStore is a process-local Slots implementation.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.slots[name]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

func (m *MemoryStore) Put(_ context.Context, name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[name] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, name)
	return nil
}

func (m *MemoryStore) Slot(name string) *Slot {
	return &Slot{slots: m, name: name}
}

// Slot reads and writes a single named value.
type Slot struct {
	slots Slots
	name  string
}

func NewSlot(slots Slots, name string) *Slot {
	return &Slot{slots: slots, name: name}
}

func (s *Slot) Name() string { return s.name }

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	return s.slots.Get(ctx, s.name)
}

func (s *Slot) Save(ctx context.Context, data []byte) error {
	return s.slots.Put(ctx, s.name, data)
}

func (s *Slot) Delete(ctx context.Context) error {
	return s.slots.Remove(ctx, s.name)
}
