package internal

import (
	"database/sql"
	"errors"
	"fmt"
)

// KVStore is the durable key-value contract the chat core persists through.
// A missing key is reported as found=false, never as an error.
type KVStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Scan(prefix string) ([]KeyValuePair, error)
	Close() error
}

// Backend names accepted by OpenKV
const (
	BackendSQLite = "sqlite"
	BackendPebble = "pebble"
	BackendMemory = "memory"
)

// OpenKV opens the store for the given backend at path
func OpenKV(backend, path string) (KVStore, error) {
	switch backend {
	case "", BackendSQLite:
		return OpenSQLiteKV(path)
	case BackendPebble:
		return OpenPebbleKV(path)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s (supported: sqlite, pebble, memory)", backend)
	}
}

// SQLiteKV stores pairs in the chatKV table
type SQLiteKV struct {
	db *sql.DB
}

// OpenSQLiteKV opens a SQLite-backed store
func OpenSQLiteKV(path string) (*SQLiteKV, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteKV{db: db}, nil
}

// NewSQLiteKV wraps an already opened database; the chatKV table must exist
func NewSQLiteKV(db *sql.DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

func (s *SQLiteKV) Get(key string) ([]byte, bool, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM chatKV WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Key: key, Op: "get", Err: err}
	}
	if !value.Valid {
		return nil, false, nil
	}
	return []byte(value.String), true, nil
}

func (s *SQLiteKV) Set(key string, value []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO chatKV (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, string(value),
	)
	if err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

func (s *SQLiteKV) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM chatKV WHERE key = ?", key); err != nil {
		return &StorageError{Key: key, Op: "remove", Err: err}
	}
	return nil
}

func (s *SQLiteKV) Scan(prefix string) ([]KeyValuePair, error) {
	pairs, err := QueryChatKV(s.db, prefix)
	if err != nil {
		return nil, &StorageError{Key: prefix, Op: "scan", Err: err}
	}
	return pairs, nil
}

func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
