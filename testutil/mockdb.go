package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// Sample session ids seeded by CreateTestDB
const (
	SessionOne = "session_1700000000000_aaaaaaaaaaaaa"
	SessionTwo = "session_1700000100000_bbbbbbbbbbbbb"
)

// CreateInMemoryDB creates an in-memory SQLite database with an empty chatKV table
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS chatKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create chatKV table: %v", err)
	}

	return db
}

// CreateTestDB creates an in-memory database holding two chat histories and two webhooks
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	pairs := []struct {
		key   string
		value string
	}{
		{
			key:   "chatHistory_" + SessionOne,
			value: `[{"id":"m1","text":"Hello","sender":"user","timestamp":"2023-11-14T22:13:20.000Z"},{"id":"m2","text":"Hi there","sender":"assistant","timestamp":"2023-11-14T22:13:21.000Z"}]`,
		},
		{
			key:   "chatHistory_" + SessionTwo,
			value: `[{"id":"m3","text":"How are you?","sender":"user","timestamp":"2023-11-14T22:15:00.000Z"}]`,
		},
		{
			key:   "chatMeta_" + SessionOne,
			value: `{"name":"Hello","lastMessage":"Hi there","lastUpdatedAt":"2023-11-14T22:13:21.000Z"}`,
		},
		{
			key:   "webhooks",
			value: `[{"name":"primary","url":"https://example.com/hook"},{"name":"backup","url":"https://backup.example.com/hook"}]`,
		},
		{key: "defaultWebhookName", value: "primary"},
		{key: "persistentSessionId", value: SessionTwo},
	}

	stmt, err := db.Prepare("INSERT INTO chatKV (key, value) VALUES (?, ?)")
	if err != nil {
		db.Close()
		t.Fatalf("Failed to prepare insert statement: %v", err)
	}
	defer stmt.Close()

	for _, pair := range pairs {
		if _, err := stmt.Exec(pair.key, pair.value); err != nil {
			db.Close()
			t.Fatalf("Failed to insert %s: %v", pair.key, err)
		}
	}

	return db
}

// InsertPair inserts or replaces one key in the chatKV table
func InsertPair(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	insertSQL := "INSERT OR REPLACE INTO chatKV (key, value) VALUES (?, ?)"
	if _, err := db.Exec(insertSQL, key, value); err != nil {
		t.Fatalf("Failed to insert %s: %v", key, err)
	}
}
