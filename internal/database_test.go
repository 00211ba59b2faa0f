package internal

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/agent-chat/testutil"
)

func TestOpenDatabase(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "existing database",
			setup: func(t *testing.T) string {
				dbPath := filepath.Join(testutil.CreateTempDir(t), "test.db")
				testutil.CreateSQLiteFixture(t, dbPath)
				return dbPath
			},
		},
		{
			name: "new database is created",
			setup: func(t *testing.T) string {
				return filepath.Join(testutil.CreateTempDir(t), "fresh.db")
			},
		},
		{
			name: "in memory",
			setup: func(t *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "missing parent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(testutil.CreateTempDir(t), "missing", "dir", "test.db")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := OpenDatabase(tt.setup(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenDatabase() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer db.Close()

			if _, err := db.Exec("SELECT key, value FROM chatKV LIMIT 1"); err != nil {
				t.Errorf("chatKV table missing: %v", err)
			}
		})
	}
}

func TestQueryChatKV(t *testing.T) {
	db := testutil.CreateTestDB(t)
	defer db.Close()

	tests := []struct {
		name   string
		prefix string
		want   int
	}{
		{name: "all histories", prefix: "chatHistory_", want: 2},
		{name: "one history", prefix: "chatHistory_" + testutil.SessionOne, want: 1},
		{name: "meta", prefix: "chatMeta_", want: 1},
		{name: "webhook keys", prefix: "webhooks", want: 1},
		{name: "no match", prefix: "nonexistent", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, err := QueryChatKV(db, tt.prefix)
			if err != nil {
				t.Fatalf("QueryChatKV() error = %v", err)
			}
			if len(pairs) != tt.want {
				t.Errorf("QueryChatKV() returned %d pairs, want %d", len(pairs), tt.want)
			}
			for i, pair := range pairs {
				if !strings.HasPrefix(pair.Key, tt.prefix) {
					t.Errorf("pair %d key %q does not start with %q", i, pair.Key, tt.prefix)
				}
				if len(pair.Value) == 0 {
					t.Errorf("pair %d has empty value", i)
				}
			}
		})
	}
}

func TestQueryChatKV_LiteralPrefix(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	defer db.Close()

	testutil.InsertPair(t, db, "chat_1", "underscore")
	testutil.InsertPair(t, db, "chatX1", "wildcard match")
	testutil.InsertPair(t, db, "CHAT_2", "upper case")
	testutil.InsertPair(t, db, "chat%3", "percent")

	pairs, err := QueryChatKV(db, "chat_")
	if err != nil {
		t.Fatalf("QueryChatKV() error = %v", err)
	}
	if len(pairs) != 1 || pairs[0].Key != "chat_1" {
		t.Errorf("QueryChatKV(chat_) = %v, want only chat_1", pairs)
	}

	pairs, err = QueryChatKV(db, "chat%")
	if err != nil {
		t.Fatalf("QueryChatKV() error = %v", err)
	}
	if len(pairs) != 1 || pairs[0].Key != "chat%3" {
		t.Errorf("QueryChatKV(chat%%) = %v, want only chat%%3", pairs)
	}
}

func TestQueryChatKV_NullValues(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	defer db.Close()

	if _, err := db.Exec("INSERT INTO chatKV (key, value) VALUES (?, ?)", "test:key1", nil); err != nil {
		t.Fatalf("Failed to insert NULL value: %v", err)
	}
	testutil.InsertPair(t, db, "test:key2", "value2")

	pairs, err := QueryChatKV(db, "test:")
	if err != nil {
		t.Fatalf("QueryChatKV() error = %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("QueryChatKV() returned %d pairs, want 1", len(pairs))
	}
	if pairs[0].Key != "test:key2" {
		t.Errorf("QueryChatKV() returned key %q, want test:key2", pairs[0].Key)
	}
}
