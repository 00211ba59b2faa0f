package internal

import (
	"encoding/json"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"
)

const (
	currentSessionKey = "persistentSessionId"
	historyKeyPrefix  = "chatHistory_"
)

func historyKey(sessionID string) string {
	return historyKeyPrefix + sessionID
}

// Transcript is a loaded, ordered message log. It can be iterated any number of times.
type Transcript struct {
	messages []Message
}

// All yields the messages in append order
func (t Transcript) All() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for _, msg := range t.messages {
			if !yield(msg) {
				return
			}
		}
	}
}

// Len returns the number of messages
func (t Transcript) Len() int {
	return len(t.messages)
}

// Slice returns a copy of the messages
func (t Transcript) Slice() []Message {
	return append([]Message(nil), t.messages...)
}

// Last returns the most recent message
func (t Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// TranscriptStore persists per-session message logs in a KVStore
type TranscriptStore struct {
	kv KVStore
	mu sync.Mutex
}

// NewTranscriptStore creates a TranscriptStore over kv
func NewTranscriptStore(kv KVStore) *TranscriptStore {
	return &TranscriptStore{kv: kv}
}

// Append adds msg to the end of the session's log and marks the session as current
func (s *TranscriptStore) Append(sessionID string, msg Message) error {
	if sessionID == "" {
		return &ValidationError{Field: "session id", Reason: "cannot be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(sessionID)
	if err != nil {
		return err
	}
	history = append(history, msg)

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := s.kv.Set(historyKey(sessionID), data); err != nil {
		return err
	}
	LogDebug("message saved to history for session %s (%d messages)", sessionID, len(history))

	// the most recently written session survives a restart
	return s.kv.Set(currentSessionKey, []byte(sessionID))
}

// Load returns the session's transcript; a session with no stored history is empty
func (s *TranscriptStore) Load(sessionID string) (Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(sessionID)
	if err != nil {
		return Transcript{}, err
	}
	return Transcript{messages: history}, nil
}

func (s *TranscriptStore) load(sessionID string) ([]Message, error) {
	key := historyKey(sessionID)
	data, found, err := s.kv.Get(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return decodeHistory(key, data), nil
}

// ListAll summarizes every stored session, most recently updated first
func (s *TranscriptStore) ListAll() ([]SessionSummary, error) {
	pairs, err := s.kv.Scan(historyKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to scan chat histories: %w", err)
	}

	summaries := make([]SessionSummary, 0, len(pairs))
	for _, pair := range pairs {
		messages := decodeHistory(pair.Key, pair.Value)
		if len(messages) == 0 {
			continue
		}
		summaries = append(summaries, SessionSummary{
			ID:            strings.TrimPrefix(pair.Key, historyKeyPrefix),
			Preview:       previewText(messages[0].Text),
			MessageCount:  len(messages),
			LastUpdatedAt: messages[len(messages)-1].Time(),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].LastUpdatedAt.Equal(summaries[j].LastUpdatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].LastUpdatedAt.After(summaries[j].LastUpdatedAt)
	})
	return summaries, nil
}

// Delete removes the session's log. Selecting a replacement session is the caller's job.
func (s *TranscriptStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Remove(historyKey(sessionID))
}

// decodeHistory parses a stored history, dropping anything malformed
func decodeHistory(key string, data []byte) []Message {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		LogWarn("%v", &StorageError{Key: key, Op: "parse", Err: err})
		return nil
	}

	messages := make([]Message, 0, len(raw))
	for i, item := range raw {
		var msg Message
		if err := json.Unmarshal(item, &msg); err != nil {
			LogWarn("skipping message %d in %s: %v", i, key, err)
			continue
		}
		if msg.Text == "" || msg.Sender == "" {
			LogWarn("skipping invalid message %d in %s: missing text or sender", i, key)
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}
