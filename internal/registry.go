package internal

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const metaKeyPrefix = "chatMeta_"

// DefaultSessionName is shown for sessions without a user message yet
const DefaultSessionName = "New Chat"

func metaKey(sessionID string) string {
	return metaKeyPrefix + sessionID
}

// SessionRegistry tracks the current session pointer and per-session headers
type SessionRegistry struct {
	kv          KVStore
	transcripts *TranscriptStore
	now         func() time.Time
	mu          sync.Mutex
}

// NewSessionRegistry creates a registry over kv; transcripts is used to assemble full sessions
func NewSessionRegistry(kv KVStore, transcripts *TranscriptStore) *SessionRegistry {
	return &SessionRegistry{
		kv:          kv,
		transcripts: transcripts,
		now:         time.Now,
	}
}

// Current returns the persisted current session id
func (r *SessionRegistry) Current() (string, bool, error) {
	data, found, err := r.kv.Get(currentSessionKey)
	if err != nil || !found || len(data) == 0 {
		return "", false, err
	}
	return string(data), true, nil
}

// SetCurrent persists id as the current session
func (r *SessionRegistry) SetCurrent(id string) error {
	if id == "" {
		return &ValidationError{Field: "session id", Reason: "cannot be empty"}
	}
	return r.kv.Set(currentSessionKey, []byte(id))
}

// EnsureCurrent returns the current session, creating one on first start
func (r *SessionRegistry) EnsureCurrent() (string, error) {
	id, found, err := r.Current()
	if err != nil {
		return "", err
	}
	if found {
		LogDebug("retrieved existing session id: %s", id)
		return id, nil
	}
	return r.NewSession()
}

// NewSession generates a fresh session id and makes it current
func (r *SessionRegistry) NewSession() (string, error) {
	id := NewSessionID(r.now())
	if err := r.SetCurrent(id); err != nil {
		return "", err
	}
	LogInfo("created new session %s", id)
	return id, nil
}

// Touch refreshes the session header after msg was recorded.
// The display name is taken from the first user message and never changes afterwards.
func (r *SessionRegistry) Touch(id string, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, _, err := r.Meta(id)
	if err != nil {
		return err
	}
	if meta.Name == "" && msg.Sender == SenderUser {
		meta.Name = truncateRunes(msg.Text, previewLength)
	}
	meta.LastMessage = msg.Text
	meta.LastUpdatedAt = msg.Timestamp

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal session meta: %w", err)
	}
	return r.kv.Set(metaKey(id), data)
}

// Meta returns the stored header for id
func (r *SessionRegistry) Meta(id string) (SessionMeta, bool, error) {
	key := metaKey(id)
	data, found, err := r.kv.Get(key)
	if err != nil || !found {
		return SessionMeta{}, false, err
	}
	var meta SessionMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		LogWarn("%v", &StorageError{Key: key, Op: "parse", Err: err})
		return SessionMeta{}, false, nil
	}
	return meta, true, nil
}

// Forget drops the header of a deleted session
func (r *SessionRegistry) Forget(id string) error {
	return r.kv.Remove(metaKey(id))
}

// Session assembles the header and transcript of id
func (r *SessionRegistry) Session(id string) (*Session, error) {
	transcript, err := r.transcripts.Load(id)
	if err != nil {
		return nil, err
	}
	meta, _, err := r.Meta(id)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:            id,
		Name:          meta.Name,
		LastMessage:   meta.LastMessage,
		LastUpdatedAt: meta.LastUpdatedAt,
		Messages:      transcript.Slice(),
	}
	if session.Messages == nil {
		session.Messages = []Message{}
	}
	if session.Name == "" {
		for msg := range transcript.All() {
			if msg.Sender == SenderUser {
				session.Name = truncateRunes(msg.Text, previewLength)
				break
			}
		}
	}
	if session.Name == "" {
		session.Name = DefaultSessionName
	}
	if last, ok := transcript.Last(); ok {
		if session.LastMessage == "" {
			session.LastMessage = last.Text
		}
		if session.LastUpdatedAt == "" {
			session.LastUpdatedAt = last.Timestamp
		}
	}
	return session, nil
}
