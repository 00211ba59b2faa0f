package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who produced a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// TimestampLayout is the ISO-8601 layout messages are stamped with (millisecond precision, UTC)
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Maximum runes kept for session names and history previews
const previewLength = 50

// Message is one immutable entry of a session transcript
type Message struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Text       string `json:"text" yaml:"text"`
	Sender     Sender `json:"sender" yaml:"sender"`
	Timestamp  string `json:"timestamp" yaml:"timestamp"`
	AvatarRef  string `json:"avatarSrc,omitempty" yaml:"avatar_src,omitempty"`
	DispatchID string `json:"dispatchId,omitempty" yaml:"dispatch_id,omitempty"`
}

// NewMessage creates a message stamped with at
func NewMessage(text string, sender Sender, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: at.UTC().Format(TimestampLayout),
	}
}

// Time parses the message timestamp, returning the zero time when it is unparseable
func (m Message) Time() time.Time {
	t, err := time.Parse(time.RFC3339, m.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Session is a conversation thread with its full transcript
type Session struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name,omitempty" yaml:"name,omitempty"`
	LastMessage   string    `json:"lastMessage,omitempty" yaml:"last_message,omitempty"`
	LastUpdatedAt string    `json:"lastUpdatedAt,omitempty" yaml:"last_updated_at,omitempty"`
	Messages      []Message `json:"messages" yaml:"messages"`
}

// SessionMeta is the persisted per-session header
type SessionMeta struct {
	Name          string `json:"name"`
	LastMessage   string `json:"lastMessage"`
	LastUpdatedAt string `json:"lastUpdatedAt"`
}

// SessionSummary is one row of the history listing
type SessionSummary struct {
	ID            string    `json:"id" yaml:"id"`
	Preview       string    `json:"preview" yaml:"preview"`
	MessageCount  int       `json:"messageCount" yaml:"message_count"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt" yaml:"last_updated_at"`
}

// NewSessionID generates an opaque, never reused session identifier
func NewSessionID(at time.Time) string {
	return fmt.Sprintf("session_%d_%s", at.UnixMilli(), randomSuffix())
}

// NewFileID generates an identifier for an attached file
func NewFileID(at time.Time) string {
	return fmt.Sprintf("file_%d_%s", at.UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
}

// truncateRunes shortens s to at most n runes
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// previewText truncates s for history listings, marking the cut with "..."
func previewText(s string) string {
	if len([]rune(s)) <= previewLength {
		return s
	}
	return truncateRunes(s, previewLength) + "..."
}
