package internal

import (
	"time"
)

// testEpoch is the fixed clock sample sessions are stamped with
var testEpoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// CreateTestSession creates a test session with a user question and an assistant reply
func CreateTestSession(id string) *Session {
	return CreateTestSessionWithMessages(id, []Message{
		{
			ID:        "msg-1",
			Text:      "Hello, how are you?",
			Sender:    SenderUser,
			Timestamp: testEpoch.Format(TimestampLayout),
			AvatarRef: UserAvatarRef,
		},
		{
			ID:         "msg-2",
			Text:       "I'm doing **well**, thank you!",
			Sender:     SenderAssistant,
			Timestamp:  testEpoch.Add(2 * time.Second).Format(TimestampLayout),
			AvatarRef:  AssistantAvatarRef,
			DispatchID: "dispatch-1",
		},
	})
}

// CreateTestSessionWithMessages creates a test session with custom messages
func CreateTestSessionWithMessages(id string, messages []Message) *Session {
	s := &Session{
		ID:       id,
		Name:     "Hello, how are you?",
		Messages: messages,
	}
	if len(messages) > 0 {
		last := messages[len(messages)-1]
		s.LastMessage = previewText(last.Text)
		s.LastUpdatedAt = last.Timestamp
	}
	return s
}
