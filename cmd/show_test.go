package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/testutil"
)

func TestFilterMessages(t *testing.T) {
	session := internal.CreateTestSession("session_1")
	first := session.Messages[0].Time()

	tests := []struct {
		name  string
		since time.Time
		want  int
	}{
		{name: "zero keeps all", since: time.Time{}, want: 2},
		{name: "at first message", since: first, want: 2},
		{name: "after first message", since: first.Add(time.Second), want: 1},
		{name: "after everything", since: first.Add(time.Hour), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterMessages(session.Messages, tt.since); len(got) != tt.want {
				t.Errorf("filterMessages() kept %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{name: "short", text: "hello world", width: 20, want: "hello world"},
		{name: "wraps on words", text: "one two three four", width: 9, want: "one two\nthree\nfour"},
		{name: "keeps newlines", text: "a\nb", width: 5, want: "a\nb"},
		{name: "counts runes", text: "héllo wörld", width: 11, want: "héllo wörld"},
		{name: "long word", text: "abcdefghij x", width: 5, want: "abcdefghij\nx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(tt.text, tt.width); got != tt.want {
				t.Errorf("wrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayMessage(t *testing.T) {
	session := internal.CreateTestSession("session_1")

	var buf bytes.Buffer
	displaySessionHeader(&buf, session)
	displayMessage(&buf, 1, session.Messages[0], 2, "")
	displayMessage(&buf, 2, session.Messages[1], 2, "")
	displayMessage(&buf, 3, internal.Message{Sender: internal.SenderAssistant}, 3, "")
	out := buf.String()

	for _, want := range []string{"ID: session_1", "Messages: 2", "👤 You", "[1/2]", "🤖 Agent", "I'm doing **well**", "(empty message)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowCommand_Flags(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	if _, err := executeCommand(t, dir, "show", "--since", "yesterday"); err == nil {
		t.Error("invalid --since should fail")
	}

	out := mustExecute(t, dir, "show", "--raw", "--limit", "5")
	if !strings.Contains(out, "Messages: 0") {
		t.Errorf("empty active session:\n%s", out)
	}
}
