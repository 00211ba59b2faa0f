package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/agent-chat/internal"
)

func TestDisplaySummaries(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.Local)
	summaries := []internal.SessionSummary{
		{ID: "session_2", Preview: "latest question", MessageCount: 4, LastUpdatedAt: now.Add(-time.Hour)},
		{ID: "session_1", MessageCount: 0},
	}

	var buf bytes.Buffer
	displaySummaries(&buf, summaries, "session_2", now)
	out := buf.String()

	for _, want := range []string{"Found 2 session(s)", "session_2", "latest question", "Untitled", "Today 17:00", "—", "*"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDisplaySummaries_Empty(t *testing.T) {
	var buf bytes.Buffer
	displaySummaries(&buf, nil, "", time.Now())
	if !strings.Contains(buf.String(), "No sessions found") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "zero", t: time.Time{}, want: "—"},
		{name: "today", t: now.Add(-2 * time.Hour), want: "Today 16:00"},
		{name: "this week", t: now.AddDate(0, 0, -3), want: "Tue 18:00"},
		{name: "this year", t: now.AddDate(0, 0, -60), want: "Jan 15 18:00"},
		{name: "older", t: time.Date(2021, 6, 1, 9, 0, 0, 0, time.Local), want: "2021-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelative(tt.t, now); got != tt.want {
				t.Errorf("formatRelative() = %q, want %q", got, tt.want)
			}
		})
	}
}
