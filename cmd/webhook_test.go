package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/testutil"
)

func TestWebhookCommands(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	out := mustExecute(t, dir, "webhook", "add", "primary", "https://example.com/hook")
	if !strings.Contains(out, "primary is the default webhook") {
		t.Errorf("first webhook should become default:\n%s", out)
	}
	out = mustExecute(t, dir, "webhook", "add", "backup", "http://localhost:5678/webhook")
	if strings.Contains(out, "default") {
		t.Errorf("second webhook should not become default:\n%s", out)
	}

	out = mustExecute(t, dir, "webhook", "list")
	if !strings.Contains(out, "primary") || !strings.Contains(out, "http://localhost:5678/webhook") {
		t.Errorf("list output:\n%s", out)
	}

	mustExecute(t, dir, "webhook", "default", "backup")
	out = mustExecute(t, dir, "webhook", "default")
	if !strings.Contains(out, "backup\thttp://localhost:5678/webhook") {
		t.Errorf("default = %q, want backup", out)
	}

	out = mustExecute(t, dir, "webhook", "remove", "backup")
	if !strings.Contains(out, "Default webhook: primary") {
		t.Errorf("removing the default should promote primary:\n%s", out)
	}

	out = mustExecute(t, dir, "webhook", "rm", "primary")
	if !strings.Contains(out, "No webhooks left") {
		t.Errorf("remove output:\n%s", out)
	}
	if _, err := executeCommand(t, dir, "webhook", "default"); err == nil {
		t.Error("default with no webhooks should fail")
	}
}

func TestWebhookCommands_Errors(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	mustExecute(t, dir, "webhook", "add", "primary", "https://example.com/hook")

	tests := []struct {
		name     string
		args     []string
		notFound bool
	}{
		{name: "invalid url", args: []string{"webhook", "add", "bad", "ftp://example.com"}},
		{name: "blank name", args: []string{"webhook", "add", " ", "https://example.com"}},
		{name: "duplicate", args: []string{"webhook", "add", "primary", "https://example.org"}},
		{name: "remove unknown", args: []string{"webhook", "remove", "ghost"}, notFound: true},
		{name: "default unknown", args: []string{"webhook", "default", "ghost"}, notFound: true},
		{name: "missing url", args: []string{"webhook", "add", "only-name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, dir, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			var nf *internal.NotFoundError
			if tt.notFound != errors.As(err, &nf) {
				t.Errorf("error = %v (%T), notFound %v", err, err, tt.notFound)
			}
		})
	}

	out := mustExecute(t, dir, "webhook", "list")
	if strings.Count(out, "\n") != 1 {
		t.Errorf("failed commands must not change the directory:\n%s", out)
	}
}
