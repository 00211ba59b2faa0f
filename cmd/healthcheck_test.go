package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/testutil"
)

func TestHealthcheckCommand(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	out, err := executeCommand(t, dir, "healthcheck")
	if !errors.Is(err, internal.ErrNoWebhookConfigured) {
		t.Fatalf("error = %v, want ErrNoWebhookConfigured", err)
	}
	for _, want := range []string{"Storage paths resolved", "Storage created", "No webhook configured", "Health check failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	mustExecute(t, dir, "webhook", "add", "primary", "https://example.com/hook")
	out = mustExecute(t, dir, "healthcheck", "--details")
	for _, want := range []string{"Storage opened", "1 webhook(s) configured, default: primary", "primary → https://example.com/hook", "Data dir:", "Health check passed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
