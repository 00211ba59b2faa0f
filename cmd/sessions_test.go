package cmd

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/testutil"
)

func TestSessionCommands(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	server := testutil.NewWebhookServer(t, http.StatusOK, `[{"output":"ok"}]`)
	mustExecute(t, dir, "webhook", "add", "primary", server.URL)

	mustExecute(t, dir, "send", "first topic")
	newer := strings.TrimSpace(mustExecute(t, dir, "new"))
	if !strings.HasPrefix(newer, "session_") {
		t.Fatalf("new printed %q", newer)
	}
	mustExecute(t, dir, "send", "second topic")

	out := mustExecute(t, dir, "list")
	for _, want := range []string{"Found 2 session(s)", "first topic", "second topic", newer} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}

	var older string
	for _, s := range listSessions(t, dir) {
		if s.ID != newer {
			older = s.ID
		}
	}
	out = mustExecute(t, dir, "switch", older)
	if !strings.Contains(out, "Switched to "+older) {
		t.Errorf("switch output: %s", out)
	}
	out = mustExecute(t, dir, "show", "--raw")
	if !strings.Contains(out, "first topic") {
		t.Errorf("show after switch:\n%s", out)
	}

	out = mustExecute(t, dir, "delete", older)
	if !strings.Contains(out, "Active session: "+newer) {
		t.Errorf("deleting the active session should activate the remaining one:\n%s", out)
	}
	if got := listSessions(t, dir); len(got) != 1 || got[0].ID != newer {
		t.Errorf("sessions after delete = %+v", got)
	}
}

func TestSessionCommands_Unknown(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	for _, args := range [][]string{
		{"switch", "session_0_missing"},
		{"delete", "session_0_missing"},
		{"show", "session_0_missing"},
	} {
		_, err := executeCommand(t, dir, args...)
		var nf *internal.NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("%v: error = %v, want NotFoundError", args, err)
		}
	}
}

func listSessions(t *testing.T, dir string) []internal.SessionSummary {
	t.Helper()
	cfg, err := internal.ResolveConfig(internal.ConfigOverrides{Storage: dir})
	if err != nil {
		t.Fatal(err)
	}
	app, err := internal.OpenApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = app.Close() }()
	summaries, err := app.History()
	if err != nil {
		t.Fatal(err)
	}
	return summaries
}
