package internal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iksnae/agent-chat/testutil"
)

func newTestApp(t *testing.T, kv KVStore) *App {
	t.Helper()
	if kv == nil {
		kv = NewMemoryKV()
	}
	app, err := NewApp(kv, Config{})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	return app
}

func TestOpenApp_Backends(t *testing.T) {
	for _, backend := range []string{BackendSQLite, BackendPebble, BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			dir := testutil.CreateTempDir(t)
			app, err := OpenApp(Config{Storage: dir, Backend: backend})
			if err != nil {
				t.Fatalf("OpenApp() error = %v", err)
			}
			first := app.CurrentSession()
			if first == "" {
				t.Fatal("no current session after open")
			}
			if err := app.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			if backend == BackendMemory {
				return
			}
			reopened, err := OpenApp(Config{Storage: dir, Backend: backend})
			if err != nil {
				t.Fatalf("reopen error = %v", err)
			}
			defer reopened.Close()
			if reopened.CurrentSession() != first {
				t.Errorf("current session after restart = %s, want %s", reopened.CurrentSession(), first)
			}
		})
	}
}

func TestApp_SendResetsSelection(t *testing.T) {
	mainHook := testutil.NewWebhookServer(t, 200, `[{"output":"main"}]`)
	altHook := testutil.NewWebhookServer(t, 500, `nope`)

	app := newTestApp(t, nil)
	_ = app.Webhooks.Add("main", mainHook.URL)
	_ = app.Webhooks.Add("alt", altHook.URL)

	if err := app.SelectWebhook("ghost"); err == nil {
		t.Error("SelectWebhook(ghost) should fail")
	}
	if err := app.SelectWebhook("alt"); err != nil {
		t.Fatalf("SelectWebhook() error = %v", err)
	}
	next, _ := app.NextWebhook()
	if next.Name != "alt" {
		t.Errorf("NextWebhook() = %s, want alt", next.Name)
	}

	// a failed send still resets the selection
	if _, err := app.Send(context.Background(), "first", nil); err == nil {
		t.Fatal("Send() to failing webhook should return an error")
	}
	if app.PendingWebhook() != "" {
		t.Errorf("PendingWebhook() = %q after send, want default", app.PendingWebhook())
	}

	result, err := app.Send(context.Background(), "second", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.Webhook.Name != "main" || result.Reply.Text != "main" {
		t.Errorf("second send went to %s", result.Webhook.Name)
	}
}

func TestApp_SelectionResetsWhenSendStarts(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		_, _ = io.WriteString(w, `[{"output":"slow"}]`)
	}))
	defer slow.Close()

	app := newTestApp(t, nil)
	_ = app.Webhooks.Add("main", "https://main.example.com")
	_ = app.Webhooks.Add("alt", slow.URL)
	_ = app.Webhooks.Add("third", "https://third.example.com")
	if err := app.SelectWebhook("alt"); err != nil {
		t.Fatalf("SelectWebhook() error = %v", err)
	}

	done := make(chan *DispatchResult)
	go func() {
		result, _ := app.Send(context.Background(), "slow question", nil)
		done <- result
	}()

	<-started
	if got := app.PendingWebhook(); got != "" {
		t.Errorf("PendingWebhook() = %q while the send is in flight, want default", got)
	}
	if err := app.SelectWebhook("third"); err != nil {
		t.Fatalf("SelectWebhook() error = %v", err)
	}
	close(release)

	result := <-done
	if result == nil || result.Webhook.Name != "alt" || result.Reply.Text != "slow" {
		t.Fatalf("in-flight send result = %+v", result)
	}
	if got := app.PendingWebhook(); got != "third" {
		t.Errorf("PendingWebhook() = %q after the earlier send finished, want third", got)
	}
}

func TestApp_ValidationKeepsSelection(t *testing.T) {
	app := newTestApp(t, nil)
	_ = app.Webhooks.Add("main", "https://main.example.com")
	_ = app.Webhooks.Add("alt", "https://alt.example.com")
	_ = app.SelectWebhook("alt")

	if _, err := app.Send(context.Background(), "   ", nil); err == nil {
		t.Fatal("Send() of blank text should fail")
	}
	if app.PendingWebhook() != "alt" {
		t.Errorf("PendingWebhook() = %q, rejected input should not consume the selection", app.PendingWebhook())
	}
}

func TestApp_NewChatAndSwitch(t *testing.T) {
	hook := testutil.NewWebhookServer(t, 200, `[{"output":"ok"}]`)
	app := newTestApp(t, nil)
	_ = app.Webhooks.Add("main", hook.URL)

	first := app.CurrentSession()
	_, _ = app.Send(context.Background(), "in first", nil)

	second, err := app.NewChat()
	if err != nil {
		t.Fatalf("NewChat() error = %v", err)
	}
	if second == first || app.CurrentSession() != second {
		t.Fatalf("NewChat() = %s, current %s", second, app.CurrentSession())
	}

	if err := app.SwitchSession(first); err != nil {
		t.Fatalf("SwitchSession() error = %v", err)
	}
	session, err := app.Session("current")
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if session.ID != first || len(session.Messages) != 2 || session.Name != "in first" {
		t.Errorf("Session() = %+v", session)
	}

	var nf *NotFoundError
	if err := app.SwitchSession("session_0_unknown"); !errors.As(err, &nf) {
		t.Errorf("SwitchSession(unknown) error = %v", err)
	}
}

func TestApp_DeleteSession(t *testing.T) {
	app := newTestApp(t, NewSQLiteKV(testutil.CreateTestDB(t)))
	if app.CurrentSession() != testutil.SessionTwo {
		t.Fatalf("current = %s, want seeded %s", app.CurrentSession(), testutil.SessionTwo)
	}

	// deleting a background session keeps the current one
	current, err := app.DeleteSession(testutil.SessionOne)
	if err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if current != testutil.SessionTwo {
		t.Errorf("current = %s after deleting another session", current)
	}
	if _, found, _ := app.Registry.Meta(testutil.SessionOne); found {
		t.Error("session header survived delete")
	}

	// deleting the only remaining session creates a fresh one
	current, err = app.DeleteSession(testutil.SessionTwo)
	if err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if current == testutil.SessionTwo || current == "" || app.CurrentSession() != current {
		t.Errorf("current = %s after deleting the active session", current)
	}

	if _, err := app.DeleteSession("session_0_missing"); err == nil {
		t.Error("DeleteSession(missing) should fail")
	}
}

func TestApp_DeleteActivePicksMostRecent(t *testing.T) {
	app := newTestApp(t, NewSQLiteKV(testutil.CreateTestDB(t)))
	hook := testutil.NewWebhookServer(t, 200, `[{"output":"ok"}]`)
	_ = app.Webhooks.Add("local", hook.URL)

	active, _ := app.NewChat()
	_, _ = app.Send(context.Background(), "newest", nil)

	next, err := app.DeleteSession(active)
	if err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if next != testutil.SessionTwo {
		t.Errorf("DeleteSession() selected %s, want most recent %s", next, testutil.SessionTwo)
	}
}

func TestApp_Preferences(t *testing.T) {
	app := newTestApp(t, nil)
	if err := app.SetPreference("theme", "light"); err != nil {
		t.Fatalf("SetPreference() error = %v", err)
	}
	if err := app.SetPreference("theme", "sepia"); err == nil {
		t.Error("SetPreference() accepted an invalid value")
	}
	prefs, _ := app.Preferences()
	if prefs.Theme != "light" {
		t.Errorf("Theme = %q", prefs.Theme)
	}
}
