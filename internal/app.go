package internal

import (
	"context"
	"fmt"
	"sync"
)

// App owns the chat state: storage, sessions, webhooks and the webhook picked for the next message.
// Commands and the chat screen go through App rather than touching the stores directly.
type App struct {
	Transcripts *TranscriptStore
	Registry    *SessionRegistry
	Webhooks    *WebhookDirectory

	cfg        Config
	kv         KVStore
	dispatcher *Dispatcher

	mu        sync.Mutex
	currentID string
	pending   string
}

// OpenApp opens the configured backend and loads the chat state
func OpenApp(cfg Config) (*App, error) {
	paths, err := cfg.Paths()
	if err != nil {
		return nil, err
	}
	if cfg.Backend != BackendMemory {
		if err := paths.EnsureDataDir(); err != nil {
			return nil, err
		}
	}

	kv, err := OpenKV(cfg.Backend, paths.StorePath(cfg.Backend))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Backend, err)
	}

	app, err := NewApp(kv, cfg)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	return app, nil
}

// NewApp builds an App over an already opened store
func NewApp(kv KVStore, cfg Config) (*App, error) {
	cfg.applyDefaults()

	transcripts := NewTranscriptStore(kv)
	registry := NewSessionRegistry(kv, transcripts)
	webhooks, err := OpenWebhookDirectory(kv)
	if err != nil {
		return nil, err
	}

	current, err := registry.EnsureCurrent()
	if err != nil {
		return nil, fmt.Errorf("failed to load current session: %w", err)
	}

	return &App{
		Transcripts: transcripts,
		Registry:    registry,
		Webhooks:    webhooks,
		cfg:         cfg,
		kv:          kv,
		dispatcher:  NewDispatcher(webhooks, transcripts, registry, cfg.HTTP.Timeout),
		currentID:   current,
	}, nil
}

// Close releases the store
func (a *App) Close() error {
	return a.kv.Close()
}

// Config returns the configuration the App was opened with
func (a *App) Config() Config {
	return a.cfg
}

// CurrentSession returns the active session id
func (a *App) CurrentSession() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentID
}

// Send dispatches text and files on the active session.
// The webhook selection is reset to the default as soon as the send starts, whatever its outcome.
func (a *App) Send(ctx context.Context, text string, files []FileAttachment) (*DispatchResult, error) {
	a.mu.Lock()
	req := DispatchRequest{
		SessionID: a.currentID,
		Text:      text,
		Files:     files,
		Pending:   a.pending,
	}
	if err := req.Validate(); err != nil {
		a.mu.Unlock()
		return nil, err
	}
	a.pending = ""
	a.mu.Unlock()

	return a.dispatcher.Send(ctx, req)
}

// SelectWebhook picks the webhook for the next message only; an empty name restores the default
func (a *App) SelectWebhook(name string) error {
	if name != "" {
		if _, ok := a.Webhooks.Lookup(name); !ok {
			return &NotFoundError{Kind: "webhook", Name: name}
		}
	}
	a.mu.Lock()
	a.pending = name
	a.mu.Unlock()
	LogDebug("next message goes to webhook %q", name)
	return nil
}

// PendingWebhook returns the selection for the next message, empty when the default applies
func (a *App) PendingWebhook() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// NextWebhook resolves the webhook the next message would be sent to
func (a *App) NextWebhook() (WebhookEntry, error) {
	return a.Webhooks.ResolveForNextMessage(a.PendingWebhook())
}

// NewChat starts a fresh session and makes it active
func (a *App) NewChat() (string, error) {
	id, err := a.Registry.NewSession()
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	a.currentID = id
	a.mu.Unlock()
	return id, nil
}

// SwitchSession makes a stored session active
func (a *App) SwitchSession(id string) error {
	if !a.sessionExists(id) {
		return &NotFoundError{Kind: "session", Name: id}
	}
	if err := a.Registry.SetCurrent(id); err != nil {
		return err
	}
	a.mu.Lock()
	a.currentID = id
	a.mu.Unlock()
	LogInfo("switched to session %s", id)
	return nil
}

// DeleteSession removes a session. Deleting the active session activates the most
// recent remaining one, or a new session when none is left. It returns the active session id.
func (a *App) DeleteSession(id string) (string, error) {
	if !a.sessionExists(id) {
		return "", &NotFoundError{Kind: "session", Name: id}
	}
	if err := a.Transcripts.Delete(id); err != nil {
		return "", err
	}
	if err := a.Registry.Forget(id); err != nil {
		LogWarn("failed to remove header of session %s: %v", id, err)
	}
	LogInfo("deleted session %s", id)

	if id != a.CurrentSession() {
		return a.CurrentSession(), nil
	}

	remaining, err := a.Transcripts.ListAll()
	if err != nil {
		return "", err
	}
	if len(remaining) == 0 {
		return a.NewChat()
	}
	next := remaining[0].ID
	if err := a.SwitchSession(next); err != nil {
		return "", err
	}
	return next, nil
}

// History lists stored sessions, most recent first
func (a *App) History() ([]SessionSummary, error) {
	return a.Transcripts.ListAll()
}

// Session assembles a session with its transcript; "current" names the active session
func (a *App) Session(id string) (*Session, error) {
	if id == "" || id == "current" {
		id = a.CurrentSession()
	} else if !a.sessionExists(id) {
		return nil, &NotFoundError{Kind: "session", Name: id}
	}
	return a.Registry.Session(id)
}

// Preferences returns the stored UI preferences
func (a *App) Preferences() (Preferences, error) {
	return LoadPreferences(a.kv)
}

// SetPreference validates and stores one preference
func (a *App) SetPreference(key, value string) error {
	prefs, err := LoadPreferences(a.kv)
	if err != nil {
		return err
	}
	if err := prefs.Set(key, value); err != nil {
		return err
	}
	return SavePreferences(a.kv, prefs)
}

// Inspect returns the raw stored pairs whose key starts with prefix
func (a *App) Inspect(prefix string) ([]KeyValuePair, error) {
	return a.kv.Scan(prefix)
}

func (a *App) sessionExists(id string) bool {
	if id == "" {
		return false
	}
	if id == a.CurrentSession() {
		return true
	}
	if _, found, err := a.kv.Get(historyKey(id)); err == nil && found {
		return true
	}
	_, found, _ := a.Registry.Meta(id)
	return found
}
