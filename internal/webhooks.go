package internal

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

const (
	webhooksKey       = "webhooks"
	defaultWebhookKey = "defaultWebhookName"
)

// WebhookEntry is a named webhook endpoint
type WebhookEntry struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// WebhookDirectory is the ordered name→URL registry with one default entry
type WebhookDirectory struct {
	kv          KVStore
	mu          sync.RWMutex
	entries     []WebhookEntry
	defaultName string
}

// OpenWebhookDirectory loads the directory persisted in kv
func OpenWebhookDirectory(kv KVStore) (*WebhookDirectory, error) {
	d := &WebhookDirectory{kv: kv}

	data, found, err := kv.Get(webhooksKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load webhooks: %w", err)
	}
	if found {
		d.entries = decodeWebhooks(data)
	}

	name, found, err := kv.Get(defaultWebhookKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load default webhook: %w", err)
	}
	if found && d.indexOf(string(name)) >= 0 {
		d.defaultName = string(name)
	} else if len(d.entries) > 0 {
		// stored default is missing or stale: fall back to the first entry
		d.defaultName = d.entries[0].Name
		LogDebug("default webhook falls back to %q", d.defaultName)
		if err := kv.Set(defaultWebhookKey, []byte(d.defaultName)); err != nil {
			LogWarn("Failed to persist fallback default webhook: %v", err)
		}
	}

	return d, nil
}

// decodeWebhooks accepts the ordered list format and the plain {name: url} object
func decodeWebhooks(data []byte) []WebhookEntry {
	var entries []WebhookEntry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries
	}

	var byName map[string]string
	if err := json.Unmarshal(data, &byName); err != nil {
		LogWarn("%v", &StorageError{Key: webhooksKey, Op: "parse", Err: err})
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entries = append(entries, WebhookEntry{Name: name, URL: byName[name]})
	}
	return entries
}

// Add registers a new webhook. The first webhook becomes the default.
func (d *WebhookDirectory) Add(name, rawURL string) error {
	name = strings.TrimSpace(name)
	rawURL = strings.TrimSpace(rawURL)

	if name == "" {
		return &ValidationError{Field: "webhook name", Reason: "cannot be empty"}
	}
	if rawURL == "" {
		return &ValidationError{Field: "webhook URL", Reason: "cannot be empty"}
	}
	if !IsValidHTTPURL(rawURL) {
		return &ValidationError{Field: "webhook URL", Reason: "must be a valid URL starting with http:// or https://"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.indexOf(name) >= 0 {
		return &ValidationError{Field: "webhook name", Reason: fmt.Sprintf("webhook with name %q already exists", name)}
	}

	prevEntries, prevDefault := d.entries, d.defaultName
	d.entries = append(append([]WebhookEntry(nil), d.entries...), WebhookEntry{Name: name, URL: rawURL})
	if len(d.entries) == 1 {
		d.defaultName = name
	}
	if err := d.persist(); err != nil {
		d.entries, d.defaultName = prevEntries, prevDefault
		return err
	}
	return nil
}

// Remove deletes a webhook; removing the default promotes the first remaining entry
func (d *WebhookDirectory) Remove(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(name)
	if idx < 0 {
		return &NotFoundError{Kind: "webhook", Name: name}
	}

	prevEntries, prevDefault := d.entries, d.defaultName
	entries := make([]WebhookEntry, 0, len(d.entries)-1)
	entries = append(entries, d.entries[:idx]...)
	d.entries = append(entries, d.entries[idx+1:]...)
	if d.defaultName == name {
		d.defaultName = ""
		if len(d.entries) > 0 {
			d.defaultName = d.entries[0].Name
		}
	}
	if err := d.persist(); err != nil {
		d.entries, d.defaultName = prevEntries, prevDefault
		return err
	}
	return nil
}

// SetDefault marks name as the default webhook
func (d *WebhookDirectory) SetDefault(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.indexOf(name) < 0 {
		return &NotFoundError{Kind: "webhook", Name: name}
	}
	prevDefault := d.defaultName
	d.defaultName = name
	if err := d.persist(); err != nil {
		d.defaultName = prevDefault
		return err
	}
	return nil
}

// ResolveForNextMessage picks the pending selection if it is known, else the default
func (d *WebhookDirectory) ResolveForNextMessage(pending string) (WebhookEntry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if pending != "" {
		if idx := d.indexOf(pending); idx >= 0 {
			return d.entries[idx], nil
		}
		LogDebug("selected webhook %q no longer exists, using default", pending)
	}
	if idx := d.indexOf(d.defaultName); idx >= 0 {
		return d.entries[idx], nil
	}
	return WebhookEntry{}, ErrNoWebhookConfigured
}

// List returns the entries in insertion order
func (d *WebhookDirectory) List() []WebhookEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]WebhookEntry(nil), d.entries...)
}

// Default returns the default entry, if any
func (d *WebhookDirectory) Default() (WebhookEntry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if idx := d.indexOf(d.defaultName); idx >= 0 {
		return d.entries[idx], true
	}
	return WebhookEntry{}, false
}

// DefaultName returns the name of the default entry, or ""
func (d *WebhookDirectory) DefaultName() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.defaultName
}

// Lookup finds an entry by exact name
func (d *WebhookDirectory) Lookup(name string) (WebhookEntry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if idx := d.indexOf(name); idx >= 0 {
		return d.entries[idx], true
	}
	return WebhookEntry{}, false
}

// MatchPrefix returns entries whose name starts with query, ignoring case.
// An empty query matches everything.
func (d *WebhookDirectory) MatchPrefix(query string) []WebhookEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	query = strings.ToLower(query)
	matches := make([]WebhookEntry, 0)
	for _, entry := range d.entries {
		if strings.HasPrefix(strings.ToLower(entry.Name), query) {
			matches = append(matches, entry)
		}
	}
	return matches
}

// Len returns the number of entries
func (d *WebhookDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

func (d *WebhookDirectory) indexOf(name string) int {
	if name == "" {
		return -1
	}
	for i, entry := range d.entries {
		if entry.Name == name {
			return i
		}
	}
	return -1
}

func (d *WebhookDirectory) persist() error {
	data, err := json.Marshal(d.entries)
	if err != nil {
		return fmt.Errorf("failed to marshal webhooks: %w", err)
	}
	if err := d.kv.Set(webhooksKey, data); err != nil {
		return err
	}
	if d.defaultName == "" {
		return d.kv.Remove(defaultWebhookKey)
	}
	return d.kv.Set(defaultWebhookKey, []byte(d.defaultName))
}

// IsValidHTTPURL reports whether s is an absolute http or https URL
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
