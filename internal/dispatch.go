package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHTTPTimeout bounds a single webhook call
const DefaultHTTPTimeout = 120 * time.Second

// Webhook responses larger than this are truncated before parsing
const maxResponseBytes = 10 << 20

const (
	noWebhookText     = "Error: No webhook URL configured. Please set one in settings."
	dispatchErrorText = "Error: Could not connect to the webhook or process the response. Details: "
	invalidReplyText  = "Received an empty or invalid response from the webhook."
)

// Avatar references stored on messages
const (
	UserAvatarRef      = "icons/user-avatar.svg"
	AssistantAvatarRef = "icons/assistant-avatar.svg"
)

// DispatchState is the state of one send
type DispatchState string

const (
	DispatchIdle      DispatchState = "idle"
	DispatchSending   DispatchState = "sending"
	DispatchSucceeded DispatchState = "succeeded"
	DispatchFailed    DispatchState = "failed"
)

// DispatchRequest describes one outgoing message
type DispatchRequest struct {
	SessionID string
	Text      string
	Files     []FileAttachment
	// Pending is the webhook selected for this message only; empty means the default
	Pending string
}

// Validate rejects requests that would never reach a webhook
func (r DispatchRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" && len(r.Files) == 0 {
		return &ValidationError{Field: "message", Reason: "text is empty and no files are attached"}
	}
	if r.SessionID == "" {
		return &ValidationError{Field: "session id", Reason: "cannot be empty"}
	}
	return nil
}

// DispatchResult is the outcome of one send
type DispatchResult struct {
	DispatchID  string
	State       DispatchState
	Webhook     WebhookEntry
	UserMessage Message
	Reply       Message
	// Err holds the failure cause, or a *MalformedResponseError for a succeeded send with an unusable body
	Err error
}

type webhookPayload struct {
	SessionID string           `json:"sessionId"`
	ChatInput string           `json:"chatInput"`
	Files     []FileAttachment `json:"files"`
}

type webhookReply struct {
	Output any `json:"output"`
}

// Dispatcher sends messages to webhooks and records both sides in the transcript
type Dispatcher struct {
	client      *http.Client
	webhooks    *WebhookDirectory
	transcripts *TranscriptStore
	registry    *SessionRegistry
	locks       *keyedMutex
	now         func() time.Time
}

// NewDispatcher creates a Dispatcher whose HTTP calls time out after timeout (DefaultHTTPTimeout if zero)
func NewDispatcher(webhooks *WebhookDirectory, transcripts *TranscriptStore, registry *SessionRegistry, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &Dispatcher{
		client:      &http.Client{Timeout: timeout},
		webhooks:    webhooks,
		transcripts: transcripts,
		registry:    registry,
		locks:       newKeyedMutex(),
		now:         time.Now,
	}
}

// Send runs one dispatch. Sends to the same session are serialized.
//
// Validation failures return a nil result. Every other outcome returns a result,
// and the error is non-nil exactly when the result state is DispatchFailed.
func (d *Dispatcher) Send(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Text)

	unlock := d.locks.Lock(req.SessionID)
	defer unlock()

	result := &DispatchResult{
		DispatchID: uuid.NewString(),
		State:      DispatchIdle,
	}

	webhook, err := d.webhooks.ResolveForNextMessage(req.Pending)
	if err != nil {
		LogWarn("No webhook URL configured")
		result.State = DispatchFailed
		result.Err = err
		result.Reply = d.record(req.SessionID, result.DispatchID, noWebhookText, SenderAssistant)
		return result, err
	}
	result.Webhook = webhook

	display := text
	if len(req.Files) > 0 {
		display += "\n\n" + AttachmentSummary(req.Files)
	}
	result.State = DispatchSending
	result.UserMessage = d.record(req.SessionID, result.DispatchID, display, SenderUser)

	LogInfo("dispatching %s to webhook %q (%d file(s))", result.DispatchID, webhook.Name, len(req.Files))
	output, err := d.post(ctx, webhook.URL, webhookPayload{
		SessionID: req.SessionID,
		ChatInput: text,
		Files:     nonNilFiles(req.Files),
	})

	var malformed *MalformedResponseError
	switch {
	case errors.As(err, &malformed):
		LogWarn("webhook %q returned an unusable response: %v", webhook.Name, err)
		result.State = DispatchSucceeded
		result.Err = err
		result.Reply = d.record(req.SessionID, result.DispatchID, invalidReplyText, SenderAssistant)
		return result, nil
	case err != nil:
		LogError("dispatch %s failed: %v", result.DispatchID, err)
		result.State = DispatchFailed
		result.Err = err
		result.Reply = d.record(req.SessionID, result.DispatchID, dispatchErrorText+err.Error(), SenderAssistant)
		return result, err
	}

	result.State = DispatchSucceeded
	result.Reply = d.record(req.SessionID, result.DispatchID, output, SenderAssistant)
	return result, nil
}

// post sends the payload and extracts [0].output from the reply
func (d *Dispatcher) post(ctx context.Context, url string, payload webhookPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	LogDebug("webhook answered %d (%d bytes)", resp.StatusCode, len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return parseReply(respBody)
}

func parseReply(body []byte) (string, error) {
	var replies []webhookReply
	if err := json.Unmarshal(body, &replies); err != nil {
		return "", &MalformedResponseError{Body: string(body), Err: err}
	}
	if len(replies) == 0 {
		return "", &MalformedResponseError{Body: string(body)}
	}
	output, ok := replies[0].Output.(string)
	if !ok || output == "" {
		return "", &MalformedResponseError{Body: string(body)}
	}
	return output, nil
}

// record appends a message and refreshes the session header.
// Storage failures are logged; the conversation carries on in memory.
func (d *Dispatcher) record(sessionID, dispatchID, text string, sender Sender) Message {
	msg := NewMessage(text, sender, d.now())
	msg.DispatchID = dispatchID
	msg.AvatarRef = AssistantAvatarRef
	if sender == SenderUser {
		msg.AvatarRef = UserAvatarRef
	}

	if err := d.transcripts.Append(sessionID, msg); err != nil {
		LogError("failed to save message to history: %v", err)
		return msg
	}
	if err := d.registry.Touch(sessionID, msg); err != nil {
		LogWarn("failed to update session %s: %v", sessionID, err)
	}
	return msg
}

func nonNilFiles(files []FileAttachment) []FileAttachment {
	if files == nil {
		return []FileAttachment{}
	}
	return files
}

// keyedMutex hands out one mutex per key, dropping it once nobody holds or waits for it
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns its unlock func
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
