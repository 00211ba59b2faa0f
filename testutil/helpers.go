package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
)

// CreateTempDir creates a temporary directory removed when the test ends
func CreateTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "agent-chat-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

// JSONUnmarshal unmarshals JSON for testing
func JSONUnmarshal(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
}

// WebhookRequest is one request received by a WebhookServer
type WebhookRequest struct {
	ContentType string
	Body        []byte
}

// WebhookServer is a fake chat webhook answering every POST with a fixed status and body
type WebhookServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []WebhookRequest
}

// NewWebhookServer starts a fake webhook; it is closed when the test ends
func NewWebhookServer(t *testing.T, status int, body string) *WebhookServer {
	t.Helper()
	ws := &WebhookServer{}
	ws.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		ws.mu.Lock()
		ws.requests = append(ws.requests, WebhookRequest{ContentType: r.Header.Get("Content-Type"), Body: data})
		ws.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ws.Close)
	return ws
}

// Requests returns the requests received so far
func (ws *WebhookServer) Requests() []WebhookRequest {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return append([]WebhookRequest(nil), ws.requests...)
}
