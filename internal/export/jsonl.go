package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/agent-chat/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

type jsonlLine struct {
	Session    string          `json:"session"`
	Sender     internal.Sender `json:"sender"`
	Text       string          `json:"text"`
	Timestamp  string          `json:"timestamp,omitempty"`
	DispatchID string          `json:"dispatchId,omitempty"`
}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, msg := range session.Messages {
		line := jsonlLine{
			Session:    session.ID,
			Sender:     msg.Sender,
			Text:       msg.Text,
			Timestamp:  msg.Timestamp,
			DispatchID: msg.DispatchID,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
