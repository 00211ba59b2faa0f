package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/agent-chat/internal"
)

func TestHTMLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&HTMLExporter{}).Export(internal.CreateTestSession("test1"), &buf); err != nil {
		t.Fatalf("HTMLExporter.Export() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Hello, how are you?</title>",
		`<div class="message user">`,
		`<img src="icons/assistant-avatar.svg" alt="assistant">`,
		"<strong>well</strong>",
		"2024-01-01T12:00:00.000Z",
		"</html>",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}
}

func TestHTMLExporter_SanitizesMessages(t *testing.T) {
	session := internal.CreateTestSessionWithMessages("<x>", []internal.Message{
		{Text: "<script>alert(1)</script> [click](javascript:alert(1))", Sender: internal.SenderAssistant},
	})
	session.Name = ""

	var buf bytes.Buffer
	if err := (&HTMLExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	output := buf.String()

	if strings.Contains(output, "<script>") || strings.Contains(output, "javascript:") {
		t.Errorf("unsafe content leaked into export:\n%s", output)
	}
	if !strings.Contains(output, "<title>Session &lt;x&gt;</title>") {
		t.Errorf("title not escaped:\n%s", output)
	}
	if !strings.Contains(output, `src="icons/assistant-avatar.svg"`) {
		t.Errorf("missing avatar fallback:\n%s", output)
	}
}

func TestHTMLExporter_Extension(t *testing.T) {
	if got := (&HTMLExporter{}).Extension(); got != "html" {
		t.Errorf("HTMLExporter.Extension() = %v, want html", got)
	}
}
