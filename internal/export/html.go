package export

import (
	"fmt"
	"html"
	"io"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/render"
)

// HTMLExporter exports sessions as a standalone HTML page.
// Message text goes through the chat markdown renderer and the sanitizer.
type HTMLExporter struct{}

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Inter, system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; color: #222; }
.message { display: flex; gap: .75rem; margin: 1rem 0; }
.message img { width: 2rem; height: 2rem; }
.message.user .bubble { background: #e8f0fe; }
.bubble { background: #f4f4f5; border-radius: .5rem; padding: .5rem .75rem; flex: 1; }
.meta { color: #888; font-size: .75rem; }
</style>
</head>
<body>
<h1>%s</h1>
`

// Export exports a session to HTML
func (e *HTMLExporter) Export(session *internal.Session, w io.Writer) error {
	title := html.EscapeString(sessionTitle(session))
	if _, err := fmt.Fprintf(w, htmlHead, title, title); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, msg := range session.Messages {
		_, err := fmt.Fprintf(w,
			"<div class=\"message %s\">\n<img src=\"%s\" alt=\"%s\">\n<div class=\"bubble\">\n<div class=\"meta\">%s</div>\n<p>%s</p>\n</div>\n</div>\n",
			html.EscapeString(string(msg.Sender)),
			html.EscapeString(avatarFor(msg)),
			html.EscapeString(string(msg.Sender)),
			html.EscapeString(msg.Timestamp),
			render.SafeHTML(msg.Text),
		)
		if err != nil {
			return fmt.Errorf("failed to write message: %w", err)
		}
	}

	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

func avatarFor(msg internal.Message) string {
	if msg.AvatarRef != "" {
		return msg.AvatarRef
	}
	if msg.Sender == internal.SenderUser {
		return internal.UserAvatarRef
	}
	return internal.AssistantAvatarRef
}

// Extension returns the file extension for this format
func (e *HTMLExporter) Extension() string {
	return "html"
}
