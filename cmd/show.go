package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/render"
	"github.com/spf13/cobra"
)

var (
	limit   int
	since   string
	showRaw bool
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show messages for a session",
	Long: `Display the messages of a chat session. Without an ID the active session is shown.

Assistant replies are rendered as markdown unless --raw is given or the output is not a terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := "current"
		if len(args) == 1 {
			sessionID = args[0]
		}

		var sinceTime time.Time
		if since != "" {
			parsed, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return fmt.Errorf("invalid --since timestamp format (expected RFC3339): %w", err)
			}
			sinceTime = parsed
		}

		app, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		session, err := app.Session(sessionID)
		if err != nil {
			return fmt.Errorf("%w (use 'agent-chat list' to see available sessions)", err)
		}

		style := ""
		if !showRaw && internal.IsTerminal() {
			prefs, err := app.Preferences()
			if err != nil {
				return err
			}
			style = prefs.Theme
		}

		out := cmd.OutOrStdout()
		displaySessionHeader(out, session)

		messages := filterMessages(session.Messages, sinceTime)
		total := len(messages)
		if limit > 0 && limit < len(messages) {
			messages = messages[:limit]
		}

		for i, msg := range messages {
			displayMessage(out, i+1, msg, total, style)
		}

		if limit > 0 && limit < total {
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true).
				Render(fmt.Sprintf("... (%d more message(s))", total-limit)))
		}

		return nil
	},
}

// filterMessages keeps the messages stamped at or after since; a zero since keeps everything
func filterMessages(messages []internal.Message, since time.Time) []internal.Message {
	if since.IsZero() {
		return messages
	}
	filtered := make([]internal.Message, 0, len(messages))
	for _, msg := range messages {
		t := msg.Time()
		if t.IsZero() {
			continue
		}
		if !t.Before(since) {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

func displaySessionHeader(out io.Writer, session *internal.Session) {
	if session == nil {
		return
	}
	name := session.Name
	if name == "" {
		name = "New conversation"
	}
	_, _ = fmt.Fprintln(out, sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", name)))

	metaParts := []string{
		fmt.Sprintf("ID: %s", session.ID),
		fmt.Sprintf("Messages: %d", len(session.Messages)),
	}
	if session.LastUpdatedAt != "" {
		metaParts = append(metaParts, fmt.Sprintf("Updated: %s", session.LastUpdatedAt))
	}
	_, _ = fmt.Fprintln(out, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
	_, _ = fmt.Fprintln(out)
}

// displayMessage prints one message; an empty style prints assistant text without markdown rendering
func displayMessage(out io.Writer, index int, msg internal.Message, total int, style string) {
	var actorStyle lipgloss.Style
	var actorLabel string

	switch msg.Sender {
	case internal.SenderUser:
		actorStyle = userMessageStyle
		actorLabel = "👤 You"
	default:
		actorStyle = assistantMessageStyle
		actorLabel = "🤖 Agent"
	}

	header := actorStyle.Render(actorLabel) + " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	if t := msg.Time(); !t.IsZero() {
		header += " " + timestampStyle.Render(t.Local().Format("15:04:05"))
	} else if msg.Timestamp != "" {
		header += " " + timestampStyle.Render(msg.Timestamp)
	}
	_, _ = fmt.Fprintln(out, header)

	content := strings.TrimSpace(msg.Text)
	switch {
	case content == "":
		_, _ = fmt.Fprintln(out, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	case style != "" && msg.Sender == internal.SenderAssistant:
		_, _ = fmt.Fprintln(out, render.Terminal(content, style, render.DefaultWidth))
	default:
		_, _ = fmt.Fprintln(out, messageContentStyle.Render(wrapText(content, render.DefaultWidth)))
	}

	_, _ = fmt.Fprintln(out)
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len([]rune(line)) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len([]rune(currentLine))+len([]rune(word))+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
				}
				currentLine = word
			} else if currentLine == "" {
				currentLine = word
			} else {
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
	showCmd.Flags().StringVar(&since, "since", "", "Show messages since timestamp (RFC3339)")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print message text without markdown rendering")
}
