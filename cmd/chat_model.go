package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/render"
	"github.com/iksnae/agent-chat/internal/voice"
)

const chatHelp = `/<webhook> [text]  send the next message to another webhook
/new               start a new conversation
/history           list conversations
/switch <id>       open a conversation
/attach <path>     attach a file to the next message
/detach            drop attached files
/voice             dictate (also ctrl+r)
/quit              leave (also esc, ctrl+c)`

var (
	chatTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	chatStatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	chatErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	chatWebhookStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Bold(true)
)

type sendDoneMsg struct {
	result *internal.DispatchResult
	err    error
}

type voiceDoneMsg struct {
	text string
	err  error
}

type voiceInterimMsg struct {
	text string
}

// chatModel is the interactive chat screen
type chatModel struct {
	ctx  context.Context
	app  *internal.App
	lang string

	theme    string
	renderer *glamour.TermRenderer

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model

	attachments *internal.AttachmentSet
	messages    []internal.Message
	outgoing    *internal.Message
	notice      string

	sending   bool
	listening bool
	voiceFeed chan tea.Msg
	status    string
	statusErr bool

	width  int
	height int
}

func newChatModel(ctx context.Context, app *internal.App, prefs internal.Preferences) chatModel {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 8000
	input.Placeholder = "Type a message, or / to pick a webhook"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

	timeline := viewport.New(render.DefaultWidth, 20)
	timeline.MouseWheelEnabled = true

	m := chatModel{
		ctx:         ctx,
		app:         app,
		lang:        prefs.SpeechLanguage(),
		theme:       prefs.Theme,
		input:       input,
		timeline:    timeline,
		spinner:     sp,
		attachments: internal.NewAttachmentSet(),
		width:       render.DefaultWidth,
		height:      24,
	}
	m.reload()
	m.status = "Ready"
	if _, err := app.NextWebhook(); err != nil {
		m.setError("No webhook configured. Add one with 'agent-chat webhook add <name> <url>'")
	}
	return m
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderTimeline()

	case spinner.TickMsg:
		if m.sending || m.listening {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case sendDoneMsg:
		m.handleSendDone(msg)

	case voiceInterimMsg:
		if m.listening {
			m.setStatus(fmt.Sprintf("🎤 %q", msg.text))
			cmds = append(cmds, waitForVoice(m.voiceFeed))
		}

	case voiceDoneMsg:
		m.listening = false
		m.voiceFeed = nil
		if msg.err != nil {
			m.setError(voice.ErrorMessage(msg.err, m.lang))
			break
		}
		m.input.SetValue(strings.TrimSpace(m.input.Value() + " " + msg.text))
		m.input.CursorEnd()
		m.setStatus(voice.AddedMessage(m.lang))

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.timeline, cmd = m.timeline.Update(msg)
			return m, cmd
		case "ctrl+r":
			return m, m.startVoice()
		case "enter":
			value := m.input.Value()
			if strings.TrimSpace(value) == "" && m.attachments.Len() == 0 {
				return m, nil
			}
			cmd := m.submit(value)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit handles one line of input: a slash command or a message
func (m *chatModel) submit(value string) tea.Cmd {
	line := strings.TrimSpace(value)
	if strings.HasPrefix(line, "/") {
		m.input.Reset()
		return m.command(line)
	}
	return m.send(value)
}

func (m *chatModel) command(line string) tea.Cmd {
	name, rest, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	rest = strings.TrimSpace(rest)
	m.notice = ""

	switch strings.ToLower(name) {
	case "quit", "exit":
		return tea.Quit
	case "help":
		m.notice = chatHelp
		m.renderTimeline()
	case "new":
		if _, err := m.app.NewChat(); err != nil {
			m.setError(err.Error())
			return nil
		}
		m.reload()
		m.setStatus("Started a new conversation")
	case "history":
		m.showHistory()
	case "switch":
		if err := m.app.SwitchSession(rest); err != nil {
			m.setError(err.Error())
			return nil
		}
		m.reload()
		m.setStatus("Switched conversation")
	case "attach":
		if rest == "" {
			m.setError("usage: /attach <path>")
			return nil
		}
		if err := m.attachments.AddFile(rest); err != nil {
			m.setError(err.Error())
			return nil
		}
		m.setStatus(internal.AttachmentSummary(m.attachments.Files()))
	case "detach":
		m.attachments.Clear()
		m.setStatus("Attachments cleared")
	case "voice":
		return m.startVoice()
	default:
		return m.selectWebhook(name, rest)
	}
	return nil
}

// selectWebhook applies the /name selector; text after the name is sent right away
func (m *chatModel) selectWebhook(query, text string) tea.Cmd {
	entry, ok := m.app.Webhooks.Lookup(query)
	if !ok {
		matches := m.app.Webhooks.MatchPrefix(query)
		switch len(matches) {
		case 0:
			m.setError(fmt.Sprintf("No webhook matches /%s (type /help for commands)", query))
			return nil
		case 1:
			entry = matches[0]
		default:
			m.setError("Ambiguous webhook: " + webhookNames(matches))
			return nil
		}
	}

	if err := m.app.SelectWebhook(entry.Name); err != nil {
		m.setError(err.Error())
		return nil
	}
	m.setStatus(fmt.Sprintf("Next message → %s", entry.Name))
	if text != "" {
		return m.send(text)
	}
	return nil
}

func (m *chatModel) send(text string) tea.Cmd {
	if m.sending {
		return nil
	}

	files := m.attachments.Files()
	display := strings.TrimSpace(text)
	if len(files) > 0 {
		display += "\n\n" + internal.AttachmentSummary(files)
	}
	outgoing := internal.Message{Text: display, Sender: internal.SenderUser}
	m.outgoing = &outgoing

	target := "webhook"
	if webhook, err := m.app.NextWebhook(); err == nil {
		target = webhook.Name
	}

	m.input.Reset()
	m.attachments.Clear()
	m.sending = true
	m.notice = ""
	m.setStatus(fmt.Sprintf("Sending to %s", target))
	m.renderTimeline()

	app, ctx := m.app, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		result, err := app.Send(ctx, text, files)
		return sendDoneMsg{result: result, err: err}
	})
}

func (m *chatModel) handleSendDone(msg sendDoneMsg) {
	m.sending = false
	m.outgoing = nil
	m.reload()

	switch {
	case msg.result == nil && msg.err != nil:
		m.setError(msg.err.Error())
	case msg.err != nil:
		m.setError("Send failed: " + msg.err.Error())
	case msg.result.Err != nil:
		m.setError(msg.result.Err.Error())
	default:
		m.setStatus(fmt.Sprintf("Reply from %s", msg.result.Webhook.Name))
	}
}

func (m *chatModel) startVoice() tea.Cmd {
	if m.listening || m.sending {
		return nil
	}
	m.listening = true
	m.setStatus(voice.ListeningMessage(m.lang))

	rec := voice.NewCommandRecognizer(cfg.Voice.Command)
	feed := make(chan tea.Msg, 16)
	m.voiceFeed = feed
	ctx, lang, timeout := m.ctx, m.lang, cfg.Voice.Timeout
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		go func() {
			text, err := voice.CaptureInterim(ctx, rec, lang, timeout, func(interim string) {
				select {
				case feed <- voiceInterimMsg{text: interim}:
				default:
				}
			})
			feed <- voiceDoneMsg{text: text, err: err}
		}()
		return <-feed
	})
}

// waitForVoice delivers the next update of a running voice capture
func waitForVoice(feed chan tea.Msg) tea.Cmd {
	if feed == nil {
		return nil
	}
	return func() tea.Msg { return <-feed }
}

func (m *chatModel) showHistory() {
	summaries, err := m.app.History()
	if err != nil {
		m.setError(err.Error())
		return
	}
	if len(summaries) == 0 {
		m.notice = "No conversations yet"
	} else {
		var b strings.Builder
		current := m.app.CurrentSession()
		for _, s := range summaries {
			marker := " "
			if s.ID == current {
				marker = "*"
			}
			fmt.Fprintf(&b, "%s %s  %s (%d)\n", marker, s.ID, s.Preview, s.MessageCount)
		}
		b.WriteString("\n/switch <id> to open one")
		m.notice = b.String()
	}
	m.renderTimeline()
}

// reload reads the active session's transcript from storage
func (m *chatModel) reload() {
	transcript, err := m.app.Transcripts.Load(m.app.CurrentSession())
	if err != nil {
		m.setError(err.Error())
		return
	}
	m.messages = transcript.Slice()
	m.renderTimeline()
}

func (m *chatModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *chatModel) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *chatModel) resize() {
	// title, blank, status, input
	chrome := 4
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	m.timeline.Width = m.width
	m.timeline.Height = h
	m.input.Width = m.width - lipgloss.Width(m.input.Prompt) - 1

	renderer, err := render.NewTerminalRenderer(m.theme, m.width-4)
	if err != nil {
		internal.LogDebug("markdown renderer unavailable: %v", err)
		renderer = nil
	}
	m.renderer = renderer
}

func (m *chatModel) renderTimeline() {
	var b strings.Builder
	messages := m.messages
	if m.outgoing != nil {
		messages = append(append([]internal.Message(nil), messages...), *m.outgoing)
	}

	if len(messages) == 0 && m.notice == "" {
		b.WriteString(chatStatusStyle.Render("Start the conversation below. Type /help for commands."))
	}
	for _, msg := range messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(chatStatusStyle.Render(m.notice))
		b.WriteString("\n")
	}

	m.timeline.SetContent(b.String())
	m.timeline.GotoBottom()
}

func (m *chatModel) renderMessage(msg internal.Message) string {
	label := assistantMessageStyle.Render("🤖 Agent")
	if msg.Sender == internal.SenderUser {
		label = userMessageStyle.Render("👤 You")
	}
	if t := msg.Time(); !t.IsZero() {
		label += " " + timestampStyle.Render(t.Local().Format("15:04"))
	}

	body := msg.Text
	if msg.Sender == internal.SenderAssistant && m.renderer != nil {
		if out, err := m.renderer.Render(body); err == nil {
			return label + "\n" + strings.TrimRight(out, "\n") + "\n"
		}
	}
	width := m.width - 4
	if width < 10 {
		width = 10
	}
	return label + "\n" + messageContentStyle.Render(wrapText(body, width)) + "\n"
}

func (m chatModel) View() string {
	title := chatTitleStyle.Render("💬 agent-chat")
	if pending := m.app.PendingWebhook(); pending != "" {
		title += "  " + chatWebhookStyle.Render("→ "+pending)
	} else if def := m.app.Webhooks.DefaultName(); def != "" {
		title += "  " + chatStatusStyle.Render("→ "+def)
	}
	if n := m.attachments.Len(); n > 0 {
		title += "  " + chatStatusStyle.Render(internal.AttachmentSummary(m.attachments.Files()))
	}

	status := m.status
	if hint := m.suggestion(); hint != "" {
		status = hint
	}
	if m.sending || m.listening {
		status = m.spinner.View() + " " + status
	}
	statusStyle := chatStatusStyle
	if m.statusErr {
		statusStyle = chatErrorStyle
	}

	return title + "\n" +
		m.timeline.View() + "\n" +
		statusStyle.Render(status) + "\n" +
		m.input.View()
}

// suggestion lists webhooks matching a partially typed /name selector
func (m chatModel) suggestion() string {
	value := m.input.Value()
	if !strings.HasPrefix(value, "/") || strings.Contains(value, " ") {
		return ""
	}
	matches := m.app.Webhooks.MatchPrefix(strings.TrimPrefix(value, "/"))
	if len(matches) == 0 {
		return ""
	}
	return "webhooks: " + webhookNames(matches)
}

func webhookNames(entries []internal.WebhookEntry) string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return strings.Join(names, ", ")
}
