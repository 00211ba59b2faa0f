package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/render"
	"github.com/iksnae/agent-chat/internal/voice"
	"github.com/spf13/cobra"
)

var (
	sendWebhook string
	sendFiles   []string
	sendSession string
	sendNew     bool
	sendVoice   bool
	sendRaw     bool
)

var sendCmd = &cobra.Command{
	Use:   "send [text...]",
	Short: "Send one message and print the reply",
	Long: `Send one message to a webhook and print the agent's reply.

The message goes to the default webhook unless --webhook names another one;
the choice applies to this message only. Both the message and the reply are
stored in the active session (or the one given with --session / --new).

Attach files with --file (up to 10 files, 50MB in total). With --voice the
configured speech-to-text command is run and its transcript is appended to
the text.`,
	Example: `  agent-chat send "summarize this" --file notes.md
  agent-chat send --webhook research "what changed since yesterday?"
  agent-chat send --new --voice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		app, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		if sendNew {
			if _, err := app.NewChat(); err != nil {
				return fmt.Errorf("failed to start session: %w", err)
			}
		} else if sendSession != "" {
			if err := app.SwitchSession(sendSession); err != nil {
				return err
			}
		}

		prefs, err := app.Preferences()
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")
		if sendVoice {
			transcript, err := captureVoice(ctx, cmd, prefs.SpeechLanguage())
			if err != nil {
				return err
			}
			text = strings.TrimSpace(text + " " + transcript)
		}

		attachments := internal.NewAttachmentSet()
		for _, path := range sendFiles {
			if err := attachments.AddFile(path); err != nil {
				return err
			}
		}

		if sendWebhook != "" {
			if err := app.SelectWebhook(sendWebhook); err != nil {
				return err
			}
		}

		target := "webhook"
		if webhook, err := app.NextWebhook(); err == nil {
			target = webhook.Name
		}

		var result *internal.DispatchResult
		err = internal.ShowProgress(ctx, fmt.Sprintf("Sending to %s", target), func() error {
			var sendErr error
			result, sendErr = app.Send(ctx, text, attachments.Files())
			return sendErr
		})
		if err != nil {
			return err
		}

		if result.Err != nil {
			internal.PrintWarning(result.Err.Error())
		}
		printReply(cmd, result.Reply.Text, prefs.Theme)
		return nil
	},
}

func captureVoice(ctx context.Context, cmd *cobra.Command, lang string) (string, error) {
	rec := voice.NewCommandRecognizer(cfg.Voice.Command)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), voice.ListeningMessage(lang))

	transcript, err := voice.CaptureInterim(ctx, rec, lang, cfg.Voice.Timeout, func(interim string) {
		internal.LogDebug("interim transcript: %s", interim)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", voice.ErrorMessage(err, lang), err)
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), voice.AddedMessage(lang))
	return transcript, nil
}

// printReply writes the reply as rendered markdown on a terminal and as plain text otherwise
func printReply(cmd *cobra.Command, text, theme string) {
	out := cmd.OutOrStdout()
	if sendRaw || !internal.IsTerminal() {
		_, _ = fmt.Fprintln(out, text)
		return
	}
	_, _ = fmt.Fprintln(out, render.Terminal(text, theme, render.DefaultWidth))
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendWebhook, "webhook", "w", "", "Send this message to the named webhook instead of the default")
	sendCmd.Flags().StringArrayVarP(&sendFiles, "file", "f", nil, "Attach a file (repeatable)")
	sendCmd.Flags().StringVarP(&sendSession, "session", "s", "", "Send in this session and make it active")
	sendCmd.Flags().BoolVar(&sendNew, "new", false, "Start a new session for this message")
	sendCmd.Flags().BoolVar(&sendVoice, "voice", false, "Dictate the message with the configured voice command")
	sendCmd.Flags().BoolVar(&sendRaw, "raw", false, "Print the reply without markdown rendering")
	sendCmd.MarkFlagsMutuallyExclusive("new", "session")
}
