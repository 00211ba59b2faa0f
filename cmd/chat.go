package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/agent-chat/internal"
	"github.com/spf13/cobra"
)

var chatAltScreen bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat screen",
	Long: `Open the interactive chat screen on the active session.

Type a message and press enter to send it to the default webhook. Start a
line with /<name> to send the next message to another webhook; the choice
resets after that message. Type /help for the other commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		prefs, err := app.Preferences()
		if err != nil {
			return err
		}

		restoreLogs := detachConsoleLogs()
		defer restoreLogs()

		opts := []tea.ProgramOption{
			tea.WithContext(cmd.Context()),
			tea.WithInput(cmd.InOrStdin()),
			tea.WithOutput(cmd.OutOrStdout()),
			tea.WithMouseCellMotion(),
		}
		if chatAltScreen {
			opts = append(opts, tea.WithAltScreen())
		}

		p := tea.NewProgram(newChatModel(cmd.Context(), app, prefs), opts...)
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("chat screen failed: %w", err)
		}
		return nil
	},
}

// detachConsoleLogs sends log output to the log file only, so it cannot draw over the screen.
// Without a configured log file, one is opened in the data directory.
func detachConsoleLogs() func() {
	if internal.LogFile() == "" && cfg.Backend != internal.BackendMemory {
		if paths, err := cfg.Paths(); err == nil {
			internal.SetLogFile(paths.LogPath())
		}
	}
	return internal.SetConsoleOutput(nil)
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatAltScreen, "fullscreen", true, "Use the terminal's alternate screen")
}
