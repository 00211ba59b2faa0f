package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a chat session",
	Long: `Delete a chat session and its messages.

Deleting the active session activates the most recent remaining session,
or a new empty one when none is left.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		current, err := app.DeleteSession(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Deleted %s\n", args[0])
		_, _ = fmt.Fprintf(out, "Active session: %s\n", current)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
