package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/agent-chat/internal"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change preferences",
	Long: `Show or change the stored preferences.

Keys: ` + strings.Join(internal.PreferenceKeys, ", ") + `

  theme          dark, light
  textSize       small, medium, large
  voiceLanguage  auto or a language tag such as en-US, fr-FR
  fontFamily     system, inter, roboto, poppins, source-sans, open-sans, lato, nunito`,
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
		out := cmd.OutOrStdout()
		for _, key := range internal.PreferenceKeys {
			value, _ := prefs.Get(key)
			_, _ = fmt.Fprintf(out, "%-14s %s\n", key, value)
		}
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one preference",
	Args:  cobra.ExactArgs(1),
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
		value, err := prefs.Get(args[0])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one preference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		if err := app.SetPreference(args[0], args[1]); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
}
