package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var webhookCmd = &cobra.Command{
	Use:     "webhook",
	Aliases: []string{"webhooks"},
	Short:   "Manage agent webhooks",
	Long: `Manage the named webhooks messages are sent to.

The first webhook added becomes the default. A different webhook can be
picked for a single message with 'agent-chat send --webhook <name>' or by
typing /<name> in the chat screen.`,
}

var webhookAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a webhook",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		if err := app.Webhooks.Add(args[0], args[1]); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added webhook %s\n", args[0])
		if app.Webhooks.DefaultName() == args[0] {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is the default webhook\n", args[0])
		}
		return nil
	},
}

var webhookRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a webhook",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		if err := app.Webhooks.Remove(args[0]); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Removed webhook %s\n", args[0])
		if def := app.Webhooks.DefaultName(); def != "" {
			_, _ = fmt.Fprintf(out, "Default webhook: %s\n", def)
		} else {
			_, _ = fmt.Fprintln(out, "No webhooks left")
		}
		return nil
	},
}

var webhookDefaultCmd = &cobra.Command{
	Use:   "default [name]",
	Short: "Show or set the default webhook",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			def, ok := app.Webhooks.Default()
			if !ok {
				return fmt.Errorf("no default webhook (add one with 'agent-chat webhook add')")
			}
			_, _ = fmt.Fprintf(out, "%s\t%s\n", def.Name, def.URL)
			return nil
		}

		if err := app.Webhooks.SetDefault(args[0]); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Default webhook: %s\n", args[0])
		return nil
	},
}

var webhookListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List webhooks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		entries := app.Webhooks.List()
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			_, _ = fmt.Fprintln(out, headerStyle.Render("🔗 No webhooks configured"))
			return nil
		}

		def := app.Webhooks.DefaultName()
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		for _, entry := range entries {
			marker := " "
			if entry.Name == def {
				marker = currentStyle.Render("*")
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t\n", marker, titleStyle.Render(entry.Name), entry.URL)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.AddCommand(webhookAddCmd, webhookRemoveCmd, webhookDefaultCmd, webhookListCmd)
}
