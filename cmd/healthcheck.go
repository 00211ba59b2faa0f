package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/agent-chat/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that agent-chat can store sessions and reach a webhook",
	Long: `Check the health of agent-chat by verifying:
  • Storage path resolution
  • Storage backend access
  • Session data accessibility
  • Webhook configuration and default webhook

This command is useful for debugging configuration issues.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		line := func(a ...any) { _, _ = fmt.Fprintln(out, a...) }

		line(sectionStyle.Render("🔍 Agent Chat Health Check"))
		line()

		// Step 1: Resolve storage paths
		line(infoStyle.Render("Step 1: Resolving storage paths..."))
		paths, err := cfg.Paths()
		if err != nil {
			line(errorStyle.Render("❌ Failed to resolve storage paths:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		line(successStyle.Render("✅ Storage paths resolved"))
		if healthcheckVerbose {
			line("   Data dir:  ", paths.DataDir)
			line("   Config dir:", paths.ConfigDir)
			if cfg.Source != "" {
				line("   Config:    ", cfg.Source)
			}
		}
		line()

		// Step 2: Open storage backend
		line(infoStyle.Render(fmt.Sprintf("Step 2: Opening %s storage...", cfg.Backend)))
		existed := paths.StoreExists(cfg.Backend)
		app, err := openApp()
		if err != nil {
			line(errorStyle.Render("❌ Failed to open storage"))
			line()
			line("Error details:")
			line(err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer func() { _ = app.Close() }()
		if existed || cfg.Backend == internal.BackendMemory {
			line(successStyle.Render("✅ Storage opened"))
		} else {
			line(successStyle.Render("✅ Storage created"))
		}
		if healthcheckVerbose {
			if path := paths.StorePath(cfg.Backend); path != "" {
				line("   Location:", path)
			}
		}
		line()

		// Step 3: Load sessions
		line(infoStyle.Render("Step 3: Loading session data..."))
		summaries, err := app.History()
		if err != nil {
			line(errorStyle.Render("❌ Failed to load sessions:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		if len(summaries) > 0 {
			line(successStyle.Render(fmt.Sprintf("✅ Found %d session(s)", len(summaries))))
			if healthcheckVerbose {
				for i, s := range summaries {
					if i == 5 {
						line(fmt.Sprintf("   ... and %d more", len(summaries)-5))
						break
					}
					line(fmt.Sprintf("   [%d] %s (%d messages)", i+1, s.ID, s.MessageCount))
				}
			}
		} else {
			line(warningStyle.Render("⚠️  No sessions found"))
		}
		line("   Active session:", app.CurrentSession())
		line()

		// Step 4: Check webhooks
		line(infoStyle.Render("Step 4: Checking webhooks..."))
		webhook, err := app.NextWebhook()
		switch {
		case errors.Is(err, internal.ErrNoWebhookConfigured):
			line(errorStyle.Render("❌ No webhook configured"))
			line("   Add one with: agent-chat webhook add <name> <url>")
		case err != nil:
			line(errorStyle.Render("❌ Failed to resolve webhook:"), err)
		default:
			line(successStyle.Render(fmt.Sprintf("✅ %d webhook(s) configured, default: %s", app.Webhooks.Len(), webhook.Name)))
			if healthcheckVerbose {
				for _, entry := range app.Webhooks.List() {
					line(fmt.Sprintf("   %s → %s", entry.Name, entry.URL))
				}
			}
		}
		line()

		// Summary
		line(sectionStyle.Render("📊 Summary"))
		line()
		if err != nil {
			line(errorStyle.Render("❌ Health check failed"))
			line("   • Storage: Available")
			line("   • Webhook: Not configured")
			return fmt.Errorf("health check failed: %w", err)
		}
		line(successStyle.Render("✅ Health check passed!"))
		line(successStyle.Render("   • Storage: Available"))
		line(successStyle.Render(fmt.Sprintf("   • Sessions: %d found", len(summaries))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "details", false, "Show detailed diagnostic information")
}
