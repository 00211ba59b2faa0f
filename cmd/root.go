package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/agent-chat/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	storagePath string
	backendName string
	configPath  string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// cfg is resolved once per invocation before any subcommand runs
var cfg internal.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agent-chat",
	Short: "Chat with AI agents behind HTTP webhooks",
	Long: `A terminal chat client for AI agents exposed as HTTP webhooks.

Each message is POSTed as JSON to the selected webhook and the agent's
reply is stored with the conversation. Conversations, webhooks and
preferences are kept in a local key-value store.

Features:
  • Interactive chat screen with per-message webhook selection (/name)
  • One-shot sends from scripts, with file attachments and voice input
  • Session history: list, show, switch, delete
  • Export in multiple formats (JSONL, Markdown, YAML, JSON, HTML)
  • SQLite, Pebble or in-memory storage

Quick Start:
  agent-chat webhook add main https://example.com/webhook/chat
  agent-chat chat                        # Open the chat screen
  agent-chat send "hello"                # Send one message
  agent-chat list                        # List conversations`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)

		resolved, err := internal.ResolveConfig(internal.ConfigOverrides{
			ConfigPath: configPath,
			Storage:    storagePath,
			Backend:    backendName,
		})
		if err != nil {
			return err
		}
		cfg = resolved
		internal.SetLogFile(cfg.Log.File)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		internal.SyncLogs()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openApp opens the configured store; callers must Close the App
func openApp() (*internal.App, error) {
	app, err := internal.OpenApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat storage: %w", err)
	}
	return app, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom storage location (data directory)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Storage backend (sqlite, pebble, memory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
