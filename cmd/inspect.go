package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/iksnae/agent-chat/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat string
	inspectSample int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [key-prefix]",
	Short: "Inspect the raw key-value store",
	Long: `Inspect the raw contents of the key-value store.

Every stored key is listed with its value size and the start of its value.
Keys in use:
  persistentSessionId        active session id
  chatHistory_<session-id>   messages of a session
  chatMeta_<session-id>      name and last update of a session
  webhooks                   configured webhooks
  defaultWebhookName         default webhook
  preferences                UI preferences

Examples:
  agent-chat inspect                        # All keys
  agent-chat inspect chatHistory_           # Only transcripts
  agent-chat inspect --format json --sample 0`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}

		app, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		pairs, err := app.Inspect(prefix)
		if err != nil {
			return fmt.Errorf("failed to scan store: %w", err)
		}

		out := cmd.OutOrStdout()
		switch inspectFormat {
		case "json":
			return inspectJSON(out, pairs)
		case "table", "":
			inspectTable(out, pairs)
			return nil
		default:
			return &internal.ValidationError{Field: "format", Reason: "must be table or json"}
		}
	},
}

type inspectEntry struct {
	Key    string          `json:"key"`
	Size   int             `json:"size"`
	Value  json.RawMessage `json:"value,omitempty"`
	Sample string          `json:"sample,omitempty"`
}

func inspectJSON(out io.Writer, pairs []internal.KeyValuePair) error {
	entries := make([]inspectEntry, 0, len(pairs))
	for _, pair := range pairs {
		entry := inspectEntry{Key: pair.Key, Size: len(pair.Value)}
		if json.Valid(pair.Value) {
			entry.Value = json.RawMessage(pair.Value)
		} else {
			entry.Sample = sampleValue(pair.Value, inspectSample)
		}
		entries = append(entries, entry)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func inspectTable(out io.Writer, pairs []internal.KeyValuePair) {
	if len(pairs) == 0 {
		_, _ = fmt.Fprintln(out, "⚠️  No keys found")
		return
	}

	_, _ = fmt.Fprintf(out, "📊 Found %d key(s)\n\n", len(pairs))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tSIZE\tVALUE\t")
	for _, pair := range pairs {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t\n", pair.Key, len(pair.Value), sampleValue(pair.Value, inspectSample))
	}
	_ = w.Flush()
}

// sampleValue returns the first n runes of a value on one line; n <= 0 returns everything
func sampleValue(value []byte, n int) string {
	s := strings.Join(strings.Fields(string(value)), " ")
	if !utf8.ValidString(s) {
		return fmt.Sprintf("<%d bytes of binary data>", len(value))
	}
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "table", "Output format (table, json)")
	inspectCmd.Flags().IntVar(&inspectSample, "sample", 60, "Characters of each value to show (0 for all)")
}
