package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	sessionID string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to file",
	Long: `Export chat sessions to various formats (` + strings.Join(export.Formats, ", ") + `).

Every stored session is exported unless --session-id names one ("current" is the
active session). Each session is written to session_<id>.<ext> in the output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		app, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		var ids []string
		if sessionID != "" {
			session, err := app.Session(sessionID)
			if err != nil {
				return fmt.Errorf("%w (use 'agent-chat list' to see available sessions)", err)
			}
			ids = []string{session.ID}
		} else {
			summaries, err := app.History()
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			for _, s := range summaries {
				ids = append(ids, s.ID)
			}
		}

		if len(ids) == 0 {
			internal.PrintInfo("No sessions to export")
			return nil
		}

		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return &internal.ExportError{Format: format, Path: outputDir, Err: err}
		}

		exported := 0
		err = internal.ShowProgress(context.Background(), fmt.Sprintf("Exporting %d session(s) to %s", len(ids), outputDir), func() error {
			for _, id := range ids {
				session, err := app.Session(id)
				if err != nil {
					internal.LogError("Failed to load session %s: %v", id, err)
					continue
				}
				path, err := exportSession(exporter, session, outputDir)
				if err != nil {
					internal.LogError("%v", err)
					continue
				}
				internal.LogDebug("exported %s", path)
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}
		if exported < len(ids) {
			return fmt.Errorf("exported %d of %d session(s)", exported, len(ids))
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d session(s) exported to %s", exported, outputDir))
		return nil
	},
}

// exportSession writes session to dir and returns the file path
func exportSession(exporter export.Exporter, session *internal.Session, dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("session_%s.%s", session.ID, exporter.Extension()))

	file, err := os.Create(path)
	if err != nil {
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return "", &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return path, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format ("+strings.Join(export.Formats, ", ")+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID")
}
