package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// executeCommand runs the root command with args against an isolated storage directory
func executeCommand(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	for _, name := range []string{"CONFIG", "STORAGE", "BACKEND", "LOG_FILE", "HTTP_TIMEOUT", "VOICE_TIMEOUT", "VOICE_COMMAND"} {
		t.Setenv("AGENT_CHAT_"+name, "")
	}

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	if dir != "" {
		args = append([]string{"--storage", dir}, args...)
	}
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into each other
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// mustExecute runs a command that is expected to succeed
func mustExecute(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := executeCommand(t, dir, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}
