package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/testutil"
)

func TestSettingsCommands(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	out := mustExecute(t, dir, "settings")
	for _, want := range []string{"theme", "dark", "textSize", "medium", "voiceLanguage", "auto", "fontFamily", "inter"} {
		if !strings.Contains(out, want) {
			t.Errorf("settings missing %q:\n%s", want, out)
		}
	}

	if out := mustExecute(t, dir, "settings", "set", "theme", "light"); out != "theme = light\n" {
		t.Errorf("set output = %q", out)
	}
	if out := mustExecute(t, dir, "settings", "get", "theme"); out != "light\n" {
		t.Errorf("get after set = %q", out)
	}
}

func TestSettingsCommands_Errors(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	tests := []struct {
		name       string
		args       []string
		validation bool
	}{
		{name: "unknown key", args: []string{"settings", "get", "colour"}},
		{name: "set unknown key", args: []string{"settings", "set", "colour", "red"}},
		{name: "invalid value", args: []string{"settings", "set", "textSize", "huge"}, validation: true},
		{name: "invalid language", args: []string{"settings", "set", "voiceLanguage", "xx-XX"}, validation: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, dir, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			var verr *internal.ValidationError
			if errors.As(err, &verr) != tt.validation {
				t.Errorf("error = %v (%T)", err, err)
			}
		})
	}

	if out := mustExecute(t, dir, "settings", "get", "textSize"); out != "medium\n" {
		t.Errorf("rejected value was stored: %q", out)
	}
}
