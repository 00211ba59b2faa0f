package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/agent-chat/testutil"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"CONFIG", "STORAGE", "BACKEND", "HTTP_TIMEOUT", "LOG_FILE", "VOICE_COMMAND", "VOICE_TIMEOUT"} {
		t.Setenv(envPrefix+name, "")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := testutil.CreateConfigFixture(t, dir, `
storage: /tmp/chats
backend: pebble
http:
  timeout: 30s
log:
  file: /tmp/agent-chat.log
voice:
  command: whisper-stream --lang {lang}
  timeout: 5s
`)

	cfg, found, err := LoadConfig(path)
	if err != nil || !found {
		t.Fatalf("LoadConfig() = %v, %v", found, err)
	}
	if cfg.Storage != "/tmp/chats" || cfg.Backend != BackendPebble {
		t.Errorf("storage/backend = %q/%q", cfg.Storage, cfg.Backend)
	}
	if cfg.HTTP.Timeout != 30*time.Second || cfg.Voice.Timeout != 5*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.HTTP.Timeout, cfg.Voice.Timeout)
	}
	if cfg.Log.File != "/tmp/agent-chat.log" || cfg.Voice.Command != "whisper-stream --lang {lang}" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}

	_, found, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	if err != nil || found {
		t.Errorf("LoadConfig(missing) = %v, %v; want false, nil", found, err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(bad, []byte("http: [unclosed"), 0644)
	if _, _, err := LoadConfig(bad); err == nil {
		t.Error("LoadConfig(bad) should fail")
	}
}

func TestResolveConfig_Precedence(t *testing.T) {
	clearConfigEnv(t)
	dir := testutil.CreateTempDir(t)
	path := testutil.CreateConfigFixture(t, dir, "backend: pebble\nhttp:\n  timeout: 30s\nvoice:\n  command: from-file\n")

	t.Setenv(envPrefix+"VOICE_COMMAND", "from-env")
	t.Setenv(envPrefix+"HTTP_TIMEOUT", "45s")

	cfg, err := ResolveConfig(ConfigOverrides{ConfigPath: path, Storage: dir, Backend: BackendMemory})
	if err != nil {
		t.Fatalf("ResolveConfig() error = %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %q, flag should win", cfg.Backend)
	}
	if cfg.Storage != dir {
		t.Errorf("Storage = %q, want %q", cfg.Storage, dir)
	}
	if cfg.Voice.Command != "from-env" || cfg.HTTP.Timeout != 45*time.Second {
		t.Errorf("env should beat file: command=%q timeout=%v", cfg.Voice.Command, cfg.HTTP.Timeout)
	}
	if cfg.Voice.Timeout != DefaultVoiceTimeout {
		t.Errorf("Voice.Timeout = %v, want default", cfg.Voice.Timeout)
	}
}

func TestResolveConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)
	dir := testutil.CreateTempDir(t)

	cfg, err := ResolveConfig(ConfigOverrides{Storage: dir})
	if err != nil {
		t.Fatalf("ResolveConfig() error = %v", err)
	}
	if cfg.Backend != BackendSQLite || cfg.HTTP.Timeout != DefaultHTTPTimeout || cfg.Voice.Timeout != DefaultVoiceTimeout {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, no config file exists", cfg.Source)
	}
}

func TestResolveConfig_DotEnv(t *testing.T) {
	clearConfigEnv(t)
	dir := testutil.CreateTempDir(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("AGENT_CHAT_LOG_FILE=/tmp/from-dotenv.log\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	// godotenv never overrides variables that are already set, even to ""
	os.Unsetenv(envPrefix + "LOG_FILE")
	defer os.Unsetenv(envPrefix + "LOG_FILE")

	cfg, err := ResolveConfig(ConfigOverrides{Storage: dir})
	if err != nil {
		t.Fatalf("ResolveConfig() error = %v", err)
	}
	if cfg.Log.File != "/tmp/from-dotenv.log" {
		t.Errorf("Log.File = %q, want value from .env", cfg.Log.File)
	}
}

func TestResolveConfig_Errors(t *testing.T) {
	clearConfigEnv(t)
	dir := testutil.CreateTempDir(t)

	if _, err := ResolveConfig(ConfigOverrides{Storage: dir, ConfigPath: filepath.Join(dir, "nope.yaml")}); err == nil {
		t.Error("explicit missing config should fail")
	}

	t.Setenv(envPrefix+"HTTP_TIMEOUT", "soon")
	if _, err := ResolveConfig(ConfigOverrides{Storage: dir}); err == nil {
		t.Error("invalid duration should fail")
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := Config{Storage: "/data/chat"}
	paths, err := cfg.Paths()
	if err != nil {
		t.Fatalf("Paths() error = %v", err)
	}
	if paths.DatabasePath() != filepath.Join("/data/chat", "agent-chat.db") {
		t.Errorf("DatabasePath() = %q", paths.DatabasePath())
	}
	if paths.StorePath(BackendPebble) != filepath.Join("/data/chat", "pebble") {
		t.Errorf("StorePath(pebble) = %q", paths.StorePath(BackendPebble))
	}
	if paths.StorePath(BackendMemory) != "" {
		t.Errorf("StorePath(memory) = %q", paths.StorePath(BackendMemory))
	}
}
