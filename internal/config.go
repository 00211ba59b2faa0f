package internal

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "AGENT_CHAT_"

// DefaultVoiceTimeout is how long voice capture waits for a final transcript
const DefaultVoiceTimeout = 3 * time.Second

// Config is the resolved runtime configuration
type Config struct {
	Storage string `yaml:"storage"`
	Backend string `yaml:"backend"`
	HTTP    struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http"`
	Log struct {
		File string `yaml:"file"`
	} `yaml:"log"`
	Voice struct {
		Command string        `yaml:"command"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"voice"`

	// Path of the config file that was read, empty when none existed
	Source string `yaml:"-"`
}

// ConfigOverrides carries the values given on the command line
type ConfigOverrides struct {
	ConfigPath string
	Storage    string
	Backend    string
}

// ResolveConfig merges flags > AGENT_CHAT_* environment (.env included) > config.yaml > defaults
func ResolveConfig(flags ConfigOverrides) (Config, error) {
	detected, err := DetectStoragePaths()
	if err != nil && flags.Storage == "" {
		return Config{}, err
	}
	if flags.Storage != "" {
		detected = StoragePathsAt(flags.Storage)
	}

	LoadDotEnv(".env")
	LoadDotEnv(detected.EnvFile())

	path, explicit := flags.ConfigPath, flags.ConfigPath != ""
	if !explicit {
		if v := os.Getenv(envPrefix + "CONFIG"); v != "" {
			path, explicit = v, true
		} else {
			path = detected.ConfigFile()
		}
	}

	cfg, found, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}
	if !found && explicit {
		return Config{}, fmt.Errorf("config file not found: %s", path)
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if flags.Storage != "" {
		cfg.Storage = flags.Storage
	}
	if flags.Backend != "" {
		cfg.Backend = flags.Backend
	}
	cfg.applyDefaults()

	LogDebug("config resolved: storage=%q backend=%s source=%q", cfg.Storage, cfg.Backend, cfg.Source)
	return cfg, nil
}

// LoadConfig reads a YAML config file; a missing file yields defaults and found=false
func LoadConfig(path string) (Config, bool, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, true, nil
}

// LoadDotEnv loads a .env file into the process environment without overriding existing variables
func LoadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		LogWarn("failed to load %s: %v", path, err)
	}
}

// ApplyEnvOverrides copies AGENT_CHAT_* variables onto cfg
func ApplyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(envPrefix + "STORAGE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv(envPrefix + "BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv(envPrefix + "LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv(envPrefix + "VOICE_COMMAND"); v != "" {
		cfg.Voice.Command = v
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{envPrefix + "HTTP_TIMEOUT", &cfg.HTTP.Timeout},
		{envPrefix + "VOICE_TIMEOUT", &cfg.Voice.Timeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.name)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return &ValidationError{Field: d.name, Reason: err.Error()}
		}
		*d.dst = parsed
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = DefaultHTTPTimeout
	}
	if c.Voice.Timeout <= 0 {
		c.Voice.Timeout = DefaultVoiceTimeout
	}
}

// Paths returns the storage locations this config points at
func (c Config) Paths() (StoragePaths, error) {
	if c.Storage != "" {
		return StoragePathsAt(c.Storage), nil
	}
	return DetectStoragePaths()
}
