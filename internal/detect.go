package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "agent-chat"

// StoragePaths holds the detected locations of agent-chat's data and config
type StoragePaths struct {
	DataDir   string // chat database, pebble store, log file
	ConfigDir string // config.yaml and .env
}

// DetectStoragePaths detects the data and config directories based on the operating system
func DetectStoragePaths() (StoragePaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return StoragePaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var dataDir, configDir string
	switch runtime.GOOS {
	case "darwin":
		dataDir = filepath.Join(home, "Library/Application Support", appDirName)
		configDir = dataDir
	case "linux", "freebsd", "openbsd", "netbsd":
		dataDir = filepath.Join(home, ".local/share", appDirName)
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			dataDir = filepath.Join(xdg, appDirName)
		}
		configDir = filepath.Join(home, ".config", appDirName)
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, appDirName)
		}
	case "windows":
		appData := os.Getenv("AppData")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		dataDir = filepath.Join(appData, appDirName)
		configDir = dataDir
	default:
		return StoragePaths{}, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	return StoragePaths{DataDir: dataDir, ConfigDir: configDir}, nil
}

// StoragePathsAt roots both directories at dir (the --storage override)
func StoragePathsAt(dir string) StoragePaths {
	return StoragePaths{DataDir: dir, ConfigDir: dir}
}

// DatabasePath returns the SQLite database file
func (sp StoragePaths) DatabasePath() string {
	return filepath.Join(sp.DataDir, "agent-chat.db")
}

// PebbleDir returns the pebble store directory
func (sp StoragePaths) PebbleDir() string {
	return filepath.Join(sp.DataDir, "pebble")
}

// LogPath returns the log file used while the chat screen owns the terminal
func (sp StoragePaths) LogPath() string {
	return filepath.Join(sp.DataDir, "agent-chat.log")
}

// ConfigFile returns the YAML config file
func (sp StoragePaths) ConfigFile() string {
	return filepath.Join(sp.ConfigDir, "config.yaml")
}

// EnvFile returns the optional .env file
func (sp StoragePaths) EnvFile() string {
	return filepath.Join(sp.ConfigDir, ".env")
}

// StorePath returns where the given backend keeps its data; empty for the memory backend
func (sp StoragePaths) StorePath(backend string) string {
	switch backend {
	case BackendPebble:
		return sp.PebbleDir()
	case BackendMemory:
		return ""
	default:
		return sp.DatabasePath()
	}
}

// StoreExists checks whether the backend's data already exists on disk
func (sp StoragePaths) StoreExists(backend string) bool {
	path := sp.StorePath(backend)
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDataDir creates the data directory if needed
func (sp StoragePaths) EnsureDataDir() error {
	if err := os.MkdirAll(sp.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", sp.DataDir, err)
	}
	return nil
}
