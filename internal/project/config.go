// Package project handles persistent configuration: the application
// config file and saved slicing presets, both stored as JSON under the
// user's home directory.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/PosterCut/internal/model"
)

// Config holds per-user application settings.
type Config struct {
	// Defaults applied when a run does not override them.
	Options model.Options `json:"options"`

	// EngineBinary is the path engine detection starts from. Empty
	// means search PATH.
	EngineBinary string `json:"engine_binary,omitempty"`

	// RecentFiles lists recently sliced documents, newest first.
	RecentFiles []string `json:"recent_files"`

	Verbose bool `json:"verbose"`
}

// DefaultConfig returns the settings used on first run.
func DefaultConfig() Config {
	return Config{
		Options:     model.DefaultOptions(),
		RecentFiles: []string{},
	}
}

// AddRecentFile prepends a path to the recent file list, dropping
// duplicates and keeping at most 10 entries.
func (c *Config) AddRecentFile(path string) {
	files := []string{path}
	for _, f := range c.RecentFiles {
		if f != path && len(files) < 10 {
			files = append(files, f)
		}
	}
	c.RecentFiles = files
}

// DefaultConfigDir returns the default directory for application
// configuration. On all platforms this is ~/.postercut/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".postercut")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveConfig persists a Config to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveConfig(path string, config Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadConfig reads a Config from the given path.
// If the file does not exist, it returns DefaultConfig with no error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	if config.RecentFiles == nil {
		config.RecentFiles = []string{}
	}
	return config, nil
}
