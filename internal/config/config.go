// Package config holds the persistent application configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Mode selects which store backend the client talks to.
const (
	ModeRemote = "remote"
	ModeLocal  = "local"
)

// Config is the persistent application configuration.
type Config struct {
	// Store selects and configures the backing store.
	Store StoreConfig `json:"store"`

	// Author is the display name attached to comments. No identity
	// system exists; everyone is the placeholder.
	Author string `json:"author"`

	// UI preferences.
	UI UIConfig `json:"ui"`
}

// StoreConfig selects the store backend.
type StoreConfig struct {
	Mode     string `json:"mode"`                // "remote" or "local"
	BaseURL  string `json:"base_url,omitempty"`  // RTDB endpoint for remote mode
	Auth     string `json:"auth,omitempty"`      // database secret / ID token
	LocalDB  string `json:"local_db,omitempty"`  // SQLite path for local mode
}

// UIConfig holds UI preferences.
type UIConfig struct {
	// SwipeThreshold is the minimum drag distance, in rows, for a
	// press-drag-release gesture to count as a swipe instead of a tap.
	SwipeThreshold int `json:"swipe_threshold"`

	// ShareCommand, when set, is run with the share link on stdin
	// (wl-copy, pbcopy, tmux load-buffer). Empty means the platform
	// clipboard.
	ShareCommand string `json:"share_command,omitempty"`
}

// DefaultConfig returns sensible defaults: local mode against a
// SQLite database in the data directory.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Mode:    ModeLocal,
			LocalDB: filepath.Join(DataDir(), "reelview.db"),
		},
		Author: "Anonymous",
		UI: UIConfig{
			SwipeThreshold: 3,
		},
	}
}

// DataDir returns the application data directory (~/.reelview).
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".reelview")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// Load reads config from disk, or returns defaults. Environment
// variables override the file so deployments can inject credentials
// without writing them to disk.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err == nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			cfg = DefaultConfig()
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// applyEnv fills settings from environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("REELVIEW_DATABASE_URL"); v != "" {
		c.Store.Mode = ModeRemote
		c.Store.BaseURL = v
	}
	if v := os.Getenv("REELVIEW_AUTH_TOKEN"); v != "" {
		c.Store.Auth = v
	}
	if v := os.Getenv("REELVIEW_AUTHOR"); v != "" {
		c.Author = v
	}
}

// normalize backfills zero values so downstream code never has to.
func (c *Config) normalize() {
	if c.Store.Mode == "" {
		c.Store.Mode = ModeLocal
	}
	if c.Store.LocalDB == "" {
		c.Store.LocalDB = filepath.Join(DataDir(), "reelview.db")
	}
	if c.Author == "" {
		c.Author = "Anonymous"
	}
	if c.UI.SwipeThreshold <= 0 {
		c.UI.SwipeThreshold = 3
	}
}

// Save writes config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(DataDir(), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	// Restrictive permissions: the file may hold an auth token.
	return os.WriteFile(ConfigPath(), data, 0600)
}
