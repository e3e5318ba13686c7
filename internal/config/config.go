// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; API keys go to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"gridmove/cli/internal/xdg"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel string         `json:"log_level"`
	Airtable AirtableConfig `json:"airtable"`
	Grist    GristConfig    `json:"grist"`
}

// AirtableConfig holds source base settings.
type AirtableConfig struct {
	BaseID string `json:"base_id"`
}

// GristConfig holds destination server settings.
type GristConfig struct {
	ServerURL   string `json:"server_url"`
	WorkspaceID int64  `json:"workspace_id"`
	DocName     string `json:"doc_name"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	var c Config
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Defaults (API keys come from env/keychain, not config)
			c.LogLevel = "info"
			c.Grist = GristConfig{ServerURL: "https://docs.getgrist.com"}
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	if c.Grist.ServerURL == "" {
		c.Grist.ServerURL = "https://docs.getgrist.com"
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
