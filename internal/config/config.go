package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	EnvRoot      = "HIVE_ROOT"
	EnvSessionID = "HIVE_SESSION_ID"
)

// HubConfig is the explicit runtime configuration threaded into every
// store, mailbox, and registry constructor. Nothing below the config layer
// reads the environment.
type HubConfig struct {
	Root         string `toml:"root"`
	SessionID    string `toml:"session_id"`
	TmuxBin      string `toml:"tmux_bin"`
	SettingsPath string `toml:"settings_path"`
}

// DefaultHubConfig resolves defaults and the two supported env overrides.
func DefaultHubConfig() HubConfig {
	cfg := HubConfig{
		TmuxBin: "tmux",
	}
	if root := strings.TrimSpace(os.Getenv(EnvRoot)); root != "" {
		cfg.Root = root
	} else if home, err := os.UserHomeDir(); err == nil {
		cfg.Root = filepath.Join(home, ".hive")
	}
	cfg.SessionID = strings.TrimSpace(os.Getenv(EnvSessionID))
	return cfg
}

// LoadHubConfig reads a toml config file over the defaults. An empty path
// returns the defaults untouched.
func LoadHubConfig(path string) (HubConfig, error) {
	cfg := DefaultHubConfig()
	if strings.TrimSpace(path) == "" {
		if err := ValidateHubConfig(cfg); err != nil {
			return HubConfig{}, err
		}
		return cfg, nil
	}

	var raw HubConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return HubConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if meta.IsDefined("root") && strings.TrimSpace(raw.Root) != "" {
		cfg.Root = strings.TrimSpace(raw.Root)
	}
	if meta.IsDefined("session_id") && strings.TrimSpace(raw.SessionID) != "" {
		cfg.SessionID = strings.TrimSpace(raw.SessionID)
	}
	if meta.IsDefined("tmux_bin") && strings.TrimSpace(raw.TmuxBin) != "" {
		cfg.TmuxBin = strings.TrimSpace(raw.TmuxBin)
	}
	if meta.IsDefined("settings_path") {
		cfg.SettingsPath = strings.TrimSpace(raw.SettingsPath)
	}

	if err := ValidateHubConfig(cfg); err != nil {
		return HubConfig{}, err
	}
	return cfg, nil
}

// ValidateHubConfig enforces required fields. The session id stays optional
// here: the daemon derives it from the multiplexer when unset, and one-shot
// registry callers do not need one.
func ValidateHubConfig(cfg HubConfig) error {
	if strings.TrimSpace(cfg.Root) == "" {
		return fmt.Errorf("hub config missing root")
	}
	if strings.TrimSpace(cfg.TmuxBin) == "" {
		return fmt.Errorf("hub config missing tmux_bin")
	}
	return nil
}
