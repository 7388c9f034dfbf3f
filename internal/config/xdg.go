// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "jinqiu", "config.toml")
}

// DefaultCardOutputDir returns the default directory for exported cards.
func DefaultCardOutputDir() string {
	return filepath.Join(XDGDataHome(), "jinqiu", "cards")
}

// DefaultWallpaperDir returns the default directory for card wallpapers.
func DefaultWallpaperDir() string {
	return filepath.Join(XDGDataHome(), "jinqiu", "wallpaper")
}
