// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Data DataConfig `toml:"data"`
	Quiz QuizConfig `toml:"quiz"`
	Card CardConfig `toml:"card"`
	Chat ChatConfig `toml:"chat"`
}

// DataConfig maps corpus source settings.
type DataConfig struct {
	// BaseURL is the corpus root: an http(s) URL or a local directory.
	BaseURL     *string `toml:"base-url"`
	SearchIndex *string `toml:"search-index"`
}

// QuizConfig maps quiz settings.
type QuizConfig struct {
	Questions *int `toml:"questions"`
}

// CardConfig maps card rendering settings.
type CardConfig struct {
	Font         *string  `toml:"font"`
	WallpaperDir *string  `toml:"wallpaper-dir"`
	FontSize     *float64 `toml:"font-size"`
}

// ChatConfig maps chat service credentials and endpoint.
type ChatConfig struct {
	AppID     *string `toml:"app-id"`
	APIKey    *string `toml:"api-key"`
	APISecret *string `toml:"api-secret"`
	Endpoint  *string `toml:"endpoint"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
