// Package config loads and validates application configuration: a JSON file
// discovered through XDG paths, overlaid with VSEE_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileLoggingConfig represents file-based logging configuration
type FileLoggingConfig struct {
	Enabled    bool   `json:"enabled"`      // Whether file logging is enabled
	Filename   string `json:"filename"`     // Log file path (empty = XDG state path)
	MaxSizeMB  int    `json:"max_size_mb"`  // Max file size in MB before rotation
	MaxBackups int    `json:"max_backups"`  // Max number of backup files to keep
	MaxAgeDays int    `json:"max_age_days"` // Max age in days before deletion
	Compress   bool   `json:"compress"`     // Whether to compress rotated files
}

// Config represents application configuration
type Config struct {
	Enabled      bool               `json:"enabled"`                // Whether audio playback is enabled
	LogLevel     string             `json:"log_level"`              // Log level (debug, info, warn, error)
	AudioBackend string             `json:"audio_backend"`          // Audio backend (auto, malgo, speaker, command)
	FileLogging  *FileLoggingConfig `json:"file_logging,omitempty"` // File logging configuration
}

var validLogLevels = []string{"debug", "info", "warn", "error"}
var validBackends = []string{"auto", "malgo", "speaker", "command"}

// ConfigManager handles loading, saving, and validating configuration
type ConfigManager struct {
	xdg *XDGDirs
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() *ConfigManager {
	return &ConfigManager{xdg: NewXDGDirs()}
}

// GetDefaultConfig returns the default configuration
func (cm *ConfigManager) GetDefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		LogLevel:     "warn",
		AudioBackend: "auto",
		FileLogging: &FileLoggingConfig{
			Enabled:    false,
			Filename:   "",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration using XDG path discovery, falls back to
// defaults when no config file exists, then applies environment overrides.
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	var config *Config

	found := ""
	for _, configPath := range cm.xdg.ConfigPaths("config.json") {
		if _, err := os.Stat(configPath); err == nil {
			found = configPath
			break
		}
	}

	if found == "" {
		slog.Debug("no config file found, using defaults")
		config = cm.GetDefaultConfig()
	} else {
		loaded, err := cm.LoadFromFile(found)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	cm.applyEnvironmentOverrides(config)

	if err := cm.ValidateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific file
func (cm *ConfigManager) LoadFromFile(filePath string) (*Config, error) {
	slog.Debug("loading config from file", "file_path", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := cm.GetDefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		slog.Error("failed to parse config JSON", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cm.ValidateConfig(config); err != nil {
		return nil, err
	}

	slog.Debug("config loaded",
		"file_path", filePath,
		"log_level", config.LogLevel,
		"audio_backend", config.AudioBackend)
	return config, nil
}

// SaveToFile saves configuration to a specific file
func (cm *ConfigManager) SaveToFile(config *Config, filePath string) error {
	if err := cm.ValidateConfig(config); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	slog.Info("config saved", "file_path", filePath)
	return nil
}

// applyEnvironmentOverrides applies VSEE_* environment variables on top of
// the loaded configuration. Invalid values are logged and ignored.
func (cm *ConfigManager) applyEnvironmentOverrides(config *Config) {
	if logLevel := os.Getenv("VSEE_LOG_LEVEL"); logLevel != "" {
		config.LogLevel = strings.ToLower(logLevel)
		slog.Debug("applied log level override", "value", config.LogLevel)
	}

	if backend := os.Getenv("VSEE_AUDIO_BACKEND"); backend != "" {
		config.AudioBackend = strings.ToLower(backend)
		slog.Debug("applied audio backend override", "value", config.AudioBackend)
	}

	if enabledStr := os.Getenv("VSEE_ENABLED"); enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			slog.Warn("invalid VSEE_ENABLED environment variable", "value", enabledStr, "error", err)
		} else {
			config.Enabled = enabled
		}
	}
}

// ValidateConfig validates configuration values
func (cm *ConfigManager) ValidateConfig(config *Config) error {
	var problems []string

	if config.LogLevel != "" && !contains(validLogLevels, config.LogLevel) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s', must be one of: %s",
			config.LogLevel, strings.Join(validLogLevels, ", ")))
	}

	if config.AudioBackend != "" && !contains(validBackends, config.AudioBackend) {
		problems = append(problems, fmt.Sprintf("invalid audio backend '%s', must be one of: %s",
			config.AudioBackend, strings.Join(validBackends, ", ")))
	}

	if fl := config.FileLogging; fl != nil {
		if fl.MaxSizeMB < 0 {
			problems = append(problems, fmt.Sprintf("file logging max_size_mb must be >= 0, got %d", fl.MaxSizeMB))
		}
		if fl.MaxBackups < 0 {
			problems = append(problems, fmt.Sprintf("file logging max_backups must be >= 0, got %d", fl.MaxBackups))
		}
		if fl.MaxAgeDays < 0 {
			problems = append(problems, fmt.Sprintf("file logging max_age_days must be >= 0, got %d", fl.MaxAgeDays))
		}
	}

	if len(problems) > 0 {
		msg := strings.Join(problems, "; ")
		slog.Error("config validation failed", "errors", msg)
		return fmt.Errorf("config validation failed: %s", msg)
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
