package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cm := NewConfigManager()
	cfg := cm.GetDefaultConfig()

	if !cfg.Enabled {
		t.Error("default config should be enabled")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("default log level = %q, want warn", cfg.LogLevel)
	}
	if cfg.AudioBackend != "auto" {
		t.Errorf("default audio backend = %q, want auto", cfg.AudioBackend)
	}
	if cfg.FileLogging == nil || cfg.FileLogging.Enabled {
		t.Error("file logging should default to present but disabled")
	}
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	cm := NewConfigManager()
	path := filepath.Join(t.TempDir(), "config.json")

	content := `{"enabled": true, "log_level": "debug", "audio_backend": "speaker"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := cm.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.AudioBackend != "speaker" {
		t.Errorf("loaded config = %+v", cfg)
	}
}

func TestLoadFromFileRejectsBadJSON(t *testing.T) {
	cm := NewConfigManager()
	path := filepath.Join(t.TempDir(), "config.json")

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := cm.LoadFromFile(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cm := NewConfigManager()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
		{"bad backend", func(c *Config) { c.AudioBackend = "pulse" }, "invalid audio backend"},
		{"negative size", func(c *Config) { c.FileLogging.MaxSizeMB = -1 }, "max_size_mb"},
		{"negative backups", func(c *Config) { c.FileLogging.MaxBackups = -1 }, "max_backups"},
		{"negative age", func(c *Config) { c.FileLogging.MaxAgeDays = -1 }, "max_age_days"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := cm.GetDefaultConfig()
			tc.mutate(cfg)

			err := cm.ValidateConfig(cfg)
			if err == nil {
				t.Fatal("expected validation failure")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	cm := NewConfigManager()

	t.Setenv("VSEE_LOG_LEVEL", "DEBUG")
	t.Setenv("VSEE_AUDIO_BACKEND", "command")
	t.Setenv("VSEE_ENABLED", "false")

	cfg := cm.GetDefaultConfig()
	cm.applyEnvironmentOverrides(cfg)

	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug (lowered)", cfg.LogLevel)
	}
	if cfg.AudioBackend != "command" {
		t.Errorf("audio backend = %q, want command", cfg.AudioBackend)
	}
	if cfg.Enabled {
		t.Error("VSEE_ENABLED=false should disable")
	}
}

func TestInvalidEnabledEnvIsIgnored(t *testing.T) {
	cm := NewConfigManager()
	t.Setenv("VSEE_ENABLED", "maybe")

	cfg := cm.GetDefaultConfig()
	cm.applyEnvironmentOverrides(cfg)

	if !cfg.Enabled {
		t.Error("unparseable VSEE_ENABLED should leave the value unchanged")
	}
}

func TestSaveAndReload(t *testing.T) {
	cm := NewConfigManager()
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := cm.GetDefaultConfig()
	cfg.LogLevel = "info"
	if err := cm.SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	reloaded, err := cm.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if reloaded.LogLevel != "info" {
		t.Errorf("reloaded log level = %q, want info", reloaded.LogLevel)
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	cm := NewConfigManager()
	cfg := cm.GetDefaultConfig()
	cfg.AudioBackend = "bogus"

	if err := cm.SaveToFile(cfg, filepath.Join(t.TempDir(), "config.json")); err == nil {
		t.Error("saving an invalid config should fail")
	}
}

func TestConfigPathsUserFirst(t *testing.T) {
	paths := NewXDGDirs().ConfigPaths("config.json")
	if len(paths) == 0 {
		t.Fatal("no config paths generated")
	}
	if !strings.HasSuffix(paths[0], filepath.Join("vsee", "config.json")) {
		t.Errorf("first path %q should be the user vsee config", paths[0])
	}
}
