package config

import (
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
)

// appDir is the subdirectory used under every XDG base directory.
const appDir = "vsee"

// XDGDirs provides XDG Base Directory compliant paths
type XDGDirs struct{}

// NewXDGDirs creates a new XDG directory manager
func NewXDGDirs() *XDGDirs {
	return &XDGDirs{}
}

// ConfigPaths returns prioritized paths where the named config file can be
// found: user config dir first, then system config dirs.
func (x *XDGDirs) ConfigPaths(filename string) []string {
	paths := []string{filepath.Join(xdg.ConfigHome, appDir, filename)}
	for _, dir := range xdg.ConfigDirs {
		paths = append(paths, filepath.Join(dir, appDir, filename))
	}

	slog.Debug("generated config paths", "filename", filename, "total_paths", len(paths))
	return paths
}

// UserConfigPath returns the user-writable config file location.
func (x *XDGDirs) UserConfigPath(filename string) string {
	return filepath.Join(xdg.ConfigHome, appDir, filename)
}

// LogPath returns the default rotated-log location under the XDG state dir.
func (x *XDGDirs) LogPath() string {
	return filepath.Join(xdg.StateHome, appDir, "vsee.log")
}
