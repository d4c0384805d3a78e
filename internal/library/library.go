// Package library answers filesystem questions for the folder tree and the
// media grid: directory listings, drive roots, parent navigation and data-URL
// reads for preview fallback.
package library

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Entry is a single child of a listed directory.
type Entry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Kind  string `json:"kind"`
}

// Media kinds assigned to entries. Directories always get KindDir.
const (
	KindDir   = "dir"
	KindImage = "image"
	KindVideo = "video"
	KindAudio = "audio"
	KindOther = "other"
)

// ListResult is what the frontend renders: either entries or a short error
// message suitable for direct display.
type ListResult struct {
	OK      bool    `json:"ok"`
	Entries []Entry `json:"entries,omitempty"`
	Error   string  `json:"error,omitempty"`
}

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
	"bmp": true, "tiff": true, "tif": true, "ico": true, "svg": true,
}

var videoExts = map[string]bool{
	"mp4": true, "mkv": true, "avi": true, "mov": true, "wmv": true,
	"webm": true, "m4v": true, "mpg": true, "mpeg": true,
}

var audioExts = map[string]bool{
	"mp3": true, "wav": true, "flac": true, "ogg": true, "oga": true,
	"m4a": true, "aac": true, "wma": true, "opus": true, "aiff": true,
}

// classifyKind buckets a filename into a media kind by extension.
func classifyKind(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch {
	case imageExts[ext]:
		return KindImage
	case videoExts[ext]:
		return KindVideo
	case audioExts[ext]:
		return KindAudio
	default:
		return KindOther
	}
}

// friendlyError maps OS errors to short messages the UI can show as-is.
// External drives can disappear at any moment, so these come up in normal use.
func friendlyError(err error) string {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "not ready") || strings.Contains(lower, "device is not ready"):
		return "Drive unavailable or disconnected."
	case strings.Contains(lower, "access is denied") || strings.Contains(lower, "permission denied"):
		return "Access denied."
	case strings.Contains(lower, "path not found") ||
		strings.Contains(lower, "no such file") ||
		strings.Contains(lower, "does not exist") ||
		strings.Contains(lower, "the system cannot find"):
		return "Path not found (drive may have been disconnected)."
	case strings.Contains(lower, "not found"):
		return "Not found."
	default:
		return msg
	}
}

// List returns the direct children of path, name-sorted case-insensitively.
// Entries whose metadata cannot be read are skipped rather than failing the
// whole listing.
func List(fsys afero.Fs, path string) ListResult {
	info, err := fsys.Stat(path)
	if err != nil {
		slog.Debug("list failed to stat path", "path", path, "error", err)
		return ListResult{Error: friendlyError(err)}
	}
	if !info.IsDir() {
		return ListResult{Error: "Path is not a directory."}
	}

	children, err := afero.ReadDir(fsys, path)
	if err != nil {
		slog.Debug("list failed to read directory", "path", path, "error", err)
		return ListResult{Error: friendlyError(err)}
	}

	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		name := child.Name()
		entry := Entry{
			Name:  name,
			Path:  filepath.Join(path, name),
			IsDir: child.IsDir(),
		}
		if entry.IsDir {
			entry.Kind = KindDir
		} else {
			entry.Kind = classifyKind(name)
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	slog.Debug("listed directory", "path", path, "entries", len(entries))
	return ListResult{OK: true, Entries: entries}
}

// Roots returns the browsable starting points: readable drive letters on
// Windows, the home directory elsewhere. Unreadable drives are skipped so a
// disconnected external disk never shows up. Call again to pick up newly
// connected devices.
func Roots(fsys afero.Fs) ListResult {
	if runtime.GOOS == "windows" {
		return windowsRoots(fsys)
	}
	return unixRoots(fsys)
}

func windowsRoots(fsys afero.Fs) ListResult {
	var entries []Entry
	for letter := 'A'; letter <= 'Z'; letter++ {
		root := string(letter) + `:\`
		info, err := fsys.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		if _, err := afero.ReadDir(fsys, root); err != nil {
			continue
		}
		entries = append(entries, Entry{Name: root, Path: root, IsDir: true, Kind: KindDir})
	}
	return ListResult{OK: true, Entries: entries}
}

func unixRoots(fsys afero.Fs) ListResult {
	home := os.Getenv("HOME")
	if home == "" {
		return ListResult{OK: true}
	}
	info, err := fsys.Stat(home)
	if err != nil || !info.IsDir() {
		return ListResult{OK: true}
	}

	name := filepath.Base(home)
	if name == "" || name == "/" {
		name = "Home"
	}
	return ListResult{OK: true, Entries: []Entry{
		{Name: name, Path: home, IsDir: true, Kind: KindDir},
	}}
}

// ParentPath returns the parent of path, or false when path is already a
// root and has no distinct parent.
func ParentPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	parent := filepath.Dir(filepath.Clean(path))
	if parent == "" || parent == path || parent == filepath.Clean(path) {
		return "", false
	}
	return parent, true
}
