// Package store persists small bits of application state (last folder,
// slideshow settings, window geometry) in a sqlite key-value table.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

// Well-known state keys. The frontend reads and writes these; backend code
// treats them as opaque strings.
const (
	LastFolderKey               = "last_folder"
	LastMusicFolderKey          = "last_music_folder"
	MainWindowGeometryKey       = "main_window_geometry"
	ViewerWindowGeometryKey     = "viewer_window_geometry"
	SlideshowIntervalSecondsKey = "slideshow_interval_seconds"
	SlideshowMusicKey           = "slideshow_music"
	SlideshowVideoDurationKey   = "slideshow_video_duration"
	LastSelectedFileKey         = "last_selected_file"
	LastSelectedTrackKey        = "last_selected_track"
)

// Store is a sqlite-backed key-value store. Safe for concurrent use; the
// underlying *sql.DB serializes access.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the XDG state location for the database.
func DefaultPath() (string, error) {
	path, err := xdg.StateFile("vsee/state.db")
	if err != nil {
		return "", fmt.Errorf("failed to resolve state path: %w", err)
	}
	return path, nil
}

// Open opens (creating if needed) the database at dbPath and ensures the
// schema. Use ":memory:" for tests.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("state store opened", "path", dbPath)
	return &Store{db: db, path: dbPath}, nil
}

func ensureSchema(db *sql.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS app_state (key TEXT PRIMARY KEY, value TEXT)`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM app_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read state key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO app_state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write state key %q: %w", key, err)
	}
	slog.Debug("state key written", "key", key)
	return nil
}

// All returns every key-value pair, for the debug/status display.
func (s *Store) All() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM app_state ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan state row: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate state rows: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
