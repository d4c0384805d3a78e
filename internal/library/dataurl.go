package library

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// Size limits for data-URL reads. Previews stay small; audio gets more room
// because whole tracks are shipped for playback fallback.
const (
	MaxDataURLSize      = 8 * 1024 * 1024
	MaxAudioDataURLSize = 32 * 1024 * 1024
)

// Data-URL errors. The strings are shown to the user verbatim.
var (
	ErrHEICNotSupported = errors.New("HEIC/HEIF is not supported")
	ErrPDFNotDisplayed  = errors.New("PDF cannot be displayed")
	ErrPathIsDirectory  = errors.New("Path is a directory.")
	ErrFileTooLarge     = errors.New("File too large for preview")
	ErrAudioTooLarge    = errors.New("File too large for playback (max 32MB).")
)

var audioMimeByExt = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"oga":  "audio/ogg",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	"flac": "audio/flac",
	"wma":  "audio/x-ms-wma",
	"opus": "audio/opus",
	"webm": "audio/webm",
}

func lowerExt(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ReadFileAsDataURL reads the file and returns a data:<mime>;base64,<payload>
// URL, for preview when the asset protocol cannot serve the file directly.
func ReadFileAsDataURL(fsys afero.Fs, path string) (string, error) {
	switch lowerExt(path) {
	case "heic", "heif":
		return "", ErrHEICNotSupported
	case "pdf":
		return "", ErrPDFNotDisplayed
	}

	content, err := readLimited(fsys, path, MaxDataURLSize, ErrFileTooLarge)
	if err != nil {
		return "", err
	}

	mime := mimetype.Detect(content).String()
	slog.Debug("built data URL", "path", path, "mime", mime, "bytes", len(content))
	return encodeDataURL(mime, content), nil
}

// ReadFileAsAudioURL is the audio flavor: a larger size cap and extension
// driven MIME naming, since players care about the declared container more
// than the sniffed one.
func ReadFileAsAudioURL(fsys afero.Fs, path string) (string, error) {
	content, err := readLimited(fsys, path, MaxAudioDataURLSize, ErrAudioTooLarge)
	if err != nil {
		return "", err
	}

	mime, ok := audioMimeByExt[lowerExt(path)]
	if !ok {
		mime = mimetype.Detect(content).String()
	}

	slog.Debug("built audio data URL", "path", path, "mime", mime, "bytes", len(content))
	return encodeDataURL(mime, content), nil
}

func readLimited(fsys afero.Fs, path string, limit int64, tooLarge error) ([]byte, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, errors.New(friendlyError(err))
	}
	if info.IsDir() {
		return nil, ErrPathIsDirectory
	}
	if info.Size() > limit {
		return nil, tooLarge
	}

	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.New(friendlyError(err))
	}
	return content, nil
}

func encodeDataURL(mime string, content []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(content))
}
