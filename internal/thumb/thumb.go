// Package thumb extracts video thumbnails by asking ffmpeg for a single
// frame, returned as a PNG data URL the frontend can drop into an <img>.
package thumb

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Thumbnail errors. Missing ffmpeg gets its own message so the frontend can
// tell "install ffmpeg" apart from "this file is broken".
var (
	ErrFileNotFound  = errors.New("File not found.")
	ErrFfmpegMissing = errors.New("ffmpeg not found. Install ffmpeg and add it to PATH.")
	ErrNoFrame       = errors.New("No frame produced.")
)

// statFile reports whether path exists as a regular file. Swapped in tests.
var statFile = defaultStatFile

func defaultStatFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DataURL extracts one frame from the video at path, roughly one second in to
// skip black intros, and returns it as a data:image/png;base64 URL.
func DataURL(path string) (string, error) {
	if !statFile(path) {
		return "", ErrFileNotFound
	}

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		slog.Debug("ffmpeg not on PATH", "error", err)
		return "", ErrFfmpegMissing
	}

	var frame, stderr bytes.Buffer
	err := ffmpeg.Input(path, ffmpeg.KwArgs{"ss": "1"}).
		Output("pipe:", ffmpeg.KwArgs{
			"vframes": "1",
			"f":       "image2",
			"vcodec":  "png",
		}).
		WithOutput(&frame, &stderr).
		Silent(true).
		Run()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		slog.Debug("ffmpeg thumbnail extraction failed", "path", path, "detail", detail)
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("ffmpeg failed: %s", detail)
	}

	if frame.Len() == 0 {
		return "", ErrNoFrame
	}

	slog.Debug("thumbnail extracted", "path", path, "png_bytes", frame.Len())
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(frame.Bytes()), nil
}
