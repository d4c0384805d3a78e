package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// User-facing playback errors. These strings are rendered directly in the
// frontend, so they stay short and non-technical.
var (
	ErrFileNotFound  = errors.New("File not found.")
	ErrM4AWontDecode = errors.New("M4A/AAC not supported. Use MP3, WAV, FLAC, or OGG.")
)

// decodePlayable turns a file path into decoded audio, or a precise error.
// Dispatch is by lower-cased extension:
//
//	mp3 / wav / flac / ogg  -> the matching decoder
//	m4a / aac               -> rejected before any decoder runs
//	anything else           -> sniffed generic decode
//
// M4A/AAC gets an explicit message instead of falling through to the generic
// path: the sniffed decoder's failure for those containers reads like
// gibberish to an end user.
func decodePlayable(registry *DecoderRegistry, path string) (*AudioData, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	slog.Debug("dispatching playback decode", "path", path, "ext", ext)

	switch ext {
	case "mp3":
		return decodeWithFormat(registry, path, "MP3")
	case "wav":
		return decodeWithFormat(registry, path, "WAV")
	case "flac":
		return decodeWithFormat(registry, path, "FLAC")
	case "ogg":
		return decodeWithFormat(registry, path, "Vorbis")
	case "m4a", "aac":
		return nil, ErrM4AWontDecode
	default:
		file, err := openPlayable(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		data, err := registry.DecodeSniffed(path, file)
		if err != nil {
			return nil, fmt.Errorf("Decode: %v", err)
		}
		return data, nil
	}
}

// decodeWithFormat opens path and decodes it with the named decoder,
// prefixing decode failures with the format name.
func decodeWithFormat(registry *DecoderRegistry, path, formatName string) (*AudioData, error) {
	decoder := registry.DecoderFor(formatName)
	if decoder == nil {
		return nil, fmt.Errorf("%s: no decoder registered", formatName)
	}

	file, err := openPlayable(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := decoder.Decode(file)
	if err != nil {
		slog.Debug("decode failed", "path", path, "format", formatName, "error", err)
		return nil, fmt.Errorf("%s: %v", formatName, err)
	}
	return data, nil
}

// openPlayable opens the file, mapping "not found" to its friendly message
// and passing other I/O failures through raw.
func openPlayable(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, errors.New(err.Error())
	}
	return file, nil
}
