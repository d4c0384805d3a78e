package audio

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodePlayableByExtension(t *testing.T) {
	registry := NewDefaultRegistry()
	path := writeTestFile(t, "tone.wav", makeWAVBytes(t, 2, 44100, 16, 20))

	data, err := decodePlayable(registry, path)
	if err != nil {
		t.Fatalf("decodePlayable failed: %v", err)
	}
	if data.Channels != 2 || data.SampleRate != 44100 {
		t.Errorf("decoded %d ch @ %d Hz, want 2 ch @ 44100 Hz", data.Channels, data.SampleRate)
	}
}

func TestDecodePlayableRejectsM4ABeforeOpening(t *testing.T) {
	registry := NewDefaultRegistry()

	// The path does not exist: the rejection must come from the extension,
	// not from the filesystem.
	for _, name := range []string{"x.m4a", "x.aac"} {
		_, err := decodePlayable(registry, filepath.Join(t.TempDir(), name))
		if !errors.Is(err, ErrM4AWontDecode) {
			t.Errorf("decodePlayable(%s) = %v, want ErrM4AWontDecode", name, err)
		}
	}
}

func TestDecodePlayableMissingFile(t *testing.T) {
	registry := NewDefaultRegistry()
	dir := t.TempDir()

	for _, ext := range []string{"mp3", "wav", "flac", "ogg", "dat"} {
		_, err := decodePlayable(registry, filepath.Join(dir, "gone."+ext))
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("missing .%s file: got %v, want ErrFileNotFound", ext, err)
		}
	}
}

func TestDecodePlayableFormatPrefixedErrors(t *testing.T) {
	registry := NewDefaultRegistry()

	cases := []struct {
		name   string
		prefix string
	}{
		{"junk.mp3", "MP3:"},
		{"junk.wav", "WAV:"},
		{"junk.flac", "FLAC:"},
		{"junk.ogg", "Vorbis:"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTestFile(t, tc.name, []byte("this is not audio data"))
			_, err := decodePlayable(registry, path)
			if err == nil {
				t.Fatal("expected decode failure for junk content")
			}
			if !strings.HasPrefix(err.Error(), tc.prefix) {
				t.Errorf("error %q should start with %q", err.Error(), tc.prefix)
			}
		})
	}
}

func TestDecodePlayableSniffsUnknownExtension(t *testing.T) {
	registry := NewDefaultRegistry()

	// WAV content behind an unrelated extension goes through magic-byte
	// detection and still decodes.
	path := writeTestFile(t, "mystery.bin", makeWAVBytes(t, 1, 22050, 16, 10))

	data, err := decodePlayable(registry, path)
	if err != nil {
		t.Fatalf("sniffed decode failed: %v", err)
	}
	if data.Channels != 1 || data.SampleRate != 22050 {
		t.Errorf("decoded %d ch @ %d Hz, want 1 ch @ 22050 Hz", data.Channels, data.SampleRate)
	}
}

func TestDecodePlayableSniffFailureIsGeneric(t *testing.T) {
	registry := NewDefaultRegistry()
	path := writeTestFile(t, "mystery.bin", []byte("nothing recognizable here"))

	_, err := decodePlayable(registry, path)
	if err == nil {
		t.Fatal("expected failure for unrecognizable content")
	}
	if !strings.HasPrefix(err.Error(), "Decode:") {
		t.Errorf("sniffed failure should use the generic prefix, got %q", err.Error())
	}
}
