package audio

import (
	"bytes"
	"testing"
)

func TestDefaultRegistryFormats(t *testing.T) {
	registry := NewDefaultRegistry()

	formats := registry.SupportedFormats()
	want := map[string]bool{"MP3": false, "WAV": false, "FLAC": false, "Vorbis": false, "AIFF": false}
	for _, f := range formats {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("default registry missing %s decoder", name)
		}
	}
}

func TestDecoderForIsCaseInsensitive(t *testing.T) {
	registry := NewDefaultRegistry()

	if registry.DecoderFor("flac") == nil {
		t.Error("DecoderFor should match format names case-insensitively")
	}
	if registry.DecoderFor("nosuch") != nil {
		t.Error("DecoderFor should return nil for unknown formats")
	}
}

func TestDetectByExtension(t *testing.T) {
	registry := NewDefaultRegistry()

	cases := []struct {
		filename string
		format   string
	}{
		{"song.mp3", "MP3"},
		{"SONG.MP3", "MP3"},
		{"take.wav", "WAV"},
		{"take.wave", "WAV"},
		{"master.flac", "FLAC"},
		{"clip.ogg", "Vorbis"},
		{"old.aiff", "AIFF"},
	}

	for _, tc := range cases {
		decoder := registry.DetectByExtension(tc.filename)
		if decoder == nil {
			t.Errorf("DetectByExtension(%q) = nil, want %s", tc.filename, tc.format)
			continue
		}
		if decoder.FormatName() != tc.format {
			t.Errorf("DetectByExtension(%q) = %s, want %s", tc.filename, decoder.FormatName(), tc.format)
		}
	}

	if registry.DetectByExtension("archive.zip") != nil {
		t.Error("DetectByExtension should return nil for unsupported extensions")
	}
	if registry.DetectByExtension("") != nil {
		t.Error("DetectByExtension should return nil for empty filename")
	}
}

func TestDetectByContentOverridesExtension(t *testing.T) {
	registry := NewDefaultRegistry()

	wavContent := makeWAVBytes(t, 1, 8000, 16, 4)
	decoder := registry.DetectByContent("misnamed.mp3", wavContent)
	if decoder == nil || decoder.FormatName() != "WAV" {
		t.Errorf("magic bytes should win over extension, got %v", decoder)
	}
}

func TestDetectByContentFallsBackToExtension(t *testing.T) {
	registry := NewDefaultRegistry()

	decoder := registry.DetectByContent("take.wav", []byte("unrecognizable"))
	if decoder == nil || decoder.FormatName() != "WAV" {
		t.Error("unrecognized content should fall back to extension detection")
	}
}

func TestDecodeSniffedUnsupportedContent(t *testing.T) {
	registry := NewDefaultRegistry()

	_, err := registry.DecodeSniffed("blob.bin", bytes.NewReader([]byte("not audio")))
	if err != ErrUnsupportedFormat {
		t.Errorf("DecodeSniffed = %v, want ErrUnsupportedFormat", err)
	}
}

func TestRegisterNilDecoderIsIgnored(t *testing.T) {
	registry := NewDecoderRegistry()
	registry.Register(nil)

	if got := len(registry.SupportedFormats()); got != 0 {
		t.Errorf("nil decoder should not be registered, registry has %d entries", got)
	}
}
