package audio

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DecoderRegistry manages audio format decoders and provides format detection
type DecoderRegistry struct {
	decoders []Decoder
}

// NewDecoderRegistry creates a new empty decoder registry
func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{
		decoders: make([]Decoder, 0),
	}
}

// NewDefaultRegistry creates a registry with all built-in decoders:
// MP3, WAV, FLAC, Vorbis and AIFF.
func NewDefaultRegistry() *DecoderRegistry {
	registry := NewDecoderRegistry()

	registry.Register(NewMp3Decoder())
	registry.Register(NewWavDecoder())
	registry.Register(NewFlacDecoder())
	registry.Register(NewVorbisDecoder())
	registry.Register(NewAiffDecoder())

	slog.Debug("default decoder registry initialized",
		"supported_formats", registry.SupportedFormats())

	return registry
}

// Register adds a decoder to the registry
func (r *DecoderRegistry) Register(decoder Decoder) {
	if decoder == nil {
		slog.Warn("attempted to register nil decoder")
		return
	}
	r.decoders = append(r.decoders, decoder)
}

// SupportedFormats returns a list of all supported format names
func (r *DecoderRegistry) SupportedFormats() []string {
	formats := make([]string, 0, len(r.decoders))
	for _, decoder := range r.decoders {
		formats = append(formats, decoder.FormatName())
	}
	return formats
}

// DecoderFor finds a decoder by its format name.
func (r *DecoderRegistry) DecoderFor(formatName string) Decoder {
	for _, decoder := range r.decoders {
		if strings.EqualFold(decoder.FormatName(), formatName) {
			return decoder
		}
	}
	return nil
}

// DetectByExtension detects the appropriate decoder from the filename alone.
func (r *DecoderRegistry) DetectByExtension(filename string) Decoder {
	if filename == "" {
		return nil
	}

	for _, decoder := range r.decoders {
		if decoder.CanDecode(filename) {
			slog.Debug("format detected by extension",
				"filename", filename,
				"format", decoder.FormatName())
			return decoder
		}
	}
	return nil
}

// DetectByContent detects a decoder from magic bytes, falling back to the
// filename extension when the content is not recognized. This is the path
// files with unknown extensions go through.
func (r *DecoderRegistry) DetectByContent(filename string, content []byte) Decoder {
	if len(content) > 0 {
		mtype := mimetype.Detect(content)
		mimeStr := strings.ToLower(mtype.String())

		slog.Debug("magic byte detection result",
			"filename", filename,
			"detected_mime", mimeStr)

		var formatName string
		switch {
		case strings.Contains(mimeStr, "wav") || mimeStr == "audio/vnd.wave":
			formatName = "WAV"
		case strings.Contains(mimeStr, "mpeg") || strings.Contains(mimeStr, "mp3"):
			formatName = "MP3"
		case strings.Contains(mimeStr, "flac"):
			formatName = "FLAC"
		case strings.Contains(mimeStr, "ogg"):
			formatName = "Vorbis"
		case strings.Contains(mimeStr, "aiff"):
			formatName = "AIFF"
		}

		if formatName != "" {
			if decoder := r.DecoderFor(formatName); decoder != nil {
				slog.Debug("format detected by magic bytes",
					"filename", filename,
					"format", formatName,
					"mime_type", mimeStr)
				return decoder
			}
		}
	}

	return r.DetectByExtension(filename)
}

// DecodeSniffed decodes content with whatever decoder the magic bytes (or, as
// a last resort, the extension) suggest.
func (r *DecoderRegistry) DecodeSniffed(filename string, reader io.Reader) (*AudioData, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read content for sniffed decode", "filename", filename, "error", err)
		return nil, ErrReadFailure
	}

	decoder := r.DetectByContent(filename, content)
	if decoder == nil {
		slog.Debug("no decoder matched sniffed content", "filename", filename)
		return nil, ErrUnsupportedFormat
	}

	return decoder.Decode(bytes.NewReader(content))
}
