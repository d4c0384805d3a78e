package audio

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gopxl/beep/vorbis"
)

// VorbisDecoder handles OGG/Vorbis audio format decoding via the beep vorbis package
type VorbisDecoder struct{}

// NewVorbisDecoder creates a new Vorbis decoder instance
func NewVorbisDecoder() *VorbisDecoder {
	return &VorbisDecoder{}
}

// Decode reads Vorbis audio data from reader and returns decoded PCM data
func (d *VorbisDecoder) Decode(reader io.Reader) (*AudioData, error) {
	slog.Debug("starting Vorbis decode operation")

	streamer, format, err := vorbis.Decode(io.NopCloser(reader))
	if err != nil {
		slog.Error("failed to create Vorbis decoder", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	defer streamer.Close()

	return drainStreamer(streamer, format, "Vorbis")
}

// CanDecode checks if this decoder can handle the given filename
func (d *VorbisDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".ogg") || strings.HasSuffix(lower, ".oga")
}

// FormatName returns the name of the format this decoder handles
func (d *VorbisDecoder) FormatName() string {
	return "Vorbis"
}
