package audio

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
)

// FlacDecoder handles FLAC audio format decoding via the beep flac package
type FlacDecoder struct{}

// NewFlacDecoder creates a new FLAC decoder instance
func NewFlacDecoder() *FlacDecoder {
	return &FlacDecoder{}
}

// Decode reads FLAC audio data from reader and returns decoded PCM data
func (d *FlacDecoder) Decode(reader io.Reader) (*AudioData, error) {
	slog.Debug("starting FLAC decode operation")

	streamer, format, err := flac.Decode(reader)
	if err != nil {
		slog.Error("failed to create FLAC decoder", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	defer streamer.Close()

	return drainStreamer(streamer, format, "FLAC")
}

// CanDecode checks if this decoder can handle the given filename
func (d *FlacDecoder) CanDecode(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".flac")
}

// FormatName returns the name of the format this decoder handles
func (d *FlacDecoder) FormatName() string {
	return "FLAC"
}

// drainStreamer pulls an entire beep streamer into AudioData. Beep streams
// are always stereo float pairs, so the result is interleaved stereo F32 at
// the stream's native rate.
func drainStreamer(streamer beep.Streamer, format beep.Format, name string) (*AudioData, error) {
	if format.SampleRate <= 0 {
		slog.Error("invalid sample rate from streamer", "format", name, "sample_rate", format.SampleRate)
		return nil, ErrInvalidData
	}

	var samples []byte
	chunk := make([][2]float64, 512)

	for {
		n, ok := streamer.Stream(chunk)
		for i := 0; i < n; i++ {
			samples = appendF32(samples, float32(chunk[i][0]))
			samples = appendF32(samples, float32(chunk[i][1]))
		}
		if !ok {
			break
		}
	}

	if err := streamer.Err(); err != nil {
		slog.Error("streamer reported error", "format", name, "error", err)
		return nil, ErrReadFailure
	}

	if len(samples) == 0 {
		slog.Error("no audio data found in stream", "format", name)
		return nil, ErrInvalidData
	}

	audioData := &AudioData{
		Samples:    samples,
		Channels:   2,
		SampleRate: uint32(format.SampleRate),
		Format:     malgo.FormatF32,
	}

	slog.Debug("streamer decode completed",
		"format", name,
		"total_bytes", len(samples),
		"sample_rate", audioData.SampleRate)

	return audioData, nil
}
