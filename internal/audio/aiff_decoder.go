package audio

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

// AiffDecoder handles AIFF audio format decoding. It is never reached through
// the explicit extension table; it serves the sniffed generic-decode fallback.
type AiffDecoder struct{}

// NewAiffDecoder creates a new AIFF decoder instance
func NewAiffDecoder() *AiffDecoder {
	return &AiffDecoder{}
}

// FormatName returns the name of the format this decoder handles
func (d *AiffDecoder) FormatName() string {
	return "AIFF"
}

// CanDecode checks if this decoder can handle the given filename
func (d *AiffDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".aiff") || strings.HasSuffix(lower, ".aif")
}

// Decode reads AIFF audio data from reader and returns decoded PCM data
func (d *AiffDecoder) Decode(reader io.Reader) (*AudioData, error) {
	slog.Debug("starting AIFF decode operation")

	// go-audio/aiff needs a ReadSeeker
	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read AIFF data", "error", err)
		return nil, ErrReadFailure
	}
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	decoder := aiff.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()

	if !decoder.IsValidFile() {
		slog.Error("invalid AIFF file format")
		return nil, ErrInvalidData
	}

	sampleRate := uint32(decoder.SampleRate)
	channels := uint32(decoder.NumChans)
	bitDepth := decoder.SampleBitDepth()

	if channels == 0 || sampleRate == 0 || bitDepth == 0 {
		slog.Error("invalid AIFF format parameters",
			"channels", channels,
			"sample_rate", sampleRate,
			"bit_depth", bitDepth)
		return nil, ErrInvalidData
	}

	var malgoFormat malgo.FormatType
	switch bitDepth {
	case 16:
		malgoFormat = malgo.FormatS16
	case 24:
		malgoFormat = malgo.FormatS24
	case 32:
		malgoFormat = malgo.FormatS32
	default:
		slog.Error("unsupported AIFF bit depth", "bits", bitDepth)
		return nil, ErrUnsupportedFormat
	}

	pcmBuffer, err := decoder.FullPCMBuffer()
	if err != nil {
		slog.Error("failed to read AIFF samples", "error", err)
		return nil, ErrReadFailure
	}
	if pcmBuffer == nil || len(pcmBuffer.Data) == 0 {
		slog.Error("no audio data found in AIFF file")
		return nil, ErrInvalidData
	}

	rawBytes := intBufferToBytes(pcmBuffer, int(bitDepth))

	audioData := &AudioData{
		Samples:    rawBytes,
		Channels:   channels,
		SampleRate: sampleRate,
		Format:     malgoFormat,
	}

	slog.Debug("AIFF decode completed",
		"total_bytes", len(rawBytes),
		"channels", audioData.Channels,
		"sample_rate", audioData.SampleRate,
		"format", malgoFormat)

	return audioData, nil
}

// intBufferToBytes converts an audio.IntBuffer to raw little-endian bytes.
func intBufferToBytes(pcmBuffer *audio.IntBuffer, bitDepth int) []byte {
	rawBytes := make([]byte, 0, len(pcmBuffer.Data)*bitDepth/8)

	for _, sample := range pcmBuffer.Data {
		val := int32(sample)
		switch bitDepth {
		case 16:
			rawBytes = append(rawBytes, byte(val), byte(val>>8))
		case 24:
			rawBytes = append(rawBytes, byte(val), byte(val>>8), byte(val>>16))
		case 32:
			rawBytes = append(rawBytes, byte(val), byte(val>>8), byte(val>>16), byte(val>>24))
		}
	}

	return rawBytes
}
