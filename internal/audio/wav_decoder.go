package audio

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/youpy/go-wav"
)

// WavDecoder handles WAV audio format decoding
type WavDecoder struct{}

// NewWavDecoder creates a new WAV decoder instance
func NewWavDecoder() *WavDecoder {
	return &WavDecoder{}
}

// Decode reads WAV audio data from reader and returns decoded PCM data
func (d *WavDecoder) Decode(reader io.Reader) (*AudioData, error) {
	slog.Debug("starting WAV decode operation")

	// youpy/go-wav needs a ReadSeeker, so buffer the stream first
	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read WAV data", "error", err)
		return nil, ErrReadFailure
	}
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	wavReader := wav.NewReader(bytes.NewReader(data))

	format, err := wavReader.Format()
	if err != nil {
		slog.Error("failed to read WAV format", "error", err)
		return nil, ErrInvalidData
	}

	if format.NumChannels == 0 || format.SampleRate == 0 {
		slog.Error("invalid WAV format parameters",
			"channels", format.NumChannels,
			"sample_rate", format.SampleRate)
		return nil, ErrInvalidData
	}

	var malgoFormat malgo.FormatType
	switch format.BitsPerSample {
	case 8:
		malgoFormat = malgo.FormatU8
	case 16:
		malgoFormat = malgo.FormatS16
	case 24:
		malgoFormat = malgo.FormatS24
	case 32:
		malgoFormat = malgo.FormatS32
	default:
		slog.Error("unsupported WAV bit depth", "bits", format.BitsPerSample)
		return nil, ErrUnsupportedFormat
	}

	var allSamples []wav.Sample
	for {
		samples, err := wavReader.ReadSamples()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("failed to read WAV samples", "error", err)
			return nil, ErrReadFailure
		}
		if len(samples) == 0 {
			break
		}
		allSamples = append(allSamples, samples...)
	}

	if len(allSamples) == 0 {
		slog.Error("no audio data found in WAV stream")
		return nil, ErrInvalidData
	}

	// Re-interleave samples as little-endian raw bytes
	var rawBytes []byte
	for _, sample := range allSamples {
		for ch := 0; ch < int(format.NumChannels); ch++ {
			var val int
			if ch < len(sample.Values) {
				val = sample.Values[ch]
			}

			switch format.BitsPerSample {
			case 8:
				rawBytes = append(rawBytes, byte(val))
			case 16:
				rawBytes = append(rawBytes, byte(val), byte(val>>8))
			case 24:
				rawBytes = append(rawBytes, byte(val), byte(val>>8), byte(val>>16))
			case 32:
				rawBytes = append(rawBytes, byte(val), byte(val>>8), byte(val>>16), byte(val>>24))
			}
		}
	}

	audioData := &AudioData{
		Samples:    rawBytes,
		Channels:   uint32(format.NumChannels),
		SampleRate: format.SampleRate,
		Format:     malgoFormat,
	}

	slog.Debug("WAV decode completed",
		"total_bytes", len(rawBytes),
		"channels", audioData.Channels,
		"sample_rate", audioData.SampleRate,
		"format", malgoFormat)

	return audioData, nil
}

// CanDecode checks if this decoder can handle the given filename
func (d *WavDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".wav") || strings.HasSuffix(lower, ".wave")
}

// FormatName returns the name of the format this decoder handles
func (d *WavDecoder) FormatName() string {
	return "WAV"
}
