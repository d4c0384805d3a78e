package audio

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gen2brain/malgo"
)

// CanonicalSampleRate is the fixed output rate of every sink. All decoded
// audio is converted to interleaved stereo float32 at this rate before it is
// appended, so the sink's output format is uniform regardless of source codec.
const CanonicalSampleRate = 44100

// PCM holds canonical samples: interleaved stereo float32.
type PCM struct {
	Samples    []float32
	SampleRate uint32
}

// Frames returns the number of stereo frames.
func (p *PCM) Frames() int {
	return len(p.Samples) / 2
}

// Duration returns the playback duration of the buffer.
func (p *PCM) Duration() time.Duration {
	if p.SampleRate == 0 {
		return 0
	}
	return time.Duration(p.Frames()) * time.Second / time.Duration(p.SampleRate)
}

// Canonicalize converts decoded audio into canonical PCM at targetRate.
func Canonicalize(data *AudioData, targetRate uint32) (*PCM, error) {
	if data == nil || len(data.Samples) == 0 {
		return nil, ErrInvalidData
	}
	if data.Channels == 0 || data.SampleRate == 0 {
		return nil, ErrInvalidData
	}

	slog.Debug("canonicalizing audio",
		"channels", data.Channels,
		"sample_rate", data.SampleRate,
		"format", data.Format,
		"bytes", len(data.Samples),
		"target_rate", targetRate)

	mono, err := samplesToFloat(data)
	if err != nil {
		return nil, err
	}

	stereo := mixToStereo(mono, int(data.Channels))

	if data.SampleRate != targetRate {
		stereo = resampleStereo(stereo, data.SampleRate, targetRate)
	}

	return &PCM{Samples: stereo, SampleRate: targetRate}, nil
}

// samplesToFloat decodes raw little-endian PCM bytes into float32 samples in
// [-1, 1], still interleaved at the source channel count.
func samplesToFloat(data *AudioData) ([]float32, error) {
	bytesPerSample := getBytesPerSample(data.Format)
	count := len(data.Samples) / bytesPerSample
	out := make([]float32, 0, count)
	raw := data.Samples

	switch data.Format {
	case malgo.FormatU8:
		for i := 0; i < len(raw); i++ {
			out = append(out, (float32(raw[i])-128)/128)
		}
	case malgo.FormatS16:
		for i := 0; i+1 < len(raw); i += 2 {
			sample := int16(raw[i]) | int16(raw[i+1])<<8
			out = append(out, float32(sample)/32768)
		}
	case malgo.FormatS24:
		for i := 0; i+2 < len(raw); i += 3 {
			sample := int32(raw[i]) | int32(raw[i+1])<<8 | int32(raw[i+2])<<16
			if sample&0x800000 != 0 {
				sample |= ^0xFFFFFF // sign extend
			}
			out = append(out, float32(sample)/8388608)
		}
	case malgo.FormatS32:
		for i := 0; i+3 < len(raw); i += 4 {
			sample := int32(raw[i]) | int32(raw[i+1])<<8 | int32(raw[i+2])<<16 | int32(raw[i+3])<<24
			out = append(out, float32(float64(sample)/2147483648))
		}
	case malgo.FormatF32:
		for i := 0; i+3 < len(raw); i += 4 {
			bits := uint32(raw[i]) | uint32(raw[i+1])<<8 | uint32(raw[i+2])<<16 | uint32(raw[i+3])<<24
			out = append(out, math.Float32frombits(bits))
		}
	default:
		return nil, fmt.Errorf("%w: sample format %v", ErrUnsupportedFormat, data.Format)
	}

	if len(out) == 0 {
		return nil, ErrInvalidData
	}
	return out, nil
}

// mixToStereo converts interleaved samples with the given channel count to
// interleaved stereo. Mono is duplicated; extra channels beyond two are
// dropped, the way most players downmix multichannel sources for preview.
func mixToStereo(samples []float32, channels int) []float32 {
	switch channels {
	case 2:
		// Already stereo; truncate a trailing partial frame if present.
		return samples[:len(samples)/2*2]
	case 1:
		out := make([]float32, 0, len(samples)*2)
		for _, s := range samples {
			out = append(out, s, s)
		}
		return out
	default:
		frames := len(samples) / channels
		out := make([]float32, 0, frames*2)
		for f := 0; f < frames; f++ {
			out = append(out, samples[f*channels], samples[f*channels+1])
		}
		return out
	}
}

// resampleStereo performs linear-interpolation resampling of interleaved
// stereo samples from srcRate to dstRate.
func resampleStereo(samples []float32, srcRate, dstRate uint32) []float32 {
	srcFrames := len(samples) / 2
	if srcFrames == 0 || srcRate == dstRate {
		return samples
	}

	dstFrames := int(float64(srcFrames) * float64(dstRate) / float64(srcRate))
	if dstFrames == 0 {
		dstFrames = 1
	}

	out := make([]float32, dstFrames*2)
	step := float64(srcRate) / float64(dstRate)

	for f := 0; f < dstFrames; f++ {
		pos := float64(f) * step
		idx := int(pos)
		frac := float32(pos - float64(idx))

		next := idx + 1
		if next >= srcFrames {
			next = srcFrames - 1
		}

		out[f*2] = samples[idx*2]*(1-frac) + samples[next*2]*frac
		out[f*2+1] = samples[idx*2+1]*(1-frac) + samples[next*2+1]*frac
	}

	slog.Debug("resampled audio",
		"src_rate", srcRate,
		"dst_rate", dstRate,
		"src_frames", srcFrames,
		"dst_frames", dstFrames)

	return out
}

// appendF32 appends a float32 sample as little-endian bytes.
func appendF32(dst []byte, v float32) []byte {
	bits := math.Float32bits(v)
	return append(dst, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}

// getBytesPerSample returns the number of bytes per sample for a given format
func getBytesPerSample(format malgo.FormatType) int {
	switch format {
	case malgo.FormatU8:
		return 1
	case malgo.FormatS16:
		return 2
	case malgo.FormatS24:
		return 3
	case malgo.FormatS32, malgo.FormatF32:
		return 4
	default:
		slog.Warn("unknown audio format, assuming 2 bytes per sample", "format", format)
		return 2
	}
}
