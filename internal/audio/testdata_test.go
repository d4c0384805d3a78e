package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// makeWAVBytes builds a minimal PCM WAV file in memory. Sample values are a
// short ramp so converted output is easy to spot-check.
func makeWAVBytes(t *testing.T, channels, sampleRate, bitsPerSample, frames int) []byte {
	t.Helper()

	bytesPerSample := bitsPerSample / 8
	blockAlign := channels * bytesPerSample
	dataLen := frames * blockAlign

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))

	for f := 0; f < frames; f++ {
		for ch := 0; ch < channels; ch++ {
			switch bitsPerSample {
			case 8:
				buf.WriteByte(byte(128 + f%64))
			case 16:
				binary.Write(&buf, binary.LittleEndian, int16(f*256))
			default:
				t.Fatalf("unsupported test bit depth %d", bitsPerSample)
			}
		}
	}

	return buf.Bytes()
}
