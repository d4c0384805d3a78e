package audio

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

// compactThreshold is the consumed-sample count past which the device sink
// queue is compacted instead of growing forever.
const compactThreshold = 1 << 20

// deviceSink implements Sink on top of a single malgo playback device running
// at the canonical format. The device is created once and pulls samples from
// an appendable queue; the callback must always fill the whole output buffer,
// using silence on underrun and while paused.
type deviceSink struct {
	context *Context
	device  *malgo.Device

	mutex  sync.Mutex
	queue  []float32
	pos    int
	paused bool
	closed bool
}

// newDeviceSink acquires the audio context and playback device. A failure
// here is startup-fatal for the engine.
func newDeviceSink() (*deviceSink, error) {
	slog.Debug("creating device sink")

	ctx, err := NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	sink := &deviceSink{context: ctx}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 2
	deviceConfig.SampleRate = CanonicalSampleRate
	deviceConfig.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(ctx.GetContext().Context, deviceConfig, malgo.DeviceCallbacks{
		Data: sink.onSamples,
	})
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		ctx.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	sink.device = device

	slog.Info("device sink created",
		"sample_rate", CanonicalSampleRate,
		"channels", 2,
		"format", malgo.FormatF32)

	return sink, nil
}

// onSamples is the malgo pull callback. It runs on the device thread; all it
// shares with the worker is the guarded queue.
func (s *deviceSink) onSamples(pOutputSample, _ []byte, framecount uint32) {
	s.mutex.Lock()

	wanted := int(framecount) * 2
	available := 0
	if !s.paused {
		available = len(s.queue) - s.pos
		if available > wanted {
			available = wanted
		}
	}

	for i := 0; i < available; i++ {
		bits := math.Float32bits(s.queue[s.pos+i])
		pOutputSample[i*4] = byte(bits)
		pOutputSample[i*4+1] = byte(bits >> 8)
		pOutputSample[i*4+2] = byte(bits >> 16)
		pOutputSample[i*4+3] = byte(bits >> 24)
	}
	s.pos += available

	// Drop the consumed prefix once it gets large.
	if s.pos > compactThreshold {
		s.queue = append([]float32(nil), s.queue[s.pos:]...)
		s.pos = 0
	}

	s.mutex.Unlock()

	// Fill any remaining space with silence. We MUST fill the entire buffer
	// or we'll get garbage/crackling.
	for i := available * 4; i < len(pOutputSample); i++ {
		pOutputSample[i] = 0
	}
}

// Append queues canonical PCM behind whatever is already buffered.
func (s *deviceSink) Append(pcm *PCM) error {
	if pcm == nil || len(pcm.Samples) == 0 {
		return ErrInvalidData
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	s.queue = append(s.queue, pcm.Samples...)

	slog.Debug("appended samples to device sink",
		"frames", pcm.Frames(),
		"queued_frames", (len(s.queue)-s.pos)/2)

	return nil
}

// Clear discards all buffered audio.
func (s *deviceSink) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.queue = nil
	s.pos = 0
}

// Pause suspends output; the callback emits silence until Resume.
func (s *deviceSink) Pause() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.paused = true
}

// Resume continues output after a Pause.
func (s *deviceSink) Resume() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.paused = false
}

// IsPaused reports the paused state.
func (s *deviceSink) IsPaused() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.paused
}

// IsIdle reports whether all queued samples have been consumed.
func (s *deviceSink) IsIdle() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.pos >= len(s.queue)
}

// Close stops the device and releases the audio context.
func (s *deviceSink) Close() error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return nil
	}
	s.closed = true
	s.queue = nil
	s.pos = 0
	s.mutex.Unlock()

	if s.device != nil {
		s.device.Stop()
		s.device.Uninit()
		s.device = nil
	}

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			return err
		}
		s.context = nil
	}

	slog.Debug("device sink closed")
	return nil
}
