package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// The beep speaker is process-global and may only be initialized once.
var (
	speakerInitOnce sync.Once
	speakerInitErr  error
)

// speakerSink implements Sink on top of the beep speaker: a mixer feeds a
// ctrl streamer that the speaker plays forever; appended PCM becomes a
// streamer added to the mixer, Clear empties the mixer, Pause toggles the
// ctrl under the speaker lock.
type speakerSink struct {
	mixer  *beep.Mixer
	ctrl   *beep.Ctrl
	closed bool
}

// newSpeakerSink initializes the speaker at the canonical rate and wires the
// mixer/ctrl chain.
func newSpeakerSink() (*speakerSink, error) {
	sr := beep.SampleRate(CanonicalSampleRate)

	speakerInitOnce.Do(func() {
		speakerInitErr = speaker.Init(sr, sr.N(time.Second/10))
	})
	if speakerInitErr != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", speakerInitErr)
	}

	mixer := &beep.Mixer{}
	ctrl := &beep.Ctrl{Streamer: mixer}
	speaker.Play(ctrl)

	slog.Info("speaker sink created", "sample_rate", CanonicalSampleRate)

	return &speakerSink{mixer: mixer, ctrl: ctrl}, nil
}

// pcmStreamer adapts canonical PCM to a beep.Streamer. It drains once and is
// then dropped by the mixer.
type pcmStreamer struct {
	samples []float32
	pos     int
}

func (ps *pcmStreamer) Stream(samples [][2]float64) (int, bool) {
	n := 0
	for n < len(samples) && ps.pos+1 < len(ps.samples) {
		samples[n][0] = float64(ps.samples[ps.pos])
		samples[n][1] = float64(ps.samples[ps.pos+1])
		ps.pos += 2
		n++
	}
	if n == 0 {
		return 0, false
	}
	return n, true
}

func (ps *pcmStreamer) Err() error {
	return nil
}

// Append adds the PCM to the mixer behind anything already playing.
func (s *speakerSink) Append(pcm *PCM) error {
	if pcm == nil || len(pcm.Samples) == 0 {
		return ErrInvalidData
	}
	if s.closed {
		return ErrSinkClosed
	}

	speaker.Lock()
	s.mixer.Add(&pcmStreamer{samples: pcm.Samples})
	speaker.Unlock()

	slog.Debug("appended samples to speaker sink", "frames", pcm.Frames())
	return nil
}

// Clear drops every streamer from the mixer.
func (s *speakerSink) Clear() {
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
}

// Pause suspends the ctrl streamer.
func (s *speakerSink) Pause() {
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

// Resume continues the ctrl streamer.
func (s *speakerSink) Resume() {
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
}

// IsPaused reports the ctrl paused state.
func (s *speakerSink) IsPaused() bool {
	speaker.Lock()
	paused := s.ctrl.Paused
	speaker.Unlock()
	return paused
}

// IsIdle reports whether the mixer has drained every appended streamer.
func (s *speakerSink) IsIdle() bool {
	speaker.Lock()
	n := s.mixer.Len()
	speaker.Unlock()
	return n == 0
}

// Close detaches this sink from the speaker. The speaker itself stays
// initialized; it is process-global.
func (s *speakerSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	speaker.Lock()
	s.mixer.Clear()
	s.ctrl.Paused = false
	speaker.Unlock()

	slog.Debug("speaker sink closed")
	return nil
}
