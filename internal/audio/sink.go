package audio

import "errors"

// Common errors for Sink implementations
var (
	ErrSinkClosed       = errors.New("audio sink is closed")
	ErrSinkNotAvailable = errors.New("audio sink not available")
)

// Sink buffers and plays canonical PCM in sequence. Implementations own the
// underlying output resource; a Sink is created and used on a single
// goroutine (the engine worker) and must never be shared.
type Sink interface {
	// Append queues canonical PCM for playback after whatever is already
	// buffered. It never waits for playback to finish.
	Append(pcm *PCM) error

	// Clear stops playback and discards everything buffered.
	Clear()

	// Pause suspends playback; Resume continues it.
	Pause()
	Resume()
	IsPaused() bool

	// IsIdle reports whether the sink has no buffered audio left.
	IsIdle() bool

	// Close releases the output resource. The sink is unusable afterwards.
	Close() error
}
