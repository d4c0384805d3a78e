package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// playResultTimeout bounds how long a Play caller waits for the worker to
	// report an outcome. Exceeding it is reported as ErrPlayTimeout; the
	// command itself is not retracted and still executes.
	playResultTimeout = 10 * time.Second

	// commandQueueDepth is the command channel capacity. The queue is
	// logically unbounded; this just has to outrun any realistic burst from
	// the request layer.
	commandQueueDepth = 128
)

// Engine errors, distinct from decode failures.
var (
	// ErrEngineUnavailable means the worker goroutine has exited and no
	// command can be delivered anymore.
	ErrEngineUnavailable = errors.New("audio engine unavailable")

	// ErrPlayTimeout is the user-facing bounded-wait failure.
	ErrPlayTimeout = errors.New("Playback start timed out.")
)

type commandKind int

const (
	cmdPlay commandKind = iota
	cmdStop
	cmdPause
)

// command is the tagged union the worker consumes. Only Play carries a
// result channel, and at most one; the worker writes it exactly once before
// it touches the next command.
type command struct {
	kind   commandKind
	path   string
	result chan<- error
}

// Engine is the only audio object the rest of the application sees. It holds
// exclusively the send side of the command queue: the output device and sink
// live inside the worker goroutine and structurally cannot leak through this
// type. The handle is cheap and safe to share between goroutines.
type Engine struct {
	commands chan command
	done     chan struct{}

	// playTimeout bounds the Play result wait. Shortened in tests so the
	// timeout path can be exercised without the full wait.
	playTimeout time.Duration

	// mu guards closed so no send can race the queue close in Shutdown.
	mu     sync.RWMutex
	closed bool
}

// NewEngine starts the engine worker. The worker acquires the output device
// and sink on its own goroutine; if that fails the engine never starts and
// the error is returned here. Audio must then be treated as unavailable for
// the rest of the process; there is no retry.
func NewEngine(factory SinkFactory, sinkType string) (*Engine, error) {
	if factory == nil {
		factory = NewSinkFactory()
	}

	e := &Engine{
		commands:    make(chan command, commandQueueDepth),
		done:        make(chan struct{}),
		playTimeout: playResultTimeout,
	}

	ready := make(chan error, 1)
	w := &worker{
		factory:  factory,
		sinkType: sinkType,
		registry: NewDefaultRegistry(),
	}
	go w.run(e.commands, e.done, ready)

	if err := <-ready; err != nil {
		return nil, fmt.Errorf("audio engine failed to start: %w", err)
	}

	slog.Info("audio engine started", "sink_type", sinkType)
	return e, nil
}

// Play asks the worker to play the file at path and waits, bounded, for the
// decode outcome. A nil return means the file decoded and is audible.
// Distinct errors separate decode failures (returned as-is), an exited
// worker (ErrEngineUnavailable) and a missed deadline (ErrPlayTimeout).
// Play never blocks indefinitely.
func (e *Engine) Play(path string) error {
	result := make(chan error, 1) // buffered: worker never blocks on an abandoned caller

	timer := time.NewTimer(e.playTimeout)
	defer timer.Stop()

	if err := e.enqueue(command{kind: cmdPlay, path: path, result: result}, timer); err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-timer.C:
		return ErrPlayTimeout
	case <-e.done:
		// The worker drains the queue before exiting, so a result may have
		// been delivered concurrently with shutdown.
		select {
		case err := <-result:
			return err
		default:
			return ErrEngineUnavailable
		}
	}
}

// Stop discards whatever is playing or buffered. It does not wait for the
// worker and fails only when the worker is gone.
func (e *Engine) Stop() error {
	return e.send(command{kind: cmdStop})
}

// PauseOrResume toggles playback: pause if playing, resume if paused. Same
// failure contract as Stop.
func (e *Engine) PauseOrResume() error {
	return e.send(command{kind: cmdPause})
}

func (e *Engine) send(cmd command) error {
	return e.enqueue(cmd, nil)
}

// enqueue delivers a command unless the queue is closed or the worker is
// gone. A non-nil timer additionally bounds the wait.
func (e *Engine) enqueue(cmd command, timer *time.Timer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return ErrEngineUnavailable
	}

	if timer != nil {
		select {
		case e.commands <- cmd:
			return nil
		case <-e.done:
			return ErrEngineUnavailable
		case <-timer.C:
			return ErrPlayTimeout
		}
	}

	select {
	case e.commands <- cmd:
		return nil
	case <-e.done:
		return ErrEngineUnavailable
	}
}

// Shutdown closes the command queue and waits for the worker to drain it and
// release the output device. Safe to call more than once. No command is
// processed after Shutdown returns.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.commands)
	}
	e.mu.Unlock()

	<-e.done
}

// worker runs the command loop. It is the sole owner of the sink for the
// process lifetime; every sink mutation happens on its goroutine.
type worker struct {
	factory  SinkFactory
	sinkType string
	registry *DecoderRegistry
}

func (w *worker) run(commands <-chan command, done chan struct{}, ready chan<- error) {
	defer close(done)

	sink, err := w.factory.CreateSink(w.sinkType)
	if err != nil {
		slog.Error("audio worker failed to acquire sink", "error", err)
		ready <- err
		return
	}
	ready <- nil
	defer sink.Close()

	slog.Debug("audio worker running")

	for cmd := range commands {
		switch cmd.kind {
		case cmdPlay:
			// Whatever is in flight is discarded before the new content is
			// appended, so the append never waits on prior audio.
			sink.Clear()
			err := w.play(cmd.path, sink)
			if err != nil {
				slog.Debug("playback failed", "path", cmd.path, "error", err)
			}
			if cmd.result != nil {
				cmd.result <- err
			}

		case cmdStop:
			sink.Clear()

		case cmdPause:
			if sink.IsPaused() {
				sink.Resume()
			} else {
				sink.Pause()
			}
		}
	}

	slog.Info("audio worker exiting, command queue closed")
}

// play decodes path, converts to the canonical format and appends to the
// sink. Decode failures are data, never fatal to the loop.
func (w *worker) play(path string, sink Sink) error {
	data, err := decodePlayable(w.registry, path)
	if err != nil {
		return err
	}

	pcm, err := Canonicalize(data, CanonicalSampleRate)
	if err != nil {
		return fmt.Errorf("Decode: %v", err)
	}

	return sink.Append(pcm)
}
