package audio

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
)

// commandSink implements Sink by piping raw canonical PCM to a system audio
// player (paplay, ffplay or aplay). It exists for environments where a native
// device is unreliable, WSL in particular. Pause maps to suspending the
// player process; Clear kills it together with whatever it still buffers.
type commandSink struct {
	command string

	// suspend and resume signal the player process. Swapped in tests.
	suspend func(*os.Process) error
	resume  func(*os.Process) error

	mutex      sync.Mutex
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	generation int
	writing    int
	paused     bool
	closed     bool
}

// newCommandSink verifies the player command exists. The process itself is
// started lazily on the first Append.
func newCommandSink(command string, commandExists func(string) bool) (*commandSink, error) {
	if command == "" || !commandExists(command) {
		return nil, fmt.Errorf("%w: no system audio command found", ErrSinkNotAvailable)
	}

	slog.Info("command sink created", "command", command)
	return &commandSink{
		command: command,
		suspend: suspendProcess,
		resume:  resumeProcess,
	}, nil
}

// rawPCMArgs returns the player arguments for raw f32le stereo input on stdin.
func rawPCMArgs(command string) []string {
	rate := fmt.Sprintf("%d", CanonicalSampleRate)
	switch command {
	case "paplay":
		return []string{"--raw", "--format=float32le", "--rate=" + rate, "--channels=2"}
	case "ffplay":
		return []string{"-hide_banner", "-loglevel", "error", "-nodisp", "-autoexit",
			"-f", "f32le", "-ar", rate, "-ac", "2", "-i", "-"}
	case "aplay":
		return []string{"-q", "-t", "raw", "-f", "FLOAT_LE", "-r", rate, "-c", "2"}
	default:
		return nil
	}
}

// ensureProcessLocked starts the player process if none is running. Caller
// holds the mutex.
func (s *commandSink) ensureProcessLocked() error {
	if s.cmd != nil {
		return nil
	}

	cmd := exec.Command(s.command, rawPCMArgs(s.command)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open player stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", s.command, err)
	}

	s.cmd = cmd
	s.stdin = stdin
	gen := s.generation

	// A fresh process must honor an existing pause, or an Append issued
	// while paused would be audible.
	if s.paused {
		if err := s.suspend(cmd.Process); err != nil {
			slog.Warn("failed to suspend new player process", "error", err)
		}
	}

	go func() {
		cmd.Wait()
		s.mutex.Lock()
		if s.generation == gen {
			s.cmd = nil
			s.stdin = nil
			s.writing = 0
		}
		s.mutex.Unlock()
	}()

	slog.Debug("player process started", "command", s.command, "pid", cmd.Process.Pid)
	return nil
}

// Append feeds the PCM to the player on a separate goroutine so the caller is
// never held for the duration of playback.
func (s *commandSink) Append(pcm *PCM) error {
	if pcm == nil || len(pcm.Samples) == 0 {
		return ErrInvalidData
	}

	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrSinkClosed
	}
	if err := s.ensureProcessLocked(); err != nil {
		s.mutex.Unlock()
		return err
	}

	gen := s.generation
	stdin := s.stdin
	s.writing++
	s.mutex.Unlock()

	var raw []byte
	for _, sample := range pcm.Samples {
		raw = appendF32(raw, sample)
	}

	go func() {
		const chunkSize = 32 * 1024
		for off := 0; off < len(raw); off += chunkSize {
			s.mutex.Lock()
			stale := s.generation != gen || s.closed
			s.mutex.Unlock()
			if stale {
				return
			}

			end := off + chunkSize
			if end > len(raw) {
				end = len(raw)
			}
			if _, err := stdin.Write(raw[off:end]); err != nil {
				slog.Debug("player write failed", "command", s.command, "error", err)
				break
			}
		}

		s.mutex.Lock()
		if s.generation == gen && s.writing > 0 {
			s.writing--
		}
		s.mutex.Unlock()
	}()

	slog.Debug("appended samples to command sink", "frames", pcm.Frames())
	return nil
}

// Clear kills the player; buffered audio dies with the process.
func (s *commandSink) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.clearLocked()
}

func (s *commandSink) clearLocked() {
	s.generation++
	s.writing = 0

	if s.cmd != nil && s.cmd.Process != nil {
		s.stdin.Close()
		s.cmd.Process.Kill()
	}
	s.cmd = nil
	s.stdin = nil
}

// Pause suspends the player process.
func (s *commandSink) Pause() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.paused = true
	if s.cmd != nil && s.cmd.Process != nil {
		if err := s.suspend(s.cmd.Process); err != nil {
			slog.Warn("failed to suspend player process", "error", err)
		}
	}
}

// Resume continues the player process.
func (s *commandSink) Resume() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.paused = false
	if s.cmd != nil && s.cmd.Process != nil {
		if err := s.resume(s.cmd.Process); err != nil {
			slog.Warn("failed to resume player process", "error", err)
		}
	}
}

// IsPaused reports the paused state.
func (s *commandSink) IsPaused() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.paused
}

// IsIdle reports whether anything is still being fed to the player. The tail
// the player itself buffers is not observable from here.
func (s *commandSink) IsIdle() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.writing == 0
}

// Close kills the player and marks the sink unusable.
func (s *commandSink) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.clearLocked()

	slog.Debug("command sink closed")
	return nil
}
