//go:build !windows

package audio

import (
	"os"
	"syscall"
)

// suspendProcess pauses a player process with SIGSTOP.
func suspendProcess(p *os.Process) error {
	return p.Signal(syscall.SIGSTOP)
}

// resumeProcess continues a player process with SIGCONT.
func resumeProcess(p *os.Process) error {
	return p.Signal(syscall.SIGCONT)
}
