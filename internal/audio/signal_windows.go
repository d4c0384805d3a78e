//go:build windows

package audio

import (
	"errors"
	"os"
)

var errSignalUnsupported = errors.New("process suspension not supported on windows")

// The command sink is never auto-selected on Windows; these stubs keep the
// package compiling there.
func suspendProcess(*os.Process) error {
	return errSignalUnsupported
}

func resumeProcess(*os.Process) error {
	return errSignalUnsupported
}
