package audio

import (
	"errors"
	"fmt"
	"log/slog"
)

// Supported sink types
const (
	SinkTypeAuto    = "auto"
	SinkTypeMalgo   = "malgo"
	SinkTypeSpeaker = "speaker"
	SinkTypeCommand = "command"
)

// Factory errors
var (
	ErrInvalidSinkType    = errors.New("invalid sink type")
	ErrSinkCreationFailed = errors.New("sink creation failed")
)

// SinkFactory creates Sink instances based on configuration. The engine
// worker calls it exactly once, on its own goroutine, so the created sink
// never exists outside that goroutine.
type SinkFactory interface {
	CreateSink(sinkType string) (Sink, error)
	SupportedSinks() []string
	IsValidSinkType(sinkType string) bool
}

// DefaultSinkFactory implements SinkFactory with platform detection
type DefaultSinkFactory struct {
	isWSLFunc     func() bool
	commandExists func(string) bool
}

// NewSinkFactory creates a new DefaultSinkFactory with real platform detection
func NewSinkFactory() *DefaultSinkFactory {
	return &DefaultSinkFactory{
		isWSLFunc:     IsWSL,
		commandExists: CommandExists,
	}
}

// NewSinkFactoryWithDependencies creates a factory with injected dependencies for testing
func NewSinkFactoryWithDependencies(isWSLFunc func() bool, commandExists func(string) bool) *DefaultSinkFactory {
	return &DefaultSinkFactory{
		isWSLFunc:     isWSLFunc,
		commandExists: commandExists,
	}
}

// CreateSink creates a Sink instance of the specified type
func (f *DefaultSinkFactory) CreateSink(sinkType string) (Sink, error) {
	if sinkType == "" {
		sinkType = SinkTypeAuto
	}

	slog.Debug("creating audio sink", "type", sinkType)

	switch sinkType {
	case SinkTypeAuto:
		return f.createAutoSink()
	case SinkTypeMalgo:
		return newDeviceSink()
	case SinkTypeSpeaker:
		return newSpeakerSink()
	case SinkTypeCommand:
		return f.createCommandSink()
	default:
		slog.Error("invalid sink type requested", "type", sinkType)
		return nil, fmt.Errorf("%w: %s", ErrInvalidSinkType, sinkType)
	}
}

// SupportedSinks returns a list of all supported sink types
func (f *DefaultSinkFactory) SupportedSinks() []string {
	return []string{SinkTypeAuto, SinkTypeMalgo, SinkTypeSpeaker, SinkTypeCommand}
}

// IsValidSinkType checks if a sink type is supported
func (f *DefaultSinkFactory) IsValidSinkType(sinkType string) bool {
	// Empty string is valid (defaults to auto)
	if sinkType == "" {
		return true
	}

	for _, supported := range f.SupportedSinks() {
		if sinkType == supported {
			return true
		}
	}
	return false
}

// createAutoSink selects the best sink for the current platform
func (f *DefaultSinkFactory) createAutoSink() (Sink, error) {
	optimalType := detectOptimalSinkWithChecker(f.isWSLFunc(), f.commandExists)
	slog.Debug("auto-detection result", "selected_type", optimalType)

	switch optimalType {
	case SinkTypeCommand:
		return f.createCommandSink()
	case SinkTypeMalgo:
		return newDeviceSink()
	default:
		return nil, fmt.Errorf("%w: auto-detection failed", ErrSinkCreationFailed)
	}
}

// createCommandSink creates a commandSink with the best available command
func (f *DefaultSinkFactory) createCommandSink() (Sink, error) {
	preferredCommand := getPreferredSystemCommandWithChecker(f.commandExists)
	if preferredCommand == "" {
		slog.Error("no system audio commands available")
		return nil, fmt.Errorf("%w: no system audio commands found", ErrSinkNotAvailable)
	}

	return newCommandSink(preferredCommand, f.commandExists)
}
