package audio

import (
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// IsWSL checks if the current environment is Windows Subsystem for Linux
func IsWSL() bool {
	return detectWSLFromData(readProcVersion(), os.Getenv("WSL_DISTRO_NAME"))
}

// detectWSLFromData checks for WSL indicators in the provided data (for testing)
func detectWSLFromData(procVersion, wslEnv string) bool {
	if wslEnv != "" {
		slog.Debug("WSL detected via environment variable", "distro", wslEnv)
		return true
	}

	procLower := strings.ToLower(procVersion)
	if strings.Contains(procLower, "microsoft") || strings.Contains(procLower, "wsl") {
		slog.Debug("WSL detected via /proc/version")
		return true
	}

	return false
}

// readProcVersion reads /proc/version file content
func readProcVersion() string {
	content, err := os.ReadFile("/proc/version")
	if err != nil {
		slog.Debug("failed to read /proc/version", "error", err)
		return ""
	}
	return string(content)
}

// CommandExists checks if a command is available in the system's PATH
func CommandExists(command string) bool {
	if command == "" {
		return false
	}

	_, err := exec.LookPath(command)
	exists := err == nil
	slog.Debug("command existence check", "command", command, "exists", exists)
	return exists
}

// DetectOptimalSink determines the best sink type for the current system
func DetectOptimalSink() string {
	return detectOptimalSinkWithChecker(IsWSL(), CommandExists)
}

// detectOptimalSinkWithChecker allows dependency injection for testing
func detectOptimalSinkWithChecker(isWSL bool, commandChecker func(string) bool) string {
	if isWSL {
		// In WSL a native device tends to crackle; prefer piping to a
		// system player when one is available.
		slog.Debug("WSL detected, preferring command sink over native device")

		if preferredCmd := getPreferredSystemCommandWithChecker(commandChecker); preferredCmd != "" {
			return SinkTypeCommand
		}

		slog.Warn("no system audio commands found in WSL, falling back to native device")
		return SinkTypeMalgo
	}

	slog.Debug("native system detected, preferring malgo device sink")
	return SinkTypeMalgo
}

// getPreferredSystemCommand finds the best available system audio command
func getPreferredSystemCommand() string {
	return getPreferredSystemCommandWithChecker(CommandExists)
}

// getPreferredSystemCommandWithChecker allows dependency injection for testing
func getPreferredSystemCommandWithChecker(commandChecker func(string) bool) string {
	// Priority order: paplay (PulseAudio) > ffplay (FFmpeg) > aplay (ALSA).
	// afplay is deliberately absent: it cannot read PCM from stdin.
	preferredCommands := []string{
		"paplay",
		"ffplay",
		"aplay",
	}

	for _, cmd := range preferredCommands {
		if commandChecker(cmd) {
			return cmd
		}
	}

	return ""
}
