package request

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Serve reads newline-delimited JSON requests from r until EOF, writing one
// JSON response line per request to w. Malformed lines produce an error
// response instead of terminating the loop.
func (h *Handler) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			slog.Debug("malformed request line", "error", err)
			if err := encoder.Encode(Response{Error: "Invalid request: " + err.Error()}); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
			continue
		}

		if err := encoder.Encode(h.Handle(req)); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	return nil
}
