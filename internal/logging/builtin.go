package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/moltenex-tm/moltenex-loader/internal/errors"
)

// DefaultLogFile is where Shutdown dumps buffered records.
const DefaultLogFile = "moltenexloader.log"

// BuiltinHandler is the handler in effect until Init installs another one.
//
// Until configured it only outputs once an error is logged, at which point
// everything buffered so far is printed. Buffered records are replayed into
// the handler passed to Init, and written to a log file by Shutdown if no
// handler took them over.
type BuiltinHandler struct {
	console *ConsoleHandler

	mu           sync.Mutex
	configured   bool
	enableOutput bool
	buffering    bool
	buffer       []Record
}

// NewBuiltinHandler returns an unconfigured builtin handler writing to the
// given console streams.
func NewBuiltinHandler(out, errOut io.Writer) *BuiltinHandler {
	return &BuiltinHandler{
		console:   NewConsoleHandler(out, errOut, DefaultLevel),
		buffering: true,
	}
}

// SetLevel changes the lowest level the handler outputs and buffers.
func (h *BuiltinHandler) SetLevel(level Level) {
	h.console.SetMinLevel(level)
}

// ShouldLog implements Handler.
func (h *BuiltinHandler) ShouldLog(level Level, category Category) bool {
	return h.console.ShouldLog(level, category)
}

// Log implements Handler.
func (h *BuiltinHandler) Log(r Record) {
	h.mu.Lock()
	var output bool
	switch {
	case h.enableOutput:
		output = true
	case r.Level.IsLessThan(LevelError):
		output = false
	default:
		h.startOutputLocked()
		output = true
	}
	if h.buffering {
		h.buffer = append(h.buffer, r)
	}
	h.mu.Unlock()

	if output {
		h.console.Log(r)
	}
}

// startOutputLocked prints the buffer and enables direct output.
func (h *BuiltinHandler) startOutputLocked() {
	if h.enableOutput {
		return
	}
	for _, r := range h.buffer {
		r.FromReplay = true
		r.WasSuppressed = true
		h.console.Log(r)
	}
	h.enableOutput = true
}

// Configure sets whether records are buffered for replay and whether they
// are output directly. Disabling both is invalid.
func (h *BuiltinHandler) Configure(buffer, output bool) error {
	if !buffer && !output {
		return errors.NewValidationError("can't both disable buffering and the output")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if output {
		h.startOutputLocked()
	} else {
		h.enableOutput = false
	}
	h.buffering = buffer
	if !buffer {
		h.buffer = nil
	}
	h.configured = true
	return nil
}

// FinishConfig applies the default configuration, output without
// buffering, if Configure was never called.
func (h *BuiltinHandler) FinishConfig() {
	h.mu.Lock()
	configured := h.configured
	h.mu.Unlock()

	if !configured {
		_ = h.Configure(false, true)
	}
}

// Replay delivers every buffered record to target. It reports whether
// anything was replayed.
func (h *BuiltinHandler) Replay(target Handler) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.buffer) == 0 {
		return false
	}
	for _, r := range h.buffer {
		r.FromReplay = true
		r.WasSuppressed = !h.enableOutput
		target.Log(r)
	}
	return true
}

// Buffered returns a copy of the buffered records.
func (h *BuiltinHandler) Buffered() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(h.buffer))
	copy(out, h.buffer)
	return out
}

// Shutdown prints any records that were never output and writes the whole
// buffer to path. An empty path skips the file.
func (h *BuiltinHandler) Shutdown(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.buffer) == 0 {
		return nil
	}
	if !h.enableOutput {
		h.startOutputLocked()
	}
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	for _, r := range h.buffer {
		if _, err := io.WriteString(f, FormatRecord(r)); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write log file: %w", err)
		}
	}
	return f.Close()
}

// Close implements Handler.
func (h *BuiltinHandler) Close() error {
	return nil
}
