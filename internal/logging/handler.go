package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Record is a single log event.
type Record struct {
	Time     time.Time
	Level    Level
	Category Category
	Msg      string
	Err      error

	// FromReplay is set when the record is delivered from a buffer.
	FromReplay bool
	// WasSuppressed is set when the record was not output when first logged.
	WasSuppressed bool
}

// Handler receives log records.
type Handler interface {
	// ShouldLog reports whether records at level in category are wanted.
	// Callers skip formatting when it returns false.
	ShouldLog(level Level, category Category) bool
	Log(r Record)
	Close() error
}

// FormatRecord renders r as a console line:
//
//	[15:04:05] [INFO] [MoltenexLoader/ClassPath]: message
//
// An attached error is appended on the following line.
func FormatRecord(r Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] [%s%s%s]: %s\n",
		r.Time.Format(time.TimeOnly), r.Level, r.Category.Context, CategorySeparator, r.Category.Name, r.Msg)
	if r.Err != nil {
		b.WriteString(r.Err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// ConsoleHandler writes formatted records to stdout, and records at
// LevelError to stderr.
type ConsoleHandler struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	minLevel atomic.Int32
}

// NewConsoleHandler returns a handler writing to out and errOut. Nil writers
// default to os.Stdout and os.Stderr.
func NewConsoleHandler(out, errOut io.Writer, minLevel Level) *ConsoleHandler {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	h := &ConsoleHandler{out: out, errOut: errOut}
	h.SetMinLevel(minLevel)
	return h
}

// SetMinLevel changes the lowest level the handler outputs.
func (h *ConsoleHandler) SetMinLevel(level Level) {
	h.minLevel.Store(int32(level))
}

// ShouldLog implements Handler.
func (h *ConsoleHandler) ShouldLog(level Level, _ Category) bool {
	return !level.IsLessThan(Level(h.minLevel.Load()))
}

// Log implements Handler.
func (h *ConsoleHandler) Log(r Record) {
	line := FormatRecord(r)

	h.mu.Lock()
	defer h.mu.Unlock()

	w := h.out
	if !r.Level.IsLessThan(LevelError) {
		w = h.errOut
	}
	_, _ = io.WriteString(w, line)
}

// Close implements Handler.
func (h *ConsoleHandler) Close() error {
	return nil
}
