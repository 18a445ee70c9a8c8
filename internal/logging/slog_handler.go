package logging

import (
	"sync"
)

// SlogHandler forwards records to a JSON Logger, one child logger per
// category.
type SlogHandler struct {
	base    *Logger
	loggers sync.Map // Category -> *Logger
}

// NewSlogHandler returns a handler writing through base.
func NewSlogHandler(base *Logger) *SlogHandler {
	return &SlogHandler{base: base}
}

func (h *SlogHandler) logger(c Category) *Logger {
	if l, ok := h.loggers.Load(c); ok {
		return l.(*Logger)
	}
	l, _ := h.loggers.LoadOrStore(c, h.base.WithCategory(c))
	return l.(*Logger)
}

// ShouldLog implements Handler.
func (h *SlogHandler) ShouldLog(level Level, _ Category) bool {
	return h.base.Enabled(level)
}

// Log implements Handler.
func (h *SlogHandler) Log(r Record) {
	args := make([]any, 0, 4)
	if r.Err != nil {
		args = append(args, "error", r.Err.Error())
	}
	if r.FromReplay {
		args = append(args, "replay", true)
	}
	h.logger(r.Category).logAt(r.Time, r.Level, r.Msg, args...)
}

// Close implements Handler. It closes the base logger.
func (h *SlogHandler) Close() error {
	return h.base.Close()
}
