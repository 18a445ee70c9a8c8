package logging

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// HclogHandler forwards records to an hclog logger, one named child per
// category. Output is hclog's text format and is meant for people, not for
// ReadLogs.
type HclogHandler struct {
	base    hclog.Logger
	out     io.Closer
	loggers sync.Map // Category -> hclog.Logger
}

// NewHclogHandler returns a handler writing through base.
func NewHclogHandler(base hclog.Logger) *HclogHandler {
	return &HclogHandler{base: base}
}

// NewHclogLogger builds an unnamed text logger at level writing to w.
func NewHclogLogger(level Level, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Level:      level.hclog(),
		Output:     w,
		TimeFormat: time.RFC3339Nano,
	})
}

// NewHclogFileHandler returns a handler writing to a rotating file at path.
// Close closes the file.
func NewHclogFileHandler(path string, level Level, rotation RotationConfig) (*HclogHandler, error) {
	rw, err := NewRotatingWriter(path, rotation)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	h := NewHclogHandler(NewHclogLogger(level, rw))
	h.out = rw
	return h, nil
}

func (h *HclogHandler) logger(c Category) hclog.Logger {
	if l, ok := h.loggers.Load(c); ok {
		return l.(hclog.Logger)
	}
	l, _ := h.loggers.LoadOrStore(c, h.base.Named(c.String()))
	return l.(hclog.Logger)
}

// ShouldLog implements Handler.
func (h *HclogHandler) ShouldLog(level Level, _ Category) bool {
	switch level {
	case LevelTrace:
		return h.base.IsTrace()
	case LevelDebug:
		return h.base.IsDebug()
	case LevelInfo:
		return h.base.IsInfo()
	case LevelWarn:
		return h.base.IsWarn()
	default:
		return h.base.IsError()
	}
}

// Log implements Handler. hclog stamps its own time, so r.Time is dropped.
func (h *HclogHandler) Log(r Record) {
	args := make([]any, 0, 4)
	if r.Err != nil {
		args = append(args, "error", r.Err.Error())
	}
	if r.FromReplay {
		args = append(args, "replay", true)
	}

	l := h.logger(r.Category)
	switch r.Level {
	case LevelTrace:
		l.Trace(r.Msg, args...)
	case LevelDebug:
		l.Debug(r.Msg, args...)
	case LevelInfo:
		l.Info(r.Msg, args...)
	case LevelWarn:
		l.Warn(r.Msg, args...)
	default:
		l.Error(r.Msg, args...)
	}
}

// Close implements Handler. It closes the log file, if any.
func (h *HclogHandler) Close() error {
	if h.out == nil {
		return nil
	}
	return h.out.Close()
}
