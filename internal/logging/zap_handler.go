package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapHandler forwards records to a zap logger, one named child per category.
type ZapHandler struct {
	base    *zap.Logger
	loggers sync.Map // Category -> *zap.Logger
}

// NewZapHandler returns a handler writing through base.
func NewZapHandler(base *zap.Logger) *ZapHandler {
	return &ZapHandler{base: base}
}

// NewZapLogger builds a production zap logger at level. An empty path
// writes to stderr. Lines use the same keys as Logger, so ReadLogs reads
// both.
func NewZapLogger(level Level, path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level.zap())
	cfg.Sampling = nil
	// Every record is written from ZapHandler.Log.
	cfg.DisableCaller = true
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.NameKey = "category"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if path != "" {
		cfg.OutputPaths = []string{path}
	}
	return cfg.Build()
}

func (h *ZapHandler) logger(c Category) *zap.Logger {
	if l, ok := h.loggers.Load(c); ok {
		return l.(*zap.Logger)
	}
	l, _ := h.loggers.LoadOrStore(c, h.base.Named(c.String()))
	return l.(*zap.Logger)
}

// ShouldLog implements Handler.
func (h *ZapHandler) ShouldLog(level Level, _ Category) bool {
	return h.base.Core().Enabled(level.zap())
}

// Log implements Handler.
func (h *ZapHandler) Log(r Record) {
	ce := h.logger(r.Category).Check(r.Level.zap(), r.Msg)
	if ce == nil {
		return
	}
	if !r.Time.IsZero() {
		ce.Time = r.Time
	}

	fields := make([]zap.Field, 0, 2)
	if r.Err != nil {
		fields = append(fields, zap.Error(r.Err))
	}
	if r.FromReplay {
		fields = append(fields, zap.Bool("replay", true))
	}
	ce.Write(fields...)
}

// Close implements Handler. It flushes the base logger.
func (h *ZapHandler) Close() error {
	return h.base.Sync()
}
