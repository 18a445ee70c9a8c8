package logging

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"go.uber.org/zap/zapcore"
)

// Level is a log severity. Higher values are more severe.
type Level int

// Log levels, from most verbose to most severe.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// DefaultLevel is the minimum level console output shows.
const DefaultLevel = LevelInfo

var levelNames = [...]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// String returns the upper-case level name.
func (l Level) String() string {
	if l < LevelTrace || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// IsLessThan reports whether l is less severe than o.
func (l Level) IsLessThan(o Level) bool {
	return l < o
}

// slogTrace sits below slog's debug level.
const slogTrace = slog.LevelDebug - 4

func (l Level) slog() slog.Level {
	switch l {
	case LevelTrace:
		return slogTrace
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// zapTrace sits below zap's debug level.
const zapTrace = zapcore.DebugLevel - 1

func (l Level) zap() zapcore.Level {
	switch l {
	case LevelTrace:
		return zapTrace
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l Level) hclog() hclog.Level {
	switch l {
	case LevelTrace:
		return hclog.Trace
	case LevelDebug:
		return hclog.Debug
	case LevelWarn:
		return hclog.Warn
	case LevelError:
		return hclog.Error
	default:
		return hclog.Info
	}
}

// ParseLevel converts a level name to a Level, ignoring case.
// Returns LevelInfo if the level string is not recognized.
func ParseLevel(level string) Level {
	l, _ := LookupLevel(level)
	return l
}

// LookupLevel is like ParseLevel but reports whether the name was recognized.
func LookupLevel(level string) (Level, bool) {
	upper := strings.ToUpper(strings.TrimSpace(level))
	if upper == "WARNING" {
		upper = "WARN"
	}
	for l, name := range levelNames {
		if name == upper {
			return Level(l), true
		}
	}
	return LevelInfo, false
}

// ValidLevels returns the list of valid log level strings.
func ValidLevels() []string {
	return slices.Clone(levelNames[:])
}
