package logging

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/moltenex-tm/moltenex-loader/internal/errors"
)

type handlerBox struct {
	h Handler
}

var current atomic.Pointer[handlerBox]

func init() {
	current.Store(&handlerBox{h: NewBuiltinHandler(os.Stdout, os.Stderr)})
}

// CurrentHandler returns the handler records are dispatched to.
func CurrentHandler() Handler {
	return current.Load().h
}

// Init installs h as the process-wide handler. Records buffered by the
// builtin handler are replayed into h first, then the old handler is closed.
func Init(h Handler) error {
	if h == nil {
		return errors.NewValidationError("null log handler").WithField("handler")
	}

	old := current.Swap(&handlerBox{h: h}).h
	if b, ok := old.(*BuiltinHandler); ok {
		b.Replay(h)
	}
	return old.Close()
}

// ConfigureBuiltin configures the builtin handler if it is still installed.
func ConfigureBuiltin(buffer, output bool) error {
	if b, ok := CurrentHandler().(*BuiltinHandler); ok {
		return b.Configure(buffer, output)
	}
	return nil
}

// FinishBuiltinConfig applies the builtin handler's defaults if it is still
// installed and unconfigured.
func FinishBuiltinConfig() {
	if b, ok := CurrentHandler().(*BuiltinHandler); ok {
		b.FinishConfig()
	}
}

// ShouldLog reports whether the current handler wants records at level.
func ShouldLog(level Level, category Category) bool {
	return CurrentHandler().ShouldLog(level, category)
}

// Error logs at LevelError. See Logf for argument handling.
func Error(category Category, format string, args ...any) {
	Logf(LevelError, category, format, args...)
}

// Warn logs at LevelWarn.
func Warn(category Category, format string, args ...any) {
	Logf(LevelWarn, category, format, args...)
}

// Info logs at LevelInfo.
func Info(category Category, format string, args ...any) {
	Logf(LevelInfo, category, format, args...)
}

// Debug logs at LevelDebug.
func Debug(category Category, format string, args ...any) {
	Logf(LevelDebug, category, format, args...)
}

// Trace logs at LevelTrace.
func Trace(category Category, format string, args ...any) {
	Logf(LevelTrace, category, format, args...)
}

// Log dispatches msg verbatim with an optional attached error.
func Log(level Level, category Category, msg string, err error) {
	h := CurrentHandler()
	if !h.ShouldLog(level, category) {
		return
	}
	h.Log(Record{Time: time.Now(), Level: level, Category: category, Msg: msg, Err: err})
}

// Logf formats the message with fmt verbs. When the last argument is an
// error that the format does not consume, it is attached to the record
// instead of formatted. Without arguments, format is used verbatim.
func Logf(level Level, category Category, format string, args ...any) {
	h := CurrentHandler()
	if !h.ShouldLog(level, category) {
		return
	}

	msg, err := formatMessage(format, args)
	h.Log(Record{Time: time.Now(), Level: level, Category: category, Msg: msg, Err: err})
}

func formatMessage(format string, args []any) (string, error) {
	if len(args) == 0 {
		return format, nil
	}

	var attached error
	if last, ok := args[len(args)-1].(error); ok && requiredArgs(format) < len(args) {
		attached = last
		args = args[:len(args)-1]
	}

	msg := fmt.Sprintf(format, args...)
	if strings.Contains(msg, "%!") && !strings.Contains(format, "%!") {
		Log(LevelWarn, CategoryLog, "Invalid format string.", nil)
		msg = fmt.Sprintf("Format error: fmt=[%s] args=%v", format, args)
	}
	return msg, attached
}

// requiredArgs counts the operands format consumes, honoring %% and
// explicit [n] argument indexes.
func requiredArgs(format string) int {
	count, maxIndexed := 0, 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		i++
		if i < len(format) && format[i] == '%' {
			continue
		}

		// flags, width, precision, and argument indexes
		for i < len(format) {
			c := format[i]
			switch {
			case c == '[':
				end := strings.IndexByte(format[i:], ']')
				if end < 0 {
					return max(count, maxIndexed)
				}
				n := 0
				for _, d := range format[i+1 : i+end] {
					if d < '0' || d > '9' {
						n = -1
						break
					}
					n = n*10 + int(d-'0')
				}
				if n > 0 {
					maxIndexed = max(maxIndexed, n)
					count = n - 1
				}
				i += end + 1
				continue
			case c == '*':
				count++
				i++
				continue
			case strings.IndexByte("+-# 0.123456789", c) >= 0:
				i++
				continue
			}
			break
		}
		if i < len(format) {
			count++
		}
	}
	return max(count, maxIndexed)
}
