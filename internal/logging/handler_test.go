package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moltenex-tm/moltenex-loader/internal/errors"
)

var fixedTime = time.Date(2025, 3, 14, 13, 4, 5, 0, time.UTC)

// recordingHandler keeps every record it receives.
type recordingHandler struct {
	mu       sync.Mutex
	minLevel Level
	records  []Record
	closed   bool
}

func (h *recordingHandler) ShouldLog(level Level, _ Category) bool {
	return !level.IsLessThan(h.minLevel)
}

func (h *recordingHandler) Log(r Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
}

func (h *recordingHandler) Close() error {
	h.closed = true
	return nil
}

// useHandler installs h for the duration of the test.
func useHandler(t *testing.T, h Handler) {
	t.Helper()
	prev := current.Swap(&handlerBox{h: h})
	t.Cleanup(func() { current.Store(prev) })
}

func TestFormatRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "plain",
			rec:  Record{Time: fixedTime, Level: LevelInfo, Category: CategoryClassPath, Msg: "hello"},
			want: "[13:04:05] [INFO] [MoltenexLoader/ClassPath]: hello\n",
		},
		{
			name: "general category keeps separator",
			rec:  Record{Time: fixedTime, Level: LevelWarn, Category: CategoryGeneral, Msg: "w"},
			want: "[13:04:05] [WARN] [MoltenexLoader/]: w\n",
		},
		{
			name: "attached error",
			rec:  Record{Time: fixedTime, Level: LevelError, Category: CategoryKnot, Msg: "boom", Err: errors.New("cause")},
			want: "[13:04:05] [ERROR] [MoltenexLoader/Knot]: boom\ncause\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRecord(tt.rec); got != tt.want {
				t.Errorf("FormatRecord() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsoleHandler(t *testing.T) {
	var out, errOut bytes.Buffer
	h := NewConsoleHandler(&out, &errOut, LevelInfo)

	if h.ShouldLog(LevelDebug, CategoryGeneral) {
		t.Error("ShouldLog(DEBUG) = true with INFO minimum")
	}
	if !h.ShouldLog(LevelWarn, CategoryGeneral) {
		t.Error("ShouldLog(WARN) = false with INFO minimum")
	}

	h.Log(Record{Time: fixedTime, Level: LevelInfo, Category: CategoryKnot, Msg: "to stdout"})
	h.Log(Record{Time: fixedTime, Level: LevelError, Category: CategoryKnot, Msg: "to stderr"})

	if !strings.Contains(out.String(), "to stdout") || strings.Contains(out.String(), "to stderr") {
		t.Errorf("stdout = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "to stderr") || strings.Contains(errOut.String(), "to stdout") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestHandlerSetLevel(t *testing.T) {
	console := NewConsoleHandler(&bytes.Buffer{}, &bytes.Buffer{}, LevelInfo)
	console.SetMinLevel(LevelTrace)
	if !console.ShouldLog(LevelTrace, CategoryGeneral) {
		t.Error("ShouldLog(TRACE) = false after SetMinLevel(TRACE)")
	}

	builtin := NewBuiltinHandler(&bytes.Buffer{}, &bytes.Buffer{})
	builtin.SetLevel(LevelError)
	if builtin.ShouldLog(LevelWarn, CategoryGeneral) {
		t.Error("ShouldLog(WARN) = true after SetLevel(ERROR)")
	}
}

func TestBuiltinHandlerSuppressesUntilError(t *testing.T) {
	var out, errOut bytes.Buffer
	h := NewBuiltinHandler(&out, &errOut)

	h.Log(Record{Time: fixedTime, Level: LevelInfo, Category: CategoryKnot, Msg: "first"})
	h.Log(Record{Time: fixedTime, Level: LevelWarn, Category: CategoryKnot, Msg: "second"})
	if out.Len() != 0 || errOut.Len() != 0 {
		t.Fatalf("output before error: stdout=%q stderr=%q", out.String(), errOut.String())
	}

	h.Log(Record{Time: fixedTime, Level: LevelError, Category: CategoryKnot, Msg: "third"})

	stdout := out.String()
	if !strings.Contains(stdout, "first") || !strings.Contains(stdout, "second") {
		t.Errorf("buffered records not flushed on error: %q", stdout)
	}
	if strings.Index(stdout, "first") > strings.Index(stdout, "second") {
		t.Errorf("buffered records out of order: %q", stdout)
	}
	if !strings.Contains(errOut.String(), "third") {
		t.Errorf("error not written to stderr: %q", errOut.String())
	}

	h.Log(Record{Time: fixedTime, Level: LevelInfo, Category: CategoryKnot, Msg: "fourth"})
	if !strings.Contains(out.String(), "fourth") {
		t.Error("output not enabled after first error")
	}
}

func TestBuiltinHandlerConfigure(t *testing.T) {
	t.Run("both disabled is invalid", func(t *testing.T) {
		h := NewBuiltinHandler(&bytes.Buffer{}, &bytes.Buffer{})
		err := h.Configure(false, false)
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Configure(false, false) error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("output flushes buffer", func(t *testing.T) {
		var out bytes.Buffer
		h := NewBuiltinHandler(&out, &bytes.Buffer{})
		h.Log(Record{Time: fixedTime, Level: LevelInfo, Category: CategoryKnot, Msg: "early"})

		if err := h.Configure(true, true); err != nil {
			t.Fatalf("Configure() error = %v", err)
		}
		if !strings.Contains(out.String(), "early") {
			t.Errorf("stdout = %q, want buffered record", out.String())
		}
		if len(h.Buffered()) != 1 {
			t.Errorf("Buffered() = %d records, want 1", len(h.Buffered()))
		}
	})

	t.Run("no buffering drops buffer", func(t *testing.T) {
		h := NewBuiltinHandler(&bytes.Buffer{}, &bytes.Buffer{})
		h.Log(Record{Time: fixedTime, Level: LevelInfo, Category: CategoryKnot, Msg: "early"})

		if err := h.Configure(false, true); err != nil {
			t.Fatalf("Configure() error = %v", err)
		}
		h.Log(Record{Time: fixedTime, Level: LevelInfo, Category: CategoryKnot, Msg: "late"})
		if got := len(h.Buffered()); got != 0 {
			t.Errorf("Buffered() = %d records, want 0", got)
		}
	})

	t.Run("finish config defaults to output", func(t *testing.T) {
		var out bytes.Buffer
		h := NewBuiltinHandler(&out, &bytes.Buffer{})
		h.FinishConfig()
		h.Log(Record{Time: fixedTime, Level: LevelInfo, Category: CategoryKnot, Msg: "visible"})
		if !strings.Contains(out.String(), "visible") {
			t.Errorf("stdout = %q, want record after FinishConfig", out.String())
		}
	})

	t.Run("finish config keeps explicit config", func(t *testing.T) {
		var out bytes.Buffer
		h := NewBuiltinHandler(&out, &bytes.Buffer{})
		if err := h.Configure(true, false); err != nil {
			t.Fatalf("Configure() error = %v", err)
		}
		h.FinishConfig()
		h.Log(Record{Time: fixedTime, Level: LevelInfo, Category: CategoryKnot, Msg: "hidden"})
		if out.Len() != 0 {
			t.Errorf("stdout = %q, want nothing", out.String())
		}
	})
}

func TestBuiltinHandlerReplay(t *testing.T) {
	h := NewBuiltinHandler(&bytes.Buffer{}, &bytes.Buffer{})
	target := &recordingHandler{}

	if h.Replay(target) {
		t.Error("Replay() = true with empty buffer")
	}

	h.Log(Record{Time: fixedTime, Level: LevelInfo, Category: CategoryKnot, Msg: "a"})
	h.Log(Record{Time: fixedTime, Level: LevelDebug, Category: CategoryKnot, Msg: "b"})

	if !h.Replay(target) {
		t.Fatal("Replay() = false with buffered records")
	}
	if len(target.records) != 2 {
		t.Fatalf("replayed %d records, want 2", len(target.records))
	}
	for _, r := range target.records {
		if !r.FromReplay || !r.WasSuppressed {
			t.Errorf("record %q FromReplay=%v WasSuppressed=%v, want true, true", r.Msg, r.FromReplay, r.WasSuppressed)
		}
	}
}

func TestBuiltinHandlerShutdown(t *testing.T) {
	var out bytes.Buffer
	h := NewBuiltinHandler(&out, &bytes.Buffer{})
	h.Log(Record{Time: fixedTime, Level: LevelInfo, Category: CategoryKnot, Msg: "kept"})

	path := filepath.Join(t.TempDir(), "logs", DefaultLogFile)
	if err := h.Shutdown(path); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if !strings.Contains(out.String(), "kept") {
		t.Errorf("stdout = %q, want suppressed record printed", out.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read dump: %v", err)
	}
	if string(data) != "[13:04:05] [INFO] [MoltenexLoader/Knot]: kept\n" {
		t.Errorf("dump = %q", data)
	}
}

func TestBuiltinHandlerShutdownEmpty(t *testing.T) {
	h := NewBuiltinHandler(&bytes.Buffer{}, &bytes.Buffer{})
	path := filepath.Join(t.TempDir(), DefaultLogFile)

	if err := h.Shutdown(path); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("dump file created for empty buffer: %v", err)
	}
}

func TestInitReplaysBuiltin(t *testing.T) {
	builtin := NewBuiltinHandler(&bytes.Buffer{}, &bytes.Buffer{})
	useHandler(t, builtin)

	Info(CategoryClassPath, "before init %d", 1)

	target := &recordingHandler{}
	if err := Init(target); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Info(CategoryClassPath, "after init")

	if len(target.records) != 2 {
		t.Fatalf("target got %d records, want 2", len(target.records))
	}
	if target.records[0].Msg != "before init 1" || !target.records[0].FromReplay {
		t.Errorf("first record = %+v, want replayed 'before init 1'", target.records[0])
	}
	if target.records[1].Msg != "after init" || target.records[1].FromReplay {
		t.Errorf("second record = %+v, want live 'after init'", target.records[1])
	}
	if CurrentHandler() != Handler(target) {
		t.Error("CurrentHandler() is not the installed handler")
	}
}

func TestInitClosesPrevious(t *testing.T) {
	prev := &recordingHandler{}
	useHandler(t, prev)

	if err := Init(&recordingHandler{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !prev.closed {
		t.Error("previous handler not closed")
	}
}

func TestInitNil(t *testing.T) {
	useHandler(t, &recordingHandler{})

	if err := Init(nil); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Init(nil) error = %v, want ErrInvalidInput", err)
	}
}

func TestConfigureBuiltinIgnoredAfterInit(t *testing.T) {
	useHandler(t, &recordingHandler{})

	if err := ConfigureBuiltin(false, false); err != nil {
		t.Errorf("ConfigureBuiltin() error = %v, want nil when builtin is not installed", err)
	}
	FinishBuiltinConfig()
}

func TestDispatchLevels(t *testing.T) {
	h := &recordingHandler{minLevel: LevelDebug}
	useHandler(t, h)

	Trace(CategoryKnot, "trace")
	Debug(CategoryKnot, "debug")
	Info(CategoryKnot, "info")
	Warn(CategoryKnot, "warn")
	Error(CategoryKnot, "error")

	var got []string
	for _, r := range h.records {
		got = append(got, r.Level.String())
	}
	if want := "DEBUG,INFO,WARN,ERROR"; strings.Join(got, ",") != want {
		t.Errorf("levels = %v, want %s", got, want)
	}
	if ShouldLog(LevelTrace, CategoryKnot) {
		t.Error("ShouldLog(TRACE) = true with DEBUG handler")
	}
}

func TestLogfAttachesTrailingError(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name    string
		format  string
		args    []any
		wantMsg string
		wantErr error
	}{
		{"no args verbatim", "100% done", nil, "100% done", nil},
		{"trailing error attached", "write failed", []any{cause}, "write failed", cause},
		{"error consumed by format", "write failed: %v", []any{cause}, "write failed: disk full", nil},
		{"error after operands", "write %s failed", []any{"x.log", cause}, "write x.log failed", cause},
		{"escaped percent", "100%% of %s", []any{"a", cause}, "100% of a", cause},
		{"explicit index", "%[2]s %[1]s", []any{"a", "b"}, "b a", nil},
		{"format error", "%d", []any{"x"}, "Format error: fmt=[%d] args=[x]", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHandler{}
			useHandler(t, h)

			Logf(LevelInfo, CategoryGeneral, tt.format, tt.args...)

			var rec Record
			for _, r := range h.records {
				if r.Category == CategoryGeneral {
					rec = r
				}
			}
			if rec.Msg != tt.wantMsg {
				t.Errorf("msg = %q, want %q", rec.Msg, tt.wantMsg)
			}
			if rec.Err != tt.wantErr {
				t.Errorf("err = %v, want %v", rec.Err, tt.wantErr)
			}
		})
	}
}

func TestRequiredArgs(t *testing.T) {
	tests := []struct {
		format string
		want   int
	}{
		{"plain", 0},
		{"%s", 1},
		{"%s and %d", 2},
		{"%%", 0},
		{"%5.2f%%", 1},
		{"%*d", 2},
		{"%[3]v", 3},
		{"%[2]s %[1]s", 2},
		{"trailing %", 0},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := requiredArgs(tt.format); got != tt.want {
				t.Errorf("requiredArgs(%q) = %d, want %d", tt.format, got, tt.want)
			}
		})
	}
}

func TestLogSkipsUnwanted(t *testing.T) {
	h := &recordingHandler{minLevel: LevelError}
	useHandler(t, h)

	Log(LevelInfo, CategoryGeneral, "dropped", nil)
	Log(LevelError, CategoryGeneral, "kept", fmt.Errorf("wrapped: %w", errors.ErrCaptureFailed))

	if len(h.records) != 1 || h.records[0].Msg != "kept" {
		t.Fatalf("records = %+v, want only 'kept'", h.records)
	}
	if !errors.Is(h.records[0].Err, errors.ErrCaptureFailed) {
		t.Errorf("attached error = %v", h.records[0].Err)
	}
}
