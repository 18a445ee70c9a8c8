package logging

import (
	"compress/gzip"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

func newMemWriter(t *testing.T, cfg RotationConfig) (*RotatingWriter, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	cfg.Fs = fs
	rw, err := NewRotatingWriter("/logs/loader.log", cfg)
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	t.Cleanup(func() { _ = rw.Close() })
	return rw, fs
}

// smallLimit makes a writer rotate every few bytes.
func smallLimit(rw *RotatingWriter, bytes int64) {
	rw.mu.Lock()
	rw.limit = bytes
	rw.mu.Unlock()
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestNewRotatingWriter(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		_, fs := newMemWriter(t, DefaultRotationConfig())
		if ok, _ := afero.Exists(fs, "/logs/loader.log"); !ok {
			t.Error("log file was not created")
		}
	})

	t.Run("appends to existing file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, "/logs/loader.log", []byte("old\n"), 0644); err != nil {
			t.Fatal(err)
		}

		rw, err := NewRotatingWriter("/logs/loader.log", RotationConfig{Fs: fs})
		if err != nil {
			t.Fatalf("NewRotatingWriter() error = %v", err)
		}
		if rw.CurrentSize() != 4 {
			t.Errorf("CurrentSize() = %d, want 4", rw.CurrentSize())
		}
		if _, err := rw.Write([]byte("new\n")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		_ = rw.Close()

		if got := readFile(t, fs, "/logs/loader.log"); got != "old\nnew\n" {
			t.Errorf("content = %q, want %q", got, "old\nnew\n")
		}
	})

	t.Run("uses OS filesystem by default", func(t *testing.T) {
		path := t.TempDir() + "/loader.log"
		rw, err := NewRotatingWriter(path, RotationConfig{})
		if err != nil {
			t.Fatalf("NewRotatingWriter() error = %v", err)
		}
		if rw.Path() != path {
			t.Errorf("Path() = %q, want %q", rw.Path(), path)
		}
		if err := rw.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
}

func TestRotatingWriterRotates(t *testing.T) {
	rw, fs := newMemWriter(t, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	smallLimit(rw, 10)

	for _, line := range []string{"aaaaaaaa\n", "bbbbbbbb\n", "cccccccc\n", "dddddddd\n"} {
		if _, err := rw.Write([]byte(line)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	if got := readFile(t, fs, "/logs/loader.log"); got != "dddddddd\n" {
		t.Errorf("current = %q", got)
	}
	if got := readFile(t, fs, "/logs/loader.log.1"); got != "cccccccc\n" {
		t.Errorf("backup 1 = %q", got)
	}
	if got := readFile(t, fs, "/logs/loader.log.2"); got != "bbbbbbbb\n" {
		t.Errorf("backup 2 = %q", got)
	}
	if ok, _ := afero.Exists(fs, "/logs/loader.log.3"); ok {
		t.Error("backup beyond MaxBackups kept")
	}
}

func TestRotatingWriterNoBackups(t *testing.T) {
	rw, fs := newMemWriter(t, RotationConfig{MaxSizeMB: 1})
	smallLimit(rw, 10)

	_, _ = rw.Write([]byte("aaaaaaaa\n"))
	_, _ = rw.Write([]byte("bbbbbbbb\n"))

	if got := readFile(t, fs, "/logs/loader.log"); got != "bbbbbbbb\n" {
		t.Errorf("current = %q", got)
	}
	if ok, _ := afero.Exists(fs, "/logs/loader.log.1"); ok {
		t.Error("backup kept with MaxBackups = 0")
	}
}

func TestRotatingWriterOversizedWrite(t *testing.T) {
	rw, fs := newMemWriter(t, RotationConfig{MaxSizeMB: 1, MaxBackups: 1})
	smallLimit(rw, 4)

	if _, err := rw.Write([]byte("longer than limit\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if ok, _ := afero.Exists(fs, "/logs/loader.log.1"); ok {
		t.Error("empty file rotated before first write")
	}
}

func TestRotatingWriterCompress(t *testing.T) {
	rw, fs := newMemWriter(t, RotationConfig{MaxSizeMB: 1, MaxBackups: 2, Compress: true})
	smallLimit(rw, 10)

	_, _ = rw.Write([]byte("aaaaaaaa\n"))
	_, _ = rw.Write([]byte("bbbbbbbb\n"))
	_, _ = rw.Write([]byte("cccccccc\n"))

	if ok, _ := afero.Exists(fs, "/logs/loader.log.1"); ok {
		t.Error("uncompressed backup left behind")
	}

	for path, want := range map[string]string{
		"/logs/loader.log.1.gz": "bbbbbbbb\n",
		"/logs/loader.log.2.gz": "aaaaaaaa\n",
	} {
		f, err := fs.Open(path)
		if err != nil {
			t.Fatalf("failed to open %s: %v", path, err)
		}
		zr, err := gzip.NewReader(f)
		if err != nil {
			t.Fatalf("gzip.NewReader(%s) error = %v", path, err)
		}
		data, err := io.ReadAll(zr)
		_ = f.Close()
		if err != nil {
			t.Fatalf("failed to decompress %s: %v", path, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", path, data, want)
		}
	}
}

func TestRotatingWriterClosed(t *testing.T) {
	rw, _ := newMemWriter(t, DefaultRotationConfig())

	if err := rw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := rw.Write([]byte("x")); err == nil {
		t.Error("Write() after Close() error = nil")
	}
	if err := rw.Sync(); err != nil {
		t.Errorf("Sync() after Close() error = %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestRotatingWriterConcurrent(t *testing.T) {
	rw, fs := newMemWriter(t, RotationConfig{MaxSizeMB: 1, MaxBackups: 50})
	smallLimit(rw, 64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = rw.Write([]byte("0123456789\n"))
			}
		}()
	}
	wg.Wait()
	_ = rw.Sync()

	total := 0
	paths, _ := afero.Glob(fs, "/logs/loader.log*")
	for _, p := range paths {
		total += strings.Count(readFile(t, fs, p), "\n")
	}
	if total != 160 {
		t.Errorf("lines across files = %d, want 160", total)
	}
}
