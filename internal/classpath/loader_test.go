package classpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/moltenex-tm/moltenex-loader/internal/testutil"
)

func newMemLoader(t *testing.T, paths ...string) (*URLLoader, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	l, err := NewURLLoaderFromPaths(paths, WithFs(fs))
	if err != nil {
		t.Fatalf("NewURLLoaderFromPaths() error = %v", err)
	}
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return l, fs
}

func TestURLLoaderFindResource(t *testing.T) {
	l, fs := newMemLoader(t, "/cp/a.jar", "/cp/classes", "/cp/b.jar")
	testutil.WriteJar(t, fs, "/cp/a.jar", map[string]string{"a/A.class": "a"})
	testutil.WriteDir(t, fs, "/cp/classes", map[string]string{"c/C.class": "c", "shared/S.class": "dir"})
	testutil.WriteJar(t, fs, "/cp/b.jar", map[string]string{
		testutil.MarkerClass: "asm",
		"shared/S.class":     "jar",
	})

	tests := []struct {
		name   string
		res    string
		want   string
		wantOK bool
	}{
		{"archive entry", "a/A.class", "jar:file:/cp/a.jar!/a/A.class", true},
		{"directory entry", "c/C.class", "file:/cp/classes/c/C.class", true},
		{"marker in later archive", testutil.MarkerClass, "jar:file:/cp/b.jar!/" + testutil.MarkerClass, true},
		{"classpath order wins", "shared/S.class", "file:/cp/classes/shared/S.class", true},
		{"leading slash", "/a/A.class", "jar:file:/cp/a.jar!/a/A.class", true},
		{"missing", "x/X.class", "", false},
		{"escapes root", "../b.jar", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.FindResource(tt.res)
			if ok != tt.wantOK {
				t.Fatalf("FindResource(%q) ok = %v, want %v", tt.res, ok, tt.wantOK)
			}
			if tt.wantOK && !got.Equal(MustParseLocator(tt.want)) {
				t.Errorf("FindResource(%q) = %s, want %s", tt.res, got, tt.want)
			}
		})
	}
}

func TestURLLoaderSkipsUnreadableEntries(t *testing.T) {
	l, fs := newMemLoader(t, "/cp/missing.jar", "/cp/broken.jar", "/cp/good.jar")
	if err := afero.WriteFile(fs, "/cp/broken.jar", []byte("not a zip"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	testutil.WriteJar(t, fs, "/cp/good.jar", map[string]string{"g/G.class": "g"})

	got, ok := l.FindResource("g/G.class")
	if !ok {
		t.Fatal("FindResource() ok = false, want true")
	}
	if !got.Equal(MustParseLocator("jar:file:/cp/good.jar!/g/G.class")) {
		t.Errorf("FindResource() = %s", got)
	}
}

func TestURLLoaderEntries(t *testing.T) {
	l, _ := newMemLoader(t, "/cp/a.jar", "/cp/b.jar")

	entries := l.Entries()
	want := locators("file:/cp/a.jar", "file:/cp/b.jar")
	if diff := cmp.Diff(want, entries, locatorComparer); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}

	entries[0] = MustParseLocator("file:/cp/other.jar")
	if diff := cmp.Diff(want, l.Entries(), locatorComparer); diff != "" {
		t.Errorf("Entries() exposed internal slice (-want +got):\n%s", diff)
	}
}

func TestURLLoaderSkipsNonFileEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteJar(t, fs, "/cp/a.jar", map[string]string{"a/A.class": "a"})

	l := NewURLLoader(locators("http://example.com/a.jar", "file:/cp/a.jar"), WithFs(fs))
	defer l.Close()

	got, ok := l.FindResource("a/A.class")
	if !ok || !got.Equal(MustParseLocator("jar:file:/cp/a.jar!/a/A.class")) {
		t.Errorf("FindResource() = %s, %v", got, ok)
	}
}

func TestURLLoaderCapture(t *testing.T) {
	l, fs := newMemLoader(t, "/cp/mods.jar", "/cp/asm-9.6.jar", "/cp/game.jar")
	testutil.WriteJar(t, fs, "/cp/mods.jar", map[string]string{"m/M.class": "m"})
	testutil.WriteJar(t, fs, "/cp/asm-9.6.jar", map[string]string{testutil.MarkerClass: "asm"})
	testutil.WriteJar(t, fs, "/cp/game.jar", map[string]string{"g/G.class": "g"})

	got, err := DefaultCapturer().Capture(l)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	want := locators("file:/cp/mods.jar", "file:/cp/game.jar")
	if diff := cmp.Diff(want, got, locatorComparer); diff != "" {
		t.Errorf("Capture() mismatch (-want +got):\n%s", diff)
	}
}

func TestURLLoaderOnDisk(t *testing.T) {
	dir := testutil.SetupClasspath(t, map[string]map[string]string{
		"asm.jar": {testutil.MarkerClass: "asm"},
		"app.jar": {"app/Main.class": "main"},
	})

	l, err := NewURLLoaderFromPaths([]string{dir + "/app.jar", dir + "/asm.jar"})
	if err != nil {
		t.Fatalf("NewURLLoaderFromPaths() error = %v", err)
	}
	defer l.Close()

	got, err := DefaultCapturer().Capture(l)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Capture() = %v, want one entry", got)
	}
	app, _ := FileLocator(dir + "/app.jar")
	if !got[0].Equal(app) {
		t.Errorf("Capture()[0] = %s, want %s", got[0], app)
	}
}

func TestURLLoaderClosed(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteJar(t, fs, "/cp/a.jar", map[string]string{"a/A.class": "a"})
	l := NewURLLoader(locators("file:/cp/a.jar"), WithFs(fs))

	if _, ok := l.FindResource("a/A.class"); !ok {
		t.Fatal("FindResource() before Close found nothing")
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got, ok := l.FindResource("a/A.class"); ok {
		t.Errorf("FindResource() after Close = %s, want not found", got)
	}
	l.mu.Lock()
	open := 0
	for _, a := range l.archives {
		if a.file != nil {
			open++
		}
	}
	l.mu.Unlock()
	if open != 0 {
		t.Errorf("archives open after Close = %d, want 0", open)
	}
}
