// Package testutil provides testing utilities for loader tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// MarkerClass is the resource name of the conflicting ASM class.
const MarkerClass = "org/objectweb/asm/ClassReader.class"

// ZipBytes builds an in-memory zip archive. The files map contains entry
// names to contents.
func ZipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish zip: %v", err)
	}
	return buf.Bytes()
}

// WriteJar writes a jar archive holding files to path on fs, creating parent
// directories as needed.
func WriteJar(t *testing.T, fs afero.Fs, path string, files map[string]string) string {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, ZipBytes(t, files), 0644); err != nil {
		t.Fatalf("failed to write jar %s: %v", path, err)
	}
	return path
}

// WriteDir creates a classpath directory at root on fs holding files.
func WriteDir(t *testing.T, fs afero.Fs, root string, files map[string]string) string {
	t.Helper()

	if err := fs.MkdirAll(root, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", root, err)
	}
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := fs.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := afero.WriteFile(fs, full, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write file %s: %v", name, err)
		}
	}
	return root
}

// SetupClasspath creates a temporary directory on disk with one jar per
// entry in jars, named by the map key. It returns the directory.
func SetupClasspath(t *testing.T, jars map[string]map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	fs := afero.NewOsFs()
	for name, files := range jars {
		WriteJar(t, fs, filepath.Join(dir, name), files)
	}
	return dir
}

// WriteConfig writes a config file into a temporary directory and returns
// its path.
func WriteConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config %s: %v", path, err)
	}
	return path
}
