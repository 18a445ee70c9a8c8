package classpath

import (
	"archive/zip"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/moltenex-tm/moltenex-loader/internal/errors"
)

// Loader resolves resources by name, the way a class loader does.
type Loader interface {
	// FindResource returns the location of the named resource, searching
	// entries in classpath order. ok is false when no entry has it.
	FindResource(name string) (res Locator, ok bool)
}

// EntryLister is a Loader that exposes its ordered classpath entries.
// Capture requires this shape.
type EntryLister interface {
	Loader
	Entries() []Locator
}

// URLLoader is a Loader over an ordered list of file: entries. Directory
// entries resolve resources to file: locators; any other entry is read as a
// zip archive and resolves to jar: locators. Archives are opened lazily and
// stay open until Close. After Close no archive is opened again, so archive
// entries no longer resolve.
//
// URLLoader is safe for concurrent use.
type URLLoader struct {
	fs      afero.Fs
	entries []Locator

	mu       sync.Mutex
	archives map[int]*openArchive
	closed   bool
}

var errLoaderClosed = errors.New("loader is closed")

type openArchive struct {
	file  afero.File
	names map[string]struct{}
	err   error
}

// LoaderOption configures a URLLoader.
type LoaderOption func(*URLLoader)

// WithFs sets the filesystem entries are read from. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) LoaderOption {
	return func(l *URLLoader) {
		l.fs = fs
	}
}

// NewURLLoader creates a loader over entries, which are kept in order.
func NewURLLoader(entries []Locator, opts ...LoaderOption) *URLLoader {
	l := &URLLoader{
		fs:       afero.NewOsFs(),
		entries:  slices.Clone(entries),
		archives: make(map[int]*openArchive),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewURLLoaderFromPaths creates a loader over filesystem paths.
func NewURLLoaderFromPaths(paths []string, opts ...LoaderOption) (*URLLoader, error) {
	entries := make([]Locator, 0, len(paths))
	for _, p := range paths {
		loc, err := FileLocator(p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, loc)
	}
	return NewURLLoader(entries, opts...), nil
}

// Entries returns the loader's classpath entries in order.
func (l *URLLoader) Entries() []Locator {
	return slices.Clone(l.entries)
}

// FindResource implements Loader. Entries that cannot be read are skipped.
func (l *URLLoader) FindResource(name string) (Locator, bool) {
	name, ok := cleanResourceName(name)
	if !ok {
		return Locator{}, false
	}

	for i, entry := range l.entries {
		root, ok := entry.FilePath()
		if !ok {
			continue
		}

		info, err := l.fs.Stat(root)
		if err != nil {
			continue
		}

		if info.IsDir() {
			target := filepath.Join(root, filepath.FromSlash(name))
			if st, err := l.fs.Stat(target); err == nil && st.Mode().IsRegular() {
				if loc, err := FileLocator(target); err == nil {
					return loc, true
				}
			}
			continue
		}

		a := l.archive(i, root)
		if a.err != nil {
			continue
		}
		if _, found := a.names[name]; found {
			return JarLocator(entry, name), true
		}
	}

	return Locator{}, false
}

// archive returns the lazily opened archive for entry i.
func (l *URLLoader) archive(i int, root string) *openArchive {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a, ok := l.archives[i]; ok {
		return a
	}
	if l.closed {
		return &openArchive{err: errLoaderClosed}
	}

	a := &openArchive{}
	l.archives[i] = a

	f, err := l.fs.Open(root)
	if err != nil {
		a.err = fmt.Errorf("error opening %s: %w", root, err)
		return a
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		a.err = fmt.Errorf("error opening %s: %w", root, err)
		return a
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		a.err = fmt.Errorf("error opening %s: %w", root, err)
		return a
	}

	a.file = f
	a.names = make(map[string]struct{}, len(zr.File))
	for _, zf := range zr.File {
		a.names[zf.Name] = struct{}{}
	}
	return a
}

// Close closes every archive opened by the loader.
func (l *URLLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	var errs []error
	for i, a := range l.archives {
		if a.file != nil {
			if err := a.file.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		delete(l.archives, i)
	}
	return errors.Join(errs...)
}

// cleanResourceName normalizes a resource name and rejects names that
// escape the entry root.
func cleanResourceName(name string) (string, bool) {
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "", false
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}
