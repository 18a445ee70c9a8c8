package classpath

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	schemeFile = "file"
	schemeJar  = "jar"

	// jarSeparator splits a jar URL into the archive location and the entry path.
	jarSeparator = "!/"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ftp":   "21",
}

// Locator identifies a classpath entry or a resource inside one. It is an
// immutable value; equality is by canonical identity, see Equal.
type Locator struct {
	u   *url.URL
	key string
}

// ParseLocator parses a URL string into a Locator.
func ParseLocator(raw string) (Locator, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Locator{}, fmt.Errorf("parse locator %q: %w", raw, err)
	}
	if u.Scheme == "" {
		return Locator{}, fmt.Errorf("parse locator %q: missing scheme", raw)
	}
	return newLocator(u), nil
}

// MustParseLocator is like ParseLocator but panics on malformed input.
// It is meant for constants and tests.
func MustParseLocator(raw string) Locator {
	l, err := ParseLocator(raw)
	if err != nil {
		panic(err)
	}
	return l
}

// FileLocator returns the file: locator for a filesystem path. Relative
// paths are made absolute against the working directory.
func FileLocator(p string) (Locator, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return Locator{}, fmt.Errorf("resolve path %q: %w", p, err)
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return newLocator(&url.URL{Scheme: schemeFile, Path: slashed}), nil
}

// JarLocator returns the jar: locator for entry inside archive.
func JarLocator(archive Locator, entry string) Locator {
	entry = strings.TrimPrefix(entry, "/")
	return newLocator(&url.URL{Scheme: schemeJar, Opaque: archive.String() + jarSeparator + entry})
}

func newLocator(u *url.URL) Locator {
	cp := *u
	return Locator{u: &cp, key: canonicalKey(&cp)}
}

// IsZero reports whether l is the zero Locator.
func (l Locator) IsZero() bool {
	return l.u == nil
}

// URL returns a copy of the underlying URL.
func (l Locator) URL() *url.URL {
	if l.u == nil {
		return nil
	}
	cp := *l.u
	return &cp
}

// Scheme returns the lower-cased URL scheme.
func (l Locator) Scheme() string {
	if l.u == nil {
		return ""
	}
	return strings.ToLower(l.u.Scheme)
}

// String returns the URL form of the locator.
func (l Locator) String() string {
	if l.u == nil {
		return ""
	}
	return l.u.String()
}

// Canonical returns the identity key used by Equal.
func (l Locator) Canonical() string {
	return l.key
}

// Equal reports whether l and o name the same entry.
func (l Locator) Equal(o Locator) bool {
	return l.key == o.key
}

// FilePath returns the local filesystem path of a file: locator.
func (l Locator) FilePath() (string, bool) {
	if l.Scheme() != schemeFile || l.u.Opaque != "" {
		return "", false
	}
	p := l.u.Path
	if runtime.GOOS == "windows" && len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p), true
}

// splitJar splits a jar: URL into its archive URL and entry path. It fails
// the same way opening a jar URL connection fails for a malformed spec.
func splitJar(u *url.URL) (*url.URL, string, error) {
	spec := u.Opaque
	if spec == "" {
		return nil, "", fmt.Errorf("malformed jar url %q: missing archive location", u.String())
	}
	idx := strings.Index(spec, jarSeparator)
	if idx < 0 {
		return nil, "", fmt.Errorf("malformed jar url %q: no %s in spec", u.String(), jarSeparator)
	}
	inner, err := url.Parse(spec[:idx])
	if err != nil {
		return nil, "", fmt.Errorf("malformed jar url %q: %w", u.String(), err)
	}
	if inner.Scheme == "" {
		return nil, "", fmt.Errorf("malformed jar url %q: archive location has no scheme", u.String())
	}
	return inner, spec[idx+len(jarSeparator):], nil
}

func canonicalKey(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)

	if scheme == schemeJar {
		inner, entry, err := splitJar(u)
		if err != nil {
			return scheme + ":" + u.Opaque
		}
		return scheme + ":" + canonicalKey(inner) + jarSeparator + entry
	}
	if u.Opaque != "" {
		return scheme + ":" + u.Opaque
	}

	host := strings.ToLower(u.Hostname())
	if scheme == schemeFile && host == "localhost" {
		host = ""
	}
	port := u.Port()
	if port == defaultPorts[scheme] {
		port = ""
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	if port != "" {
		b.WriteString(":")
		b.WriteString(port)
	}
	if u.Path != "" {
		cleaned := path.Clean(u.Path)
		if strings.HasSuffix(u.Path, "/") && cleaned != "/" {
			cleaned += "/"
		}
		b.WriteString(cleaned)
	}
	if u.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		b.WriteString("#")
		b.WriteString(u.Fragment)
	}
	return b.String()
}
