package classpath

import "sync/atomic"

// Default is the process-wide capture point the bundle processor waits on.
var Default = NewCapturePoint()

var (
	contextLoader atomic.Pointer[loaderBox]
	entryCapturer atomic.Pointer[Capturer]
)

type loaderBox struct {
	l Loader
}

// SetContextLoader sets the loader Main captures from. The host sets it
// before spawning the entry point.
func SetContextLoader(l Loader) {
	if l == nil {
		contextLoader.Store(nil)
		return
	}
	contextLoader.Store(&loaderBox{l: l})
}

// ContextLoader returns the loader set by SetContextLoader, or nil.
func ContextLoader() Loader {
	if b := contextLoader.Load(); b != nil {
		return b.l
	}
	return nil
}

// SetEntryCapturer overrides the Capturer used by Main.
func SetEntryCapturer(c Capturer) {
	entryCapturer.Store(&c)
}

func currentCapturer() Capturer {
	if c := entryCapturer.Load(); c != nil {
		return *c
	}
	return DefaultCapturer()
}

// Main is the zero-argument entry point the host invokes in its context.
// It captures the context loader's classpath into Default and returns
// without raising anything.
func Main() {
	runEntry(Default)
}

// EntryFor returns an entry point that behaves like Main but publishes to p.
func EntryFor(p *CapturePoint) func() {
	return func() { runEntry(p) }
}

func runEntry(p *CapturePoint) {
	currentCapturer().CaptureInto(p, ContextLoader())
}
