package classpath

import (
	"fmt"
	"slices"

	"github.com/sourcegraph/conc/panics"

	"github.com/moltenex-tm/moltenex-loader/internal/errors"
)

// DefaultMarkerResource is the resource that identifies the host-bundled ASM
// library, which conflicts with the loader's own copy.
const DefaultMarkerResource = "org/objectweb/asm/ClassReader.class"

// Capturer computes the filtered classpath of a loader.
type Capturer struct {
	// Marker is the resource name that identifies the conflicting library.
	// Empty means DefaultMarkerResource.
	Marker string
	// Resolver maps the marker to its containing archive. Nil means JarResolver.
	Resolver ArchiveResolver
}

// DefaultCapturer returns a Capturer for the ASM marker and jar URLs.
func DefaultCapturer() Capturer {
	return Capturer{Marker: DefaultMarkerResource, Resolver: JarResolver{}}
}

func (c Capturer) marker() string {
	if c.Marker == "" {
		return DefaultMarkerResource
	}
	return c.Marker
}

func (c Capturer) resolver() ArchiveResolver {
	if c.Resolver == nil {
		return JarResolver{}
	}
	return c.Resolver
}

// Capture returns loader's entries with the marker's containing archive
// removed. A missing marker, or a marker that is not archive-backed, leaves
// the entries unchanged. Failures are *errors.CaptureError values.
func (c Capturer) Capture(loader Loader) ([]Locator, error) {
	lister, ok := loader.(EntryLister)
	if !ok {
		return nil, errors.NewCaptureError(errors.UnsupportedLoaderShape,
			fmt.Sprintf("loader %T does not expose its entries", loader), nil)
	}

	entries := lister.Entries()

	res, found := lister.FindResource(c.marker())
	if !found {
		return slices.Clone(entries), nil
	}

	archive, ok, err := c.resolver().ContainingArchive(res)
	if err != nil {
		return nil, errors.NewCaptureError(errors.ResourceResolutionIO,
			"resolve containing archive", err).WithResource(res.String())
	}
	if !ok {
		return slices.Clone(entries), nil
	}

	return Filter(entries, archive), nil
}

// CaptureInto runs Capture and publishes the outcome to p. Errors and panics
// are published as failures; nothing propagates to the caller. It reports
// whether this call completed p.
func (c Capturer) CaptureInto(p *CapturePoint, loader Loader) bool {
	var (
		entries []Locator
		err     error
	)

	if recovered := panics.Try(func() { entries, err = c.Capture(loader) }); recovered != nil {
		return p.Fail(errors.NewCaptureError(errors.UnexpectedFault,
			"panic during capture", recovered.AsError()))
	}
	if err != nil {
		if _, ok := errors.KindOf(err); !ok {
			err = errors.NewCaptureError(errors.UnexpectedFault, "capture failed", err)
		}
		return p.Fail(err)
	}
	return p.Succeed(entries)
}

// Filter returns entries without the first entry equal to target. Order is
// preserved and at most one entry is removed. entries is not modified.
func Filter(entries []Locator, target Locator) []Locator {
	i := slices.IndexFunc(entries, target.Equal)
	if i < 0 {
		return slices.Clone(entries)
	}
	return slices.Delete(slices.Clone(entries), i, i+1)
}
