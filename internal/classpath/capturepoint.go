package classpath

import (
	"context"
	"slices"
	"sync"

	"github.com/moltenex-tm/moltenex-loader/internal/errors"
)

// Result is the value published through a CapturePoint: either the filtered
// entries or the failure that prevented computing them.
type Result struct {
	Entries []Locator
	Err     error
}

// CapturePoint is a single-assignment, multi-read handoff between the
// goroutine that captures the classpath and the goroutines waiting for it.
//
// The zero value is not usable; create one with NewCapturePoint.
type CapturePoint struct {
	mu     sync.Mutex
	done   chan struct{}
	set    bool
	result Result // written once, before done is closed
}

// NewCapturePoint returns an empty capture point.
func NewCapturePoint() *CapturePoint {
	return &CapturePoint{done: make(chan struct{})}
}

// Complete publishes r if the point is still empty. It reports whether this
// call set the value; when it returns false, r is discarded.
func (p *CapturePoint) Complete(r Result) bool {
	if r.Err != nil {
		r.Entries = nil
	} else {
		r.Entries = slices.Clone(r.Entries)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.set {
		return false
	}
	p.result = r
	p.set = true
	close(p.done)
	return true
}

// Succeed publishes entries as the successful result.
func (p *CapturePoint) Succeed(entries []Locator) bool {
	return p.Complete(Result{Entries: entries})
}

// Fail publishes err as the failed result. A nil err still publishes a
// failure.
func (p *CapturePoint) Fail(err error) bool {
	if err == nil {
		err = errors.NewCaptureError(errors.UnexpectedFault, "capture failed without a cause", nil)
	}
	return p.Complete(Result{Err: err})
}

// Await blocks until the point is completed and returns the published
// result. It has no timeout: a producer that never completes blocks the
// caller forever.
func (p *CapturePoint) Await() ([]Locator, error) {
	<-p.done
	return p.load()
}

// AwaitContext is like Await but returns ctx.Err() if ctx ends first. A
// completed point always wins over a cancelled context.
func (p *CapturePoint) AwaitContext(ctx context.Context) ([]Locator, error) {
	select {
	case <-p.done:
		return p.load()
	default:
	}

	select {
	case <-p.done:
		return p.load()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel closed once the point is completed.
func (p *CapturePoint) Done() <-chan struct{} {
	return p.done
}

// Completed reports whether the point has been completed.
func (p *CapturePoint) Completed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// load must only be called after done is closed.
func (p *CapturePoint) load() ([]Locator, error) {
	if p.result.Err != nil {
		return nil, p.result.Err
	}
	return slices.Clone(p.result.Entries), nil
}
