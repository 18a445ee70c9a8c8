package launch

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/moltenex-tm/moltenex-loader/internal/classpath"
	"github.com/moltenex-tm/moltenex-loader/internal/errors"
	"github.com/moltenex-tm/moltenex-loader/internal/event"
	"github.com/moltenex-tm/moltenex-loader/internal/logging"
)

// Host runs an entry point inside its own execution context, the way a
// bundler runs a main class on a thread it owns.
type Host interface {
	// Spawn starts entry and returns without waiting for it.
	Spawn(ctx context.Context, entry func()) error
}

// HostFunc adapts a function to Host.
type HostFunc func(ctx context.Context, entry func()) error

// Spawn calls f.
func (f HostFunc) Spawn(ctx context.Context, entry func()) error {
	return f(ctx, entry)
}

// GoroutineHost runs each entry point on a new goroutine.
type GoroutineHost struct {
	wg conc.WaitGroup
}

// Spawn starts entry on a goroutine unless ctx is already done.
func (h *GoroutineHost) Spawn(ctx context.Context, entry func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.wg.Go(entry)
	return nil
}

// Wait blocks until every spawned entry returns and reports a panic raised
// by any of them.
func (h *GoroutineHost) Wait() *panics.Recovered {
	return h.wg.WaitAndRecover()
}

// BundleProcessor waits for the classpath a bundled entry point captures
// from the host's loader.
type BundleProcessor struct {
	// Loader is installed as the context loader before the entry runs.
	Loader classpath.Loader

	// Host spawns the entry point (default: a new GoroutineHost).
	Host Host

	// Point is the capture point waited on (default: classpath.Default).
	Point *classpath.CapturePoint

	// Entry is the entry point to spawn (default: classpath.Main).
	Entry func()

	// AwaitTimeout bounds the wait (0 = wait until ctx ends).
	AwaitTimeout time.Duration

	// Env is reported in errors and events.
	Env EnvType

	// Events receives capture lifecycle events (nil = none).
	Events *event.Bus
}

func (b *BundleProcessor) host() Host {
	if b.Host == nil {
		b.Host = &GoroutineHost{}
	}
	return b.Host
}

func (b *BundleProcessor) point() *classpath.CapturePoint {
	if b.Point == nil {
		return classpath.Default
	}
	return b.Point
}

func (b *BundleProcessor) entry() func() {
	if b.Entry == nil {
		return classpath.Main
	}
	return b.Entry
}

// Process installs the loader, spawns the entry point and returns the
// captured classpath. A failed capture, a host that cannot spawn, a timeout
// and a cancelled ctx are all returned as *errors.LaunchError.
func (b *BundleProcessor) Process(ctx context.Context) ([]classpath.Locator, error) {
	classpath.SetContextLoader(b.Loader)

	if err := b.host().Spawn(ctx, b.entry()); err != nil {
		return nil, b.fail("failed to spawn capture entry point", fmt.Errorf("%w: %w", errors.ErrHostStart, err))
	}
	logging.Debug(logging.CategoryEntrypoint, "Spawned capture entry point, waiting for classpath")
	b.Events.Publish(event.NewEntrySpawnedEvent(b.Env.String()))

	waitCtx := ctx
	if b.AwaitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, b.AwaitTimeout)
		defer cancel()
	}

	entries, err := b.point().AwaitContext(waitCtx)
	if err != nil {
		err = b.awaitFailure(ctx, waitCtx, err)
		b.Events.Publish(event.NewCaptureFailedEvent(b.Env.String(), err))
		return nil, err
	}
	b.Events.Publish(event.NewClasspathCapturedEvent(b.Env.String(), len(entries)))

	logging.Debug(logging.CategoryClassPath, "Captured %d classpath entries", len(entries))
	if logging.ShouldLog(logging.LevelTrace, logging.CategoryClassPath) {
		for _, e := range entries {
			logging.Trace(logging.CategoryClassPath, "  %s", e)
		}
	}
	return entries, nil
}

// awaitFailure classifies an AwaitContext error. A published failure wins
// over a context that ended at the same time.
func (b *BundleProcessor) awaitFailure(ctx, waitCtx context.Context, err error) error {
	if _, captured := errors.KindOf(err); captured || waitCtx.Err() == nil {
		logging.Error(logging.CategoryEntrypoint, "Classpath capture failed", err)
		return b.fail("bundle processing failed", fmt.Errorf("%w: %w", errors.ErrCaptureFailed, err))
	}
	if ctx.Err() != nil {
		return b.fail("classpath capture interrupted", fmt.Errorf("%w: %w", errors.ErrCanceled, ctx.Err()))
	}
	return b.fail("classpath capture did not finish",
		errors.NewTimeoutError("awaiting classpath capture", b.AwaitTimeout).WithCause(waitCtx.Err()))
}

func (b *BundleProcessor) fail(msg string, cause error) error {
	return errors.NewLaunchError(msg, cause).WithVariant(b.Env.String())
}

// Plan is everything needed to start the game.
type Plan struct {
	Env       EnvType
	Target    string
	Arguments []string
	Classpath []classpath.Locator
}

// Prepare captures the classpath with proc and combines it with the
// target and arguments chosen by tw.
func Prepare(ctx context.Context, proc *BundleProcessor, tw Tweaker) (*Plan, error) {
	proc.Env = tw.EnvType()

	entries, err := proc.Process(ctx)
	if err != nil {
		var launchErr *errors.LaunchError
		if errors.As(err, &launchErr) {
			launchErr.WithTarget(tw.LaunchTarget())
		}
		return nil, err
	}

	logging.Info(logging.CategoryGameProvider, "Launching %s via %s", tw.EnvType(), tw.LaunchTarget())
	plan := &Plan{
		Env:       tw.EnvType(),
		Target:    tw.LaunchTarget(),
		Arguments: tw.LaunchArguments(),
		Classpath: entries,
	}
	proc.Events.Publish(event.NewLaunchPreparedEvent(plan.Env.String(), plan.Target, len(plan.Arguments), len(plan.Classpath)))
	return plan, nil
}
