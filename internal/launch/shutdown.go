package launch

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/moltenex-tm/moltenex-loader/internal/event"
	"github.com/moltenex-tm/moltenex-loader/internal/logging"
)

// ForcedExitMessage is printed right before a forced exit.
const ForcedExitMessage = "~~~ Forcing exit! ~~~"

// ShutdownOption configures a ForcedShutdown.
type ShutdownOption func(*ForcedShutdown)

// WithShutdownOutput sets where the exit message is printed (default: stdout).
func WithShutdownOutput(w io.Writer) ShutdownOption {
	return func(s *ForcedShutdown) {
		s.out = w
	}
}

// WithExitFunc replaces os.Exit.
func WithExitFunc(exit func(int)) ShutdownOption {
	return func(s *ForcedShutdown) {
		s.exit = exit
	}
}

// WithShutdownEvents publishes a ForcedShutdownEvent to bus before exiting.
func WithShutdownEvents(bus *event.Bus) ShutdownOption {
	return func(s *ForcedShutdown) {
		s.events = bus
	}
}

// ForcedShutdown exits the process once its duration elapses unless it is
// stopped first. It keeps a game that ignores a close request from hanging.
type ForcedShutdown struct {
	mu      sync.Mutex
	timer   *time.Timer
	out     io.Writer
	exit    func(int)
	events  *event.Bus
	after   time.Duration
	fired   bool
	stopped bool
}

// StartForcedShutdown arms a forced exit after d.
func StartForcedShutdown(d time.Duration, opts ...ShutdownOption) *ForcedShutdown {
	s := &ForcedShutdown{
		out:   os.Stdout,
		exit:  os.Exit,
		after: d,
	}
	for _, opt := range opts {
		opt(s)
	}

	logging.Debug(logging.CategoryGameProvider, "Forced shutdown armed for %s", d)
	s.mu.Lock()
	s.timer = time.AfterFunc(d, s.fire)
	s.mu.Unlock()
	return s
}

func (s *ForcedShutdown) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.fired = true
	out, exit, events := s.out, s.exit, s.events
	s.mu.Unlock()

	events.Publish(event.NewForcedShutdownEvent(s.after))
	_, _ = fmt.Fprintln(out, ForcedExitMessage)
	exit(0)
}

// Stop disarms the timer. It reports whether the exit was prevented.
func (s *ForcedShutdown) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fired || s.stopped {
		return false
	}
	s.stopped = true
	s.timer.Stop()
	return true
}

// Fired reports whether the forced exit ran.
func (s *ForcedShutdown) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}
