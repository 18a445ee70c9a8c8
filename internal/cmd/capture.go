package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/moltenex-tm/moltenex-loader/internal/classpath"
	"github.com/moltenex-tm/moltenex-loader/internal/config"
	"github.com/moltenex-tm/moltenex-loader/internal/errors"
	"github.com/moltenex-tm/moltenex-loader/internal/event"
	"github.com/moltenex-tm/moltenex-loader/internal/launch"
	"github.com/moltenex-tm/moltenex-loader/internal/util"
)

var captureCmd = &cobra.Command{
	Use:   "capture ENTRY...",
	Short: "Capture a classpath and drop the bundled library",
	Long: `Build a loader over the given directories and archives, run the capture
entry point on a host goroutine and print the captured classpath.

The entry whose archive holds the marker resource (by default the ASM
ClassReader class) is removed and shown struck through. Entries may be
glob patterns; quote them so "**" reaches the loader.

Examples:
  # Capture a classpath
  moltenex capture libs/asm-9.6.jar libs/game.jar classes/

  # Use a different marker and print only the kept entries
  moltenex capture --marker com/example/Marker.class --plain libs/*.jar

  # Every jar below libs/
  moltenex capture 'libs/**/*.jar'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCapture,
}

var (
	captureMarker  string
	captureTimeout time.Duration
	captureWidth   int
	capturePlain   bool
	showEvents     bool
)

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringVar(&captureMarker, "marker", "", "marker resource (default from capture.marker_resource)")
	captureCmd.Flags().DurationVar(&captureTimeout, "timeout", 0, "how long to wait for the capture (default from capture.await_timeout)")
	captureCmd.Flags().IntVar(&captureWidth, "width", 0, "truncate entries to this many columns (0 for no limit)")
	captureCmd.Flags().BoolVar(&capturePlain, "plain", false, "print only the captured entries, one per line")
	captureCmd.Flags().BoolVar(&showEvents, "events", false, "print capture lifecycle events to stderr")
}

// captureResult is the loader's classpath before and after capture.
type captureResult struct {
	marker   string
	original []classpath.Locator
	captured []classpath.Locator
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	marker := cfg.Capture.MarkerResource
	if cmd.Flags().Changed("marker") {
		marker = captureMarker
	}
	timeout := cfg.Capture.AwaitTimeout
	if cmd.Flags().Changed("timeout") {
		timeout = captureTimeout
	}

	res, err := captureClasspath(cmd, args, marker, timeout)
	if err != nil {
		return err
	}

	if capturePlain {
		for _, e := range res.captured {
			fmt.Fprintln(cmd.OutOrStdout(), e)
		}
		return nil
	}
	renderCapture(cmd.OutOrStdout(), res, captureWidth)
	return nil
}

// captureRun is one capture of a loader's classpath on a fresh capture
// point, so a process can capture more than once.
type captureRun struct {
	loader *classpath.URLLoader
	host   *launch.GoroutineHost
	proc   *launch.BundleProcessor
}

// newCaptureRun builds a loader over paths, expanding glob patterns, and
// installs a capturer looking for marker. Callers must call close.
func newCaptureRun(paths []string, marker string, timeout time.Duration, bus *event.Bus) (*captureRun, error) {
	paths, err := classpath.ExpandPaths(paths)
	if err != nil {
		return nil, err
	}
	loader, err := classpath.NewURLLoaderFromPaths(paths)
	if err != nil {
		return nil, err
	}
	classpath.SetEntryCapturer(classpath.Capturer{Marker: marker})

	host := &launch.GoroutineHost{}
	point := classpath.NewCapturePoint()
	return &captureRun{
		loader: loader,
		host:   host,
		proc: &launch.BundleProcessor{
			Loader:       loader,
			Host:         host,
			Point:        point,
			Entry:        classpath.EntryFor(point),
			AwaitTimeout: timeout,
			Events:       bus,
		},
	}, nil
}

// wait blocks until the entry point returns and reports its panic.
func (r *captureRun) wait() error {
	if rec := r.host.Wait(); rec != nil {
		return rec.AsError()
	}
	return nil
}

func (r *captureRun) close() {
	classpath.SetEntryCapturer(classpath.DefaultCapturer())
	_ = r.loader.Close()
}

// captureClasspath runs the capture entry point against a loader over
// paths and waits for its result.
func captureClasspath(cmd *cobra.Command, paths []string, marker string, timeout time.Duration) (*captureResult, error) {
	run, err := newCaptureRun(paths, marker, timeout, eventPrinter(cmd))
	if err != nil {
		return nil, err
	}
	defer run.close()

	captured, err := run.proc.Process(cmd.Context())
	if err != nil {
		return nil, withRetryHint(err)
	}
	if err := run.wait(); err != nil {
		return nil, err
	}

	return &captureResult{
		marker:   marker,
		original: run.loader.Entries(),
		captured: captured,
	}, nil
}

// withRetryHint adds a hint to errors that a longer wait may fix.
func withRetryHint(err error) error {
	if !errors.IsRetryable(err) {
		return err
	}
	return fmt.Errorf("%w\nRetry with a longer --timeout or capture.await_timeout", err)
}

// renderCapture prints every original entry, marking the removed one.
func renderCapture(w io.Writer, res *captureResult, width int) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Classpath (%d of %d entries kept)", len(res.captured), len(res.original))))
	fmt.Fprintln(w, labelStyle.Render("marker")+res.marker)
	fmt.Fprintln(w)

	j := 0
	for _, e := range res.original {
		text := util.TruncateMiddle(e.String(), width)
		if j < len(res.captured) && e.Equal(res.captured[j]) {
			fmt.Fprintln(w, keptStyle.Render("  + ")+text)
			j++
			continue
		}
		fmt.Fprintln(w, removedStyle.Render("  - "+text)+mutedStyle.Render("  (bundled copy removed)"))
	}
}

// eventPrinter returns a bus printing every event to stderr when --events
// is set, nil otherwise.
func eventPrinter(cmd *cobra.Command) *event.Bus {
	if !showEvents {
		return nil
	}
	w := cmd.ErrOrStderr()
	bus := event.NewBus()
	bus.SubscribeAll(func(e event.Event) {
		fmt.Fprintf(w, "%s %-22s %s\n", mutedStyle.Render(e.Timestamp().Format("15:04:05.000")), e.EventType(), describeEvent(e))
	})
	return bus
}

func describeEvent(e event.Event) string {
	switch ev := e.(type) {
	case event.EntrySpawnedEvent:
		return fmt.Sprintf("spawned %s capture entry point", ev.Variant)
	case event.ClasspathCapturedEvent:
		return fmt.Sprintf("captured %d classpath entries", ev.Entries)
	case event.CaptureFailedEvent:
		return fmt.Sprintf("capture failed: %v", ev.Err)
	case event.LaunchPreparedEvent:
		return fmt.Sprintf("prepared %s launch of %s with %d arguments", ev.Variant, ev.Target, ev.Arguments)
	case event.ForcedShutdownEvent:
		return fmt.Sprintf("forcing exit %s after interrupt", ev.After)
	default:
		return ""
	}
}
