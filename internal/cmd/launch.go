package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/moltenex-tm/moltenex-loader/internal/config"
	"github.com/moltenex-tm/moltenex-loader/internal/event"
	"github.com/moltenex-tm/moltenex-loader/internal/launch"
	"github.com/moltenex-tm/moltenex-loader/internal/util"
)

var launchCmd = &cobra.Command{
	Use:   "launch [flags] ENTRY... [-- GAME_ARGS...]",
	Short: "Capture the classpath and print the launch plan",
	Long: `Capture the classpath of the given entries and combine it with the launch
target and arguments for the selected variant.

Arguments after "--" are passed to the game. For the client, --gameDir and
--assetsDir are filled in from the flags or the configuration.

Examples:
  moltenex launch libs/*.jar -- --username Steve
  moltenex launch --variant server --forced-shutdown 30s server.jar

With --forced-shutdown, an interrupt that does not end the launch in time
forces the process to exit.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLaunch,
}

var launchArgsCmd = &cobra.Command{
	Use:   "launch-args [flags] [-- GAME_ARGS...]",
	Short: "Print the launch target and arguments without capturing",
	Long: `Print the launch target on the first line, then every argument the
launch wrapper forwards to it, one per line.`,
	RunE: runLaunchArgs,
}

var (
	launchVariant        launch.Variant
	launchGameDir        string
	launchAssetsDir      string
	launchProfile        string
	launchTimeout        time.Duration
	launchForcedShutdown time.Duration
)

func init() {
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(launchArgsCmd)
	addLaunchFlags()
}

// addLaunchFlags registers the launch and launch-args flags on their
// current flag sets.
func addLaunchFlags() {
	for _, c := range []*cobra.Command{launchCmd, launchArgsCmd} {
		c.Flags().Var(&launchVariant, "variant", "launch variant: client or server (default from launch.variant)")
		c.Flags().StringVar(&launchGameDir, "game-dir", "", "game directory (default from launch.game_dir)")
		c.Flags().StringVar(&launchAssetsDir, "assets-dir", "", "assets directory (default from launch.assets_dir)")
		c.Flags().StringVar(&launchProfile, "profile", "", "launcher profile name")
	}
	launchCmd.Flags().DurationVar(&launchTimeout, "timeout", 0, "how long to wait for the capture (default from capture.await_timeout)")
	launchCmd.Flags().IntVar(&captureWidth, "width", 0, "truncate entries to this many columns (0 for no limit)")
	launchCmd.Flags().BoolVar(&showEvents, "events", false, "print launch lifecycle events to stderr")
	launchCmd.Flags().DurationVar(&launchForcedShutdown, "forced-shutdown", 0, "force exit this long after an interrupt (default from launch.forced_shutdown)")
}

// splitDash separates positional args from those after "--". The dash
// index is ignored when it does not fit args.
func splitDash(cmd *cobra.Command, args []string) (positional, passthrough []string) {
	if at := cmd.ArgsLenAtDash(); at >= 0 && at <= len(args) {
		return args[:at], args[at:]
	}
	return args, nil
}

// newTweaker builds a Tweaker from the launch flags, falling back to the
// configuration for any flag not given.
func newTweaker(cmd *cobra.Command, gameArgs []string) (launch.Tweaker, error) {
	cfg := config.Get()

	env := launchVariant.Env
	if !cmd.Flags().Changed("variant") {
		var err error
		if env, err = launch.ParseEnvType(cfg.Launch.Variant); err != nil {
			return nil, err
		}
	}
	gameDir := cfg.Launch.GameDir
	if cmd.Flags().Changed("game-dir") {
		gameDir = launchGameDir
	}
	assetsDir := cfg.Launch.AssetsDir
	if cmd.Flags().Changed("assets-dir") {
		assetsDir = launchAssetsDir
	}

	tw, err := launch.NewTweaker(env)
	if err != nil {
		return nil, err
	}
	tw.AcceptOptions(gameArgs, gameDir, assetsDir, launchProfile)
	return tw, nil
}

func runLaunch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	entries, gameArgs := splitDash(cmd, args)
	if len(entries) == 0 {
		return fmt.Errorf("at least one classpath entry is required before --")
	}

	forced := cfg.Launch.ForcedShutdown
	if cmd.Flags().Changed("forced-shutdown") {
		forced = launchForcedShutdown
	}
	bus := eventPrinter(cmd)
	if forced > 0 {
		disarm := armForcedShutdown(cmd.Context(), forced, cmd.ErrOrStderr(), bus)
		defer disarm()
	}

	timeout := cfg.Capture.AwaitTimeout
	if cmd.Flags().Changed("timeout") {
		timeout = launchTimeout
	}

	tw, err := newTweaker(cmd, gameArgs)
	if err != nil {
		return err
	}

	run, err := newCaptureRun(entries, cfg.Capture.MarkerResource, timeout, bus)
	if err != nil {
		return err
	}
	defer run.close()

	plan, err := launch.Prepare(cmd.Context(), run.proc, tw)
	if err != nil {
		return withRetryHint(err)
	}
	if err := run.wait(); err != nil {
		return err
	}

	renderPlan(cmd.OutOrStdout(), plan)
	return nil
}

func runLaunchArgs(cmd *cobra.Command, args []string) error {
	_, gameArgs := splitDash(cmd, args)
	tw, err := newTweaker(cmd, gameArgs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tw.LaunchTarget())
	for _, a := range tw.Arguments().Slice() {
		fmt.Fprintln(out, a)
	}
	return nil
}

// armForcedShutdown starts a forced shutdown timer once ctx is cancelled.
// The returned function stops the timer, or keeps it from starting.
func armForcedShutdown(ctx context.Context, d time.Duration, w io.Writer, bus *event.Bus) (disarm func()) {
	var (
		mu       sync.Mutex
		watchdog *launch.ForcedShutdown
		disarmed bool
	)
	stop := context.AfterFunc(ctx, func() {
		mu.Lock()
		defer mu.Unlock()
		if !disarmed {
			watchdog = launch.StartForcedShutdown(d, launch.WithShutdownOutput(w), launch.WithShutdownEvents(bus))
		}
	})
	return func() {
		stop()
		mu.Lock()
		defer mu.Unlock()
		disarmed = true
		if watchdog != nil {
			watchdog.Stop()
		}
	}
}

// renderPlan prints the target, arguments and classpath of a plan.
func renderPlan(w io.Writer, plan *launch.Plan) {
	fmt.Fprintln(w, titleStyle.Render("Launch plan"))
	fmt.Fprintln(w, labelStyle.Render("variant")+plan.Env.String())
	fmt.Fprintln(w, labelStyle.Render("target")+plan.Target)
	fmt.Fprintln(w, labelStyle.Render("args")+strings.Join(plan.Arguments, " "))
	fmt.Fprintln(w, labelStyle.Render("classpath")+fmt.Sprintf("%d entries", len(plan.Classpath)))
	for _, e := range plan.Classpath {
		fmt.Fprintln(w, mutedStyle.Render("  ")+util.TruncateMiddle(e.String(), captureWidth))
	}
}
