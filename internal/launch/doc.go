// Package launch turns a captured classpath into a game launch.
//
// The BundleProcessor is the consumer side of classpath capture: it installs
// the host's loader, asks a Host to spawn the capture entry point and waits
// for the result.
//
// Usage:
//
//	proc := &launch.BundleProcessor{Loader: loader, AwaitTimeout: 30 * time.Second}
//	tw, _ := launch.NewTweaker(launch.EnvServer)
//	tw.AcceptOptions(os.Args[1:], gameDir, "", "")
//	plan, err := launch.Prepare(ctx, proc, tw)
//	if err != nil {
//	    return err
//	}
//
// Tweakers pick the launch target for the client and the server and
// normalize the wrapper's --key value arguments. A ForcedShutdown can be
// armed to exit a process that does not close on its own.
package launch
