// Package event provides a pub-sub bus for launch lifecycle events.
//
// The bundle processor, the launch planner and the forced shutdown timer
// publish events as a launch progresses. Subscribers observe them without
// the publishers knowing who listens; the CLI uses this to print progress.
//
// # Main Types
//
//   - [Event]: Interface that all events implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub dispatcher, safe for concurrent use
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Events
//
// Capture:
//   - [EntrySpawnedEvent]: The capture entry point was started on its host
//   - [ClasspathCapturedEvent]: The capture point published a classpath
//   - [CaptureFailedEvent]: The capture failed, timed out or was interrupted
//
// Launch:
//   - [LaunchPreparedEvent]: A launch plan was built
//   - [ForcedShutdownEvent]: The forced shutdown timer fired
//
// # Basic Usage
//
//	bus := event.NewBus()
//	id := bus.Subscribe(event.TypeClasspathCaptured, func(e event.Event) {
//	    captured := e.(event.ClasspathCapturedEvent)
//	    fmt.Println("captured", captured.Entries, "entries")
//	})
//	defer bus.Unsubscribe(id)
//
// A nil *Bus discards published events, so publishers need no nil checks.
package event
