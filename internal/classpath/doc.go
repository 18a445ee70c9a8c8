// Package classpath captures the effective classpath of a host-built loader
// and hands it, filtered, to the goroutine that launches the game.
//
// The host application builds its own loader and invokes the zero-argument
// entry point [Main] on a goroutine it owns. [Main] inspects the loader
// installed with [SetContextLoader], removes the host-bundled copy of the
// conflicting library (located through a marker resource, by default the
// ASM ClassReader class) and publishes the result through [Default].
//
// # Capture Point
//
// A [CapturePoint] is a one-shot, single-assignment result slot:
//
//	p := classpath.NewCapturePoint()
//	go func() { p.Succeed(entries) }() // first completion wins
//	entries, err := p.Await()          // blocks until completion, no polling
//
// Completion never overwrites: later Complete calls return false and their
// value is discarded. Every Await caller observes the same value.
//
// # Failure Reporting
//
// The capture routine never lets a fault escape past the capture point.
// Typed failures ([errors.CaptureError]) are published for a loader that
// cannot enumerate its entries, for an I/O fault while resolving the marker
// archive, and for any other fault, panics included. A consumer waiting on
// the point therefore never hangs because of a failed capture.
//
// # Locators
//
// Classpath entries are [Locator] values backed by URLs and compared by
// canonical identity, so file:/a/b.jar and file://localhost/a/./b.jar are
// the same entry.
package classpath
