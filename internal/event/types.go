package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns the event's identifier, "category.action".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event types.
const (
	TypeEntrySpawned      = "capture.spawned"
	TypeClasspathCaptured = "capture.completed"
	TypeCaptureFailed     = "capture.failed"
	TypeLaunchPrepared    = "launch.prepared"
	TypeForcedShutdown    = "launch.forced_shutdown"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// EntrySpawnedEvent is emitted when the capture entry point starts.
type EntrySpawnedEvent struct {
	baseEvent
	Variant string // "client" or "server"
}

// NewEntrySpawnedEvent creates an EntrySpawnedEvent.
func NewEntrySpawnedEvent(variant string) EntrySpawnedEvent {
	return EntrySpawnedEvent{
		baseEvent: newBaseEvent(TypeEntrySpawned),
		Variant:   variant,
	}
}

// ClasspathCapturedEvent is emitted when a classpath is captured.
type ClasspathCapturedEvent struct {
	baseEvent
	Variant string
	Entries int // Entries left after filtering
}

// NewClasspathCapturedEvent creates a ClasspathCapturedEvent.
func NewClasspathCapturedEvent(variant string, entries int) ClasspathCapturedEvent {
	return ClasspathCapturedEvent{
		baseEvent: newBaseEvent(TypeClasspathCaptured),
		Variant:   variant,
		Entries:   entries,
	}
}

// CaptureFailedEvent is emitted when waiting for the classpath fails.
type CaptureFailedEvent struct {
	baseEvent
	Variant string
	Err     error
}

// NewCaptureFailedEvent creates a CaptureFailedEvent.
func NewCaptureFailedEvent(variant string, err error) CaptureFailedEvent {
	return CaptureFailedEvent{
		baseEvent: newBaseEvent(TypeCaptureFailed),
		Variant:   variant,
		Err:       err,
	}
}

// LaunchPreparedEvent is emitted when a launch plan is ready.
type LaunchPreparedEvent struct {
	baseEvent
	Variant   string
	Target    string // Main class to start
	Arguments int
	Classpath int
}

// NewLaunchPreparedEvent creates a LaunchPreparedEvent.
func NewLaunchPreparedEvent(variant, target string, arguments, classpath int) LaunchPreparedEvent {
	return LaunchPreparedEvent{
		baseEvent: newBaseEvent(TypeLaunchPrepared),
		Variant:   variant,
		Target:    target,
		Arguments: arguments,
		Classpath: classpath,
	}
}

// ForcedShutdownEvent is emitted just before a forced exit.
type ForcedShutdownEvent struct {
	baseEvent
	After time.Duration
}

// NewForcedShutdownEvent creates a ForcedShutdownEvent.
func NewForcedShutdownEvent(after time.Duration) ForcedShutdownEvent {
	return ForcedShutdownEvent{
		baseEvent: newBaseEvent(TypeForcedShutdown),
		After:     after,
	}
}
