package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

// -----------------------------------------------------------------------------
// CaptureError Tests
// -----------------------------------------------------------------------------

func TestNewCaptureError(t *testing.T) {
	err := NewCaptureError(ResourceResolutionIO, "resolve archive", io.ErrUnexpectedEOF)

	if err.Kind != ResourceResolutionIO {
		t.Errorf("Kind = %v, want %v", err.Kind, ResourceResolutionIO)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
	if err.Unwrap() != io.ErrUnexpectedEOF {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), io.ErrUnexpectedEOF)
	}
}

func TestCaptureError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CaptureError
		want string
	}{
		{
			name: "kind only",
			err:  NewCaptureError(UnsupportedLoaderShape, "no entries", nil),
			want: "capture error [kind=unsupported_loader_shape]: no entries",
		},
		{
			name: "with resource and cause",
			err: NewCaptureError(ResourceResolutionIO, "resolve archive", io.EOF).
				WithResource("jar:file:/a.jar!/X.class"),
			want: "capture error [kind=resource_resolution_io, resource=jar:file:/a.jar!/X.class]: resolve archive: EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCaptureError_Is(t *testing.T) {
	tests := []struct {
		name   string
		kind   FailureKind
		target error
		want   bool
	}{
		{"type match", UnexpectedFault, &CaptureError{}, true},
		{"shape sentinel", UnsupportedLoaderShape, ErrUnsupportedLoaderShape, true},
		{"io sentinel", ResourceResolutionIO, ErrResourceResolution, true},
		{"fault sentinel", UnexpectedFault, ErrUnexpectedFault, true},
		{"other kind sentinel", ResourceResolutionIO, ErrUnsupportedLoaderShape, false},
		{"cause", ResourceResolutionIO, io.ErrClosedPipe, true},
		{"unrelated", UnexpectedFault, ErrTimeout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCaptureError(tt.kind, "test", io.ErrClosedPipe)
			if got := errors.Is(err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFailureKind_String(t *testing.T) {
	if got := FailureKind(42).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("startup: %w", NewCaptureError(UnsupportedLoaderShape, "x", nil))
	kind, ok := KindOf(wrapped)
	if !ok || kind != UnsupportedLoaderShape {
		t.Errorf("KindOf() = (%v, %v), want (%v, true)", kind, ok, UnsupportedLoaderShape)
	}

	if _, ok := KindOf(io.EOF); ok {
		t.Error("KindOf(io.EOF) reported a capture failure")
	}
}

// -----------------------------------------------------------------------------
// LaunchError Tests
// -----------------------------------------------------------------------------

func TestLaunchError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *LaunchError
		want string
	}{
		{
			name: "no context",
			err:  NewLaunchError("failed", nil),
			want: "launch error: failed",
		},
		{
			name: "variant and target",
			err: NewLaunchError("failed", ErrCaptureFailed).
				WithVariant("client").
				WithTarget("net.minecraft.client.main.Main"),
			want: "launch error [variant=client, target=net.minecraft.client.main.Main]: failed: classpath capture failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLaunchError_ChainsCaptureError(t *testing.T) {
	capErr := NewCaptureError(ResourceResolutionIO, "resolve", io.EOF)
	err := NewLaunchError("bundle processing failed", capErr)

	if !errors.Is(err, ErrResourceResolution) {
		t.Error("launch error should match the capture kind sentinel through its cause")
	}
	var target *CaptureError
	if !errors.As(err, &target) || target != capErr {
		t.Error("errors.As should find the wrapped CaptureError")
	}
	if !errors.Is(err, &LaunchError{}) {
		t.Error("launch error should match any *LaunchError")
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestValidationError(t *testing.T) {
	err := NewValidationError("unknown variant").WithField("variant").WithValue("applet")

	want := "validation error [field=variant, value=applet]: unknown variant"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
	if !errors.Is(err.WithCause(ErrUnknownVariant), ErrUnknownVariant) {
		t.Error("ValidationError should match its cause")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("awaiting classpath capture", 10*time.Second)

	want := "timeout error: awaiting classpath capture (timeout: 10s)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("TimeoutError should match ErrTimeout")
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
	if !strings.HasSuffix(err.WithCause(ErrCanceled).Error(), ": operation canceled") {
		t.Errorf("cause missing from %q", err.Error())
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"timeout error", NewTimeoutError("test", time.Second), true},
		{"capture error", NewCaptureError(UnexpectedFault, "test", nil), false},
		{"wrapped timeout sentinel", fmt.Errorf("await: %w", ErrTimeout), true},
		{"launch error over timeout", NewLaunchError("await", NewTimeoutError("test", time.Second)), true},
		{"launch error over capture", NewLaunchError("await", NewCaptureError(UnexpectedFault, "test", nil)), false},
		{"standard error", errors.New("standard error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
