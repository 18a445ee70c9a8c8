package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/moltenex-tm/moltenex-loader/internal/errors"
	"github.com/moltenex-tm/moltenex-loader/internal/logging"
)

// Log handler names accepted by logging.handler
const (
	HandlerBuiltin = "builtin"
	HandlerSlog    = "slog"
	HandlerZap     = "zap"
	HandlerHclog   = "hclog"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.max_size_mb")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Is reports whether target is errors.ErrInvalidInput.
func (e ValidationErrors) Is(target error) bool {
	return target == errors.ErrInvalidInput
}

// Fields returns the failing field paths in order.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, err := range e {
		fields = append(fields, err.Field)
	}
	return fields
}

// resourceNameRegex matches slash-separated resource names such as
// org/objectweb/asm/ClassReader.class
var resourceNameRegex = regexp.MustCompile(`^[A-Za-z0-9_$-]+(\.[A-Za-z0-9_$-]+)*(/[A-Za-z0-9_$-]+(\.[A-Za-z0-9_$-]+)*)*$`)

// ValidVariants returns the list of valid launch variants
func ValidVariants() []string {
	return []string{"client", "server"}
}

// ValidHandlers returns the list of valid log handlers
func ValidHandlers() []string {
	return []string{HandlerBuiltin, HandlerSlog, HandlerZap, HandlerHclog}
}

// Validate checks the Config for invalid values and returns every failure,
// capture settings first, then launch, then logging.
func (c *Config) Validate() []ValidationError {
	var v validator
	c.validateCapture(&v)
	c.validateLaunch(&v)
	c.validateLogging(&v)
	return v.errs
}

// validator collects failures in the order rules are checked.
type validator struct {
	errs []ValidationError
}

// require records a failure for field unless ok.
func (v *validator) require(ok bool, field string, value any, message string) {
	if !ok {
		v.errs = append(v.errs, ValidationError{Field: field, Value: value, Message: message})
	}
}

func (v *validator) oneOf(field, value string, valid []string) {
	v.require(slices.Contains(valid, value), field, value, "must be one of: "+strings.Join(valid, ", "))
}

func (v *validator) duration(field string, d time.Duration) {
	v.require(d >= 0, field, d, "must be non-negative")
}

// path checks an optional path for values no filesystem accepts.
func (v *validator) path(field, path string) {
	const maxPathLength = 4096
	v.require(!strings.ContainsRune(path, '\x00'), field, path, "path contains invalid null character")
	v.require(len(path) <= maxPathLength, field, path,
		fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength))
}

func (c *Config) validateCapture(v *validator) {
	marker := c.Capture.MarkerResource
	if marker == "" {
		v.require(false, "capture.marker_resource", marker, "must not be empty")
	} else {
		v.require(resourceNameRegex.MatchString(marker), "capture.marker_resource", marker,
			"must be a relative slash-separated resource name")
	}
	v.duration("capture.await_timeout", c.Capture.AwaitTimeout)
}

func (c *Config) validateLaunch(v *validator) {
	v.oneOf("launch.variant", c.Launch.Variant, ValidVariants())
	v.path("launch.game_dir", c.Launch.GameDir)
	v.path("launch.assets_dir", c.Launch.AssetsDir)
	v.duration("launch.forced_shutdown", c.Launch.ForcedShutdown)
}

func (c *Config) validateLogging(v *validator) {
	const maxLogSizeMB = 1000

	v.oneOf("logging.handler", c.Logging.Handler, ValidHandlers())
	_, ok := logging.LookupLevel(c.Logging.Level)
	v.require(ok, "logging.level", c.Logging.Level,
		"must be one of: "+strings.ToLower(strings.Join(logging.ValidLevels(), ", ")))
	v.path("logging.file", c.Logging.File)

	size := c.Logging.MaxSizeMB
	if size <= 0 {
		v.require(false, "logging.max_size_mb", size, "must be positive")
	} else {
		v.require(size <= maxLogSizeMB, "logging.max_size_mb", size, fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB))
	}
	v.require(c.Logging.MaxBackups >= 0, "logging.max_backups", c.Logging.MaxBackups, "must be non-negative")
}
