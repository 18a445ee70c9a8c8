package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/moltenex-tm/moltenex-loader/internal/logging"
)

// EnvPrefix is the prefix of environment variables that override config keys,
// e.g. MOLTENEX_LOGGING_LEVEL for logging.level.
const EnvPrefix = "MOLTENEX"

// Config represents the complete loader configuration
type Config struct {
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture"`
	Launch  LaunchConfig  `mapstructure:"launch" yaml:"launch"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CaptureConfig controls classpath capture
type CaptureConfig struct {
	// MarkerResource is the resource whose containing archive is removed
	// from the captured classpath
	MarkerResource string `mapstructure:"marker_resource" yaml:"marker_resource"`
	// AwaitTimeout bounds how long the bundle processor waits for the
	// capture (0 = wait forever)
	AwaitTimeout time.Duration `mapstructure:"await_timeout" yaml:"await_timeout"`
}

// LaunchConfig controls launch target selection
type LaunchConfig struct {
	// Variant is the game environment: "client" or "server" (default: "client")
	Variant string `mapstructure:"variant" yaml:"variant"`
	// GameDir is passed as --gameDir when the arguments lack one
	GameDir string `mapstructure:"game_dir" yaml:"game_dir"`
	// AssetsDir is passed as --assetsDir to the client when the arguments lack one
	AssetsDir string `mapstructure:"assets_dir" yaml:"assets_dir"`
	// ForcedShutdown forces the process to exit this long after an
	// interrupt (0 = disabled)
	ForcedShutdown time.Duration `mapstructure:"forced_shutdown" yaml:"forced_shutdown"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	// Handler selects the log sink: "builtin", "slog", "zap", or "hclog" (default: "builtin")
	Handler string `mapstructure:"handler" yaml:"handler"`
	// Level is the minimum level: "trace", "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// File is the log file for slog, zap and hclog, and the dump file for builtin.
	// Empty writes to stderr.
	File string `mapstructure:"file" yaml:"file"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// ParsedLevel returns the configured level, INFO if unrecognized.
func (c *LoggingConfig) ParsedLevel() logging.Level {
	return logging.ParseLevel(c.Level)
}

// Rotation returns the rotation settings for the log file.
func (c *LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

// Default returns a Config with sensible default values
func Default() *Config {
	rotation := logging.DefaultRotationConfig()
	return &Config{
		Capture: CaptureConfig{
			MarkerResource: "org/objectweb/asm/ClassReader.class",
			AwaitTimeout:   0, // Wait forever
		},
		Launch: LaunchConfig{
			Variant:        "client",
			ForcedShutdown: 0, // Disabled
		},
		Logging: LoggingConfig{
			Handler:    HandlerBuiltin,
			Level:      "info",
			MaxSizeMB:  rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			Compress:   rotation.Compress,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Capture defaults
	viper.SetDefault("capture.marker_resource", defaults.Capture.MarkerResource)
	viper.SetDefault("capture.await_timeout", defaults.Capture.AwaitTimeout)

	// Launch defaults
	viper.SetDefault("launch.variant", defaults.Launch.Variant)
	viper.SetDefault("launch.game_dir", defaults.Launch.GameDir)
	viper.SetDefault("launch.assets_dir", defaults.Launch.AssetsDir)
	viper.SetDefault("launch.forced_shutdown", defaults.Launch.ForcedShutdown)

	// Logging defaults
	viper.SetDefault("logging.handler", defaults.Logging.Handler)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// decodeHook converts config strings such as "30s" to durations and
// comma-separated strings to slices.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Decode builds a validated Config from a raw settings map, applying
// defaults for keys it omits.
func Decode(settings map[string]any) (*Config, error) {
	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decodeHook(),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// Watch reloads the configuration whenever the config file changes and
// passes each valid result to onChange. Invalid edits are logged and
// skipped. Watch returns immediately.
func Watch(onChange func(*Config, fsnotify.Event)) {
	viper.OnConfigChange(changeHandler(onChange))
	viper.WatchConfig()
}

func changeHandler(onChange func(*Config, fsnotify.Event)) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load()
		if err != nil {
			logging.Warn(logging.CategoryConfig, "ignoring invalid config change in %s", e.Name, err)
			return
		}
		logging.Debug(logging.CategoryConfig, "config reloaded from %s", e.Name)
		onChange(cfg, e)
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "moltenex")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".moltenex"
	}
	return filepath.Join(home, ".config", "moltenex")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SearchPaths returns the directories searched for config.yaml, in order.
func SearchPaths() []string {
	return []string{ConfigDir(), "."}
}

// defaultTemplate is written by WriteDefault.
const defaultTemplate = `# moltenex loader configuration
capture:
  # Resource whose containing archive is dropped from the captured classpath
  marker_resource: %s
  # How long to wait for the capture; 0s waits forever
  await_timeout: 0s

launch:
  # client | server
  variant: client
  game_dir: ""
  assets_dir: ""
  # Force exit this long after an interrupt; 0s disables
  forced_shutdown: 0s

logging:
  # builtin | slog | zap | hclog
  handler: builtin
  # trace | debug | info | warn | error
  level: info
  # Log file for slog/zap/hclog, dump file for builtin; empty writes to stderr
  file: ""
  max_size_mb: %d
  max_backups: %d
  compress: false
`

// WriteDefault writes a commented default config file to path. It refuses
// to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	d := Default()
	content := fmt.Sprintf(defaultTemplate, d.Capture.MarkerResource, d.Logging.MaxSizeMB, d.Logging.MaxBackups)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
