package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/moltenex-tm/moltenex-loader/internal/config"
	"github.com/moltenex-tm/moltenex-loader/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify loader configuration",
	Long: `View or modify loader configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  moltenex config set capture.await_timeout 30s
  moltenex config set launch.variant server
  moltenex config set logging.handler zap

Valid keys:
  capture.marker_resource  - Resource whose archive is dropped from the classpath
  capture.await_timeout    - How long to wait for the capture (duration, 0s = forever)
  launch.variant           - client or server
  launch.game_dir          - Default --gameDir
  launch.assets_dir        - Default --assetsDir for the client
  launch.forced_shutdown   - Force exit this long after an interrupt (duration)
  logging.handler          - builtin, slog, zap, or hclog
  logging.level            - trace, debug, info, warn, or error
  logging.file             - Log file (empty for stderr)
  logging.max_size_mb      - Rotate the log file at this size
  logging.max_backups      - Rotated files to keep
  logging.compress         - Gzip rotated files (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/moltenex/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var configWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the configuration each time the config file changes",
	Long: `Watch the active config file and print the reloaded configuration after
every valid change. Invalid edits are logged and skipped. Stop with Ctrl+C.`,
	RunE: runConfigWatch,
}

// configKeys maps each settable key to the kind of value it takes.
var configKeys = map[string]string{
	"capture.marker_resource": "string",
	"capture.await_timeout":   "duration",
	"launch.variant":          "string",
	"launch.game_dir":         "string",
	"launch.assets_dir":       "string",
	"launch.forced_shutdown":  "duration",
	"logging.handler":         "string",
	"logging.level":           "string",
	"logging.file":            "string",
	"logging.max_size_mb":     "int",
	"logging.max_backups":     "int",
	"logging.compress":        "bool",
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configWatchCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}
	return writeYAML(out, config.Get())
}

func writeYAML(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// parseConfigValue converts value to the kind configKeys expects for key.
func parseConfigValue(key, value string) (any, error) {
	kind, ok := configKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'moltenex config set --help' to see valid keys", key)
	}

	switch kind {
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case "duration":
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected a duration such as 30s", key)
		}
		return d.String(), nil
	default:
		return value, nil
	}
}

// setNested stores value in a nested settings map under a dotted key.
func setNested(settings map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	m := settings
	for _, p := range parts[:len(parts)-1] {
		child, ok := m[p].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[p] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = value
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value, err := parseConfigValue(key, args[1])
	if err != nil {
		return err
	}

	// Validate the whole configuration with the new value before saving it.
	settings := viper.AllSettings()
	setNested(settings, key, value)
	if _, err := config.Decode(settings); err != nil {
		return err
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
		if err := os.MkdirAll(config.ConfigDir(), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	viper.Set(key, value)
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, value)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()
	if err := config.WriteDefault(configFile); err != nil {
		return fmt.Errorf("%w\nUse 'moltenex config set' to modify values", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize the loader.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	for i, dir := range config.SearchPaths() {
		fmt.Fprintf(out, "  %d. %s/config.yaml\n", i+1, dir)
	}
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_LOGGING_LEVEL)\n", config.EnvPrefix, config.EnvPrefix)
	return nil
}

func runConfigWatch(cmd *cobra.Command, args []string) error {
	file := viper.ConfigFileUsed()
	if file == "" {
		return fmt.Errorf("no config file to watch\nRun 'moltenex config init' to create one")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s\n", file)

	config.Watch(func(cfg *config.Config, e fsnotify.Event) {
		fmt.Fprintf(out, "\n# Reloaded after %s\n", e.Op)
		if err := writeYAML(out, cfg); err != nil {
			logging.Warn(logging.CategoryConfig, "failed to print reloaded config", err)
		}
	})

	<-cmd.Context().Done()
	return nil
}
