package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moltenex-tm/moltenex-loader/internal/config"
	"github.com/moltenex-tm/moltenex-loader/internal/errors"
	"github.com/moltenex-tm/moltenex-loader/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "moltenex",
	Short: "Classpath capture and launch tooling for the Moltenex loader",
	Long: `Moltenex captures the classpath a bundling host builds for the game,
drops the host's copy of the conflicting library and prepares the launch
target and arguments for the client or the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startLogging(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return stopLogging()
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps an error returned by Execute to a process exit status:
// 2 for rejected input, 1 for anything else.
func ExitCode(err error) int {
	if errors.Is(err, errors.ErrInvalidInput) {
		return 2
	}
	return 1
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/moltenex/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "minimum log level (trace/debug/info/warn/error)")
	rootCmd.PersistentFlags().String("log-handler", "", "log handler (builtin/slog/zap/hclog)")
	bindFlags()
}

// bindFlags binds the global flags to their config keys.
func bindFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.handler", rootCmd.PersistentFlags().Lookup("log-handler"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		for _, dir := range config.SearchPaths() {
			viper.AddConfigPath(dir)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(config.EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	// e.g., MOLTENEX_LOGGING_LEVEL for logging.level
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	if err := viper.ReadInConfig(); err == nil {
		logging.Debug(logging.CategoryConfig, "Using config file %s", viper.ConfigFileUsed())
	}
}
