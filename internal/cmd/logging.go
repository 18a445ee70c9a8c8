package cmd

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/moltenex-tm/moltenex-loader/internal/config"
	"github.com/moltenex-tm/moltenex-loader/internal/logging"
)

var (
	loggingMu   sync.Mutex
	loggingStop func() error
)

// startLogging installs the log handler selected by the configuration.
func startLogging(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	stop, err := installLogging(cmd, cfg.Logging)
	if err != nil {
		return err
	}

	loggingMu.Lock()
	loggingStop = stop
	loggingMu.Unlock()
	return nil
}

// stopLogging flushes and releases the handler installed by startLogging.
func stopLogging() error {
	loggingMu.Lock()
	stop := loggingStop
	loggingStop = nil
	loggingMu.Unlock()

	if stop == nil {
		return nil
	}
	return stop()
}

func installLogging(cmd *cobra.Command, lc config.LoggingConfig) (func() error, error) {
	level := lc.ParsedLevel()

	switch lc.Handler {
	case config.HandlerSlog:
		var logger *logging.Logger
		if lc.File == "" {
			logger = logging.NewLogger(cmd.ErrOrStderr(), level)
		} else {
			var err error
			logger, err = logging.NewFileLogger(lc.File, level, lc.Rotation())
			if err != nil {
				return nil, fmt.Errorf("failed to open log file: %w", err)
			}
		}
		if err := logging.Init(logging.NewSlogHandler(logger)); err != nil {
			return nil, err
		}
		return restoreConsole(cmd, level, lc.File), nil

	case config.HandlerZap:
		z, err := logging.NewZapLogger(level, lc.File)
		if err != nil {
			return nil, fmt.Errorf("failed to build zap logger: %w", err)
		}
		if err := logging.Init(logging.NewZapHandler(z)); err != nil {
			return nil, err
		}
		return restoreConsole(cmd, level, lc.File), nil

	case config.HandlerHclog:
		h := logging.NewHclogHandler(logging.NewHclogLogger(level, cmd.ErrOrStderr()))
		if lc.File != "" {
			var err error
			if h, err = logging.NewHclogFileHandler(lc.File, level, lc.Rotation()); err != nil {
				return nil, err
			}
		}
		if err := logging.Init(h); err != nil {
			return nil, err
		}
		return restoreConsole(cmd, level, lc.File), nil

	default:
		switch h := logging.CurrentHandler().(type) {
		case *logging.BuiltinHandler:
			h.SetLevel(level)
			// Keep records for the dump file only when one is configured.
			if err := h.Configure(lc.File != "", true); err != nil {
				return nil, err
			}
			return func() error { return h.Shutdown(lc.File) }, nil
		case *logging.ConsoleHandler:
			h.SetMinLevel(level)
		}
		return nil, nil
	}
}

// restoreConsole returns a stop function that swaps the installed handler
// for a console handler, closing it. Flushing stderr can fail on terminals,
// so close errors only matter for a log file.
func restoreConsole(cmd *cobra.Command, level logging.Level, file string) func() error {
	return func() error {
		err := logging.Init(logging.NewConsoleHandler(cmd.OutOrStdout(), cmd.ErrOrStderr(), level))
		if file == "" {
			return nil
		}
		return err
	}
}
