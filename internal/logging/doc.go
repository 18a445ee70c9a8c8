// Package logging provides the loader's log dispatch and structured log sinks.
//
// Loader code logs through package-level functions that take a [Category]
// and a fmt format:
//
//	logging.Info(logging.CategoryClassPath, "captured %d entries", len(entries))
//	logging.Error(logging.CategoryEntrypoint, "capture failed", err)
//
// A trailing error argument that the format does not consume is attached to
// the record rather than formatted.
//
// # Handlers
//
// Records go to the process-wide [Handler]. Until [Init] installs one, a
// [BuiltinHandler] buffers records and stays quiet unless an error is
// logged; [Init] replays that buffer into the new handler. Available
// handlers:
//
//   - [ConsoleHandler]: "[15:04:05] [INFO] [MoltenexLoader/ClassPath]: msg"
//     lines, errors on stderr
//   - [SlogHandler]: JSON lines through a [Logger], one child per category
//   - [ZapHandler]: a zap logger, one named child per category
//   - [HclogHandler]: hclog text lines, to any writer or a rotating file
//
// # Structured Logger
//
// [Logger] wraps log/slog's JSON handler with persistent attributes:
//
//	logger, err := logging.NewFileLogger("/var/log/moltenex.log", logging.LevelDebug,
//	    logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithCategory(logging.CategoryClassPath).Info("capture complete", "entries", 12)
//
// File output goes through [RotatingWriter], which rotates by size and can
// gzip backups. [ReadLogs], [FilterLogs] and [WriteLogs] read such files
// back for inspection.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package logging
