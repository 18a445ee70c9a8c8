package cmd

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	"github.com/moltenex-tm/moltenex-loader/internal/config"
	"github.com/moltenex-tm/moltenex-loader/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View loader logs",
	Long: `View and filter a JSON log written by the slog or zap handler.

By default, reads the file configured as logging.file and shows the last
50 entries. Use flags to filter and format the output.

Examples:
  # Show the last 50 entries
  moltenex logs

  # Show every warning or error from the classpath capture
  moltenex logs -n 0 --level warn --category MoltenexLoader/ClassPath

  # Show logs from the last hour
  moltenex logs --since 1h

  # Export matching entries as CSV
  moltenex logs --grep "capture|bundle" -o csv`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsFile     string
	logsTail     int
	logsLevel    string
	logsCategory string
	logsSince    time.Duration
	logsGrep     string
	logsFormat   string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVar(&logsFile, "file", "", "Log file (default: logging.file)")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (trace/debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsCategory, "category", "", "Filter by category, including nested categories")
	logsCmd.Flags().DurationVar(&logsSince, "since", 0, "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter messages matching pattern (regex)")
	logsCmd.Flags().StringVarP(&logsFormat, "output", "o", "text", "Output format: text, json, or csv")
}

func runLogs(cmd *cobra.Command, args []string) error {
	path := logsFile
	if path == "" {
		path = config.Get().Logging.File
	}
	if path == "" {
		return fmt.Errorf("no log file configured\nPass --file or set logging.file")
	}

	if logsLevel != "" {
		if _, ok := logging.LookupLevel(logsLevel); !ok {
			return fmt.Errorf("invalid level %q (valid: %v)", logsLevel, logging.ValidLevels())
		}
	}
	var pattern *regexp.Regexp
	if logsGrep != "" {
		var err error
		if pattern, err = regexp.Compile(logsGrep); err != nil {
			return fmt.Errorf("invalid grep pattern: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	entries, err := logging.ReadLogs(f)
	if err != nil {
		return err
	}

	filter := logging.LogFilter{
		MinLevel: logsLevel,
		Category: logsCategory,
	}
	if logsSince > 0 {
		filter.Since = time.Now().Add(-logsSince)
	}
	entries = logging.FilterLogs(entries, filter)
	if pattern != nil {
		entries = grepEntries(entries, pattern)
	}
	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	return logging.WriteLogs(cmd.OutOrStdout(), entries, logsFormat)
}

// grepEntries keeps entries whose message or error matches pattern.
func grepEntries(entries []logging.LogEntry, pattern *regexp.Regexp) []logging.LogEntry {
	var out []logging.LogEntry
	for _, e := range entries {
		if pattern.MatchString(e.Message) || (e.Error != "" && pattern.MatchString(e.Error)) {
			out = append(out, e)
		}
	}
	return out
}
