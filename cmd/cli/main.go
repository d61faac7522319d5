package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/himanishpuri/SwingScan/internal/report"
	"github.com/himanishpuri/SwingScan/pkg/logger"
	"github.com/himanishpuri/SwingScan/pkg/swingscan"
	"github.com/spf13/cobra"
)

var version = "dev"

// Global flags
var (
	dbPath   string
	format   string
	output   string
	logLevel string
)

const banner = `
  ____          _             ____
 / ___|_      _(_)_ __   __ _/ ___|  ___ __ _ _ __
 \___ \ \ /\ / / | '_ \ / _' \___ \ / __/ _' | '_ \
  ___) \ V  V /| | | | | (_| |___) | (_| (_| | | | |
 |____/ \_/\_/ |_|_| |_|\__, |____/ \___\__,_|_| |_|
                        |___/
          Swing motion run-search tool
`

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "swingscan",
		Short: "Find runs of qualifying samples in swing motion recordings",
		Long: banner + `
swingscan loads a swing recording (CSV, six-channel WAV, or a recording
stored in the SQLite database) and searches its accelerometer and gyroscope
channels for runs of consecutive samples that meet a threshold or range.

Channels: timestamp, ax, ay, az, wx, wy, wz. Ranges are half-open [begin,end)
for forward searches; back searches walk from begin down to end (exclusive),
with end -1 reaching sample 0.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := swingscan.ParseFormat(format); err != nil {
				return err
			}
			if _, err := report.ParseFormat(output); err != nil {
				return err
			}
			if logLevel != "" {
				level, ok := logger.ParseLevel(logLevel)
				if !ok {
					return fmt.Errorf("unknown log level %q", logLevel)
				}
				logger.SetLevel(level)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&dbPath, "db", getEnvOrDefault("SWINGSCAN_DB_PATH", "swingscan.sqlite3"), "Path to the SQLite recording database")
	flags.StringVar(&format, "format", "auto", "Source format: auto, csv, wav or sqlite")
	flags.StringVarP(&output, "output", "o", "text", "Output style: text, legacy or json")
	flags.StringVar(&logLevel, "log-level", os.Getenv("LOG_LEVEL"), "Log level: debug, info, warn or error")

	root.AddCommand(
		newAboveCmd(),
		newWithinCmd(),
		newBackCmd(),
		newTwoCmd(),
		newMultiCmd(),
		newPhasesCmd(),
		newImportCmd(),
		newRecordingsCmd(),
	)
	return root
}

// createService creates a swingscan service with the configured options.
func createService() (swingscan.Service, error) {
	f, err := swingscan.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return swingscan.NewService(
		swingscan.WithDBPath(dbPath),
		swingscan.WithFormat(f),
		swingscan.WithLogger(logger.GetLogger()),
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
