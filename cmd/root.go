package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "labelconv",
	Short: "Reconcile labeling-platform exports into CVAT XML",
	Long: `labelconv joins a labeling platform's per-item result JSON, the manifest
CSV and per-image source JSON into a single CVAT XML file, and carries the
surrounding workflow: fetching exports from GCS, auditing emitted XML,
exploding annotations to CSV and building preset files.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ll, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}

		// Summary blocks go to stdout; logs stay on stderr so output
		// redirection keeps them apart.
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel(ll),
		})
		slog.SetDefault(slog.New(handler))

		return nil
	},
}

func logLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	ll := os.Getenv("LOG_LEVEL")
	if ll == "" {
		ll = "INFO"
	}
	RootCmd.PersistentFlags().String("log-level", ll, "Log verbosity: debug, info, warn or error")
}
