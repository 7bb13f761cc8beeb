package cmd

import (
	"fmt"
	"log/slog"

	"github.com/hwjung-data/labelconv/internal/gcs"
	"github.com/hwjung-data/labelconv/internal/utils"
	"github.com/hwjung-data/labelconv/pkg/manifest"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download result exports from GCS for the manifest's items",
	Long: `Download "{data_idx}_*.json" result objects from the platform bucket,
filtered to the identifiers present in the manifest. Local files whose
identifier is not in the manifest are removed afterwards.

Bucket settings come from GCS_BUCKET, GCS_BASE_PATH, MAX_WORKERS and
GOOGLE_APPLICATION_CREDENTIALS, or from flags. The bucket and base path
have no defaults and must be configured.`,
	RunE: runFetch,
}

var (
	fetchManifestPath string
	fetchProjectID    string
	fetchOutputDir    string
	fetchBucket       string
	fetchBasePath     string
	fetchWorkers      int
	fetchCleanup      bool
)

func init() {
	RootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchManifestPath, "manifest", "", "Path to manifest CSV (required)")
	fetchCmd.Flags().StringVar(&fetchProjectID, "project-id", "", "Labeling project identifier (required)")
	fetchCmd.Flags().StringVarP(&fetchOutputDir, "output-dir", "o", "", "Local directory for downloaded files (defaults to {project-id}_result)")
	fetchCmd.Flags().StringVar(&fetchBucket, "bucket", "", "GCS bucket name (or GCS_BUCKET)")
	fetchCmd.Flags().StringVar(&fetchBasePath, "base-path", "", "GCS base path holding the result prefixes (or GCS_BASE_PATH)")
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", 0, "Override the download worker count")
	fetchCmd.Flags().BoolVar(&fetchCleanup, "cleanup", true, "Remove local files not present in the manifest")

	for _, flag := range []string{"manifest", "project-id"} {
		if err := fetchCmd.MarkFlagRequired(flag); err != nil {
			utils.ExitOnError("Unable to mark flag as required", err)
		}
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	rows, err := manifest.Load(fetchManifestPath)
	if err != nil {
		return err
	}

	ids := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		ids[row.DataIdx] = struct{}{}
	}
	slog.Info("manifest identifiers loaded", "count", len(ids))

	cfg := gcs.ConfigFromEnv()
	if fetchBucket != "" {
		cfg.Bucket = fetchBucket
	}
	if fetchBasePath != "" {
		cfg.BasePath = fetchBasePath
	}
	if fetchWorkers > 0 {
		cfg.Workers = fetchWorkers
	}

	outputDir := fetchOutputDir
	if outputDir == "" {
		outputDir = fetchProjectID + "_result"
	}

	ctx := cmd.Context()
	downloader, err := gcs.NewDownloader(ctx, cfg)
	if err != nil {
		return err
	}
	defer downloader.Close()

	names, err := downloader.List(ctx, fetchProjectID)
	if err != nil {
		return err
	}

	matched := gcs.FilterObjects(names, ids)
	slog.Info("objects matched against manifest", "listed", len(names), "matched", len(matched))
	if len(matched) == 0 {
		slog.Warn("no objects match the manifest identifiers")
		return nil
	}

	success, failure, err := downloader.Download(ctx, matched, outputDir)
	if err != nil {
		return err
	}

	deleted := 0
	if fetchCleanup {
		deleted, err = gcs.CleanupUnmatched(outputDir, ids)
		if err != nil {
			slog.Warn("cleanup failed", "err", err)
		}
	}

	fmt.Printf("\n=== FETCH SUMMARY ===\n")
	fmt.Printf("Downloaded: %d\n", success)
	fmt.Printf("Failed: %d\n", failure)
	fmt.Printf("Removed stale files: %d\n", deleted)
	fmt.Printf("Output directory: %s\n", outputDir)

	return nil
}
