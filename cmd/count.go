package cmd

import (
	"fmt"
	"sort"

	"github.com/hwjung-data/labelconv/internal/utils"
	"github.com/hwjung-data/labelconv/pkg/cvat"
	"github.com/hwjung-data/labelconv/pkg/manifest"
	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count images and objects in an emitted annotations XML",
	Long: `Count images and polygon objects in an output XML file.

With --manifest, object counts are additionally bucketed by the manifest's
difficulty tier, joined on the image name.`,
	RunE: runCount,
}

var (
	countXMLPath      string
	countManifestPath string
	countPerImage     bool
)

func init() {
	RootCmd.AddCommand(countCmd)

	countCmd.Flags().StringVar(&countXMLPath, "xml", "", "Path to annotations XML file (required)")
	countCmd.Flags().StringVar(&countManifestPath, "manifest", "", "Manifest CSV for difficulty bucketing (optional)")
	countCmd.Flags().BoolVar(&countPerImage, "per-image", false, "Print the object count of every image")

	if err := countCmd.MarkFlagRequired("xml"); err != nil {
		utils.ExitOnError("Unable to mark xml as required", err)
	}
}

func runCount(cmd *cobra.Command, args []string) error {
	audit, err := cvat.AuditFile(countXMLPath)
	if err != nil {
		return err
	}

	fmt.Printf("=== OBJECT COUNT: %s ===\n", countXMLPath)
	fmt.Printf("Images: %d\n", len(audit.Images))
	fmt.Printf("Objects: %d\n", audit.TotalPolygons)

	labels := make([]string, 0, len(audit.Labels))
	for label := range audit.Labels {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Printf("  label %q: %d\n", label, audit.Labels[label])
	}

	if countPerImage {
		fmt.Printf("\nPer-image counts:\n")
		for _, img := range audit.Images {
			fmt.Printf("  [%s] %s: %d\n", img.ID, img.Name, img.Polygons)
		}
	}

	if countManifestPath != "" {
		if err := printDifficultyBuckets(audit); err != nil {
			return err
		}
	}

	return nil
}

func printDifficultyBuckets(audit *cvat.Audit) error {
	rows, err := manifest.Load(countManifestPath)
	if err != nil {
		return err
	}

	difficultyByName := map[string]string{}
	for _, row := range rows {
		if name := row.FileName(); name != "" {
			difficultyByName[name] = row.Difficulty
		}
	}

	imageCounts := map[string]int{}
	objectCounts := map[string]int{}
	for _, img := range audit.Images {
		tier, ok := difficultyByName[img.Name]
		if !ok {
			tier = "(unknown)"
		} else if tier == "" {
			tier = "(untagged)"
		}
		imageCounts[tier]++
		objectCounts[tier] += img.Polygons
	}

	tiers := make([]string, 0, len(imageCounts))
	for tier := range imageCounts {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)

	fmt.Printf("\nBy difficulty tier:\n")
	for _, tier := range tiers {
		fmt.Printf("  %s: %d images, %d objects\n", tier, imageCounts[tier], objectCounts[tier])
	}

	return nil
}
