package cmd

import (
	"fmt"

	"github.com/hwjung-data/labelconv/internal/utils"
	"github.com/hwjung-data/labelconv/pkg/annotation"
	"github.com/hwjung-data/labelconv/pkg/preset"
	"github.com/spf13/cobra"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Build preset JSONL and CSV from result exports",
	Long: `Convert a directory of result JSON exports into one preset JSONL file
and one CSV, ordered by manifest row order, for seeding a follow-up
labeling project.`,
	RunE: runPreset,
}

var (
	presetInputDir     string
	presetManifestPath string
	presetJSONLPath    string
	presetCSVPath      string
	presetVariantsPath string
)

func init() {
	RootCmd.AddCommand(presetCmd)

	presetCmd.Flags().StringVar(&presetInputDir, "input", "", "Directory of result JSON exports (required)")
	presetCmd.Flags().StringVar(&presetManifestPath, "manifest", "", "Manifest CSV for filename mapping and ordering")
	presetCmd.Flags().StringVar(&presetJSONLPath, "jsonl", "preset.jsonl", "Output JSONL path")
	presetCmd.Flags().StringVar(&presetCSVPath, "csv", "preset.csv", "Output CSV path")
	presetCmd.Flags().StringVar(&presetVariantsPath, "variants", "", "YAML file describing schema variants per difficulty tier")

	if err := presetCmd.MarkFlagRequired("input"); err != nil {
		utils.ExitOnError("Unable to mark input as required", err)
	}
}

func runPreset(cmd *cobra.Command, args []string) error {
	variant := annotation.DefaultVariants().Default
	if presetVariantsPath != "" {
		loaded, err := annotation.LoadVariants(presetVariantsPath)
		if err != nil {
			return err
		}
		variant = loaded.Default
	}

	result, err := preset.Run(preset.Options{
		InputDir:     presetInputDir,
		ManifestPath: presetManifestPath,
		OutputJSONL:  presetJSONLPath,
		OutputCSV:    presetCSVPath,
		Variant:      variant,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n=== PRESET SUMMARY ===\n")
	fmt.Printf("Converted: %d\n", result.Converted)
	fmt.Printf("Failed: %d\n", result.Failed)

	return nil
}
