package cmd

import (
	"fmt"

	"github.com/hwjung-data/labelconv/internal/utils"
	"github.com/hwjung-data/labelconv/pkg/annotation"
	"github.com/hwjung-data/labelconv/pkg/convert"
	"github.com/spf13/cobra"
)

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "Explode result annotations into an object-level CSV",
	Long: `Explode the annotations of every manifest row into one CSV row per
object, with object_id and ocr_text columns. An item with several
annotations becomes several rows.`,
	RunE: runObjects,
}

var (
	objectsManifestPath string
	objectsResultDir    string
	objectsOutputPath   string
	objectsVariantsPath string
)

func init() {
	RootCmd.AddCommand(objectsCmd)

	objectsCmd.Flags().StringVar(&objectsManifestPath, "manifest", "", "Path to manifest CSV (required)")
	objectsCmd.Flags().StringVar(&objectsResultDir, "results", "", "Directory of per-item result JSON files (required)")
	objectsCmd.Flags().StringVarP(&objectsOutputPath, "output", "o", "objects.csv", "Output CSV path")
	objectsCmd.Flags().StringVar(&objectsVariantsPath, "variants", "", "YAML file describing schema variants per difficulty tier")

	for _, flag := range []string{"manifest", "results"} {
		if err := objectsCmd.MarkFlagRequired(flag); err != nil {
			utils.ExitOnError("Unable to mark flag as required", err)
		}
	}
}

func runObjects(cmd *cobra.Command, args []string) error {
	variants := annotation.DefaultVariants()
	if objectsVariantsPath != "" {
		loaded, err := annotation.LoadVariants(objectsVariantsPath)
		if err != nil {
			return err
		}
		variants = loaded
	}

	objects, report, err := convert.ExplodeObjects(objectsManifestPath, objectsResultDir, variants)
	if err != nil {
		return err
	}

	if err := convert.WriteObjectCSV(objectsOutputPath, objects); err != nil {
		return fmt.Errorf("failed to write object CSV: %w", err)
	}

	fmt.Printf("\n=== OBJECT EXPORT SUMMARY ===\n")
	fmt.Printf("Total rows: %d\n", report.TotalRows)
	fmt.Printf("Processed rows: %d\n", report.ProcessedRows)
	fmt.Printf("Object rows: %d\n", len(objects))
	fmt.Printf("Missing files: %d\n", len(report.MissingFiles))
	fmt.Printf("Output file: %s\n", objectsOutputPath)

	if len(report.MissingFiles) > 0 {
		fmt.Printf("\nMissing files:\n")
		for _, name := range utils.FirstN(report.MissingFiles, 10) {
			fmt.Printf("  %s\n", name)
		}
		if extra := len(report.MissingFiles) - 10; extra > 0 {
			fmt.Printf("  ... and %d more\n", extra)
		}
	}

	return nil
}
