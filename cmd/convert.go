package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hwjung-data/labelconv/internal/utils"
	"github.com/hwjung-data/labelconv/pkg/annotation"
	"github.com/hwjung-data/labelconv/pkg/convert"
	"github.com/spf13/cobra"
	yaml "go.yaml.in/yaml/v3"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert labeling-platform exports into one CVAT XML file",
	Long: `Convert per-item result JSON and per-image source JSON into a single
aggregated CVAT XML file, driven by the manifest CSV.

Each manifest row is matched to a result document by identifier prefix and to
a source document by filename. Rows that cannot be matched are reported and
skipped; they never abort the run.`,
	RunE: runConvert,
}

var (
	manifestPath string
	resultDir    string
	sourceDir    string
	templatePath string
	outputDir    string
	reportDir    string
	ticket       string
	taskName     string
	variantsPath string
)

func init() {
	RootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&manifestPath, "manifest", "", "Path to manifest CSV (required)")
	convertCmd.Flags().StringVar(&resultDir, "results", "", "Directory of per-item result JSON files (required)")
	convertCmd.Flags().StringVar(&sourceDir, "sources", "", "Directory of per-image source JSON files (required)")
	convertCmd.Flags().StringVar(&templatePath, "template", "", "Path to template XML (required)")
	convertCmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "Directory for the output XML file")
	convertCmd.Flags().StringVar(&reportDir, "report-dir", "reports", "Directory for the run report YAML")
	convertCmd.Flags().StringVar(&ticket, "ticket", "", "Ticket number used in the output filename (required)")
	convertCmd.Flags().StringVar(&taskName, "task-name", "", "Override the template's task name")
	convertCmd.Flags().StringVar(&variantsPath, "variants", "", "YAML file describing schema variants per difficulty tier")

	for _, flag := range []string{"manifest", "results", "sources", "template", "ticket"} {
		if err := convertCmd.MarkFlagRequired(flag); err != nil {
			utils.ExitOnError("Unable to mark flag as required", err)
		}
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	variants := annotation.DefaultVariants()
	if variantsPath != "" {
		loaded, err := annotation.LoadVariants(variantsPath)
		if err != nil {
			return err
		}
		variants = loaded
	}

	report, err := convert.Run(convert.Options{
		ManifestPath: manifestPath,
		ResultDir:    resultDir,
		SourceDir:    sourceDir,
		TemplatePath: templatePath,
		OutputDir:    outputDir,
		Ticket:       ticket,
		TaskName:     taskName,
		Variants:     variants,
	})
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := saveReport(report); err != nil {
		slog.Warn("failed to save run report", "err", err)
	}

	printReport(report)
	return nil
}

func saveReport(report *convert.Report) error {
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}

	path := filepath.Join(reportDir, fmt.Sprintf("convert_%s.yaml", time.Now().Format("2006-01-02_15-04-05")))
	return os.WriteFile(path, data, 0644)
}

func printReport(report *convert.Report) {
	fmt.Printf("\n=== CONVERSION SUMMARY ===\n")
	fmt.Printf("Total rows: %d\n", report.TotalRows)
	fmt.Printf("Processed rows: %d\n", report.ProcessedRows)
	fmt.Printf("Missing files: %d\n", len(report.MissingFiles))
	fmt.Printf("Output file: %s\n", report.OutputPath)
	fmt.Printf("Created: %s\n", report.Created)
	fmt.Printf("Updated: %s\n", report.Updated)

	if len(report.MissingFiles) > 0 {
		fmt.Printf("\nMissing files:\n")
		for _, name := range utils.FirstN(report.MissingFiles, 10) {
			fmt.Printf("  %s\n", name)
		}
		if extra := len(report.MissingFiles) - 10; extra > 0 {
			fmt.Printf("  ... and %d more\n", extra)
		}
	}
}
