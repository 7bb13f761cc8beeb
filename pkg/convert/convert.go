// Package convert joins manifest rows to their result and source documents
// and assembles the aggregated CVAT XML output.
package convert

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hwjung-data/labelconv/pkg/annotation"
	"github.com/hwjung-data/labelconv/pkg/cvat"
	"github.com/hwjung-data/labelconv/pkg/manifest"
)

// Options carries everything a run needs; no paths or credentials are
// baked in.
type Options struct {
	ManifestPath string
	ResultDir    string
	SourceDir    string
	TemplatePath string
	OutputDir    string
	Ticket       string
	TaskName     string
	Variants     annotation.VariantSet

	// Now is injectable for stable output names and timestamp fallbacks in
	// tests. Defaults to time.Now.
	Now func() time.Time
}

// Report summarizes one run. Row misses are warnings, never failures.
type Report struct {
	TotalRows     int      `yaml:"total_rows"`
	ProcessedRows int      `yaml:"processed_rows"`
	MissingFiles  []string `yaml:"missing_files,omitempty"`
	Created       string   `yaml:"created"`
	Updated       string   `yaml:"updated"`
	OutputPath    string   `yaml:"output_path"`
}

// Run executes the full reconciliation: manifest rows drive iteration, each
// row is matched to its two JSON documents, normalized, and appended in
// manifest order. Only unusable top-level inputs are fatal.
func Run(opts Options) (*Report, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	rows, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	slog.Info("manifest loaded", "rows", len(rows))

	summary, err := cvat.LoadTemplate(opts.TemplatePath)
	if err != nil {
		return nil, err
	}
	if opts.TaskName != "" {
		summary.TaskName = opts.TaskName
	}

	resultIndex, err := IndexResults(opts.ResultDir)
	if err != nil {
		return nil, err
	}
	sourceIndex, err := IndexSources(opts.SourceDir)
	if err != nil {
		return nil, err
	}

	created := manifest.NowKSTOffset(opts.Now())
	if latest, ok := manifest.LatestWorkEnd(rows); ok {
		created = manifest.ToKSTOffset(latest)
	}
	updated := manifest.NowKSTOffset(opts.Now())
	if latest, ok := manifest.LatestCheckEnd(rows); ok {
		updated = manifest.ToKSTOffset(latest)
	}

	doc := &cvat.Document{
		TaskName: summary.TaskName,
		Size:     len(rows),
		Created:  created,
		Updated:  updated,
	}

	report := &Report{
		TotalRows: len(rows),
		Created:   created,
		Updated:   updated,
	}

	for i, row := range rows {
		name := row.FileName()
		if name == "" {
			slog.Warn("row has no filename", "row", i+1, "data_idx", row.DataIdx)
			report.MissingFiles = append(report.MissingFiles, strconv.FormatInt(row.DataIdx, 10)+"_filename")
			continue
		}

		slog.Debug("processing row", "data_idx", row.DataIdx, "filename", name, "difficulty", row.Difficulty)

		resultPaths, ok := resultIndex[row.DataIdx]
		if !ok {
			slog.Warn("result JSON not found", "row", i+1, "data_idx", row.DataIdx)
			report.MissingFiles = append(report.MissingFiles, strconv.FormatInt(row.DataIdx, 10)+"_result")
			continue
		}
		if len(resultPaths) > 1 {
			slog.Warn("multiple result JSON files for identifier, using first",
				"data_idx", row.DataIdx, "count", len(resultPaths))
		}

		sourceName := SourceJSONName(name)
		sourcePath, ok := sourceIndex[strings.ToLower(sourceName)]
		if !ok {
			slog.Warn("source JSON not found", "row", i+1, "filename", sourceName)
			report.MissingFiles = append(report.MissingFiles, sourceName)
			continue
		}

		resultDoc, err := loadResult(resultPaths[0])
		if err != nil {
			slog.Warn("failed to load result JSON", "path", resultPaths[0], "err", err)
			report.MissingFiles = append(report.MissingFiles, filepath.Base(resultPaths[0]))
			continue
		}
		sourceDoc, err := loadSource(sourcePath)
		if err != nil {
			slog.Warn("failed to load source JSON", "path", sourcePath, "err", err)
			report.MissingFiles = append(report.MissingFiles, sourceName)
			continue
		}

		variant := opts.Variants.For(row.Difficulty)
		doc.Images = append(doc.Images, BuildImage(i, name, resultDoc, sourceDoc, variant))
		report.ProcessedRows++
	}

	output := cvat.Format(doc.Render())

	outName := OutputFileName(opts.Ticket, filepath.Base(opts.SourceDir), opts.Now())
	outPath := filepath.Join(opts.OutputDir, outName)
	if err := os.WriteFile(outPath, []byte(output), 0644); err != nil {
		return nil, fmt.Errorf("failed to write output XML: %w", err)
	}
	report.OutputPath = outPath

	return report, nil
}

// BuildImage composes one output image unit from a matched row. Pure apart
// from the zero-dimension warning.
func BuildImage(ordinal int, name string, result *annotation.ResultDocument, source *annotation.SourceDocument, variant annotation.Variant) cvat.Image {
	width, height := source.Dimensions()
	if width == 0 || height == 0 {
		slog.Warn("image dimensions not found", "name", name, "width", width, "height", height)
	}

	img := cvat.Image{
		ID:     ordinal,
		Name:   name,
		Width:  width,
		Height: height,
	}

	for z, ann := range annotation.Extract(result, variant) {
		img.Polygons = append(img.Polygons, cvat.Polygon{
			Label:  ann.Label,
			ZOrder: z,
			Points: annotation.FormatPoints(ann.Points),
			Text:   ann.Text,
		})
	}

	return img
}

// OutputFileName builds "{ticket}_{cleanedSourceDir}_{YYYYMMDD}.xml"; the
// source directory's numeric ordering prefix is stripped.
func OutputFileName(ticket, sourceDirName string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.xml", ticket, manifest.CleanDirName(sourceDirName), now.Format("20060102"))
}

func loadResult(path string) (*annotation.ResultDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc annotation.ResultDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func loadSource(path string) (*annotation.SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc annotation.SourceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
