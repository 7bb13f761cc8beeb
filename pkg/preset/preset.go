// Package preset converts result documents into the preset JSONL and CSV
// consumed when re-seeding a follow-up labeling project.
package preset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hwjung-data/labelconv/pkg/annotation"
	"github.com/hwjung-data/labelconv/pkg/manifest"
)

// Entry is one preset line: the target filename plus its annotation list,
// JSON-encoded as the platform expects.
type Entry struct {
	FileName string `json:"file_name"`
	Preset   string `json:"preset"`
}

// Options configures one preset build.
type Options struct {
	InputDir     string
	ManifestPath string
	OutputJSONL  string
	OutputCSV    string
	Variant      annotation.Variant
}

// Result counts conversion outcomes.
type Result struct {
	Converted int
	Failed    int
}

// exportDoc is the raw platform export: the result payload plus the source
// fields carrying the filename fallback.
type exportDoc struct {
	annotation.ResultDocument
	annotation.SourceDocument
}

type boxPreset struct {
	Annotation string         `json:"annotation"`
	Object     annotation.Box `json:"object"`
	OCR        string         `json:"ocr"`
}

type polygonsPreset struct {
	Annotation string             `json:"annotation"`
	Points     []annotation.Point `json:"points"`
	OCR        string             `json:"ocr"`
}

// ConvertRecord maps one raw record to its preset shape. POLYGONS keep
// their point list; BOX keeps its object, synthesizing one from the tl/br
// corners when only corners were exported. Records with neither are
// dropped.
func ConvertRecord(record *annotation.Record, textKey string) (any, bool) {
	ocr := record.Text(textKey)

	switch record.Annotation {
	case annotation.TypePolygons:
		if len(record.Points) == 0 {
			return nil, false
		}
		return polygonsPreset{Annotation: annotation.TypePolygons, Points: record.Points, OCR: ocr}, true

	case annotation.TypeBox:
		obj := record.Object
		if obj == nil {
			c := record.Coords
			if c == nil || c.TL == nil || c.BR == nil {
				return nil, false
			}
			obj = &annotation.Box{
				Left:   c.TL.X,
				Top:    c.TL.Y,
				Width:  c.BR.X - c.TL.X,
				Height: c.BR.Y - c.TL.Y,
				Angle:  record.Angle,
			}
		}
		return boxPreset{Annotation: annotation.TypeBox, Object: *obj, OCR: ocr}, true
	}

	return nil, false
}

// BuildEntry converts one export file. The filename resolves through the
// manifest mapping first, then the document's sources fallback, then
// "{identifier}.jpg".
func BuildEntry(path string, mapping map[string]string, variant annotation.Variant) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc exportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	fileName := resolveFileName(stem, mapping, doc.FallbackFileName())

	var converted []any
	for _, record := range annotation.Records(&doc.ResultDocument, variant) {
		if preset, ok := ConvertRecord(&record, variant.TextKey); ok {
			converted = append(converted, preset)
		}
	}
	if len(converted) == 0 {
		return nil, fmt.Errorf("no annotations in %s", path)
	}

	encoded, err := json.Marshal(converted)
	if err != nil {
		return nil, err
	}

	return &Entry{FileName: fileName, Preset: string(encoded)}, nil
}

// resolveFileName picks the target filename: manifest mapping, then the
// document's sources fallback, then a synthesized name. Whatever wins is
// sanitized the same way manifest assembly sanitizes names.
func resolveFileName(stem string, mapping map[string]string, fallback string) string {
	id, _, _ := strings.Cut(stem, "_")
	if name, ok := mapping[id]; ok && name != "" {
		return manifest.CleanFileName(name)
	}
	if fallback != "" {
		return manifest.CleanFileName(fallback)
	}
	return manifest.CleanFileName(stem + ".jpg")
}

// Run converts every export JSON in the input directory into one JSONL and
// one CSV, ordered by manifest row order when a manifest is supplied and by
// filename otherwise.
func Run(opts Options) (*Result, error) {
	entries, err := os.ReadDir(opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list input directory: %w", err)
	}

	var mapping map[string]string
	var order []string
	if opts.ManifestPath != "" {
		rows, err := manifest.Load(opts.ManifestPath)
		if err != nil {
			return nil, err
		}
		mapping = manifest.Mapping(rows)
		for _, row := range rows {
			order = append(order, manifest.CleanFileName(row.FileName()))
		}
	}

	result := &Result{}
	var built []*Entry
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(opts.InputDir, entry.Name())
		presetEntry, err := BuildEntry(path, mapping, opts.Variant)
		if err != nil {
			slog.Warn("preset conversion failed", "path", path, "err", err)
			result.Failed++
			continue
		}

		built = append(built, presetEntry)
		result.Converted++
	}

	sortEntries(built, order)

	if opts.OutputJSONL != "" {
		if err := writeJSONL(opts.OutputJSONL, built); err != nil {
			return nil, err
		}
		slog.Info("preset JSONL written", "path", opts.OutputJSONL, "entries", len(built))
	}
	if opts.OutputCSV != "" {
		if err := writeCSV(opts.OutputCSV, built); err != nil {
			return nil, err
		}
		slog.Info("preset CSV written", "path", opts.OutputCSV, "entries", len(built))
	}

	return result, nil
}

func sortEntries(entries []*Entry, order []string) {
	if len(order) == 0 {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].FileName < entries[j].FileName
		})
		return
	}

	position := make(map[string]int, len(order))
	for i, name := range order {
		if _, seen := position[name]; !seen {
			position[name] = i
		}
	}
	rank := func(e *Entry) int {
		if p, ok := position[e.FileName]; ok {
			return p
		}
		return len(order)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return rank(entries[i]) < rank(entries[j])
	})
}

func writeJSONL(path string, entries []*Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var b strings.Builder
	for _, entry := range entries {
		line, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		b.Write(line)
		b.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

func writeCSV(path string, entries []*Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"file_name", "preset"}); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := writer.Write([]string{entry.FileName, entry.Preset}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
