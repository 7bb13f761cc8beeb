package convert

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"

	"github.com/hwjung-data/labelconv/pkg/annotation"
	"github.com/hwjung-data/labelconv/pkg/manifest"
)

// ObjectRow is one annotation exploded out of its item: a manifest row with
// several objects becomes several object rows.
type ObjectRow struct {
	DataIdx  int64
	FileName string
	ObjectID int
	Label    string
	OCRText  string
	Points   string
}

// ExplodeObjects flattens the result documents of every manifest row into
// object-level rows, in manifest order. Rows without a result document are
// reported through the returned Report and skipped.
func ExplodeObjects(manifestPath, resultDir string, variants annotation.VariantSet) ([]ObjectRow, *Report, error) {
	rows, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, nil, err
	}

	resultIndex, err := IndexResults(resultDir)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{TotalRows: len(rows)}
	var objects []ObjectRow

	for i, row := range rows {
		name := row.FileName()
		if name == "" {
			slog.Warn("row has no filename", "row", i+1, "data_idx", row.DataIdx)
			report.MissingFiles = append(report.MissingFiles, strconv.FormatInt(row.DataIdx, 10)+"_filename")
			continue
		}

		resultPaths, ok := resultIndex[row.DataIdx]
		if !ok {
			slog.Warn("result JSON not found", "row", i+1, "data_idx", row.DataIdx)
			report.MissingFiles = append(report.MissingFiles, strconv.FormatInt(row.DataIdx, 10)+"_result")
			continue
		}

		resultDoc, err := loadResult(resultPaths[0])
		if err != nil {
			slog.Warn("failed to load result JSON", "path", resultPaths[0], "err", err)
			report.MissingFiles = append(report.MissingFiles, strconv.FormatInt(row.DataIdx, 10)+"_result")
			continue
		}

		variant := variants.For(row.Difficulty)
		for objectID, ann := range annotation.Extract(resultDoc, variant) {
			objects = append(objects, ObjectRow{
				DataIdx:  row.DataIdx,
				FileName: name,
				ObjectID: objectID,
				Label:    ann.Label,
				OCRText:  ann.Text,
				Points:   annotation.FormatPoints(ann.Points),
			})
		}
		report.ProcessedRows++
	}

	return objects, report, nil
}

// WriteObjectCSV writes the exploded rows with one header line.
func WriteObjectCSV(path string, objects []ObjectRow) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"data_idx", "file_name", "object_id", "label", "ocr_text", "points"}); err != nil {
		return err
	}
	for _, obj := range objects {
		record := []string{
			strconv.FormatInt(obj.DataIdx, 10),
			obj.FileName,
			strconv.Itoa(obj.ObjectID),
			obj.Label,
			obj.OCRText,
			obj.Points,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
