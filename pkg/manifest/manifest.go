package manifest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Column names as exported by the labeling platform. The difficulty column
// is only present on runs that mix tiers.
const (
	colDataIdx    = "data_idx"
	colSrcIdx     = "src_idx"
	colFileName   = "file_name"
	colWorkEnd    = "work_edate"
	colCheckEnd   = "check_edate"
	colDifficulty = "난이도"
)

// Row is one labeled item from the manifest CSV. The core never mutates
// rows; manifest assembly happens upstream.
type Row struct {
	DataIdx     int64
	SrcIdx      int64
	RawFileName string
	Difficulty  string
	WorkEnd     string
	CheckEnd    string
}

type fileNameWrapper struct {
	FileName string `json:"file_name"`
}

// FileName unwraps the raw file_name cell. The platform sometimes exports
// the cell as a JSON object wrapping a file_name key.
func (r Row) FileName() string {
	raw := strings.TrimSpace(r.RawFileName)
	if raw == "" {
		return ""
	}

	var wrapped fileNameWrapper
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil {
		return wrapped.FileName
	}

	return raw
}

// Load reads the manifest CSV. A missing data_idx or file_name column is
// fatal; per-row parse problems only skip the value, never the row.
func Load(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("manifest CSV is empty: %s", path)
	}

	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}

	if _, ok := cols[colDataIdx]; !ok {
		return nil, fmt.Errorf("manifest CSV is missing %q column: %s", colDataIdx, path)
	}
	if _, ok := cols[colFileName]; !ok {
		return nil, fmt.Errorf("manifest CSV is missing %q column: %s", colFileName, path)
	}

	cell := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var rows []Row
	for _, record := range records[1:] {
		dataIdx, err := strconv.ParseInt(strings.TrimSpace(cell(record, colDataIdx)), 10, 64)
		if err != nil {
			continue
		}
		srcIdx, _ := strconv.ParseInt(strings.TrimSpace(cell(record, colSrcIdx)), 10, 64)

		rows = append(rows, Row{
			DataIdx:     dataIdx,
			SrcIdx:      srcIdx,
			RawFileName: cell(record, colFileName),
			Difficulty:  strings.TrimSpace(cell(record, colDifficulty)),
			WorkEnd:     strings.TrimSpace(cell(record, colWorkEnd)),
			CheckEnd:    strings.TrimSpace(cell(record, colCheckEnd)),
		})
	}

	return rows, nil
}

// Mapping returns the identifier-to-filename join used by the preset
// builder's filename resolution.
func Mapping(rows []Row) map[string]string {
	mapping := make(map[string]string, len(rows))
	for _, row := range rows {
		if name := row.FileName(); name != "" {
			mapping[strconv.FormatInt(row.DataIdx, 10)] = name
		}
	}
	return mapping
}

func latestDate(rows []Row, pick func(Row) string) (string, bool) {
	var latest string
	for _, row := range rows {
		value := pick(row)
		if value == "" || strings.EqualFold(value, "nan") {
			continue
		}
		// Timestamps are ISO-ordered strings, so lexicographic max is the
		// most recent.
		if value > latest {
			latest = value
		}
	}
	return latest, latest != ""
}

// LatestWorkEnd returns the most recent work_edate, skipping blank and NaN
// cells.
func LatestWorkEnd(rows []Row) (string, bool) {
	return latestDate(rows, func(r Row) string { return r.WorkEnd })
}

// LatestCheckEnd returns the most recent check_edate, skipping blank and NaN
// cells.
func LatestCheckEnd(rows []Row) (string, bool) {
	return latestDate(rows, func(r Row) string { return r.CheckEnd })
}

var datetimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ToKSTOffset re-expresses a naive KST timestamp with an explicit +09:00
// suffix. The stored value is shifted back 9 hours before the suffix is
// attached, matching what the downstream consumer expects; see the run
// report for the resolved values. Unparsable values pass through unchanged.
func ToKSTOffset(value string) string {
	for _, layout := range datetimeLayouts {
		dt, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return dt.Add(-9 * time.Hour).Format("2006-01-02 15:04:05") + "+09:00"
	}
	return value
}

// NowKSTOffset formats an instant the same way ToKSTOffset renders manifest
// timestamps; used as the fallback when a date column is entirely blank.
func NowKSTOffset(now time.Time) string {
	return now.Format("2006-01-02 15:04:05") + "+09:00"
}

var (
	fileNameJunk = regexp.MustCompile(`[^\w가-힣.-]`)
	fileNameRuns = regexp.MustCompile(`[.-]+`)
)

// CleanFileName strips a filename down to word characters, Hangul, dots and
// hyphens, collapses dot/hyphen runs to a single dot, and guarantees an
// extension.
func CleanFileName(name string) string {
	if name == "" {
		return name
	}

	clean := fileNameJunk.ReplaceAllString(name, "")
	clean = fileNameRuns.ReplaceAllString(clean, ".")

	if !strings.Contains(clean, ".") {
		clean += ".jpg"
	}

	return clean
}

// CleanDirName strips the numeric ordering prefix from a source directory
// name, e.g. "9_하와이 잡지" -> "하와이 잡지".
var dirPrefix = regexp.MustCompile(`^\d+_`)

func CleanDirName(name string) string {
	return dirPrefix.ReplaceAllString(name, "")
}
