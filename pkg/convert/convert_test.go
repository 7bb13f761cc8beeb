package convert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hwjung-data/labelconv/pkg/annotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplate = `<?xml version="1.0" encoding="utf-8"?>
<annotations>
	<task>
		<name>결과데이터</name>
	</task>
	<size>1</size>
	<created>2020-01-01 00:00:00+09:00</created>
	<updated>2020-01-01 00:00:00+09:00</updated>
	<image id="0" name="placeholder.jpg" width="1" height="1"></image>
</annotations>
`

const testResultJSON = `{
	"results": [
		["header"],
		[{"name_5OJYEV": [
			{"annotation": "BOX",
			 "object": {"left": 0, "top": 0, "width": 10, "height": 20},
			 "ocr": "가나다"},
			{"annotation": "POLYGONS",
			 "points": [{"x": 1, "y": 1}, {"x": 2, "y": 2}],
			 "ocr": "empty"}
		]}]
	]
}`

const testSourceJSON = `{"images": [{"convertedImageInfo": {"width": 800, "height": 600}}]}`

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupRun(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()

	manifestPath := filepath.Join(dir, "manifest.csv")
	write(t, manifestPath, "data_idx,file_name,work_edate,check_edate\n"+
		"101,\"{\"\"file_name\"\": \"\"scan one.jpg\"\"}\",2025-01-10T09:00:00,2025-01-11T09:00:00\n"+
		"102,scan_two.JPG,2025-01-12T09:00:00,2025-01-13T09:00:00\n"+
		"103,scan_three.jpg,,\n")

	resultDir := filepath.Join(dir, "26640_result")
	require.NoError(t, os.Mkdir(resultDir, 0755))
	write(t, filepath.Join(resultDir, "101_result.json"), testResultJSON)
	write(t, filepath.Join(resultDir, "102_result.json"), `{"results": [["header"], [null]]}`)
	write(t, filepath.Join(resultDir, "103_result.json"), testResultJSON)

	sourceDir := filepath.Join(dir, "3_sources")
	require.NoError(t, os.Mkdir(sourceDir, 0755))
	write(t, filepath.Join(sourceDir, "scan one.json"), testSourceJSON)
	write(t, filepath.Join(sourceDir, "scan_two.json"), testSourceJSON)
	// scan_three.json deliberately absent

	templatePath := filepath.Join(dir, "template.xml")
	write(t, templatePath, testTemplate)

	return Options{
		ManifestPath: manifestPath,
		ResultDir:    resultDir,
		SourceDir:    sourceDir,
		TemplatePath: templatePath,
		OutputDir:    dir,
		Ticket:       "PROJ-15684",
		Variants:     annotation.DefaultVariants(),
		Now:          func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func TestRun(t *testing.T) {
	opts := setupRun(t)

	report, err := Run(opts)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 2, report.ProcessedRows)
	assert.Equal(t, []string{"scan_three.json"}, report.MissingFiles)
	assert.Equal(t, "2025-01-12 00:00:00+09:00", report.Created)
	assert.Equal(t, "2025-01-13 00:00:00+09:00", report.Updated)

	assert.Equal(t, "PROJ-15684_sources_20250115.xml", filepath.Base(report.OutputPath))

	data, err := os.ReadFile(report.OutputPath)
	require.NoError(t, err)
	output := string(data)

	// size counts manifest rows, not matched rows
	assert.Contains(t, output, "<size>3</size>")
	assert.Contains(t, output, "<name>결과데이터</name>")
	assert.Contains(t, output, "<created>2025-01-12 00:00:00+09:00</created>")

	// image ids follow manifest row order
	first := strings.Index(output, `<image id="0" name="scan one.jpg" width="800" height="600">`)
	second := strings.Index(output, `<image id="1" name="scan_two.JPG" width="800" height="600">`)
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)

	// zero-annotation row keeps its image element
	assert.Contains(t, output, `<image id="1" name="scan_two.JPG" width="800" height="600"></image>`)

	assert.Contains(t, output,
		`<polygon label="text" source="file" occluded="0" z_order="0" points="0.0000,0.0000;10.0000,0.0000;10.0000,20.0000;0.0000,20.0000">`)
	assert.Contains(t, output, `<attribute name="text">가나다</attribute>`)
	assert.Contains(t, output, `<polygon label="empty" source="file" occluded="0" z_order="1" points="1.0000,1.0000;2.0000,2.0000"></polygon>`)
	assert.NotContains(t, output, "placeholder.jpg")
	assert.NotContains(t, output, "/>")
}

func TestRunFatalConditions(t *testing.T) {
	opts := setupRun(t)

	t.Run("missing manifest", func(t *testing.T) {
		bad := opts
		bad.ManifestPath = filepath.Join(t.TempDir(), "nope.csv")
		_, err := Run(bad)
		assert.Error(t, err)
	})

	t.Run("missing template", func(t *testing.T) {
		bad := opts
		bad.TemplatePath = filepath.Join(t.TempDir(), "nope.xml")
		_, err := Run(bad)
		assert.Error(t, err)
	})

	t.Run("missing result directory", func(t *testing.T) {
		bad := opts
		bad.ResultDir = filepath.Join(t.TempDir(), "nope")
		_, err := Run(bad)
		assert.Error(t, err)
	})

	t.Run("missing source directory", func(t *testing.T) {
		bad := opts
		bad.SourceDir = filepath.Join(t.TempDir(), "nope")
		_, err := Run(bad)
		assert.Error(t, err)
	})
}

func TestRunTaskNameOverride(t *testing.T) {
	opts := setupRun(t)
	opts.TaskName = "하와이 한인 잡지"

	report, err := Run(opts)
	require.NoError(t, err)

	data, err := os.ReadFile(report.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<name>하와이 한인 잡지</name>")
}

func TestIndexResults(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "7_a.json"), "{}")
	write(t, filepath.Join(dir, "7_b.json"), "{}")
	write(t, filepath.Join(dir, "8_a.json"), "{}")
	write(t, filepath.Join(dir, "notes.txt"), "")
	write(t, filepath.Join(dir, "noprefix.json"), "{}")

	index, err := IndexResults(dir)
	require.NoError(t, err)

	require.Len(t, index[7], 2)
	assert.Equal(t, "7_a.json", filepath.Base(index[7][0]))
	assert.Len(t, index[8], 1)
	assert.Len(t, index, 2)
}

func TestSourceJSONName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"scan.jpg", "scan.json"},
		{"scan.JPG", "scan.json"},
		{"scan.jpeg", "scan.json"},
		{"scan.PNG", "scan.json"},
		{"noext", "noext.json"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SourceJSONName(tt.in), "SourceJSONName(%q)", tt.in)
	}
}

func TestOutputFileName(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	got := OutputFileName("PROJ-15684", "9_하와이 잡지", now)
	assert.Equal(t, "PROJ-15684_하와이 잡지_20250115.xml", got)
}

func TestExplodeObjects(t *testing.T) {
	opts := setupRun(t)

	objects, report, err := ExplodeObjects(opts.ManifestPath, opts.ResultDir, opts.Variants)
	require.NoError(t, err)

	// all three rows have result documents; 101 and 103 carry two objects each
	assert.Equal(t, 3, report.ProcessedRows)
	require.Len(t, objects, 4)

	assert.Equal(t, int64(101), objects[0].DataIdx)
	assert.Equal(t, 0, objects[0].ObjectID)
	assert.Equal(t, "가나다", objects[0].OCRText)
	assert.Equal(t, 1, objects[1].ObjectID)
	assert.Equal(t, "empty", objects[1].Label)
	assert.Equal(t, "", objects[1].OCRText)

	csvPath := filepath.Join(t.TempDir(), "objects.csv")
	require.NoError(t, WriteObjectCSV(csvPath, objects))

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "data_idx,file_name,object_id,label,ocr_text,points", lines[0])
}
