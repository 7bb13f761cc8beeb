package cvat

import (
	"path/filepath"
	"testing"
)

func TestAuditFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "annotations.xml")
	content := Format(sampleDocument().Render())
	if err := writeFile(path, content); err != nil {
		t.Fatal(err)
	}

	audit, err := AuditFile(path)
	if err != nil {
		t.Fatalf("AuditFile() error: %v", err)
	}

	if len(audit.Images) != 2 {
		t.Fatalf("Images = %d, want 2", len(audit.Images))
	}
	if audit.TotalPolygons != 2 {
		t.Errorf("TotalPolygons = %d, want 2", audit.TotalPolygons)
	}
	if audit.Labels["text"] != 1 || audit.Labels["empty"] != 1 {
		t.Errorf("Labels = %v", audit.Labels)
	}
	if audit.Images[0].Polygons != 2 || audit.Images[1].Polygons != 0 {
		t.Errorf("per-image counts = %d, %d", audit.Images[0].Polygons, audit.Images[1].Polygons)
	}
	if audit.Images[1].Name != "scan02.jpg" {
		t.Errorf("second image name = %q", audit.Images[1].Name)
	}
}

func TestAuditFileMissing(t *testing.T) {
	if _, err := AuditFile(filepath.Join(t.TempDir(), "nope.xml")); err == nil {
		t.Error("AuditFile() should fail on a missing file")
	}
}
