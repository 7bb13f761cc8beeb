package annotation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadVariants(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "variants.yaml")
	content := `default:
  result_index: 1
  annotation_key: name_5OJYEV
  text_key: ocr
tiers:
  중:
    result_index: 1
    annotation_key: name_RRMP0X
    text_key: ocr
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	set, err := LoadVariants(path)
	if err != nil {
		t.Fatalf("LoadVariants() error: %v", err)
	}

	if set.Default.AnnotationKey != "name_5OJYEV" {
		t.Errorf("Default.AnnotationKey = %q", set.Default.AnnotationKey)
	}
	if got := set.For("중").AnnotationKey; got != "name_RRMP0X" {
		t.Errorf("For(중).AnnotationKey = %q", got)
	}
	if got := set.For("하").AnnotationKey; got != "name_5OJYEV" {
		t.Errorf("unknown tier should fall back to default, got %q", got)
	}
}

func TestLoadVariantsMissingDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "variants.yaml")
	if err := os.WriteFile(path, []byte("tiers: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadVariants(path); err == nil {
		t.Error("LoadVariants() should fail without a default annotation_key")
	}
}

func TestLoadVariantsMissingFile(t *testing.T) {
	if _, err := LoadVariants(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadVariants() should fail on a missing file")
	}
}
