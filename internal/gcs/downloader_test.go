package gcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestResultPrefix(t *testing.T) {
	cfg := Config{BasePath: "1069"}
	if got := cfg.ResultPrefix("26640"); got != "1069/26640_result/" {
		t.Errorf("ResultPrefix() = %q", got)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GCS_BUCKET", "")
	t.Setenv("GCS_BASE_PATH", "")
	t.Setenv("MAX_WORKERS", "")

	cfg := ConfigFromEnv()
	if cfg.Bucket != "" || cfg.BasePath != "" {
		t.Errorf("bucket and base path must not default, got %+v", cfg)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}

	t.Setenv("GCS_BUCKET", "other")
	t.Setenv("GCS_BASE_PATH", "1069")
	t.Setenv("MAX_WORKERS", "8")
	cfg = ConfigFromEnv()
	if cfg.Bucket != "other" || cfg.BasePath != "1069" || cfg.Workers != 8 {
		t.Errorf("overrides = %+v", cfg)
	}

	t.Setenv("MAX_WORKERS", "not-a-number")
	if cfg := ConfigFromEnv(); cfg.Workers != 3 {
		t.Errorf("bad MAX_WORKERS should fall back to 3, got %d", cfg.Workers)
	}
}

func TestNewDownloaderUnconfigured(t *testing.T) {
	if _, err := NewDownloader(context.Background(), Config{BasePath: "1069"}); err == nil {
		t.Error("NewDownloader() should fail without a bucket")
	}
	if _, err := NewDownloader(context.Background(), Config{Bucket: "b"}); err == nil {
		t.Error("NewDownloader() should fail without a base path")
	}
}

func TestFilterObjects(t *testing.T) {
	ids := map[int64]struct{}{101: {}, 103: {}}
	names := []string{
		"1069/26640_result/101_a.json",
		"1069/26640_result/102_b.json",
		"1069/26640_result/103_c.json",
		"1069/26640_result/readme.txt",
		"1069/26640_result/noid.json",
	}

	got := FilterObjects(names, ids)
	want := []string{
		"1069/26640_result/101_a.json",
		"1069/26640_result/103_c.json",
	}
	if len(got) != len(want) {
		t.Fatalf("FilterObjects() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FilterObjects()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCleanupUnmatched(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"101_keep.json", "999_stale.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := CleanupUnmatched(dir, map[int64]struct{}{101: {}})
	if err != nil {
		t.Fatalf("CleanupUnmatched() error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if _, err := os.Stat(filepath.Join(dir, "101_keep.json")); err != nil {
		t.Error("matched file should survive")
	}
	if _, err := os.Stat(filepath.Join(dir, "999_stale.json")); !os.IsNotExist(err) {
		t.Error("stale file should be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("files without an id prefix should survive")
	}
}

func TestCleanupUnmatchedMissingDir(t *testing.T) {
	deleted, err := CleanupUnmatched(filepath.Join(t.TempDir(), "nope"), nil)
	if err != nil {
		t.Fatalf("CleanupUnmatched() error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}
