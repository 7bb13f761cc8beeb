// Package gcs fetches result exports from the platform's object store.
// None of this parallelism crosses into the conversion core; the core only
// runs against files already on local disk.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Config locates the result exports for a project. Everything comes from
// flags or the environment; nothing is hardcoded.
type Config struct {
	Bucket          string
	BasePath        string
	CredentialsFile string
	Workers         int
}

// ConfigFromEnv reads GCS settings from the environment. Bucket and base
// path carry no defaults; NewDownloader rejects an unconfigured value so a
// run can never silently target the wrong bucket.
func ConfigFromEnv() Config {
	cfg := Config{
		Bucket:          os.Getenv("GCS_BUCKET"),
		BasePath:        os.Getenv("GCS_BASE_PATH"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		Workers:         3,
	}
	if w, err := strconv.Atoi(os.Getenv("MAX_WORKERS")); err == nil && w > 0 {
		cfg.Workers = w
	}
	return cfg
}

// ResultPrefix is the object prefix holding a project's result exports.
func (c Config) ResultPrefix(projectID string) string {
	return fmt.Sprintf("%s/%s_result/", c.BasePath, projectID)
}

// Downloader wraps a storage client for one configured bucket.
type Downloader struct {
	client *storage.Client
	cfg    Config
}

func NewDownloader(ctx context.Context, cfg Config) (*Downloader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("no bucket configured; set GCS_BUCKET or pass --bucket")
	}
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("no base path configured; set GCS_BASE_PATH or pass --base-path")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &Downloader{client: client, cfg: cfg}, nil
}

func (d *Downloader) Close() error {
	return d.client.Close()
}

// List returns the object names under a project's result prefix.
func (d *Downloader) List(ctx context.Context, projectID string) ([]string, error) {
	prefix := d.cfg.ResultPrefix(projectID)
	it := d.client.Bucket(d.cfg.Bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list gs://%s/%s: %w", d.cfg.Bucket, prefix, err)
		}
		names = append(names, attrs.Name)
	}

	return names, nil
}

// FilterObjects keeps objects whose base name starts with a manifest
// identifier prefix, "{data_idx}_".
func FilterObjects(names []string, ids map[int64]struct{}) []string {
	var filtered []string
	for _, name := range names {
		base := name[strings.LastIndex(name, "/")+1:]
		prefix, _, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}
		if _, want := ids[id]; want {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// Download fetches the named objects into outputDir with a bounded worker
// pool. Per-object failures are logged and counted; they never block
// unrelated objects.
func (d *Downloader) Download(ctx context.Context, names []string, outputDir string) (int, int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	var success, failure atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)

	for _, name := range names {
		g.Go(func() error {
			if err := d.downloadOne(ctx, name, outputDir); err != nil {
				slog.Error("download failed", "object", name, "err", err)
				failure.Add(1)
				return nil
			}
			if n := success.Add(1); n%10 == 0 {
				slog.Info("download progress", "done", n, "total", len(names))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(success.Load()), int(failure.Load()), err
	}
	return int(success.Load()), int(failure.Load()), nil
}

func (d *Downloader) downloadOne(ctx context.Context, name, outputDir string) error {
	reader, err := d.client.Bucket(d.cfg.Bucket).Object(name).NewReader(ctx)
	if err != nil {
		return err
	}
	defer reader.Close()

	local := filepath.Join(outputDir, filepath.Base(name))
	file, err := os.Create(local)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(local)
		return err
	}
	return file.Close()
}

// CleanupUnmatched removes local files whose identifier prefix is not in
// the manifest, so a stale earlier sync cannot leak rows into a run.
func CleanupUnmatched(dir string, ids map[int64]struct{}) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		prefix, _, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}
		if _, want := ids[id]; !want {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				slog.Warn("failed to remove stale file", "name", entry.Name(), "err", err)
				continue
			}
			deleted++
		}
	}

	if deleted > 0 {
		slog.Info("removed files not present in manifest", "count", deleted)
	}
	return deleted, nil
}
