package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IndexResults scans a result directory once and maps each numeric item
// identifier to its "{id}_*.json" files, in directory listing order.
// Matching against the index instead of re-scanning per row keeps lookups
// deterministic and testable.
func IndexResults(dir string) (map[int64][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list result directory: %w", err)
	}

	index := make(map[int64][]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}

		index[id] = append(index[id], filepath.Join(dir, name))
	}

	return index, nil
}

// IndexSources maps lowercased source JSON filenames to their paths, so
// image-extension casing differences never break the match.
func IndexSources(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list source directory: %w", err)
	}

	index := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".json") {
			continue
		}
		index[strings.ToLower(name)] = filepath.Join(dir, name)
	}

	return index, nil
}

// SourceJSONName derives the source document filename for an image by
// swapping the image extension for .json, whatever its casing.
func SourceJSONName(imageName string) string {
	ext := filepath.Ext(imageName)
	return strings.TrimSuffix(imageName, ext) + ".json"
}
