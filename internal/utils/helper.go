package utils

import (
	"log/slog"
	"os"
)

func ExitOnError(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

// FirstN bounds a list for report output; the full count is always logged
// separately.
func FirstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
