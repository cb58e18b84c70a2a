package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"photorestore/internal/logging"
)

// CleanResult contains the outcome of a cleanup operation.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// Clean empties the missing/ and uncertain/ folders left by an earlier run so
// a re-run does not accumulate suffixed duplicates. Other content of
// outputDir is left alone.
func Clean(ctx context.Context, outputDir string, logger *slog.Logger) CleanResult {
	result := CleanResult{}

	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return result
	}

	for _, category := range []string{MissingDir, UncertainDir} {
		dir := filepath.Join(outputDir, category)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
			}
			continue
		}
		for _, entry := range entries {
			if ctx.Err() != nil {
				return result
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
				logging.WarnWithContext(logger, "failed to remove staged file", "staging_cleanup_failed",
					logging.String(logging.FieldPath, path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check output_dir permissions"),
					logging.String(logging.FieldImpact, "stale staged file remains; new copies get suffixed names"),
				)
				continue
			}
			result.Removed = append(result.Removed, path)
		}
	}
	if logger != nil && len(result.Removed) > 0 {
		logger.Info("cleared previous staging output",
			logging.Int("removed", len(result.Removed)),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}
	return result
}
