package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"photorestore/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results,
		CheckDirectoryAccess("Subject directory", cfg.Paths.SubjectDir, false),
		CheckDirectoryAccess("Reference directory", cfg.Paths.ReferenceDir, false),
		CheckDistinctCorpora(cfg.Paths.SubjectDir, cfg.Paths.ReferenceDir),
	)

	if cfg.Staging.Enabled && !cfg.Staging.DryRun {
		results = append(results, CheckWritableParent("Output directory", cfg.Paths.OutputDir))
	}
	if cfg.Hashing.CacheEnabled {
		results = append(results, CheckWritableParent("Cache directory", cfg.Paths.CacheDir))
	}

	results = append(results, CheckBinaries(ctx, []Requirement{{
		Name:        "FFprobe",
		Command:     cfg.FFprobeBinary(),
		Description: "Reads video duration and dimensions",
		Optional:    true,
	}})...)
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err folds failed required checks into one error, or nil when all passed.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return errors.New("preflight failed: " + strings.Join(parts, "; "))
}
