package preflight

import (
	"context"

	"mangareel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for cfg. Tool availability is
// reported separately by CheckSystemDeps.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	return []Result{
		CheckReadableDirectory("Source directory", cfg.Paths.SourceDir),
		CheckCreatable("Processed directory", cfg.Paths.ProcessedDir),
		CheckReadableFile("Narration script", cfg.Paths.ScriptFile),
		CheckCreatable("Output directory", dirOf(cfg.Paths.FinalVideo)),
		CheckCreatable("Work directory", cfg.Paths.WorkDir),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
