package preflight

import (
	"context"

	"minutes/internal/config"
)

// minFreeMB is the free space below which the data directory check fails.
const minFreeMB = 100

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional"`
	Detail   string `json:"detail,omitempty"`
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckOllama(ctx, cfg.Ollama),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Reports directory", cfg.Paths.ReportsDir),
		CheckDirectoryAccess("Audio temp directory", cfg.Paths.AudioTempDir),
		CheckDiskSpace("Free space", cfg.Paths.DataDir, minFreeMB),
	}
	if cfg.Prompt.TemplatePath != "" {
		results = append(results, CheckPromptTemplate(cfg.Prompt.TemplatePath))
	}

	for _, status := range CheckBinaries(TranscriptionRequirements(cfg)) {
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   status.summary(),
		})
	}
	return results
}

// Failed reports whether any required check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
