package preflight

import (
	"context"

	"avconverter/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable readiness check for the given config.
// Checks gated by configuration (output directory, cloud API) run only when
// the corresponding feature is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if cfg.Paths.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	}

	if cfg.Cloud.BaseURL != "" {
		results = append(results, CheckCloudAPI(ctx, cfg.Cloud.BaseURL, cfg.Cloud.APIKey))
	}

	return results
}
