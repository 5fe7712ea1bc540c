package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"avconverter/internal/config"
	"avconverter/internal/deps"
)

// CheckCloudAPI verifies that the remote conversion API is reachable and the
// key is accepted. A single request with a short timeout; no retries.
func CheckCloudAPI(ctx context.Context, baseURL, apiKey string) Result {
	const name = "Cloud API"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/v1/process", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(apiKey))

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		// Any HTTP response proves the endpoint is up; the bare collection
		// path is allowed to answer 404.
		return Result{Name: name, Passed: true, Detail: "API reachable"}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the converter relies on.
// Both the doctor and status commands use this so the requirements list
// lives in one place.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	searchPaths := cfg.ToolSearchPaths()
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for the shell engine and native fallback",
			SearchPaths: searchPaths,
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Enables fractional progress from duration probing",
			Optional:    true,
			SearchPaths: searchPaths,
		},
		{
			Name:        "afconvert",
			Command:     cfg.AfconvertBinary(),
			Description: "Required for the native engine (macOS audio export)",
			Optional:    true,
			SearchPaths: searchPaths,
		},
	}
	return deps.CheckBinaries(requirements)
}
