package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names a directory whose matching files are subject to
// age-based pruning. Exclude lists paths that must survive regardless of age,
// such as the log file of the run doing the pruning.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// CleanupOldLogs deletes files matching the targets whose modification time
// is more than retentionDays in the past. retentionDays <= 0 disables
// pruning. Failures are logged and skipped so a stray permission problem
// never blocks startup.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) {
	if retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	keep := make(map[string]struct{})
	for _, target := range targets {
		for _, path := range target.Exclude {
			trimmed := strings.TrimSpace(path)
			if trimmed == "" {
				continue
			}
			if abs, err := filepath.Abs(trimmed); err == nil {
				keep[abs] = struct{}{}
			}
		}
	}

	for _, target := range targets {
		pruneTarget(logger, target, cutoff, keep)
	}
}

func pruneTarget(logger *slog.Logger, target RetentionTarget, cutoff time.Time, keep map[string]struct{}) {
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	pattern := strings.TrimSpace(target.Pattern)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern != "" {
			matched, err := filepath.Match(pattern, entry.Name())
			if err != nil || !matched {
				continue
			}
		}
		path := filepath.Join(dir, entry.Name())
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if _, skip := keep[path]; skip {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		if logger != nil {
			logger.Info("log pruned",
				String("path", path),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
}
