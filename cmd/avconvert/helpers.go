package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"avconverter/internal/catalog"
	"avconverter/internal/config"
)

// expandInputPaths resolves convert arguments into concrete media files.
// Directory arguments contribute their immediate children with recognized
// media extensions; explicit file arguments pass through untouched so the
// batch can report a precise error for an unsupported file.
func expandInputPaths(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", arg, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			inputs = append(inputs, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", path, err)
		}
		found := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			child := filepath.Join(path, entry.Name())
			if _, ok := catalog.KindOfPath(child); !ok {
				continue
			}
			inputs = append(inputs, child)
			found++
		}
		if found == 0 {
			return nil, fmt.Errorf("no media files found in %s", path)
		}
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input files given")
	}
	return inputs, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
