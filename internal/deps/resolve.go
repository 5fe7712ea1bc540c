package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Resolve locates an external binary on the local system.
//
// Path-qualified commands are checked directly. Bare names are searched in the
// provided well-known install directories first so a Homebrew or MacPorts
// install is found even when the invoking environment carries a minimal PATH,
// then resolution falls back to a regular PATH lookup.
func Resolve(command string, searchPaths []string) (string, error) {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return "", fmt.Errorf("command not configured")
	}

	if strings.ContainsRune(cmd, '/') || strings.ContainsRune(cmd, os.PathSeparator) {
		if info, err := os.Stat(cmd); err == nil && isExecutable(info) {
			return cmd, nil
		}
		return "", fmt.Errorf("binary %q not found", cmd)
	}

	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, cmd)
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate, nil
		}
	}

	if resolved, err := exec.LookPath(cmd); err == nil {
		return resolved, nil
	}

	return "", fmt.Errorf("binary %q not found in install paths or PATH", cmd)
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
