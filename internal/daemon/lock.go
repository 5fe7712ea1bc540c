package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"avconverter/internal/config"
)

// LockFileName is the flock target inside the state directory.
const LockFileName = "avconverter.lock"

// InstanceLock serializes access to one state directory across processes.
// Batch runs and serve mode both take it, so two invocations never write the
// same queue database concurrently.
type InstanceLock struct {
	path string
	fl   *flock.Flock
}

// NewInstanceLock builds the lock for the configured state directory.
func NewInstanceLock(cfg *config.Config) *InstanceLock {
	path := filepath.Join(cfg.Paths.StateDir, LockFileName)
	return &InstanceLock{path: path, fl: flock.New(path)}
}

// Path returns the lock file location.
func (l *InstanceLock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking and reports a held lock as an
// error naming the contended state directory.
func (l *InstanceLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another avconvert process is using %s", filepath.Dir(l.path))
	}
	return nil
}

// Release returns the lock. Releasing an unheld lock is a no-op.
func (l *InstanceLock) Release() error {
	return l.fl.Unlock()
}
