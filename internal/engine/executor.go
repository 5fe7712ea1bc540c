package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// stderrTailLines bounds how much diagnostic output an ExitError retains.
const stderrTailLines = 20

// Executor runs an external binary and forwards its output line by line.
// Both stdout and stderr are forwarded through onLine because the
// transcoding tools write progress to stderr.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// ExitError reports a tool that started but exited non-zero. Stderr holds
// the tail of the diagnostic output for failure messages.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("exited with status %d", e.Code)
	}
	return fmt.Sprintf("exited with status %d: %s", e.Code, e.Stderr)
}

// DefaultExecutor returns the Executor used outside of tests.
func DefaultExecutor() Executor {
	return commandExecutor{}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	tail := newLineTail(stderrTailLines)
	var forwardMu sync.Mutex
	forward := func(line string) {
		if onLine == nil {
			return
		}
		forwardMu.Lock()
		defer forwardMu.Unlock()
		onLine(line)
	}

	scan := func(r io.Reader, record bool) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(scanStatusLines)
		for scanner.Scan() {
			line := scanner.Text()
			if record {
				tail.add(line)
			}
			forward(line)
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout, false)
	go scan(stderr, true)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode(), Stderr: tail.String()}
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

// scanStatusLines splits on \n or \r. The transcoding tools rewrite their
// status line in place with bare carriage returns, which the default
// line splitter never surfaces until the process exits.
func scanStatusLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// lineTail keeps the last n non-empty lines written to it.
type lineTail struct {
	limit int
	lines []string
}

func newLineTail(limit int) *lineTail {
	return &lineTail{limit: limit}
}

func (t *lineTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *lineTail) String() string {
	return strings.Join(t.lines, "\n")
}
