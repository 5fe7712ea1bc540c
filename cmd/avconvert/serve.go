package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"avconverter/internal/daemon"
	"avconverter/internal/history"
	"avconverter/internal/logging"
	"avconverter/internal/queue"
)

const (
	serveLogPrefix  = "avconvert-serve"
	serveLogPointer = "avconvert-serve.log"
	servePIDFile    = "avconvert-serve.pid"
)

func newServeCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the read-only status API until interrupted",
		Long: `Serve binds the HTTP status API on paths.api_bind and holds the
instance lock so no batch conversion can run against the same state
directory. Stop it with SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeProcess(cmd.Context(), cmdCtx, cmd.OutOrStdout())
		},
	}
}

func runServeProcess(cmdCtx context.Context, cctx *commandContext, out io.Writer) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := cctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("%s-%s.log", serveLogPrefix, runID))

	console, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	fileHandler, err := logging.NewJSONFileHandler(logPath, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	logger := logging.TeeLogger(console, fileHandler)

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s link: %v\n", serveLogPointer, err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: serveLogPrefix + "-*.log", Exclude: []string{logPath}},
	)

	pidPath := filepath.Join(cfg.Paths.LogDir, servePIDFile)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	hist := history.NewStore(cfg.History.Path, cfg.History.Limit)

	d, err := daemon.New(cfg, store, hist, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("create server: %w", err)
	}
	// The daemon owns the store from here; Close releases both.
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	fmt.Fprintf(out, "Serving status API on http://%s\n", d.Addr())
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	<-signalCtx.Done()
	logger.Info("serve mode shutting down")
	return nil
}

// ensureCurrentLogPointer keeps a stable path pointing at the newest run
// log so tail -F works across restarts.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, serveLogPointer)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	// Symlinks may be unavailable on the filesystem; fall back to a hard link.
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
