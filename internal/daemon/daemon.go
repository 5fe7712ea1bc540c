package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"avconverter/internal/config"
	"avconverter/internal/history"
	"avconverter/internal/logging"
	"avconverter/internal/queue"
)

// Daemon serves the read-only status API over one state directory and
// enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *queue.Store
	history *history.Store

	lock *InstanceLock
	api  *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Address      string
	QueueDBPath  string
	LockFilePath string
	QueueStats   map[queue.Status]int
	LatestBatch  *queue.Batch
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, hist *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || hist == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, history, and logger")
	}

	return &Daemon{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "daemon"),
		store:   store,
		history: hist,
		lock:    NewInstanceLock(cfg),
	}, nil
}

// Start acquires the instance lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.lock.Acquire(); err != nil {
		return err
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	srv, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		d.teardown()
		return err
	}
	d.api = srv
	if err := d.api.start(d.ctx); err != nil {
		d.teardown()
		return err
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lock.Path()),
		logging.String("address", d.api.addr()),
	)
	return nil
}

func (d *Daemon) teardown() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
	d.api = nil
	_ = d.lock.Release()
}

// Stop shuts down the API server and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.api = nil
	if err := d.lock.Release(); err != nil {
		d.logger.Warn("failed to release instance lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the bound API address, empty until Start succeeds.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// History exposes the completed-conversion log for API handlers.
func (d *Daemon) History() *history.Store {
	return d.history
}

// Status returns the current daemon runtime snapshot.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	stats, err := d.store.Stats(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("queue stats: %w", err)
	}
	latest, err := d.store.LatestBatch(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("latest batch: %w", err)
	}

	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Address:      d.Addr(),
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lock.Path(),
		QueueStats:   stats,
		LatestBatch:  latest,
	}, nil
}
