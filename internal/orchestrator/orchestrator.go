package orchestrator

import (
	"fmt"
	"log/slog"

	"avconverter/internal/config"
	"avconverter/internal/history"
	"avconverter/internal/logging"
	"avconverter/internal/notifications"
	"avconverter/internal/queue"
)

// Orchestrator coordinates batch conversions across the configured engines.
type Orchestrator struct {
	cfg      *config.Config
	store    *queue.Store
	history  *history.Store
	logger   *slog.Logger
	notifier notifications.Service
	engines  EngineSet
	workers  int

	enginesSet bool
}

// Option configures optional Orchestrator behavior.
type Option func(*Orchestrator)

// WithEngines replaces the backend set, used by tests to install stubs.
func WithEngines(set EngineSet) Option {
	return func(o *Orchestrator) {
		o.engines = set
		o.enginesSet = true
	}
}

// WithNotifier replaces the notification service.
func WithNotifier(notifier notifications.Service) Option {
	return func(o *Orchestrator) {
		o.notifier = notifier
	}
}

// WithWorkers overrides the configured worker count.
func WithWorkers(workers int) Option {
	return func(o *Orchestrator) {
		if workers > 0 {
			o.workers = workers
		}
	}
}

// New constructs an orchestrator over the given stores. Engines default to
// the configuration-wired set and the notifier to the configured ntfy service.
func New(cfg *config.Config, store *queue.Store, hist *history.Store, logger *slog.Logger, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("orchestrator: config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("orchestrator: queue store is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	o := &Orchestrator{
		cfg:     cfg,
		store:   store,
		history: hist,
		logger:  logging.NewComponentLogger(logger, "orchestrator"),
		workers: cfg.Conversion.Workers,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers <= 0 {
		o.workers = 1
	}
	if o.notifier == nil {
		o.notifier = notifications.NewService(cfg)
	}
	if !o.enginesSet {
		set, err := DefaultEngines(cfg)
		if err != nil {
			return nil, err
		}
		o.engines = set
	}
	return o, nil
}
