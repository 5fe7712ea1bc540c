package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"avconverter/internal/engine"
	"avconverter/internal/logging"
	"avconverter/internal/queue"
	"avconverter/internal/services"
)

// RunBatch converts every input in the request and blocks until all items are
// terminal. It returns an error only when the batch cannot start; per-item
// failures are reported through events and the summary instead. The summary
// is non-nil whenever the error is nil, including for cancelled runs.
func (o *Orchestrator) RunBatch(ctx context.Context, req BatchRequest) (*Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(req.Paths) == 0 {
		return nil, services.Wrap(services.ErrValidation, "orchestrator", "run", "batch has no input files", nil)
	}
	req.Options = req.Options.Normalized()
	if err := req.Options.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "orchestrator", "options", err.Error(), nil)
	}
	if _, known := engine.ParseType(string(req.Engine)); !known {
		return nil, services.Wrap(services.ErrValidation, "orchestrator", "engine", fmt.Sprintf("unknown engine %q", req.Engine), nil)
	}
	if o.engines.converterFor(req.Engine) == nil {
		return nil, services.Wrap(services.ErrConfiguration, "orchestrator", "engine", fmt.Sprintf("%s engine is not configured", req.Engine), nil)
	}
	if dir := strings.TrimSpace(req.OutputDir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrValidation, "orchestrator", "output dir", "create output directory", err)
		}
	}

	run, err := o.newRun(ctx, &req)
	if err != nil {
		return nil, err
	}

	o.logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.String(logging.FieldBatchID, run.batch.ID),
		logging.String(logging.FieldEngine, string(req.Engine)),
		logging.String("target_format", req.Options.TargetFormat),
		logging.Int("item_count", len(run.items)),
	)
	o.notifyBatchStarted(ctx, run)

	o.dispatch(ctx, run)

	summary := run.summarize()
	o.finalizeBatch(ctx, run, summary)
	o.notifyBatchCompleted(ctx, summary)
	return summary, nil
}

type batchRun struct {
	req   *BatchRequest
	batch *queue.Batch
	items []*queue.Item
	start time.Time

	// mu serializes terminal accounting and every caller-facing callback.
	mu        sync.Mutex
	completed int
	succeeded int
	failed    int
	cancelled int
}

func (o *Orchestrator) newRun(ctx context.Context, req *BatchRequest) (*batchRun, error) {
	batch, err := o.store.NewBatch(ctx, string(req.Engine), req.Options.TargetFormat, req.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	items := make([]*queue.Item, 0, len(req.Paths))
	for _, path := range req.Paths {
		item, err := o.store.AddItem(ctx, batch.ID, path, req.Options.TargetFormat)
		if err != nil {
			return nil, fmt.Errorf("enqueue %s: %w", path, err)
		}
		items = append(items, item)
	}

	return &batchRun{req: req, batch: batch, items: items, start: time.Now()}, nil
}

// dispatch feeds every item through the worker pool and waits for all
// terminal events. Workers drain the channel unconditionally; cancellation is
// observed per item so each input still produces exactly one event.
func (o *Orchestrator) dispatch(ctx context.Context, r *batchRun) {
	workers := o.workers
	if workers > len(r.items) {
		workers = len(r.items)
	}

	jobs := make(chan *queue.Item)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				o.processItem(ctx, r, item)
			}
		}()
	}

	for _, item := range r.items {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
}

func (r *batchRun) recordTerminal(item *queue.Item, convErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completed++
	switch item.Status {
	case queue.StatusCompleted:
		r.succeeded++
	case queue.StatusCancelled:
		r.cancelled++
	default:
		r.failed++
	}

	if r.req.OnEvent != nil {
		r.req.OnEvent(ItemEvent{
			ItemID:        item.ID,
			Path:          item.SourcePath,
			Status:        item.Status,
			Engine:        item.Engine,
			FallbackUsed:  item.FallbackUsed,
			OutputPath:    item.OutputPath,
			Err:           convErr,
			BatchProgress: float64(r.completed) / float64(len(r.items)),
		})
	}
}

func (r *batchRun) emitProgress(item *queue.Item, update engine.ProgressUpdate) {
	if r.req.OnProgress == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.req.OnProgress(ItemProgress{
		ItemID:  item.ID,
		Path:    item.SourcePath,
		Stage:   update.Stage,
		Percent: item.ProgressPercent,
		Message: update.Message,
	})
}

func (r *batchRun) summarize() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &Summary{
		BatchID:   r.batch.ID,
		Total:     len(r.items),
		Succeeded: r.succeeded,
		Failed:    r.failed,
		Cancelled: r.cancelled,
		Duration:  time.Since(r.start),
	}
}

// finalizeBatch persists the aggregate outcome. The write uses a detached
// context so a cancelled batch still records its terminal status.
func (o *Orchestrator) finalizeBatch(ctx context.Context, run *batchRun, summary *Summary) {
	persistCtx := context.WithoutCancel(ctx)
	now := time.Now().UTC()
	run.batch.Status = summary.Status()
	run.batch.CompletedAt = &now
	if err := o.store.UpdateBatch(persistCtx, run.batch); err != nil {
		o.logger.Error("failed to persist batch outcome",
			logging.Error(err),
			logging.String(logging.FieldEventType, "batch_persist_failed"),
			logging.String(logging.FieldBatchID, run.batch.ID),
		)
	}

	o.logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.String(logging.FieldBatchID, run.batch.ID),
		logging.String("batch_status", string(run.batch.Status)),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("cancelled", summary.Cancelled),
		logging.Duration("batch_duration", summary.Duration),
	)
}

func (o *Orchestrator) notifyBatchStarted(ctx context.Context, run *batchRun) {
	if o.notifier == nil {
		return
	}
	err := o.notifier.NotifyBatchStarted(ctx, len(run.items), run.req.Options.TargetFormat, string(run.req.Engine))
	if err != nil {
		o.logger.Debug("batch start notification failed", logging.Error(err))
	}
}

func (o *Orchestrator) notifyBatchCompleted(ctx context.Context, summary *Summary) {
	if o.notifier == nil {
		return
	}
	// Completion events still fire for cancelled batches.
	notifyCtx := context.WithoutCancel(ctx)
	err := o.notifier.NotifyBatchCompleted(notifyCtx, summary.Succeeded, summary.Failed, summary.Duration)
	if err != nil {
		o.logger.Debug("batch completion notification failed", logging.Error(err))
	}
}
