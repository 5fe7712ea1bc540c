package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"avconverter/internal/catalog"
	"avconverter/internal/engine"
	"avconverter/internal/history"
	"avconverter/internal/logging"
	"avconverter/internal/media"
	"avconverter/internal/queue"
	"avconverter/internal/services"
	"avconverter/internal/xattrs"
)

func (o *Orchestrator) processItem(ctx context.Context, run *batchRun, item *queue.Item) {
	itemCtx := services.WithItemID(ctx, item.ID)
	itemCtx = services.WithRequestID(itemCtx, uuid.NewString())
	logger := logging.WithContext(itemCtx, o.logger)
	itemStart := time.Now()

	if ctx.Err() != nil {
		o.cancelItem(itemCtx, run, item, ctx.Err())
		return
	}

	if err := checkKinds(item.SourcePath, run.req.Options.TargetFormat); err != nil {
		o.failItem(itemCtx, run, item, err)
		return
	}

	outputPath := media.OutputPathFor(item.SourcePath, run.req.OutputDir, run.req.Options.TargetFormat)

	item.Status = queue.StatusConverting
	item.Engine = string(run.req.Engine)
	item.InitProgress("Converting", fmt.Sprintf("%s engine starting", run.req.Engine))
	if err := o.store.Update(itemCtx, item); err != nil {
		logger.Error("failed to persist converting transition", logging.Error(err))
	}
	logger.Info("item started",
		logging.String(logging.FieldEventType, "item_start"),
		logging.String("source_file", item.SourcePath),
		logging.String(logging.FieldEngine, item.Engine),
	)

	convErr := o.convertWithFallback(itemCtx, run, item, outputPath, logger)
	if convErr != nil {
		if services.FailureStatus(convErr) == queue.StatusCancelled {
			o.cancelItem(itemCtx, run, item, convErr)
			return
		}
		o.failItem(itemCtx, run, item, convErr)
		return
	}
	if ctx.Err() != nil {
		// The engine finished after cancellation; the result is ignored.
		o.cancelItem(itemCtx, run, item, ctx.Err())
		return
	}
	o.completeItem(itemCtx, run, item, outputPath, time.Since(itemStart))
}

// convertWithFallback runs the primary engine and, when the primary is native
// and its attempt fails for a reason other than cancellation, retries the same
// item once through the shell engine. Cloud and shell failures are terminal.
func (o *Orchestrator) convertWithFallback(ctx context.Context, run *batchRun, item *queue.Item, outputPath string, logger *slog.Logger) error {
	primary := run.req.Engine
	req := engine.Request{
		InputPath:  item.SourcePath,
		OutputPath: outputPath,
		Options:    run.req.Options,
	}
	progress := o.progressFunc(ctx, run, item)

	err := o.engines.converterFor(primary).Convert(services.WithEngine(ctx, string(primary)), req, progress)
	if err == nil || primary != engine.Native {
		return err
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return err
	}
	if o.engines.Shell == nil {
		return err
	}

	logger.Info("native engine failed, retrying via shell",
		logging.Args(logging.DecisionAttrs("engine_fallback", string(engine.Shell), strings.TrimSpace(err.Error())))...,
	)
	item.FallbackUsed = true
	item.Engine = string(engine.Shell)
	item.SetProgress("Converting", "retrying via shell engine", item.ProgressPercent)
	if updateErr := o.store.Update(ctx, item); updateErr != nil {
		logger.Error("failed to persist fallback transition", logging.Error(updateErr))
	}

	return o.engines.Shell.Convert(services.WithEngine(ctx, string(engine.Shell)), req, progress)
}

// progressFunc builds the engine callback for one item. Progress is clamped
// monotonic by the item model, persisted on every update, and logged through
// a sampler so transcode chatter does not flood the logs.
func (o *Orchestrator) progressFunc(ctx context.Context, run *batchRun, item *queue.Item) engine.ProgressFunc {
	logger := logging.WithContext(ctx, o.logger)
	sampler := logging.NewProgressSampler(10)
	return func(update engine.ProgressUpdate) {
		item.SetProgress(update.Stage, update.Message, update.Percent)
		if err := o.store.Update(ctx, item); err != nil {
			logger.Debug("failed to persist progress", logging.Error(err))
		}
		run.emitProgress(item, update)
		if sampler.ShouldLog(item.ProgressPercent, update.Stage) {
			logger.Info("conversion progress",
				logging.String(logging.FieldProgressStage, item.ProgressStage),
				logging.Float64(logging.FieldProgressPercent, item.ProgressPercent),
				logging.String(logging.FieldProgressMessage, item.ProgressMessage),
			)
		}
	}
}

func (o *Orchestrator) completeItem(ctx context.Context, run *batchRun, item *queue.Item, outputPath string, elapsed time.Duration) {
	persistCtx := context.WithoutCancel(ctx)
	logger := logging.WithContext(ctx, o.logger)

	item.SetCompleted(item.Engine, outputPath)
	if err := o.store.Update(persistCtx, item); err != nil {
		logger.Error("failed to persist completed item", logging.Error(err))
	}

	o.appendHistory(item, logger)
	o.applyOutputTags(run, item, logger)

	logger.Info("item completed",
		logging.String(logging.FieldEventType, "item_complete"),
		logging.String("output_file", outputPath),
		logging.String(logging.FieldEngine, item.Engine),
		logging.Bool("fallback_used", item.FallbackUsed),
		logging.Duration("item_duration", elapsed),
	)
	run.recordTerminal(item, nil)
}

func (o *Orchestrator) failItem(ctx context.Context, run *batchRun, item *queue.Item, convErr error) {
	persistCtx := context.WithoutCancel(ctx)
	logger := logging.WithContext(ctx, o.logger)

	message := strings.TrimSpace(convErr.Error())
	item.SetFailed(message)
	if err := o.store.Update(persistCtx, item); err != nil {
		logger.Error("failed to persist failed item", logging.Error(err))
	}

	logger.Error("item failed",
		logging.Error(convErr),
		logging.Alert("item_failure"),
		logging.String(logging.FieldEventType, "item_failed"),
		logging.String("source_file", item.SourcePath),
		logging.String(logging.FieldEngine, item.Engine),
		logging.Bool("fallback_used", item.FallbackUsed),
	)

	if o.notifier != nil {
		notifyErr := o.notifier.NotifyConversionFailed(persistCtx, filepath.Base(item.SourcePath), message)
		if notifyErr != nil {
			logger.Debug("failure notification failed", logging.Error(notifyErr))
		}
	}
	run.recordTerminal(item, convErr)
}

func (o *Orchestrator) cancelItem(ctx context.Context, run *batchRun, item *queue.Item, cause error) {
	persistCtx := context.WithoutCancel(ctx)
	logger := logging.WithContext(ctx, o.logger)

	item.SetCancelled()
	if err := o.store.Update(persistCtx, item); err != nil {
		logger.Error("failed to persist cancelled item", logging.Error(err))
	}
	logger.Info("item cancelled",
		logging.String(logging.FieldEventType, "item_cancelled"),
		logging.String("source_file", item.SourcePath),
	)

	if cause == nil {
		cause = context.Canceled
	}
	run.recordTerminal(item, cause)
}

// appendHistory records a completed conversion. A write failure is surfaced
// as a warning but never changes the item's outcome.
func (o *Orchestrator) appendHistory(item *queue.Item, logger *slog.Logger) {
	if o.history == nil {
		return
	}
	record := history.Record{
		FileName:  filepath.Base(item.SourcePath),
		OutputURL: item.OutputPath,
	}
	if item.CompletedAt != nil {
		record.Date = *item.CompletedAt
	}
	if err := o.history.Append(record); err != nil {
		logging.WarnWithContext(logger, "history append failed", "history_append_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history file permissions"),
			logging.String(logging.FieldImpact, "conversion succeeded but will not appear in history"),
		)
	}
}

// applyOutputTags writes best-effort extended attributes on the output file.
func (o *Orchestrator) applyOutputTags(run *batchRun, item *queue.Item, logger *slog.Logger) {
	tags := xattrs.Tags{
		Title:  run.req.Options.Title,
		Artist: run.req.Options.Artist,
		Album:  run.req.Options.Album,
		Source: item.SourcePath,
		Engine: item.Engine,
	}
	if err := xattrs.Apply(item.OutputPath, tags); err != nil {
		logger.Debug("output tagging skipped", logging.Error(err))
	}
}

// checkKinds rejects conversions no engine can perform. Synthesizing video
// from an audio-only source is not meaningful; extracting audio from video is.
func checkKinds(sourcePath, targetFormat string) error {
	sourceKind, ok := catalog.KindOfPath(sourcePath)
	if !ok {
		return nil
	}
	target, ok := catalog.Lookup(targetFormat)
	if !ok {
		return nil
	}
	if !catalog.CanConvert(sourceKind, target.Kind) {
		return services.Wrap(services.ErrUnsupportedConversion, "orchestrator", "classify",
			fmt.Sprintf("cannot produce %s video from audio-only source %s", target.Name, filepath.Base(sourcePath)), nil)
	}
	return nil
}
