package queue_test

import (
	"context"
	"testing"
	"time"

	"avconverter/internal/queue"
	"avconverter/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	batch, err := store.NewBatch(ctx, "shell", "mp3", "")
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	if batch.ID == "" {
		t.Fatal("expected batch ID to be assigned")
	}
	if batch.Status != queue.BatchRunning {
		t.Fatalf("expected running batch, got %s", batch.Status)
	}

	item, err := store.AddItem(ctx, batch.ID, "/media/song.wav", "mp3")
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending item, got %s", item.Status)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.SourcePath != "/media/song.wav" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
	if fetched.BatchID != batch.ID {
		t.Fatalf("expected batch id %s, got %s", batch.ID, fetched.BatchID)
	}

	fetchedBatch, err := store.GetBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("GetBatch failed: %v", err)
	}
	if fetchedBatch == nil || fetchedBatch.TargetFormat != "mp3" {
		t.Fatalf("unexpected fetched batch: %#v", fetchedBatch)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	item, err := store.GetByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil for missing item, got %#v", item)
	}
}

func TestUpdateRoundTripsItemFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	batch := testsupport.NewBatch(t, store, "cloud", "mp4", "/out")
	item := testsupport.NewItem(t, store, batch.ID, "/media/clip.mov", "mp4")

	item.Status = queue.StatusConverting
	item.Engine = "cloud"
	item.FallbackUsed = true
	item.CloudJobID = "job-abc123"
	item.ProgressStage = "Converting"
	item.ProgressPercent = 55.5
	item.ProgressMessage = "Waiting for cloud job"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusConverting {
		t.Fatalf("expected converting status, got %s", fetched.Status)
	}
	if fetched.Engine != "cloud" || !fetched.FallbackUsed {
		t.Fatalf("expected engine fields persisted, got engine=%q fallback=%v", fetched.Engine, fetched.FallbackUsed)
	}
	if fetched.CloudJobID != "job-abc123" {
		t.Fatalf("expected cloud job id persisted, got %q", fetched.CloudJobID)
	}
	if fetched.ProgressPercent != 55.5 || fetched.ProgressStage != "Converting" {
		t.Fatalf("expected progress persisted, got %f %q", fetched.ProgressPercent, fetched.ProgressStage)
	}
	if fetched.CompletedAt != nil {
		t.Fatalf("expected no completion time yet, got %v", fetched.CompletedAt)
	}

	fetched.SetCompleted("cloud", "/out/clip.mp4")
	if err := store.Update(ctx, fetched); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	done, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if done.Status != queue.StatusCompleted || done.OutputPath != "/out/clip.mp4" {
		t.Fatalf("expected completed item, got %#v", done)
	}
	if done.CompletedAt == nil {
		t.Fatal("expected completion time recorded")
	}
}

func TestListSupportsStatusFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	batch := testsupport.NewBatch(t, store, "shell", "flac", "")
	a := testsupport.NewItem(t, store, batch.ID, "/media/a.wav", "flac")
	b := testsupport.NewItem(t, store, batch.ID, "/media/b.wav", "flac")
	c := testsupport.NewItem(t, store, batch.ID, "/media/c.wav", "flac")

	b.SetCompleted("shell", "/media/b.flac")
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	c.SetFailed("boom")
	if err := store.Update(ctx, c); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != a.ID || items[1].ID != b.ID || items[2].ID != c.ID {
		t.Fatalf("expected order A,B,C, got IDs %d,%d,%d", items[0].ID, items[1].ID, items[2].ID)
	}

	filtered, err := store.List(ctx, queue.StatusCompleted, queue.StatusFailed)
	if err != nil {
		t.Fatalf("Filtered list failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 items, got %d", len(filtered))
	}
	if filtered[0].ID != b.ID || filtered[1].ID != c.ID {
		t.Fatalf("unexpected filtered order: got %d,%d", filtered[0].ID, filtered[1].ID)
	}
}

func TestCloseInterruptedFinalizesCrashLeftovers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	batch := testsupport.NewBatch(t, store, "shell", "mp3", "")
	stuck := testsupport.NewItem(t, store, batch.ID, "/media/stuck.wav", "mp3")
	waiting := testsupport.NewItem(t, store, batch.ID, "/media/waiting.wav", "mp3")
	done := testsupport.NewItem(t, store, batch.ID, "/media/done.wav", "mp3")

	stuck.Status = queue.StatusConverting
	stuck.ProgressStage = "Converting"
	stuck.ProgressPercent = 40
	if err := store.Update(ctx, stuck); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	done.SetCompleted("shell", "/media/done.mp3")
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	closed, err := store.CloseInterrupted(ctx)
	if err != nil {
		t.Fatalf("CloseInterrupted failed: %v", err)
	}
	if closed != 2 {
		t.Fatalf("expected 2 items closed, got %d", closed)
	}

	failed, err := store.GetByID(ctx, stuck.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if failed.Status != queue.StatusFailed {
		t.Fatalf("expected interrupted item failed, got %s", failed.Status)
	}
	if failed.ErrorMessage == "" || failed.CompletedAt == nil {
		t.Fatalf("expected failure detail recorded, got %#v", failed)
	}

	cancelled, err := store.GetByID(ctx, waiting.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if cancelled.Status != queue.StatusCancelled {
		t.Fatalf("expected never-started item cancelled, got %s", cancelled.Status)
	}
	if cancelled.CompletedAt == nil {
		t.Fatal("expected cancellation to record completion time")
	}

	untouched, err := store.GetByID(ctx, done.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.Status != queue.StatusCompleted {
		t.Fatalf("expected completed item untouched, got %s", untouched.Status)
	}

	again, err := store.CloseInterrupted(ctx)
	if err != nil {
		t.Fatalf("CloseInterrupted failed: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected idempotent close, got %d", again)
	}
}

func TestLatestBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	none, err := store.LatestBatch(ctx)
	if err != nil {
		t.Fatalf("LatestBatch failed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil without batches, got %#v", none)
	}

	testsupport.NewBatch(t, store, "shell", "mp3", "")
	time.Sleep(10 * time.Millisecond)
	second := testsupport.NewBatch(t, store, "shell", "flac", "")

	latest, err := store.LatestBatch(ctx)
	if err != nil {
		t.Fatalf("LatestBatch failed: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Fatalf("expected latest batch %s, got %#v", second.ID, latest)
	}
}

func TestBatchUpdateRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	batch := testsupport.NewBatch(t, store, "shell", "webm", "/converted")

	now := time.Now().UTC()
	batch.Status = queue.BatchCompletedWithErrors
	batch.CompletedAt = &now
	if err := store.UpdateBatch(ctx, batch); err != nil {
		t.Fatalf("UpdateBatch failed: %v", err)
	}

	fetched, err := store.GetBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("GetBatch failed: %v", err)
	}
	if fetched.Status != queue.BatchCompletedWithErrors {
		t.Fatalf("expected completed_with_errors, got %s", fetched.Status)
	}
	if fetched.OutputDir != "/converted" {
		t.Fatalf("expected output dir persisted, got %q", fetched.OutputDir)
	}
	if fetched.CompletedAt == nil {
		t.Fatal("expected completion time persisted")
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	batch := testsupport.NewBatch(t, store, "shell", "mp3", "")
	a := testsupport.NewItem(t, store, batch.ID, "/media/a.wav", "mp3")
	testsupport.NewItem(t, store, batch.ID, "/media/b.wav", "mp3")
	c := testsupport.NewItem(t, store, batch.ID, "/media/c.wav", "mp3")

	a.SetCompleted("shell", "/media/a.mp3")
	if err := store.Update(ctx, a); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	c.SetFailed("encoder exploded")
	if err := store.Update(ctx, c); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stats, err := store.StatsForBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("StatsForBatch failed: %v", err)
	}
	if stats[queue.StatusPending] != 1 || stats[queue.StatusCompleted] != 1 || stats[queue.StatusFailed] != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 3 || health.Pending != 1 || health.Completed != 1 || health.Failed != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}
