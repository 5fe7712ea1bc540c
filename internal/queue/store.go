package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"avconverter/internal/config"
)

// Store manages batch persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the batch database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "batches.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// NewBatch inserts a batch row in the running state and returns it.
func (s *Store) NewBatch(ctx context.Context, engine, targetFormat, outputDir string) (*Batch, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO batches (id, engine, target_format, output_dir, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		engine,
		targetFormat,
		nullableString(outputDir),
		BatchRunning,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	return s.GetBatch(ctx, id)
}

// AddItem enqueues a pending item into an existing batch.
func (s *Store) AddItem(ctx context.Context, batchID, sourcePath, targetFormat string) (*Item, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversion_items (
            batch_id, source_path, target_format, status, created_at, updated_at,
            progress_stage, progress_percent, progress_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batchID,
		sourcePath,
		targetFormat,
		StatusPending,
		timestamp,
		timestamp,
		nil,
		0.0,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a batch item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM conversion_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetBatch fetches a batch by identifier.
func (s *Store) GetBatch(ctx context.Context, id string) (*Batch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return batch, nil
}

// LatestBatch returns the most recently created batch, or nil when none exist.
func (s *Store) LatestBatch(ctx context.Context) (*Batch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches ORDER BY created_at DESC LIMIT 1`)
	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest batch: %w", err)
	}
	return batch, nil
}

// Update persists changes to an existing batch item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE conversion_items
         SET source_path = ?, target_format = ?, status = ?, engine = ?,
             fallback_used = ?, output_path = ?, cloud_job_id = ?, error_message = ?,
             updated_at = ?, progress_stage = ?, progress_percent = ?, progress_message = ?,
             completed_at = ?
         WHERE id = ?`,
		item.SourcePath,
		item.TargetFormat,
		item.Status,
		nullableString(item.Engine),
		boolToInt(item.FallbackUsed),
		nullableString(item.OutputPath),
		nullableString(item.CloudJobID),
		nullableString(item.ErrorMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		nullableString(item.ProgressStage),
		item.ProgressPercent,
		nullableString(item.ProgressMessage),
		nullableTime(item.CompletedAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// UpdateBatch persists changes to a batch row.
func (s *Store) UpdateBatch(ctx context.Context, batch *Batch) error {
	if batch == nil {
		return errors.New("batch is nil")
	}
	batch.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE batches
         SET engine = ?, target_format = ?, output_dir = ?, status = ?, updated_at = ?, completed_at = ?
         WHERE id = ?`,
		batch.Engine,
		batch.TargetFormat,
		nullableString(batch.OutputDir),
		batch.Status,
		batch.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(batch.CompletedAt),
		batch.ID,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// ItemsForBatch returns a batch's items ordered by creation.
func (s *Store) ItemsForBatch(ctx context.Context, batchID string) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM conversion_items WHERE batch_id = ? ORDER BY id`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query batch items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// List returns items filtered by status set (or all items when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM conversion_items`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CloseInterrupted finalizes rows left behind by a run that never finished:
// items still marked converting become failed, items that never started
// become cancelled. Runs hold the instance lock, so at call time every
// non-terminal row belongs to a dead process and nothing will resume it.
func (s *Store) CloseInterrupted(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin close interrupted: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := tx.ExecContext(
		ctx,
		`UPDATE conversion_items
         SET status = ?, progress_stage = 'Interrupted', progress_message = NULL,
             error_message = 'interrupted before completion', updated_at = ?, completed_at = ?
         WHERE status = ?`,
		StatusFailed,
		now,
		now,
		StatusConverting,
	)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted items: %w", err)
	}
	failed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	res, err = tx.ExecContext(
		ctx,
		`UPDATE conversion_items
         SET status = ?, progress_stage = 'Cancelled', progress_message = 'run interrupted before start',
             updated_at = ?, completed_at = ?
         WHERE status = ?`,
		StatusCancelled,
		now,
		now,
		StatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("cancel never-started items: %w", err)
	}
	cancelled, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit close interrupted: %w", err)
	}
	return failed + cancelled, nil
}

// Stats returns a count of items grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM conversion_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("item stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// StatsForBatch returns a count of one batch's items grouped by status.
func (s *Store) StatsForBatch(ctx context.Context, batchID string) (map[Status]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1) FROM conversion_items WHERE batch_id = ? GROUP BY status`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("batch stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates item state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusConverting:
			health.Converting += count
		case StatusCompleted:
			health.Completed += count
		case StatusFailed:
			health.Failed += count
		case StatusCancelled:
			health.Cancelled += count
		}
	}
	return health, nil
}
