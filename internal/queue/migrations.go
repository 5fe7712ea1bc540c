package queue

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type migration struct {
	sequence int
	name     string
	script   string
}

// loadMigrations reads the embedded migration scripts ordered by their
// numeric prefix. File names follow NNNN_description.sql.
func loadMigrations() ([]migration, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	migrations := make([]migration, 0, len(names))
	for _, path := range names {
		base := strings.TrimSuffix(strings.TrimPrefix(path, "migrations/"), ".sql")
		prefix, _, found := strings.Cut(base, "_")
		if !found {
			return nil, fmt.Errorf("migration %s: name must be NNNN_description.sql", path)
		}
		sequence, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: non-numeric prefix %q", path, prefix)
		}
		data, err := migrationFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", path, err)
		}
		migrations = append(migrations, migration{sequence: sequence, name: base, script: string(data)})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].sequence < migrations[j].sequence })
	return migrations, nil
}

// applyMigrations brings the database schema up to date. Each script runs at
// most once; applied versions are recorded in schema_migrations.
func (s *Store) applyMigrations(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const ensureTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
        version TEXT PRIMARY KEY,
        applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
    )`
	if _, err := tx.ExecContext(ctx, ensureTable); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied int
		row := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.name)
		if err := row.Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", m.name, err)
		}
		if applied > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.script); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.name); err != nil {
			return fmt.Errorf("record migration %s: %w", m.name, err)
		}
	}

	return tx.Commit()
}
