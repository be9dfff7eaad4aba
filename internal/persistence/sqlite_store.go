// Package persistence keeps a sqlite archive of finished batches so the
// history outlives restarts. Live batches stay in memory; only completed
// runs are written here.
package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tubedesk/tubedesk/internal/batch"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename
// (e.g. "001_init.sql" yields 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

// ArchiveBatch writes a finished batch and its items. Archiving the same
// batch twice overwrites the earlier row.
func (s *SQLiteStore) ArchiveBatch(ctx context.Context, snap batch.Snapshot, finishedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO batches
		(id, kind, success_count, total, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, string(snap.Kind), snap.Summary.SuccessCount, snap.Summary.Total,
		snap.CreatedAt.UTC(), finishedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert batch %s: %w", snap.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM batch_items WHERE batch_id = ?`, snap.ID); err != nil {
		return fmt.Errorf("clear items for %s: %w", snap.ID, err)
	}
	for i, item := range snap.Items {
		if _, err := tx.ExecContext(ctx, `INSERT INTO batch_items
			(batch_id, position, key, status, title, artifact, error, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.ID, i+1, item.Key, string(item.Status),
			item.Title, item.Artifact, item.Error, item.UpdatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert item %s/%s: %w", snap.ID, item.Key, err)
		}
	}

	return tx.Commit()
}

// ListArchived returns archived batches newest first, without items.
// limit <= 0 means no limit.
func (s *SQLiteStore) ListArchived(ctx context.Context, limit int) ([]ArchivedBatch, error) {
	query := `SELECT id, kind, success_count, total, created_at, finished_at
		FROM batches ORDER BY finished_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list archived batches: %w", err)
	}
	defer rows.Close()

	var result []ArchivedBatch
	for rows.Next() {
		var b ArchivedBatch
		var kind string
		if err := rows.Scan(&b.ID, &kind, &b.SuccessCount, &b.Total, &b.CreatedAt, &b.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan archived batch: %w", err)
		}
		b.Kind = batch.Kind(kind)
		result = append(result, b)
	}
	return result, rows.Err()
}

// GetArchived loads one archived batch with its items in batch order.
func (s *SQLiteStore) GetArchived(ctx context.Context, id string) (*ArchivedBatch, error) {
	var b ArchivedBatch
	var kind string
	err := s.db.QueryRowContext(ctx, `SELECT id, kind, success_count, total, created_at, finished_at
		FROM batches WHERE id = ?`, id).
		Scan(&b.ID, &kind, &b.SuccessCount, &b.Total, &b.CreatedAt, &b.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load archived batch %s: %w", id, err)
	}
	b.Kind = batch.Kind(kind)

	rows, err := s.db.QueryContext(ctx, `SELECT key, status, title, artifact, error, updated_at
		FROM batch_items WHERE batch_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load items for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item ArchivedItem
		var status string
		if err := rows.Scan(&item.Key, &status, &item.Title, &item.Artifact, &item.Error, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item for %s: %w", id, err)
		}
		item.Status = batch.Status(status)
		b.Items = append(b.Items, item)
	}
	return &b, rows.Err()
}

// PruneBefore deletes archived batches finished before cutoff and
// returns how many were removed.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM batch_items WHERE batch_id IN (SELECT id FROM batches WHERE finished_at < ?)`,
		cutoff.UTC(),
	); err != nil {
		return 0, fmt.Errorf("prune items: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE finished_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune batches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
