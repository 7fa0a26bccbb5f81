package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/seantiz/prism/internal/model"

	_ "modernc.org/sqlite"
)

const createGenerationsTable = `
CREATE TABLE IF NOT EXISTS generations (
    id           TEXT PRIMARY KEY,
    status       TEXT NOT NULL,
    prompt       TEXT NOT NULL,
    aspect_ratio TEXT,
    task_id      TEXT,
    url          TEXT,
    error        TEXT,
    duration_ms  INTEGER,
    created_at   DATETIME NOT NULL,
    finished_at  DATETIME
)`

// ErrNotFound is returned when a generation record is not found.
var ErrNotFound = errors.New("generation not found")

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createGenerationsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create generations table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateGeneration inserts a new generation record.
func (s *SQLiteStore) CreateGeneration(ctx context.Context, g *model.Generation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (
			id, status, prompt, aspect_ratio, task_id, url, error,
			duration_ms, created_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Status, g.Prompt, g.AspectRatio, g.TaskID, g.URL, g.Error,
		g.DurationMS, g.CreatedAt, g.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

// GetGeneration retrieves a generation record by ID.
func (s *SQLiteStore) GetGeneration(ctx context.Context, id string) (*model.Generation, error) {
	g := &model.Generation{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, status, prompt, aspect_ratio, task_id, url, error,
			duration_ms, created_at, finished_at
		FROM generations WHERE id = ?`, id,
	).Scan(
		&g.ID, &g.Status, &g.Prompt, &g.AspectRatio, &g.TaskID, &g.URL, &g.Error,
		&g.DurationMS, &g.CreatedAt, &g.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get generation: %w", err)
	}
	return g, nil
}

// ListGenerations returns a paginated list of generation records ordered by
// created_at DESC, along with the total count of all records.
func (s *SQLiteStore) ListGenerations(ctx context.Context, limit, offset int) ([]*model.Generation, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM generations").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count generations: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, status, prompt, aspect_ratio, task_id, url, error,
			duration_ms, created_at, finished_at
		FROM generations ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var generations []*model.Generation
	for rows.Next() {
		g := &model.Generation{}
		if err := rows.Scan(
			&g.ID, &g.Status, &g.Prompt, &g.AspectRatio, &g.TaskID, &g.URL, &g.Error,
			&g.DurationMS, &g.CreatedAt, &g.FinishedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan generation: %w", err)
		}
		generations = append(generations, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate generations: %w", err)
	}

	return generations, total, nil
}

// FinishGeneration records the terminal outcome of a generation: status,
// provider task id, result url, error text, and duration. finished_at is
// stamped here so callers cannot forget it.
func (s *SQLiteStore) FinishGeneration(ctx context.Context, g *model.Generation) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE generations SET status = ?, task_id = ?, url = ?, error = ?,
			duration_ms = ?, finished_at = ? WHERE id = ?`,
		g.Status, g.TaskID, g.URL, g.Error, g.DurationMS, now, g.ID,
	)
	if err != nil {
		return fmt.Errorf("finish generation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	g.FinishedAt = &now
	return nil
}

// GetGenerationStats computes aggregate statistics over the journal.
func (s *SQLiteStore) GetGenerationStats(ctx context.Context) (*GenerationStats, error) {
	stats := &GenerationStats{
		CountByStatus: make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM generations GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.CountByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COALESCE(AVG(duration_ms), 0) FROM generations WHERE duration_ms IS NOT NULL",
	).Scan(&stats.AvgDurationMS)
	if err != nil {
		return nil, fmt.Errorf("average duration: %w", err)
	}

	return stats, nil
}
