package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mirrorops/storesync-worker/internal/models"
)

type SyncRunRepository struct {
	db *sql.DB
}

func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Start creates a pending run record for one (entity kind, shop) pair
func (r *SyncRunRepository) Start(ctx context.Context, entityKind, shopID string) (*models.SyncRun, error) {
	run := &models.SyncRun{
		ID:         uuid.New().String(),
		EntityKind: entityKind,
		ShopID:     shopID,
		Status:     models.RunStatusPending,
		StartedAt:  time.Now(),
	}

	query := `
		INSERT INTO sync_run (id, entity_kind, shop_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.EntityKind,
		run.ShopID,
		run.Status,
		run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync run: %w", err)
	}

	return run, nil
}

// Finish moves a run to its terminal status and records end time, duration,
// and the result summary. Called exactly once per run.
func (r *SyncRunRepository) Finish(ctx context.Context, runID string, success bool, summary models.JSONB, lastError *string) error {
	status := models.RunStatusCompleted
	if !success {
		status = models.RunStatusFailed
	}

	query := `
		UPDATE sync_run
		SET status = $1,
		    finished_at = $2,
		    duration_ms = (EXTRACT(EPOCH FROM ($2::timestamptz - started_at)) * 1000)::bigint,
		    summary = $3,
		    last_error = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(ctx, query, status, time.Now(), summary, lastError, runID)
	if err != nil {
		return fmt.Errorf("failed to finish sync run: %w", err)
	}

	return nil
}

// LastCompleted returns the most recently finished completed run for the
// given (entity kind, shop) pair, or nil when no run has completed yet.
// Failed and pending runs never move the watermark.
func (r *SyncRunRepository) LastCompleted(ctx context.Context, entityKind, shopID string) (*models.SyncRun, error) {
	query := `
		SELECT id, entity_kind, shop_id, status, started_at,
		       finished_at, duration_ms, summary, last_error
		FROM sync_run
		WHERE entity_kind = $1 AND shop_id = $2 AND status = $3
		ORDER BY finished_at DESC
		LIMIT 1
	`

	run, err := r.scanRun(r.db.QueryRowContext(ctx, query, entityKind, shopID, models.RunStatusCompleted))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query last completed run: %w", err)
	}

	return run, nil
}

// GetByID retrieves a sync run by ID
func (r *SyncRunRepository) GetByID(ctx context.Context, runID string) (*models.SyncRun, error) {
	query := `
		SELECT id, entity_kind, shop_id, status, started_at,
		       finished_at, duration_ms, summary, last_error
		FROM sync_run
		WHERE id = $1
	`

	run, err := r.scanRun(r.db.QueryRowContext(ctx, query, runID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sync run not found")
		}
		return nil, fmt.Errorf("failed to get sync run: %w", err)
	}

	return run, nil
}

// RecentRuns retrieves the latest runs for an entity kind across all shops,
// newest first
func (r *SyncRunRepository) RecentRuns(ctx context.Context, entityKind string, limit int) ([]models.SyncRun, error) {
	query := `
		SELECT id, entity_kind, shop_id, status, started_at,
		       finished_at, duration_ms, summary, last_error
		FROM sync_run
		WHERE entity_kind = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, entityKind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *SyncRunRepository) scanRun(row rowScanner) (*models.SyncRun, error) {
	var run models.SyncRun
	err := row.Scan(
		&run.ID,
		&run.EntityKind,
		&run.ShopID,
		&run.Status,
		&run.StartedAt,
		&run.FinishedAt,
		&run.DurationMs,
		&run.Summary,
		&run.LastError,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
