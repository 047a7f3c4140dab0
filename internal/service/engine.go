package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mirrorops/storesync-worker/internal/metrics"
	"github.com/mirrorops/storesync-worker/internal/models"
)

// EntityAdapter describes one mirrored entity kind to the engine: how to
// fetch its feed pages, snapshot persisted state, diff two records, and
// apply each reconciliation decision.
type EntityAdapter[T Record] interface {
	Kind() string
	DefaultPageSize() int
	FetchPage(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[T], error)
	ExistingByIDs(ctx context.Context, shopID string, ids []string) (map[string]T, error)
	Immutable(existing, incoming T) bool
	Changed(existing, incoming T) bool
	Create(ctx context.Context, rec T) error
	Replace(ctx context.Context, rec T) error
	TouchSynced(ctx context.Context, shopID, id string) error
}

// RunTracker records run lifecycle and serves the last-completed-run
// watermark for incremental strategy selection.
type RunTracker interface {
	Start(ctx context.Context, entityKind, shopID string) (*models.SyncRun, error)
	Finish(ctx context.Context, runID string, success bool, summary models.JSONB, lastError *string) error
	LastCompleted(ctx context.Context, entityKind, shopID string) (*models.SyncRun, error)
}

// EngineConfig tunes the batch writer.
type EngineConfig struct {
	WriteBatchSize   int           // records per write batch
	BatchConcurrency int           // batches written concurrently per wave
	InterBatchPause  time.Duration // pause between waves, bounds storage connection usage
}

const (
	defaultWriteBatchSize   = 10
	defaultBatchConcurrency = 3
	defaultInterBatchPause  = 500 * time.Millisecond
)

func (c EngineConfig) withDefaults() EngineConfig {
	if c.WriteBatchSize <= 0 {
		c.WriteBatchSize = defaultWriteBatchSize
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = defaultBatchConcurrency
	}
	if c.InterBatchPause <= 0 {
		c.InterBatchPause = defaultInterBatchPause
	}
	return c
}

// RunResult summarizes one run for one (entity kind, shop) pair.
type RunResult struct {
	RunID    string
	Kind     string
	ShopID   string
	Strategy Strategy
	Fetched  int
	Counts   WriteCounts
}

// Engine is the sync orchestrator for one entity kind: it selects a fetch
// strategy, drains the remote feed page by page, hands the accumulated
// records to the batch writer, and tracks the run start to finish.
type Engine[T Record] struct {
	adapter EntityAdapter[T]
	runs    RunTracker
	metrics *metrics.SyncMetrics
	cfg     EngineConfig
}

func NewEngine[T Record](adapter EntityAdapter[T], runs RunTracker, m *metrics.SyncMetrics, cfg EngineConfig) *Engine[T] {
	return &Engine[T]{
		adapter: adapter,
		runs:    runs,
		metrics: m,
		cfg:     cfg.withDefaults(),
	}
}

// Kind returns the entity kind this engine syncs
func (e *Engine[T]) Kind() string {
	return e.adapter.Kind()
}

// SyncShop executes one sync run for one shop. The run record always reaches
// a terminal status, completed or failed, even when the run errors mid-way.
func (e *Engine[T]) SyncShop(ctx context.Context, shop *models.Shop, opts Options) (*RunResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sync options: %w", err)
	}

	kind := e.adapter.Kind()
	run, err := e.runs.Start(ctx, kind, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to start sync run: %w", err)
	}

	res := &RunResult{RunID: run.ID, Kind: kind, ShopID: shop.ID}
	var runErr error
	defer func() {
		e.finishRun(ctx, run, res, runErr)
	}()

	runErr = e.syncShop(ctx, shop, opts, res)
	if runErr != nil {
		return res, runErr
	}
	return res, nil
}

func (e *Engine[T]) syncShop(ctx context.Context, shop *models.Shop, opts Options, res *RunResult) error {
	strategy, filter, err := e.selectStrategy(ctx, shop, opts)
	if err != nil {
		return fmt.Errorf("failed to select fetch strategy: %w", err)
	}
	res.Strategy = strategy

	log.Printf("Syncing %ss for shop %s (strategy: %s)", e.adapter.Kind(), shop.Domain, strategy)

	records, err := e.fetchAll(ctx, shop, filter, opts)
	if err != nil {
		return fmt.Errorf("failed to fetch %ss: %w", e.adapter.Kind(), err)
	}
	res.Fetched = len(records)

	if len(records) == 0 {
		log.Printf("No %ss to sync for shop %s", e.adapter.Kind(), shop.Domain)
		return nil
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.RecordID())
	}

	existing, err := e.adapter.ExistingByIDs(ctx, shop.ID, ids)
	if err != nil {
		return fmt.Errorf("failed to load existing %ss: %w", e.adapter.Kind(), err)
	}

	counts, err := e.persistAll(ctx, shop.ID, records, existing)
	res.Counts = counts
	if err != nil {
		return fmt.Errorf("persist interrupted after partial write: %w", err)
	}

	log.Printf("Synced %d %ss for shop %s (created: %d, updated: %d, unchanged: %d, errors: %d)",
		res.Fetched, e.adapter.Kind(), shop.Domain,
		res.Counts.Created, res.Counts.Updated, res.Counts.Unchanged, res.Counts.Errors)

	return nil
}

// fetchAll drains the feed page by page. When RecordLimit is reached the
// remaining pages are deliberately not fetched; that is a partial-fetch
// policy, not an error.
func (e *Engine[T]) fetchAll(ctx context.Context, shop *models.Shop, filter FeedFilter, opts Options) ([]T, error) {
	pageSize := opts.BatchSize
	if pageSize == 0 {
		pageSize = e.adapter.DefaultPageSize()
	}

	var items []T
	cursor := ""
	for {
		size := pageSize
		if opts.RecordLimit > 0 {
			remaining := opts.RecordLimit - len(items)
			if remaining <= 0 {
				break
			}
			if remaining < size {
				size = remaining
			}
		}

		page, err := e.adapter.FetchPage(ctx, shop, filter, cursor, size)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		if opts.RecordLimit > 0 && len(items) >= opts.RecordLimit {
			items = items[:opts.RecordLimit]
			break
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return items, nil
}

// finishRun moves the run record to its terminal status. Called exactly once
// per run from a deferred path so that even a mid-run failure leaves a
// terminal (failed) run record behind.
func (e *Engine[T]) finishRun(ctx context.Context, run *models.SyncRun, res *RunResult, runErr error) {
	// The cancellation that failed the run must not also suppress the
	// terminal status write, or the run would stay pending forever.
	ctx = context.WithoutCancel(ctx)

	summary := models.JSONB{
		"strategy":  string(res.Strategy),
		"fetched":   res.Fetched,
		"created":   res.Counts.Created,
		"updated":   res.Counts.Updated,
		"unchanged": res.Counts.Unchanged,
		"errors":    res.Counts.Errors,
	}

	var errMsg *string
	if runErr != nil {
		s := runErr.Error()
		errMsg = &s
	}

	if err := e.runs.Finish(ctx, run.ID, runErr == nil, summary, errMsg); err != nil {
		log.Printf("Failed to finish sync run %s: %v", run.ID, err)
	}

	if e.metrics != nil {
		status := "completed"
		if runErr != nil {
			status = "failed"
		}
		kind := e.adapter.Kind()
		e.metrics.RunsTotal.WithLabelValues(kind, status).Inc()
		e.metrics.RunDuration.WithLabelValues(kind).Observe(time.Since(run.StartedAt).Seconds())
		e.metrics.RecordsTotal.WithLabelValues(kind, "created").Add(float64(res.Counts.Created))
		e.metrics.RecordsTotal.WithLabelValues(kind, "updated").Add(float64(res.Counts.Updated))
		e.metrics.RecordsTotal.WithLabelValues(kind, "unchanged").Add(float64(res.Counts.Unchanged))
		e.metrics.RecordsTotal.WithLabelValues(kind, "error").Add(float64(res.Counts.Errors))
	}
}
