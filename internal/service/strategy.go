package service

import (
	"context"
	"time"

	"github.com/mirrorops/storesync-worker/internal/models"
)

// Strategy is the time-window policy used to fetch the remote feed.
type Strategy string

const (
	StrategyFull        Strategy = "full"
	StrategyRecent      Strategy = "recent"
	StrategyIncremental Strategy = "incremental"
)

const (
	// initialSyncDays bounds the first sync of a shop that has no completed
	// run to fall back on.
	initialSyncDays = 30

	// watermarkOverlap is subtracted from the last completed run's end time.
	// The overlap re-processes records updated around the previous run's
	// completion; idempotent upserts make the re-processing harmless.
	watermarkOverlap = 24 * time.Hour
)

// selectStrategy evaluates the option decision table top-down, first match
// wins: full sync, explicit recent window, incremental from the last
// completed run's watermark, then a bounded initial sync.
func (e *Engine[T]) selectStrategy(ctx context.Context, shop *models.Shop, opts Options) (Strategy, FeedFilter, error) {
	if opts.FullSync {
		return StrategyFull, FeedFilter{}, nil
	}

	if opts.RecentOnlyDays > 0 {
		after := time.Now().AddDate(0, 0, -opts.RecentOnlyDays)
		return StrategyRecent, FeedFilter{UpdatedAfter: &after}, nil
	}

	if opts.Incremental {
		last, err := e.runs.LastCompleted(ctx, e.adapter.Kind(), shop.ID)
		if err != nil {
			return "", FeedFilter{}, err
		}
		if last != nil && last.FinishedAt != nil {
			after := last.FinishedAt.Add(-watermarkOverlap)
			return StrategyIncremental, FeedFilter{UpdatedAfter: &after}, nil
		}
	}

	after := time.Now().AddDate(0, 0, -initialSyncDays)
	return StrategyRecent, FeedFilter{UpdatedAfter: &after}, nil
}
