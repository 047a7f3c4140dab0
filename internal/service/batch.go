package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// WriteCounts aggregates reconciliation outcomes across all batches of a run.
type WriteCounts struct {
	Created   int
	Updated   int
	Unchanged int // skip-unchanged plus skip-immutable
	Errors    int
}

func (c *WriteCounts) add(o WriteCounts) {
	c.Created += o.Created
	c.Updated += o.Updated
	c.Unchanged += o.Unchanged
	c.Errors += o.Errors
}

// persistAll splits the records into fixed-size batches and writes up to
// BatchConcurrency batches at a time, pausing between waves. Batches never
// share a record ID: the feed yields each remote ID at most once per run and
// the existing map is a static snapshot taken before batching begins.
// A cancelled context stops between waves and is reported to the caller;
// the counts written so far are returned alongside the error so the run
// summary can still carry them.
func (e *Engine[T]) persistAll(ctx context.Context, shopID string, records []T, existing map[string]T) (WriteCounts, error) {
	var batches [][]T
	for start := 0; start < len(records); start += e.cfg.WriteBatchSize {
		end := start + e.cfg.WriteBatchSize
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}

	var total WriteCounts
	for wave := 0; wave < len(batches); wave += e.cfg.BatchConcurrency {
		end := wave + e.cfg.BatchConcurrency
		if end > len(batches) {
			end = len(batches)
		}

		counts := make([]WriteCounts, end-wave)
		var wg sync.WaitGroup
		for i, batch := range batches[wave:end] {
			wg.Add(1)
			go func(i int, batch []T) {
				defer wg.Done()
				counts[i] = e.persistBatch(ctx, shopID, batch, existing)
			}(i, batch)
		}
		wg.Wait()

		for _, c := range counts {
			total.add(c)
		}

		if end < len(batches) {
			select {
			case <-time.After(e.cfg.InterBatchPause):
			case <-ctx.Done():
				return total, ctx.Err()
			}
		}
	}

	return total, nil
}

// persistBatch applies the reconciliation decision for each record in the
// batch. A failing record is logged and counted; it never fails the batch.
func (e *Engine[T]) persistBatch(ctx context.Context, shopID string, batch []T, existing map[string]T) WriteCounts {
	var counts WriteCounts
	for _, rec := range batch {
		var existingRec *T
		if prev, ok := existing[rec.RecordID()]; ok {
			existingRec = &prev
		}

		decision := decide(e.adapter, existingRec, rec)

		var err error
		switch decision {
		case DecisionCreate:
			err = e.adapter.Create(ctx, rec)
		case DecisionUpdate:
			err = e.adapter.Replace(ctx, rec)
		case DecisionSkipUnchanged, DecisionSkipImmutable:
			err = e.adapter.TouchSynced(ctx, shopID, rec.RecordID())
		}

		if err != nil {
			log.Printf("Failed to persist %s %s (decision: %s): %v", e.adapter.Kind(), rec.RecordID(), decision, err)
			counts.Errors++
			continue
		}

		switch decision {
		case DecisionCreate:
			counts.Created++
		case DecisionUpdate:
			counts.Updated++
		default:
			counts.Unchanged++
		}
	}
	return counts
}
