package watcher

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/mirrorops/storesync-worker/internal/config"
	"github.com/mirrorops/storesync-worker/internal/service"
)

// FanOutRunner runs one full sync pass across all active shops
type FanOutRunner interface {
	RunForAllShops(ctx context.Context, opts service.Options) (*service.AggregateResult, error)
}

// Watcher is the recurring trigger: it invokes the fan-out on a fixed
// interval. The in-flight guard is held by the watcher itself, so a slow
// pass makes the next tick skip instead of piling up overlapping passes.
type Watcher struct {
	cfg      *config.Config
	fanOut   FanOutRunner
	inFlight atomic.Bool
}

func New(cfg *config.Config, fanOut FanOutRunner) *Watcher {
	return &Watcher{cfg: cfg, fanOut: fanOut}
}

// Start begins the periodic sync loop and blocks until ctx is cancelled
func (w *Watcher) Start(ctx context.Context) error {
	log.Println("Starting sync watcher...")

	// Run one pass immediately on startup
	w.runOnce(ctx)

	ticker := time.NewTicker(time.Duration(w.cfg.PollInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Watcher shutting down...")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	if !w.inFlight.CompareAndSwap(false, true) {
		log.Println("Previous sync pass still running, skipping tick")
		return
	}
	defer w.inFlight.Store(false)

	opts := service.DefaultOptions()
	opts.RecordLimit = w.cfg.RecordLimit

	start := time.Now()
	result, err := w.fanOut.RunForAllShops(ctx, opts)
	if err != nil {
		log.Printf("Sync pass failed: %v", err)
		return
	}

	log.Printf("Sync pass finished in %s: %d shop(s), %d record(s), success=%v",
		time.Since(start).Round(time.Millisecond), result.Shops, result.TotalRecords, result.OverallSuccess)
}
