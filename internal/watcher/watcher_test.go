package watcher

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mirrorops/storesync-worker/internal/config"
	"github.com/mirrorops/storesync-worker/internal/service"
)

type fakeRunner struct {
	calls   atomic.Int32
	gotOpts service.Options
	block   chan struct{}
}

func (r *fakeRunner) RunForAllShops(ctx context.Context, opts service.Options) (*service.AggregateResult, error) {
	r.calls.Add(1)
	r.gotOpts = opts
	if r.block != nil {
		<-r.block
	}
	return &service.AggregateResult{OverallSuccess: true}, nil
}

func TestWatcher_RunOncePassesOptions(t *testing.T) {
	runner := &fakeRunner{}
	w := New(&config.Config{PollInterval: 300, RecordLimit: 500}, runner)

	w.runOnce(context.Background())

	if got := runner.calls.Load(); got != 1 {
		t.Fatalf("expected 1 fan-out call, got %d", got)
	}
	if !runner.gotOpts.Incremental {
		t.Error("expected incremental sync by default")
	}
	if runner.gotOpts.RecordLimit != 500 {
		t.Errorf("expected configured record limit passed through, got %d", runner.gotOpts.RecordLimit)
	}
}

func TestWatcher_InFlightGuardSkips(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	w := New(&config.Config{PollInterval: 300}, runner)

	done := make(chan struct{})
	go func() {
		w.runOnce(context.Background())
		close(done)
	}()

	// Wait until the first pass is in flight
	for runner.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	w.runOnce(context.Background())
	if got := runner.calls.Load(); got != 1 {
		t.Errorf("expected overlapping pass skipped, got %d calls", got)
	}

	close(runner.block)
	<-done

	w.runOnce(context.Background())
	if got := runner.calls.Load(); got != 2 {
		t.Errorf("expected guard released after the pass, got %d calls", got)
	}
}

func TestWatcher_StartStopsOnContextCancel(t *testing.T) {
	runner := &fakeRunner{}
	w := New(&config.Config{PollInterval: 3600}, runner)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Start(ctx)
	}()

	// The immediate startup pass runs before the ticker loop
	for runner.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
