package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mirrorops/storesync-worker/internal/models"
)

type fakeAdapter struct {
	kind        string
	pageSize    int
	fetchFunc   func(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Product], error)
	existing    func(ctx context.Context, shopID string, ids []string) (map[string]models.Product, error)
	immutable   func(existing, incoming models.Product) bool
	changed     func(existing, incoming models.Product) bool
	createFunc  func(ctx context.Context, rec models.Product) error
	replaceFunc func(ctx context.Context, rec models.Product) error
	touchFunc   func(ctx context.Context, shopID, id string) error
}

func (a *fakeAdapter) Kind() string {
	if a.kind != "" {
		return a.kind
	}
	return models.KindProduct
}

func (a *fakeAdapter) DefaultPageSize() int {
	if a.pageSize > 0 {
		return a.pageSize
	}
	return 50
}

func (a *fakeAdapter) FetchPage(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Product], error) {
	if a.fetchFunc != nil {
		return a.fetchFunc(ctx, shop, filter, cursor, pageSize)
	}
	return &FeedPage[models.Product]{}, nil
}

func (a *fakeAdapter) ExistingByIDs(ctx context.Context, shopID string, ids []string) (map[string]models.Product, error) {
	if a.existing != nil {
		return a.existing(ctx, shopID, ids)
	}
	return map[string]models.Product{}, nil
}

func (a *fakeAdapter) Immutable(existing, incoming models.Product) bool {
	if a.immutable != nil {
		return a.immutable(existing, incoming)
	}
	return false
}

func (a *fakeAdapter) Changed(existing, incoming models.Product) bool {
	if a.changed != nil {
		return a.changed(existing, incoming)
	}
	return false
}

func (a *fakeAdapter) Create(ctx context.Context, rec models.Product) error {
	if a.createFunc != nil {
		return a.createFunc(ctx, rec)
	}
	return nil
}

func (a *fakeAdapter) Replace(ctx context.Context, rec models.Product) error {
	if a.replaceFunc != nil {
		return a.replaceFunc(ctx, rec)
	}
	return nil
}

func (a *fakeAdapter) TouchSynced(ctx context.Context, shopID, id string) error {
	if a.touchFunc != nil {
		return a.touchFunc(ctx, shopID, id)
	}
	return nil
}

type finishCall struct {
	runID     string
	success   bool
	summary   models.JSONB
	lastError *string
	ctxErr    error
}

type fakeTracker struct {
	mu       sync.Mutex
	started  []models.SyncRun
	finished []finishCall
	last     *models.SyncRun
	startErr error
	lastErr  error
}

func (t *fakeTracker) Start(ctx context.Context, entityKind, shopID string) (*models.SyncRun, error) {
	if t.startErr != nil {
		return nil, t.startErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	run := models.SyncRun{
		ID:         "run-1",
		EntityKind: entityKind,
		ShopID:     shopID,
		Status:     models.RunStatusPending,
		StartedAt:  time.Now(),
	}
	t.started = append(t.started, run)
	return &run, nil
}

func (t *fakeTracker) Finish(ctx context.Context, runID string, success bool, summary models.JSONB, lastError *string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finished = append(t.finished, finishCall{runID: runID, success: success, summary: summary, lastError: lastError, ctxErr: ctx.Err()})
	return nil
}

func (t *fakeTracker) LastCompleted(ctx context.Context, entityKind, shopID string) (*models.SyncRun, error) {
	if t.lastErr != nil {
		return nil, t.lastErr
	}
	return t.last, nil
}

func testShop() *models.Shop {
	token := "token-123"
	return &models.Shop{ID: "shop-1", Domain: "t1.example.com", AccessToken: &token, Status: models.ShopStatusActive}
}

func testProducts(n int) []models.Product {
	products := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, models.Product{
			ID:        "prod-" + string(rune('a'+i)),
			ShopID:    "shop-1",
			Title:     "Product " + string(rune('A'+i)),
			UpdatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return products
}

func fastConfig() EngineConfig {
	return EngineConfig{WriteBatchSize: 10, BatchConcurrency: 3, InterBatchPause: time.Millisecond}
}

func TestEngine_SyncShop_FirstRunCreatesAll(t *testing.T) {
	var gotFilter FeedFilter
	adapter := &fakeAdapter{
		fetchFunc: func(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Product], error) {
			gotFilter = filter
			return &FeedPage[models.Product]{Items: testProducts(3)}, nil
		},
	}
	tracker := &fakeTracker{}
	engine := NewEngine[models.Product](adapter, tracker, nil, fastConfig())

	res, err := engine.SyncShop(context.Background(), testShop(), DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if res.Strategy != StrategyRecent {
		t.Errorf("expected strategy %s for a first run, got %s", StrategyRecent, res.Strategy)
	}
	if gotFilter.UpdatedAfter == nil {
		t.Fatal("expected a bounded initial-sync window, got nil filter")
	}
	window := time.Since(*gotFilter.UpdatedAfter)
	if window < 29*24*time.Hour || window > 31*24*time.Hour {
		t.Errorf("expected a ~30 day window, got %s", window)
	}

	if res.Fetched != 3 {
		t.Errorf("expected 3 fetched, got %d", res.Fetched)
	}
	want := WriteCounts{Created: 3}
	if res.Counts != want {
		t.Errorf("expected counts %+v, got %+v", want, res.Counts)
	}

	if len(tracker.finished) != 1 {
		t.Fatalf("expected exactly one finish call, got %d", len(tracker.finished))
	}
	fin := tracker.finished[0]
	if !fin.success {
		t.Error("expected run to finish successfully")
	}
	if fin.summary["created"] != 3 {
		t.Errorf("expected summary created=3, got %v", fin.summary["created"])
	}
}

func TestEngine_SyncShop_SecondRunUnchanged(t *testing.T) {
	finishedAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	products := testProducts(3)

	var gotFilter FeedFilter
	var touched []string
	var mu sync.Mutex

	adapter := &fakeAdapter{
		fetchFunc: func(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Product], error) {
			gotFilter = filter
			return &FeedPage[models.Product]{Items: products}, nil
		},
		existing: func(ctx context.Context, shopID string, ids []string) (map[string]models.Product, error) {
			byID := make(map[string]models.Product)
			for _, p := range products {
				byID[p.ID] = p
			}
			return byID, nil
		},
		touchFunc: func(ctx context.Context, shopID, id string) error {
			mu.Lock()
			defer mu.Unlock()
			touched = append(touched, id)
			return nil
		},
	}
	tracker := &fakeTracker{
		last: &models.SyncRun{
			ID:         "prev",
			Status:     models.RunStatusCompleted,
			FinishedAt: &finishedAt,
		},
	}
	engine := NewEngine[models.Product](adapter, tracker, nil, fastConfig())

	res, err := engine.SyncShop(context.Background(), testShop(), DefaultOptions())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if res.Strategy != StrategyIncremental {
		t.Errorf("expected strategy %s, got %s", StrategyIncremental, res.Strategy)
	}
	wantWatermark := finishedAt.Add(-24 * time.Hour)
	if gotFilter.UpdatedAfter == nil || !gotFilter.UpdatedAfter.Equal(wantWatermark) {
		t.Errorf("expected watermark %s, got %v", wantWatermark, gotFilter.UpdatedAfter)
	}

	want := WriteCounts{Unchanged: 3}
	if res.Counts != want {
		t.Errorf("expected counts %+v, got %+v", want, res.Counts)
	}
	if len(touched) != 3 {
		t.Errorf("expected all 3 records touched, got %d", len(touched))
	}
}

func TestEngine_SyncShop_FetchErrorFailsRun(t *testing.T) {
	adapter := &fakeAdapter{
		fetchFunc: func(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Product], error) {
			return nil, errors.New("credential expired")
		},
	}
	tracker := &fakeTracker{}
	engine := NewEngine[models.Product](adapter, tracker, nil, fastConfig())

	_, err := engine.SyncShop(context.Background(), testShop(), DefaultOptions())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if len(tracker.finished) != 1 {
		t.Fatalf("expected exactly one finish call, got %d", len(tracker.finished))
	}
	fin := tracker.finished[0]
	if fin.success {
		t.Error("expected run to finish as failed")
	}
	if fin.lastError == nil || !strings.Contains(*fin.lastError, "credential expired") {
		t.Errorf("expected last error to carry the cause, got %v", fin.lastError)
	}
}

func TestEngine_SyncShop_RecordLimitStopsFetching(t *testing.T) {
	var fetchCalls int
	adapter := &fakeAdapter{
		fetchFunc: func(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Product], error) {
			fetchCalls++
			items := testProducts(5)
			if pageSize < len(items) {
				items = items[:pageSize]
			}
			return &FeedPage[models.Product]{Items: items, NextCursor: "next", HasMore: true}, nil
		},
	}
	tracker := &fakeTracker{}
	engine := NewEngine[models.Product](adapter, tracker, nil, fastConfig())

	opts := DefaultOptions()
	opts.BatchSize = 2
	opts.RecordLimit = 3

	res, err := engine.SyncShop(context.Background(), testShop(), opts)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if res.Fetched != 3 {
		t.Errorf("expected fetch to stop at the record limit of 3, got %d", res.Fetched)
	}
	if fetchCalls != 2 {
		t.Errorf("expected 2 fetch calls (2 + 1 records), got %d", fetchCalls)
	}
}

func TestEngine_SyncShop_InvalidOptionsFailFast(t *testing.T) {
	adapter := &fakeAdapter{
		fetchFunc: func(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Product], error) {
			t.Fatal("fetch must not be called for invalid options")
			return nil, nil
		},
	}
	tracker := &fakeTracker{}
	engine := NewEngine[models.Product](adapter, tracker, nil, fastConfig())

	opts := DefaultOptions()
	opts.RecordLimit = -1

	_, err := engine.SyncShop(context.Background(), testShop(), opts)
	if err == nil {
		t.Fatal("expected error for negative record limit, got nil")
	}
	if len(tracker.started) != 0 {
		t.Errorf("expected no run record for invalid options, got %d", len(tracker.started))
	}
}

func TestEngine_SyncShop_StartErrorPropagates(t *testing.T) {
	tracker := &fakeTracker{startErr: errors.New("db down")}
	engine := NewEngine[models.Product](&fakeAdapter{}, tracker, nil, fastConfig())

	_, err := engine.SyncShop(context.Background(), testShop(), DefaultOptions())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestEngine_SyncShop_CancelledMidRunFailsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	adapter := &fakeAdapter{
		fetchFunc: func(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Product], error) {
			return &FeedPage[models.Product]{Items: testProducts(6)}, nil
		},
		createFunc: func(ctx context.Context, rec models.Product) error {
			cancel()
			return nil
		},
	}
	tracker := &fakeTracker{}
	cfg := EngineConfig{WriteBatchSize: 1, BatchConcurrency: 3, InterBatchPause: time.Minute}
	engine := NewEngine[models.Product](adapter, tracker, nil, cfg)

	opts := DefaultOptions()
	opts.FullSync = true

	res, err := engine.SyncShop(ctx, testShop(), opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The first wave's 3 creates land before the cancelled pause.
	want := WriteCounts{Created: 3}
	if res.Counts != want {
		t.Errorf("expected partial counts %+v, got %+v", want, res.Counts)
	}

	if len(tracker.finished) != 1 {
		t.Fatalf("expected exactly one finish call, got %d", len(tracker.finished))
	}
	fin := tracker.finished[0]
	if fin.success {
		t.Error("expected a half-written run recorded as failed")
	}
	if fin.summary["created"] != 3 || fin.summary["fetched"] != 6 {
		t.Errorf("expected partial counts in the summary, got %v", fin.summary)
	}
	if fin.ctxErr != nil {
		t.Errorf("expected the terminal write detached from run cancellation, got ctx err %v", fin.ctxErr)
	}
}

func TestEngine_SyncShop_Idempotence(t *testing.T) {
	products := testProducts(3)
	persisted := make(map[string]models.Product)
	var mu sync.Mutex

	adapter := &fakeAdapter{
		fetchFunc: func(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Product], error) {
			return &FeedPage[models.Product]{Items: products}, nil
		},
		existing: func(ctx context.Context, shopID string, ids []string) (map[string]models.Product, error) {
			mu.Lock()
			defer mu.Unlock()
			byID := make(map[string]models.Product, len(persisted))
			for id, p := range persisted {
				byID[id] = p
			}
			return byID, nil
		},
		createFunc: func(ctx context.Context, rec models.Product) error {
			mu.Lock()
			defer mu.Unlock()
			persisted[rec.ID] = rec
			return nil
		},
	}
	tracker := &fakeTracker{}
	engine := NewEngine[models.Product](adapter, tracker, nil, fastConfig())

	opts := DefaultOptions()
	opts.FullSync = true

	first, err := engine.SyncShop(context.Background(), testShop(), opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Counts.Created != 3 {
		t.Fatalf("first run: expected 3 creates, got %+v", first.Counts)
	}

	second, err := engine.SyncShop(context.Background(), testShop(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	want := WriteCounts{Unchanged: 3}
	if second.Counts != want {
		t.Errorf("second run: expected all unchanged, got %+v", second.Counts)
	}
}
