package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/mirrorops/storesync-worker/internal/models"
)

// ShopDirectory lists the shops eligible for sync; uninstalled shops are
// never returned.
type ShopDirectory interface {
	GetActiveShops(ctx context.Context) ([]models.Shop, error)
}

// KindSyncer is one entity kind's sync engine, viewed without its type
// parameter so engines of different kinds can fan out together.
type KindSyncer interface {
	Kind() string
	SyncShop(ctx context.Context, shop *models.Shop, opts Options) (*RunResult, error)
}

// ShopResult collects one shop's per-kind run results. Err is non-nil when
// any kind failed for the shop; the successful kinds' results are still
// present.
type ShopResult struct {
	ShopID  string
	Domain  string
	Results []*RunResult
	Err     error
}

// AggregateResult is the top-level outcome of a multi-shop sync pass.
type AggregateResult struct {
	Shops          int
	TotalRecords   int
	ShopResults    []ShopResult
	OverallSuccess bool
}

// FanOut iterates shops and invokes every entity kind's engine per shop,
// isolating failures per shop and per kind.
type FanOut struct {
	shops   ShopDirectory
	syncers []KindSyncer
}

func NewFanOut(shops ShopDirectory, syncers ...KindSyncer) *FanOut {
	return &FanOut{shops: shops, syncers: syncers}
}

// Syncer returns the engine for the given entity kind
func (f *FanOut) Syncer(entityKind string) (KindSyncer, bool) {
	for _, s := range f.syncers {
		if s.Kind() == entityKind {
			return s, true
		}
	}
	return nil, false
}

// RunForAllShops syncs every entity kind for every active shop. A failing
// shop never stops iteration; the caller always receives a structured
// result with OverallSuccess=false when anything failed.
func (f *FanOut) RunForAllShops(ctx context.Context, opts Options) (*AggregateResult, error) {
	shops, err := f.shops.GetActiveShops(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active shops: %w", err)
	}

	agg := &AggregateResult{Shops: len(shops), OverallSuccess: true}
	for i := range shops {
		sr := f.runShop(ctx, &shops[i], opts, f.syncers)
		if sr.Err != nil {
			agg.OverallSuccess = false
			log.Printf("Sync failed for shop %s: %v", sr.Domain, sr.Err)
		}
		for _, res := range sr.Results {
			if res != nil {
				agg.TotalRecords += res.Fetched
			}
		}
		agg.ShopResults = append(agg.ShopResults, sr)
	}

	return agg, nil
}

// RunKind syncs a single entity kind for every active shop; this is the
// per-kind trigger surface for callers that schedule kinds independently.
func (f *FanOut) RunKind(ctx context.Context, entityKind string, opts Options) (*AggregateResult, error) {
	syncer, ok := f.Syncer(entityKind)
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", entityKind)
	}

	shops, err := f.shops.GetActiveShops(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active shops: %w", err)
	}

	agg := &AggregateResult{Shops: len(shops), OverallSuccess: true}
	for i := range shops {
		sr := f.runShop(ctx, &shops[i], opts, []KindSyncer{syncer})
		if sr.Err != nil {
			agg.OverallSuccess = false
			log.Printf("Sync failed for shop %s: %v", sr.Domain, sr.Err)
		}
		for _, res := range sr.Results {
			if res != nil {
				agg.TotalRecords += res.Fetched
			}
		}
		agg.ShopResults = append(agg.ShopResults, sr)
	}

	return agg, nil
}

// runShop runs the given kinds concurrently for one shop. Kinds touch
// disjoint tables, so they need no coordination; a failing kind is recorded
// without disturbing the others.
func (f *FanOut) runShop(ctx context.Context, shop *models.Shop, opts Options, syncers []KindSyncer) ShopResult {
	results := make([]*RunResult, len(syncers))
	errs := make([]error, len(syncers))

	var wg sync.WaitGroup
	for i, s := range syncers {
		wg.Add(1)
		go func(i int, s KindSyncer) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("%s sync panicked: %v", s.Kind(), r)
				}
			}()
			res, err := s.SyncShop(ctx, shop, opts)
			results[i] = res
			if err != nil {
				errs[i] = fmt.Errorf("%s sync failed: %w", s.Kind(), err)
			}
		}(i, s)
	}
	wg.Wait()

	return ShopResult{
		ShopID:  shop.ID,
		Domain:  shop.Domain,
		Results: results,
		Err:     errors.Join(errs...),
	}
}
