package service

import (
	"context"
	"time"

	"github.com/mirrorops/storesync-worker/internal/models"
)

// orderImmutableAfter is how stale a fulfilled+paid order must be, on both
// the persisted and the incoming side, before diffing is skipped for it.
const orderImmutableAfter = 30 * 24 * time.Hour

// OrderStore is the persisted-state repository for orders
type OrderStore interface {
	GetByIDs(ctx context.Context, shopID string, ids []string) (map[string]models.Order, error)
	Create(ctx context.Context, order models.Order) error
	Replace(ctx context.Context, order models.Order) error
	TouchSynced(ctx context.Context, shopID, orderID string) error
}

// OrderAdapter describes orders to the sync engine.
type OrderAdapter struct {
	feed  StorefrontClient
	store OrderStore
}

func NewOrderAdapter(feed StorefrontClient, store OrderStore) *OrderAdapter {
	return &OrderAdapter{feed: feed, store: store}
}

func (a *OrderAdapter) Kind() string {
	return models.KindOrder
}

func (a *OrderAdapter) DefaultPageSize() int {
	return 25
}

func (a *OrderAdapter) FetchPage(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Order], error) {
	return a.feed.FetchOrders(ctx, shop, filter, cursor, pageSize)
}

func (a *OrderAdapter) ExistingByIDs(ctx context.Context, shopID string, ids []string) (map[string]models.Order, error) {
	return a.store.GetByIDs(ctx, shopID, ids)
}

// Immutable reports whether the persisted order is in a terminal state:
// cancelled, refunded, or settled long enough ago that the remote side will
// not touch it again. Terminal orders get a synced_at touch and no diff.
func (a *OrderAdapter) Immutable(existing, incoming models.Order) bool {
	if existing.Closed() {
		return true
	}
	if existing.Settled() {
		cutoff := time.Now().Add(-orderImmutableAfter)
		return existing.UpdatedAt.Before(cutoff) && incoming.UpdatedAt.Before(cutoff)
	}
	return false
}

func (a *OrderAdapter) Changed(existing, incoming models.Order) bool {
	if existing.Name != incoming.Name ||
		existing.Email != incoming.Email ||
		existing.FinancialStatus != incoming.FinancialStatus ||
		existing.FulfillmentStatus != incoming.FulfillmentStatus ||
		existing.Currency != incoming.Currency ||
		existing.TotalPrice != incoming.TotalPrice {
		return true
	}
	if !existing.ProcessedAt.Equal(incoming.ProcessedAt) ||
		!timePtrEqual(existing.CancelledAt, incoming.CancelledAt) {
		return true
	}
	return lineItemsChanged(existing.LineItems, incoming.LineItems)
}

func (a *OrderAdapter) Create(ctx context.Context, order models.Order) error {
	return a.store.Create(ctx, order)
}

func (a *OrderAdapter) Replace(ctx context.Context, order models.Order) error {
	return a.store.Replace(ctx, order)
}

func (a *OrderAdapter) TouchSynced(ctx context.Context, shopID, orderID string) error {
	return a.store.TouchSynced(ctx, shopID, orderID)
}

func lineItemsChanged(existing, incoming []models.OrderLineItem) bool {
	if len(existing) != len(incoming) {
		return true
	}
	byID := make(map[string]models.OrderLineItem, len(existing))
	for _, li := range existing {
		byID[li.ID] = li
	}
	for _, li := range incoming {
		prev, ok := byID[li.ID]
		if !ok {
			return true
		}
		if !textEqual(prev.Title, li.Title) ||
			prev.SKU != li.SKU ||
			prev.Quantity != li.Quantity ||
			prev.Price != li.Price {
			return true
		}
	}
	return false
}
