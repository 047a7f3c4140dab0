package service

import (
	"context"

	"github.com/mirrorops/storesync-worker/internal/models"
)

// DiscountStore is the persisted-state repository for discounts
type DiscountStore interface {
	GetByIDs(ctx context.Context, shopID string, ids []string) (map[string]models.Discount, error)
	Create(ctx context.Context, discount models.Discount) error
	Replace(ctx context.Context, discount models.Discount) error
	TouchSynced(ctx context.Context, shopID, discountID string) error
}

// DiscountAdapter describes promotional rules to the sync engine.
type DiscountAdapter struct {
	feed  StorefrontClient
	store DiscountStore
}

func NewDiscountAdapter(feed StorefrontClient, store DiscountStore) *DiscountAdapter {
	return &DiscountAdapter{feed: feed, store: store}
}

func (a *DiscountAdapter) Kind() string {
	return models.KindDiscount
}

func (a *DiscountAdapter) DefaultPageSize() int {
	return 25
}

func (a *DiscountAdapter) FetchPage(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Discount], error) {
	return a.feed.FetchDiscounts(ctx, shop, filter, cursor, pageSize)
}

func (a *DiscountAdapter) ExistingByIDs(ctx context.Context, shopID string, ids []string) (map[string]models.Discount, error) {
	return a.store.GetByIDs(ctx, shopID, ids)
}

// Discounts have no terminal state; expired rules can still be edited.
func (a *DiscountAdapter) Immutable(existing, incoming models.Discount) bool {
	return false
}

func (a *DiscountAdapter) Changed(existing, incoming models.Discount) bool {
	if !textEqual(existing.Title, incoming.Title) {
		return true
	}
	if existing.ValueType != incoming.ValueType ||
		existing.Value != incoming.Value ||
		existing.TargetType != incoming.TargetType {
		return true
	}
	if !existing.StartsAt.Equal(incoming.StartsAt) ||
		!timePtrEqual(existing.EndsAt, incoming.EndsAt) ||
		!intPtrEqual(existing.UsageLimit, incoming.UsageLimit) {
		return true
	}
	return codesChanged(existing.Codes, incoming.Codes)
}

func (a *DiscountAdapter) Create(ctx context.Context, discount models.Discount) error {
	return a.store.Create(ctx, discount)
}

func (a *DiscountAdapter) Replace(ctx context.Context, discount models.Discount) error {
	return a.store.Replace(ctx, discount)
}

func (a *DiscountAdapter) TouchSynced(ctx context.Context, shopID, discountID string) error {
	return a.store.TouchSynced(ctx, shopID, discountID)
}

func codesChanged(existing, incoming []models.DiscountCode) bool {
	if len(existing) != len(incoming) {
		return true
	}
	byID := make(map[string]models.DiscountCode, len(existing))
	for _, c := range existing {
		byID[c.ID] = c
	}
	for _, c := range incoming {
		prev, ok := byID[c.ID]
		if !ok {
			return true
		}
		if prev.Code != c.Code || prev.UsageCount != c.UsageCount {
			return true
		}
	}
	return false
}
