package service

import (
	"context"

	"github.com/mirrorops/storesync-worker/internal/models"
)

// ProductStore is the persisted-state repository for products
type ProductStore interface {
	GetByIDs(ctx context.Context, shopID string, ids []string) (map[string]models.Product, error)
	Create(ctx context.Context, product models.Product) error
	Replace(ctx context.Context, product models.Product) error
	TouchSynced(ctx context.Context, shopID, productID string) error
}

// ProductAdapter describes catalog items to the sync engine.
type ProductAdapter struct {
	feed  StorefrontClient
	store ProductStore
}

func NewProductAdapter(feed StorefrontClient, store ProductStore) *ProductAdapter {
	return &ProductAdapter{feed: feed, store: store}
}

func (a *ProductAdapter) Kind() string {
	return models.KindProduct
}

func (a *ProductAdapter) DefaultPageSize() int {
	return 50
}

func (a *ProductAdapter) FetchPage(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Product], error) {
	return a.feed.FetchProducts(ctx, shop, filter, cursor, pageSize)
}

func (a *ProductAdapter) ExistingByIDs(ctx context.Context, shopID string, ids []string) (map[string]models.Product, error) {
	return a.store.GetByIDs(ctx, shopID, ids)
}

// Products have no terminal state; every existing product is diffed.
func (a *ProductAdapter) Immutable(existing, incoming models.Product) bool {
	return false
}

func (a *ProductAdapter) Changed(existing, incoming models.Product) bool {
	if !textEqual(existing.Title, incoming.Title) ||
		!textEqual(existing.Vendor, incoming.Vendor) ||
		!textEqual(existing.Description, incoming.Description) {
		return true
	}
	if existing.ProductType != incoming.ProductType ||
		existing.Handle != incoming.Handle ||
		existing.Status != incoming.Status ||
		existing.Tags != incoming.Tags {
		return true
	}
	if imagesChanged(existing.Images, incoming.Images) {
		return true
	}
	return variantsChanged(existing.Variants, incoming.Variants)
}

func (a *ProductAdapter) Create(ctx context.Context, product models.Product) error {
	return a.store.Create(ctx, product)
}

func (a *ProductAdapter) Replace(ctx context.Context, product models.Product) error {
	return a.store.Replace(ctx, product)
}

func (a *ProductAdapter) TouchSynced(ctx context.Context, shopID, productID string) error {
	return a.store.TouchSynced(ctx, shopID, productID)
}

func imagesChanged(existing, incoming []models.ProductImage) bool {
	if len(existing) != len(incoming) {
		return true
	}
	byID := make(map[string]models.ProductImage, len(existing))
	for _, img := range existing {
		byID[img.ID] = img
	}
	for _, img := range incoming {
		prev, ok := byID[img.ID]
		if !ok {
			return true
		}
		if prev.Src != img.Src || prev.Alt != img.Alt || prev.Position != img.Position {
			return true
		}
	}
	return false
}

func variantsChanged(existing, incoming []models.ProductVariant) bool {
	if len(existing) != len(incoming) {
		return true
	}
	byID := make(map[string]models.ProductVariant, len(existing))
	for _, v := range existing {
		byID[v.ID] = v
	}
	for _, v := range incoming {
		prev, ok := byID[v.ID]
		if !ok {
			return true
		}
		if prev.Title != v.Title ||
			prev.SKU != v.SKU ||
			prev.Price != v.Price ||
			!float64PtrEqual(prev.CompareAtPrice, v.CompareAtPrice) ||
			prev.InventoryQuantity != v.InventoryQuantity ||
			prev.Position != v.Position {
			return true
		}
	}
	return false
}
