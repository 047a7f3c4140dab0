package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mirrorops/storesync-worker/internal/models"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByIDs retrieves products with their images and variants, keyed by
// product ID. IDs with no persisted product are simply absent from the map.
func (r *ProductRepository) GetByIDs(ctx context.Context, shopID string, ids []string) (map[string]models.Product, error) {
	byID := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	var products []models.Product
	result := r.db.WithContext(ctx).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&products)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query products: %w", result.Error)
	}
	if len(products) == 0 {
		return byID, nil
	}

	productIDs := make([]string, 0, len(products))
	for _, p := range products {
		productIDs = append(productIDs, p.ID)
	}

	var images []models.ProductImage
	result = r.db.WithContext(ctx).
		Where("shop_id = ? AND product_id IN ?", shopID, productIDs).
		Order("position ASC").
		Find(&images)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query product images: %w", result.Error)
	}

	var variants []models.ProductVariant
	result = r.db.WithContext(ctx).
		Where("shop_id = ? AND product_id IN ?", shopID, productIDs).
		Order("position ASC").
		Find(&variants)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query product variants: %w", result.Error)
	}

	imagesByProduct := make(map[string][]models.ProductImage)
	for _, img := range images {
		imagesByProduct[img.ProductID] = append(imagesByProduct[img.ProductID], img)
	}
	variantsByProduct := make(map[string][]models.ProductVariant)
	for _, v := range variants {
		variantsByProduct[v.ProductID] = append(variantsByProduct[v.ProductID], v)
	}

	for _, p := range products {
		p.Images = imagesByProduct[p.ID]
		p.Variants = variantsByProduct[p.ID]
		byID[p.ID] = p
	}

	return byID, nil
}

// Create inserts a product with its children in one transaction
func (r *ProductRepository) Create(ctx context.Context, product models.Product) error {
	product.SyncedAt = time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return createProductChildren(tx, product)
	})
}

// Replace overwrites the product's scalar fields and recreates its children
// from the incoming set. Children are never patched in place.
func (r *ProductRepository) Replace(ctx context.Context, product models.Product) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Product{}).
			Where("shop_id = ? AND id = ?", product.ShopID, product.ID).
			Updates(map[string]interface{}{
				"title":        product.Title,
				"vendor":       product.Vendor,
				"product_type": product.ProductType,
				"handle":       product.Handle,
				"status":       product.Status,
				"tags":         product.Tags,
				"description":  product.Description,
				"updated_at":   product.UpdatedAt,
				"synced_at":    now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update product: %w", result.Error)
		}

		if err := tx.Where("shop_id = ? AND product_id = ?", product.ShopID, product.ID).
			Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete product images: %w", err)
		}
		if err := tx.Where("shop_id = ? AND product_id = ?", product.ShopID, product.ID).
			Delete(&models.ProductVariant{}).Error; err != nil {
			return fmt.Errorf("failed to delete product variants: %w", err)
		}

		return createProductChildren(tx, product)
	})
}

// TouchSynced refreshes only the product's synced_at timestamp
func (r *ProductRepository) TouchSynced(ctx context.Context, shopID, productID string) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("shop_id = ? AND id = ?", shopID, productID).
		Update("synced_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to touch product: %w", result.Error)
	}
	return nil
}

func createProductChildren(tx *gorm.DB, product models.Product) error {
	if len(product.Images) > 0 {
		images := make([]models.ProductImage, len(product.Images))
		for i, img := range product.Images {
			img.ShopID = product.ShopID
			img.ProductID = product.ID
			images[i] = img
		}
		if err := tx.Create(&images).Error; err != nil {
			return fmt.Errorf("failed to create product images: %w", err)
		}
	}
	if len(product.Variants) > 0 {
		variants := make([]models.ProductVariant, len(product.Variants))
		for i, v := range product.Variants {
			v.ShopID = product.ShopID
			v.ProductID = product.ID
			variants[i] = v
		}
		if err := tx.Create(&variants).Error; err != nil {
			return fmt.Errorf("failed to create product variants: %w", err)
		}
	}
	return nil
}
