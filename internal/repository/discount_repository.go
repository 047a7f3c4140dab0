package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mirrorops/storesync-worker/internal/models"
	"gorm.io/gorm"
)

type DiscountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

// GetByIDs retrieves discounts with their codes, keyed by discount ID
func (r *DiscountRepository) GetByIDs(ctx context.Context, shopID string, ids []string) (map[string]models.Discount, error) {
	byID := make(map[string]models.Discount, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	var discounts []models.Discount
	result := r.db.WithContext(ctx).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&discounts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query discounts: %w", result.Error)
	}
	if len(discounts) == 0 {
		return byID, nil
	}

	discountIDs := make([]string, 0, len(discounts))
	for _, d := range discounts {
		discountIDs = append(discountIDs, d.ID)
	}

	var codes []models.DiscountCode
	result = r.db.WithContext(ctx).
		Where("shop_id = ? AND discount_id IN ?", shopID, discountIDs).
		Find(&codes)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query discount codes: %w", result.Error)
	}

	codesByDiscount := make(map[string][]models.DiscountCode)
	for _, c := range codes {
		codesByDiscount[c.DiscountID] = append(codesByDiscount[c.DiscountID], c)
	}

	for _, d := range discounts {
		d.Codes = codesByDiscount[d.ID]
		byID[d.ID] = d
	}

	return byID, nil
}

// Create inserts a discount with its codes in one transaction
func (r *DiscountRepository) Create(ctx context.Context, discount models.Discount) error {
	discount.SyncedAt = time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&discount).Error; err != nil {
			return fmt.Errorf("failed to create discount: %w", err)
		}
		return createDiscountCodes(tx, discount)
	})
}

// Replace overwrites the discount's scalar fields and recreates its codes
// from the incoming set
func (r *DiscountRepository) Replace(ctx context.Context, discount models.Discount) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Discount{}).
			Where("shop_id = ? AND id = ?", discount.ShopID, discount.ID).
			Updates(map[string]interface{}{
				"title":       discount.Title,
				"value_type":  discount.ValueType,
				"value":       discount.Value,
				"target_type": discount.TargetType,
				"starts_at":   discount.StartsAt,
				"ends_at":     discount.EndsAt,
				"usage_limit": discount.UsageLimit,
				"updated_at":  discount.UpdatedAt,
				"synced_at":   now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update discount: %w", result.Error)
		}

		if err := tx.Where("shop_id = ? AND discount_id = ?", discount.ShopID, discount.ID).
			Delete(&models.DiscountCode{}).Error; err != nil {
			return fmt.Errorf("failed to delete discount codes: %w", err)
		}

		return createDiscountCodes(tx, discount)
	})
}

// TouchSynced refreshes only the discount's synced_at timestamp
func (r *DiscountRepository) TouchSynced(ctx context.Context, shopID, discountID string) error {
	result := r.db.WithContext(ctx).Model(&models.Discount{}).
		Where("shop_id = ? AND id = ?", shopID, discountID).
		Update("synced_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to touch discount: %w", result.Error)
	}
	return nil
}

func createDiscountCodes(tx *gorm.DB, discount models.Discount) error {
	if len(discount.Codes) == 0 {
		return nil
	}
	codes := make([]models.DiscountCode, len(discount.Codes))
	for i, c := range discount.Codes {
		c.ShopID = discount.ShopID
		c.DiscountID = discount.ID
		codes[i] = c
	}
	if err := tx.Create(&codes).Error; err != nil {
		return fmt.Errorf("failed to create discount codes: %w", err)
	}
	return nil
}
