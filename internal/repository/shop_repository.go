package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mirrorops/storesync-worker/internal/models"
	"gorm.io/gorm"
)

var ErrShopNotFound = errors.New("shop not found")

type ShopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

// GetActiveShops retrieves all shops eligible for sync
func (r *ShopRepository) GetActiveShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	result := r.db.WithContext(ctx).
		Where("status = ?", models.ShopStatusActive).
		Order("domain ASC").
		Find(&shops)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query active shops: %w", result.Error)
	}
	return shops, nil
}

// GetByID retrieves a shop by ID
func (r *ShopRepository) GetByID(ctx context.Context, shopID string) (*models.Shop, error) {
	var shop models.Shop
	result := r.db.WithContext(ctx).First(&shop, "id = ?", shopID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to get shop: %w", result.Error)
	}
	return &shop, nil
}

// GetByDomain retrieves a shop by its domain
func (r *ShopRepository) GetByDomain(ctx context.Context, domain string) (*models.Shop, error) {
	var shop models.Shop
	result := r.db.WithContext(ctx).First(&shop, "domain = ?", domain)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to get shop: %w", result.Error)
	}
	return &shop, nil
}

// MarkUninstalled flags a shop as uninstalled so the fan-out stops
// scheduling work for it
func (r *ShopRepository) MarkUninstalled(ctx context.Context, shopID string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ?", shopID).
		Updates(map[string]interface{}{
			"status":         models.ShopStatusUninstalled,
			"uninstalled_at": &now,
			"updated_at":     now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark shop uninstalled: %w", result.Error)
	}
	return nil
}
