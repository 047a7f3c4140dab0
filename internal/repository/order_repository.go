package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mirrorops/storesync-worker/internal/models"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetByIDs retrieves orders with their line items, keyed by order ID
func (r *OrderRepository) GetByIDs(ctx context.Context, shopID string, ids []string) (map[string]models.Order, error) {
	byID := make(map[string]models.Order, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	var orders []models.Order
	result := r.db.WithContext(ctx).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&orders)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query orders: %w", result.Error)
	}
	if len(orders) == 0 {
		return byID, nil
	}

	orderIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}

	var lineItems []models.OrderLineItem
	result = r.db.WithContext(ctx).
		Where("shop_id = ? AND order_id IN ?", shopID, orderIDs).
		Find(&lineItems)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query order line items: %w", result.Error)
	}

	itemsByOrder := make(map[string][]models.OrderLineItem)
	for _, li := range lineItems {
		itemsByOrder[li.OrderID] = append(itemsByOrder[li.OrderID], li)
	}

	for _, o := range orders {
		o.LineItems = itemsByOrder[o.ID]
		byID[o.ID] = o
	}

	return byID, nil
}

// Create inserts an order with its line items in one transaction
func (r *OrderRepository) Create(ctx context.Context, order models.Order) error {
	order.SyncedAt = time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return createLineItems(tx, order)
	})
}

// Replace overwrites the order's scalar fields and recreates its line items
// from the incoming set
func (r *OrderRepository) Replace(ctx context.Context, order models.Order) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).
			Where("shop_id = ? AND id = ?", order.ShopID, order.ID).
			Updates(map[string]interface{}{
				"name":               order.Name,
				"email":              order.Email,
				"financial_status":   order.FinancialStatus,
				"fulfillment_status": order.FulfillmentStatus,
				"currency":           order.Currency,
				"total_price":        order.TotalPrice,
				"processed_at":       order.ProcessedAt,
				"cancelled_at":       order.CancelledAt,
				"updated_at":         order.UpdatedAt,
				"synced_at":          now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update order: %w", result.Error)
		}

		if err := tx.Where("shop_id = ? AND order_id = ?", order.ShopID, order.ID).
			Delete(&models.OrderLineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order line items: %w", err)
		}

		return createLineItems(tx, order)
	})
}

// TouchSynced refreshes only the order's synced_at timestamp
func (r *OrderRepository) TouchSynced(ctx context.Context, shopID, orderID string) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("shop_id = ? AND id = ?", shopID, orderID).
		Update("synced_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to touch order: %w", result.Error)
	}
	return nil
}

func createLineItems(tx *gorm.DB, order models.Order) error {
	if len(order.LineItems) == 0 {
		return nil
	}
	items := make([]models.OrderLineItem, len(order.LineItems))
	for i, li := range order.LineItems {
		li.ShopID = order.ShopID
		li.OrderID = order.ID
		items[i] = li
	}
	if err := tx.Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create order line items: %w", err)
	}
	return nil
}
