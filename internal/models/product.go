package models

import "time"

// Product status constants (remote-asserted)
const (
	ProductStatusActive   = "active"
	ProductStatusArchived = "archived"
	ProductStatusDraft    = "draft"
)

// Product is a mirrored catalog item. Images and variants are owned by the
// product and are replaced wholesale whenever the product is updated; they are
// loaded and written by the repository, not by GORM associations.
type Product struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ShopID      string    `gorm:"column:shop_id;primaryKey"`
	Title       string    `gorm:"column:title"`
	Vendor      string    `gorm:"column:vendor"`
	ProductType string    `gorm:"column:product_type"`
	Handle      string    `gorm:"column:handle"`
	Status      string    `gorm:"column:status;index"`
	Tags        string    `gorm:"column:tags"`
	Description string    `gorm:"column:description"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
	SyncedAt    time.Time `gorm:"column:synced_at"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`

	Images   []ProductImage   `gorm:"-"`
	Variants []ProductVariant `gorm:"-"`
}

// TableName specifies the table name for GORM
func (Product) TableName() string {
	return "product"
}

func (p Product) RecordID() string           { return p.ID }
func (p Product) RecordUpdatedAt() time.Time { return p.UpdatedAt }

type ProductImage struct {
	ID        string `gorm:"column:id;primaryKey"`
	ShopID    string `gorm:"column:shop_id;primaryKey"`
	ProductID string `gorm:"column:product_id;index"`
	Src       string `gorm:"column:src"`
	Alt       string `gorm:"column:alt"`
	Position  int    `gorm:"column:position"`
}

// TableName specifies the table name for GORM
func (ProductImage) TableName() string {
	return "product_image"
}

type ProductVariant struct {
	ID                string   `gorm:"column:id;primaryKey"`
	ShopID            string   `gorm:"column:shop_id;primaryKey"`
	ProductID         string   `gorm:"column:product_id;index"`
	Title             string   `gorm:"column:title"`
	SKU               string   `gorm:"column:sku"`
	Price             float64  `gorm:"column:price"`
	CompareAtPrice    *float64 `gorm:"column:compare_at_price"`
	InventoryQuantity int      `gorm:"column:inventory_quantity"`
	Position          int      `gorm:"column:position"`
}

// TableName specifies the table name for GORM
func (ProductVariant) TableName() string {
	return "product_variant"
}
