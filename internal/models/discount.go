package models

import "time"

// Discount value type constants
const (
	DiscountValuePercentage  = "percentage"
	DiscountValueFixedAmount = "fixed_amount"
)

// Discount target type constants
const (
	DiscountTargetOrder    = "order"
	DiscountTargetProducts = "products"
	DiscountTargetShipping = "shipping"
)

// Discount is a mirrored promotional rule. Codes are owned by the discount
// and are replaced wholesale on update.
type Discount struct {
	ID         string     `gorm:"column:id;primaryKey"`
	ShopID     string     `gorm:"column:shop_id;primaryKey"`
	Title      string     `gorm:"column:title"`
	ValueType  string     `gorm:"column:value_type"`
	Value      float64    `gorm:"column:value"`
	TargetType string     `gorm:"column:target_type"`
	StartsAt   time.Time  `gorm:"column:starts_at"`
	EndsAt     *time.Time `gorm:"column:ends_at"`
	UsageLimit *int       `gorm:"column:usage_limit"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
	SyncedAt   time.Time  `gorm:"column:synced_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`

	Codes []DiscountCode `gorm:"-"`
}

// TableName specifies the table name for GORM
func (Discount) TableName() string {
	return "discount"
}

func (d Discount) RecordID() string           { return d.ID }
func (d Discount) RecordUpdatedAt() time.Time { return d.UpdatedAt }

type DiscountCode struct {
	ID         string `gorm:"column:id;primaryKey"`
	ShopID     string `gorm:"column:shop_id;primaryKey"`
	DiscountID string `gorm:"column:discount_id;index"`
	Code       string `gorm:"column:code"`
	UsageCount int    `gorm:"column:usage_count"`
}

// TableName specifies the table name for GORM
func (DiscountCode) TableName() string {
	return "discount_code"
}
