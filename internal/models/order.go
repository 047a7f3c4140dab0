package models

import "time"

// Order financial status constants
const (
	FinancialStatusPending           = "pending"
	FinancialStatusAuthorized        = "authorized"
	FinancialStatusPaid              = "paid"
	FinancialStatusPartiallyPaid     = "partially_paid"
	FinancialStatusRefunded          = "refunded"
	FinancialStatusPartiallyRefunded = "partially_refunded"
	FinancialStatusVoided            = "voided"
)

// Order fulfillment status constants
const (
	FulfillmentStatusUnfulfilled = "unfulfilled"
	FulfillmentStatusPartial     = "partial"
	FulfillmentStatusFulfilled   = "fulfilled"
	FulfillmentStatusCancelled   = "cancelled"
)

// Order is a mirrored remote order. Line items are owned by the order and are
// replaced wholesale on update.
type Order struct {
	ID                string     `gorm:"column:id;primaryKey"`
	ShopID            string     `gorm:"column:shop_id;primaryKey"`
	Name              string     `gorm:"column:name"`
	Email             string     `gorm:"column:email"`
	FinancialStatus   string     `gorm:"column:financial_status;index"`
	FulfillmentStatus string     `gorm:"column:fulfillment_status;index"`
	Currency          string     `gorm:"column:currency"`
	TotalPrice        float64    `gorm:"column:total_price"`
	ProcessedAt       time.Time  `gorm:"column:processed_at"`
	CancelledAt       *time.Time `gorm:"column:cancelled_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
	SyncedAt          time.Time  `gorm:"column:synced_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`

	LineItems []OrderLineItem `gorm:"-"`
}

// TableName specifies the table name for GORM
// ("order" is a reserved word in Postgres)
func (Order) TableName() string {
	return "shop_order"
}

func (o Order) RecordID() string           { return o.ID }
func (o Order) RecordUpdatedAt() time.Time { return o.UpdatedAt }

// Closed reports whether the order is in a state that can no longer change on
// the remote side regardless of age: cancelled or fully refunded.
func (o Order) Closed() bool {
	return o.FulfillmentStatus == FulfillmentStatusCancelled ||
		o.FinancialStatus == FinancialStatusRefunded
}

// Settled reports whether the order is fulfilled and paid, the state that
// becomes terminal once it is old enough.
func (o Order) Settled() bool {
	return o.FulfillmentStatus == FulfillmentStatusFulfilled &&
		o.FinancialStatus == FinancialStatusPaid
}

type OrderLineItem struct {
	ID       string  `gorm:"column:id;primaryKey"`
	ShopID   string  `gorm:"column:shop_id;primaryKey"`
	OrderID  string  `gorm:"column:order_id;index"`
	Title    string  `gorm:"column:title"`
	SKU      string  `gorm:"column:sku"`
	Quantity int     `gorm:"column:quantity"`
	Price    float64 `gorm:"column:price"`
}

// TableName specifies the table name for GORM
func (OrderLineItem) TableName() string {
	return "order_line_item"
}
