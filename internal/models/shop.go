package models

import "time"

type ShopStatus string

const (
	ShopStatusActive      ShopStatus = "active"
	ShopStatusUninstalled ShopStatus = "uninstalled"
)

// Shop represents one mirrored commerce store (a tenant)
type Shop struct {
	ID            string     `gorm:"column:id;primaryKey"`
	Domain        string     `gorm:"column:domain;uniqueIndex"`
	AccessToken   *string    `gorm:"column:access_token"`
	Status        ShopStatus `gorm:"column:status;index"`
	InstalledAt   time.Time  `gorm:"column:installed_at"`
	UninstalledAt *time.Time `gorm:"column:uninstalled_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (Shop) TableName() string {
	return "shop"
}
