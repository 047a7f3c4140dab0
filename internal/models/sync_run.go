package models

import "time"

type SyncRunStatus string

const (
	RunStatusPending   SyncRunStatus = "pending"
	RunStatusCompleted SyncRunStatus = "completed"
	RunStatusFailed    SyncRunStatus = "failed"
)

// Entity kind constants, one per mirrored entity type
const (
	KindProduct  = "product"
	KindOrder    = "order"
	KindDiscount = "discount"
)

// SyncRun tracks one execution of the sync engine for one (entity kind, shop)
// pair. Created with status pending at run start and moved to exactly one
// terminal status at run end; the finished_at of the latest completed run is
// the watermark for the next incremental run.
type SyncRun struct {
	ID         string        `gorm:"column:id;primaryKey"`
	EntityKind string        `gorm:"column:entity_kind;index"`
	ShopID     string        `gorm:"column:shop_id;index"`
	Status     SyncRunStatus `gorm:"column:status;index"`
	StartedAt  time.Time     `gorm:"column:started_at"`
	FinishedAt *time.Time    `gorm:"column:finished_at"`
	DurationMs *int64        `gorm:"column:duration_ms"`
	Summary    JSONB         `gorm:"column:summary;type:jsonb"`
	LastError  *string       `gorm:"column:last_error"`
}

// TableName specifies the table name for GORM
func (SyncRun) TableName() string {
	return "sync_run"
}
