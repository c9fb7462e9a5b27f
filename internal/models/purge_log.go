package models

import "time"

// PurgeLog records a soft-deleted property that was physically removed.
type PurgeLog struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID    int64     `gorm:"not null;index" json:"property_id"`
	Title         string    `gorm:"type:varchar(200)" json:"title"`
	City          string    `gorm:"type:varchar(100)" json:"city"`
	ImageCount    int       `gorm:"not null;default:0" json:"image_count"`
	SoftDeletedAt time.Time `gorm:"precision:6" json:"soft_deleted_at"`
	PurgedAt      time.Time `gorm:"not null;precision:6;index" json:"purged_at"`
	Reason        string    `gorm:"type:varchar(50);not null" json:"reason"`
}

// TableName specifies the table name
func (PurgeLog) TableName() string {
	return "purge_logs"
}

// PurgeReason constants
const (
	PurgeReasonRetention = "retention_expired"
	PurgeReasonManual    = "manual_purge"
)
